// Package stream pushes yearly snapshots to websocket subscribers.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"biosim/internal/sims/biosim"
	"biosim/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Broadcaster fans snapshots out to subscribers. Slow subscribers miss
// messages instead of blocking the simulation. It implements
// biosim.SnapshotSink.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]chan []byte
	last        []byte
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[uuid.UUID]chan []byte)}
}

// Subscribe registers a new subscriber. The most recent snapshot, if any, is
// queued immediately.
func (b *Broadcaster) Subscribe() (uuid.UUID, <-chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New()
	ch := make(chan []byte, sendBuffer)
	if b.last != nil {
		ch <- b.last
	}
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Record encodes snap as JSON and sends it to every subscriber.
func (b *Broadcaster) Record(snap biosim.Snapshot) error {
	msg, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = msg
	for id, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			logger.Log.WithField("subscriber", id).Debug("subscriber lagging, snapshot dropped")
		}
	}
	return nil
}

// Close disconnects every subscriber.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Handler upgrades requests to websockets and streams snapshots to them.
func Handler(b *Broadcaster) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Log.WithError(err).Warn("websocket upgrade failed")
			return
		}
		id, updates := b.Subscribe()
		logger.Log.WithFields(logrus.Fields{
			"subscriber": id,
			"remote":     r.RemoteAddr,
		}).Info("viewer connected")

		done := make(chan struct{})
		go readPump(conn, done)
		writePump(conn, updates, done)
		b.Unsubscribe(id)
		logger.Log.WithField("subscriber", id).Info("viewer disconnected")
	})
}

// readPump discards client messages and keeps the read deadline alive until
// the connection closes.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.WithError(err).Warn("failed to set read deadline")
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.WithError(err).Warn("websocket read failed")
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, updates <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("websocket close failed")
		}
	}()

	for {
		select {
		case msg, ok := <-updates:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logger.Log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Log.WithError(err).Debug("write snapshot failed")
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.WithError(err).Debug("ping failed")
				return
			}
		case <-done:
			return
		}
	}
}
