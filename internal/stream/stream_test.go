package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"biosim/internal/sims/biosim"
)

func TestBroadcasterDropsForSlowSubscribers(t *testing.T) {
	b := NewBroadcaster()
	id, ch := b.Subscribe()
	for i := 0; i < sendBuffer+10; i++ {
		if err := b.Record(biosim.Snapshot{Year: i}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if len(ch) != sendBuffer {
		t.Fatalf("expected a full buffer of %d, got %d", sendBuffer, len(ch))
	}
	b.Unsubscribe(id)
	if b.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers, got %d", b.SubscriberCount())
	}
}

func TestSubscribeReplaysLastSnapshot(t *testing.T) {
	b := NewBroadcaster()
	if err := b.Record(biosim.Snapshot{Year: 7, Herbivores: 3}); err != nil {
		t.Fatalf("record: %v", err)
	}
	_, ch := b.Subscribe()
	select {
	case msg := <-ch:
		var got biosim.Snapshot
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Year != 7 || got.Herbivores != 3 {
			t.Fatalf("unexpected replay %+v", got)
		}
	default:
		t.Fatal("expected the last snapshot to be queued on subscribe")
	}
	b.Close()
	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after Close")
	}
}

func TestHandlerStreamsSnapshots(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(Handler(b))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for b.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cfg := biosim.DefaultConfig()
	engine, err := biosim.NewEngineFromConfig(cfg)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if err := b.Record(engine.Snapshot()); err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), `"terrain":"Water"`) {
		t.Fatalf("expected terrain encoded by name, got %s", raw[:80])
	}
	var got biosim.Snapshot
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Herbivores != 150 || got.Carnivores != 20 || got.Rows != 11 || got.Cols != 13 {
		t.Fatalf("unexpected snapshot %d/%d %dx%d", got.Herbivores, got.Carnivores, got.Rows, got.Cols)
	}
}
