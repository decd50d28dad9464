package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"

	"biosim/internal/app"
	"biosim/internal/sims/biosim"
	"biosim/internal/store"
	"biosim/internal/stream"
	"biosim/pkg/logger"
)

func main() {
	opts := app.NewConfig()
	years := flag.Int("years", 100, "years to simulate")
	animals := flag.Bool("animals", false, "include per-animal samples in snapshots and the final report")
	dbPath := flag.String("db", "", "SQLite file to record the run in")
	cells := flag.Bool("cells", true, "store per-cell history when -db is set")
	serve := flag.String("serve", "", "address for the websocket snapshot feed, e.g. :8080")
	profileDir := flag.String("profile", "", "write a CPU profile to this directory")
	logEvery := flag.Int("log-every", 10, "log population counts every N years (0 disables)")
	flag.StringVar(&opts.ConfigPath, "config", "", "YAML simulation config (defaults when empty)")
	flag.Int64Var(&opts.Seed, "seed", 0, "seed override (0 keeps the config seed)")
	flag.Var(opts.Overrides, "set", "override a parameter as key=value (repeatable)")
	flag.Parse()
	logger.Init()

	if *profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir), profile.Quiet).Stop()
	}

	cfg, err := opts.Simulation()
	if err != nil {
		logger.Log.WithError(err).Fatal("invalid configuration")
	}
	if *animals {
		cfg.Snapshot.Animals = true
	}

	engine, err := biosim.NewEngineFromConfig(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to build island")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := biosim.MultiSink{progressSink(*logEvery)}

	if *dbPath != "" {
		db, err := store.Open(*dbPath)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to open store")
		}
		defer db.Close()
		run, err := db.BeginRun(cfg.Seed, cfg.Geography, *cells)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to register run")
		}
		logger.Log.WithField("run", run.ID).Info("recording run")
		sinks = append(sinks, run)
	}

	if *serve != "" {
		feed := stream.NewBroadcaster()
		defer feed.Close()
		srv := serveFeed(*serve, feed)
		defer shutdown(srv)
		if err := feed.Record(engine.Snapshot()); err != nil {
			logger.Log.WithError(err).Warn("failed to publish initial snapshot")
		}
		sinks = append(sinks, feed)
	}

	start := time.Now()
	summary, err := engine.Run(ctx, *years, sinks)
	if err != nil {
		logger.Log.WithError(err).Error("run aborted")
		return
	}
	if err := engine.Finish(); err != nil {
		logger.Log.WithError(err).Warn("failed to finish engine")
	}
	logger.Log.WithFields(logrus.Fields{
		"years":     summary.Years,
		"cancelled": summary.Cancelled,
		"elapsed":   time.Since(start).Round(time.Millisecond),
	}).Info("done")

	writeReport(os.Stdout, engine.Snapshot(), cfg.Display.Histograms)
}

func progressSink(every int) biosim.SinkFunc {
	return func(s biosim.Snapshot) error {
		if every > 0 && s.Year%every == 0 {
			logger.Log.WithFields(logrus.Fields{
				"year":       s.Year,
				"herbivores": s.Herbivores,
				"carnivores": s.Carnivores,
			}).Info("progress")
		}
		return nil
	}
}

func serveFeed(addr string, feed *stream.Broadcaster) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", stream.Handler(feed))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Log.WithField("addr", addr).Info("snapshot feed listening on /ws")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Error("snapshot feed stopped")
		}
	}()
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Warn("feed shutdown failed")
	}
}
