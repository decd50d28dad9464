package biosim

import (
	"context"

	"biosim/internal/core"
	"biosim/pkg/logger"
)

// World adapts an Engine to the core.Sim contract so the viewer can drive it
// one year per Step.
type World struct {
	cfg     Config
	engine  *Engine
	display *core.ByteGrid
	err     error
}

// NewWithConfig returns a world built from cfg. Call Reset before stepping.
func NewWithConfig(cfg Config) *World {
	w := &World{cfg: cfg}
	w.Reset(0)
	return w
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "biosim" }

// Size reports the island dimensions in cells.
func (w *World) Size() core.Size {
	if w.engine == nil {
		return core.Size{}
	}
	rows, cols := w.engine.island.Size()
	return core.Size{W: cols, H: rows}
}

// Cells exposes the display buffer.
func (w *World) Cells() []uint8 {
	if w.display == nil {
		return nil
	}
	return w.display.Cells()
}

// Engine exposes the underlying engine, or nil when the config was rejected.
func (w *World) Engine() *Engine { return w.engine }

// Err returns the last construction or run error.
func (w *World) Err() error { return w.err }

// Reset rebuilds the island and its population. A zero seed reuses the
// configured seed.
func (w *World) Reset(seed int64) {
	cfg := w.cfg
	if seed != 0 {
		cfg.Seed = seed
	}
	engine, err := NewEngineFromConfig(cfg)
	w.err = err
	if err != nil {
		logger.Log.WithError(err).Error("biosim reset failed")
		w.engine = nil
		w.display = nil
		return
	}
	w.engine = engine
	rows, cols := engine.island.Size()
	if w.display == nil || w.display.W != cols || w.display.H != rows {
		w.display = core.NewByteGrid(cols, rows)
	}
	w.rebuildDisplay()
}

// Step simulates one year.
func (w *World) Step() {
	if w.engine == nil || w.engine.State() != Ready {
		return
	}
	if _, err := w.engine.Run(context.Background(), 1, nil); err != nil {
		w.err = err
		logger.Log.WithError(err).Error("biosim step failed")
	}
	w.rebuildDisplay()
}

func init() {
	core.Register("biosim", func(cfg map[string]string) core.Sim {
		return NewWithConfig(FromMap(cfg))
	})
}
