//go:build ebiten

package main

import (
	"errors"
	"flag"

	"biosim/internal/app"
	"biosim/internal/core"
	_ "biosim/internal/sims/biosim"
	"biosim/pkg/logger"

	"github.com/hajimehoshi/ebiten/v2"
)

type errorReporter interface {
	Err() error
}

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()
	logger.Init()

	if _, err := cfg.Simulation(); err != nil {
		logger.Log.WithError(err).Fatal("invalid configuration")
	}

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		logger.Log.WithField("sim", cfg.Sim).Fatal("unknown sim")
	}
	sim := factory(cfg.SimOptions())
	if r, ok := sim.(errorReporter); ok && r.Err() != nil {
		logger.Log.WithError(r.Err()).Fatal("failed to build simulation")
	}

	game := app.New(sim, cfg)
	w, h := app.WindowSize(sim.Size(), cfg.Scale, cfg.HUDWidth)

	ebiten.SetWindowTitle("BioSim - " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Log.WithError(err).Fatal("viewer stopped")
	}
}
