package app

import (
	"errors"
	"flag"
	"io"
	"path/filepath"
	"testing"

	"biosim/internal/core"
	"biosim/internal/sims/biosim"
)

func TestBindParsesFlags(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.Bind(fs)

	err := fs.Parse([]string{"-scale", "8", "-yps", "10", "-seed", "9", "-set", "herbivore.f=12", "-set", "weighting = food"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Scale != 8 || cfg.YearsPerSecond != 10 || cfg.Seed != 9 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Overrides["herbivore.f"] != "12" || cfg.Overrides["weighting"] != "food" {
		t.Fatalf("unexpected overrides %v", cfg.Overrides)
	}
	if err := fs.Parse([]string{"-set", "novalue"}); err == nil {
		t.Fatal("expected malformed override to be rejected")
	}
}

func TestSimulationAppliesOverrides(t *testing.T) {
	cfg := NewConfig()
	cfg.ConfigPath = filepath.Join("..", "sims", "biosim", "testdata", "two_cells.yaml")
	cfg.Seed = 77
	cfg.Overrides["carnivore.f"] = "40"

	sim, err := cfg.Simulation()
	if err != nil {
		t.Fatalf("simulation: %v", err)
	}
	if sim.Seed != 77 {
		t.Fatalf("expected seed override, got %d", sim.Seed)
	}
	if sim.Params.Herbivore.F != 12 || sim.Params.Carnivore.F != 40 {
		t.Fatalf("expected file and flag parameters, got %+v", sim.Params)
	}

	cfg.Overrides["herbivore.zeta"] = "-1"
	if _, err := cfg.Simulation(); !errors.Is(err, biosim.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestWindowSize(t *testing.T) {
	cases := []struct {
		name       string
		size       core.Size
		scale, hud int
		w, h       int
	}{
		{"island and hud", core.Size{W: 13, H: 11}, 32, 320, 13*32 + 320, 480},
		{"tall island", core.Size{W: 13, H: 21}, 32, 320, 13*32 + 320, 21 * 32},
		{"no hud", core.Size{W: 4, H: 3}, 10, 0, 40, 30},
		{"invalid scale", core.Size{W: 4, H: 3}, 0, -5, 4, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := WindowSize(tc.size, tc.scale, tc.hud)
			if w != tc.w || h != tc.h {
				t.Fatalf("got %dx%d want %dx%d", w, h, tc.w, tc.h)
			}
		})
	}
}

func TestSimOptionsBuildRegisteredSim(t *testing.T) {
	cfg := NewConfig()
	cfg.ConfigPath = filepath.Join("..", "sims", "biosim", "testdata", "two_cells.yaml")
	cfg.Seed = 31
	cfg.Overrides["carnivore.f"] = "40"

	opts := cfg.SimOptions()
	if opts[biosim.ConfigKey] != cfg.ConfigPath || opts["seed"] != "31" || opts["carnivore.f"] != "40" {
		t.Fatalf("unexpected options %v", opts)
	}

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		t.Fatalf("sim %q not registered", cfg.Sim)
	}
	world, ok := factory(opts).(*biosim.World)
	if !ok {
		t.Fatal("expected the biosim world")
	}
	if world.Err() != nil {
		t.Fatalf("unexpected error: %v", world.Err())
	}
	got := world.Engine().Config()
	if got.Seed != 31 || got.Params.Herbivore.F != 12 || got.Params.Carnivore.F != 40 {
		t.Fatalf("expected file, seed and override to reach the engine, got seed %d params %+v", got.Seed, got.Params)
	}
	if size := world.Size(); size.W != 4 || size.H != 3 {
		t.Fatalf("expected the file geography, got %+v", size)
	}

	if opts := NewConfig().SimOptions(); len(opts) != 0 {
		t.Fatalf("defaults should pass no options, got %v", opts)
	}
}
