package store

import (
	"context"
	"path/filepath"
	"testing"

	"biosim/internal/sims/biosim"
)

func TestRecordRunRoundTrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "biosim.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	cfg := biosim.DefaultConfig()
	cfg.Seed = 3
	cfg.Snapshot.Animals = true
	engine, err := biosim.NewEngineFromConfig(cfg)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	run, err := db.BeginRun(cfg.Seed, cfg.Geography, true)
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}

	var last biosim.Snapshot
	sink := biosim.MultiSink{run, biosim.SinkFunc(func(s biosim.Snapshot) error {
		last = s
		return nil
	})}
	if _, err := engine.Run(context.Background(), 4, sink); err != nil {
		t.Fatalf("run: %v", err)
	}

	runs, err := db.Runs()
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID || runs[0].Seed != 3 {
		t.Fatalf("unexpected runs %+v", runs)
	}

	years, err := db.Years(run.ID)
	if err != nil {
		t.Fatalf("years: %v", err)
	}
	if len(years) != 4 {
		t.Fatalf("expected 4 stored years, got %d", len(years))
	}
	final := years[3]
	if final.Year != 4 || final.Herbivores != last.Herbivores || final.Carnivores != last.Carnivores {
		t.Fatalf("stored year %+v does not match snapshot %d/%d", final, last.Herbivores, last.Carnivores)
	}
	if last.Herbivores > 0 && final.HerbivoreWeightMean <= 0 {
		t.Fatalf("expected positive mean herbivore weight, got %f", final.HerbivoreWeightMean)
	}

	start := biosim.Loc{Row: 6, Col: 6}
	history, err := db.CellHistory(run.ID, start)
	if err != nil {
		t.Fatalf("cell history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 rows for %s, got %d", start, len(history))
	}
	want, _ := last.Cell(start)
	if got := history[3]; got.Herbivores != want.Herbivores || got.Food != want.Food {
		t.Fatalf("stored cell %+v does not match snapshot %+v", got, want)
	}

	water, err := db.CellHistory(run.ID, biosim.Loc{Row: 1, Col: 1})
	if err != nil {
		t.Fatalf("cell history: %v", err)
	}
	if len(water) != 0 {
		t.Fatalf("water cells should not be stored, got %d rows", len(water))
	}
}

func TestRunsAreSeparated(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	a, err := db.BeginRun(1, "WWW\nWLW\nWWW", false)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	b, err := db.BeginRun(2, "WWW\nWLW\nWWW", false)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if a.ID == b.ID {
		t.Fatal("run IDs must be unique")
	}
	if err := a.Record(biosim.Snapshot{Year: 1, Herbivores: 10}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := a.Record(biosim.Snapshot{Year: 1, Herbivores: 11}); err == nil {
		t.Fatal("expected duplicate year to be rejected")
	}
	years, err := db.Years(b.ID)
	if err != nil {
		t.Fatalf("years: %v", err)
	}
	if len(years) != 0 {
		t.Fatalf("expected no years for the second run, got %d", len(years))
	}
}

func TestRecordWeightMeansWithoutAnimalSamples(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "means.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	cfg := biosim.DefaultConfig()
	cfg.Snapshot.Animals = false
	engine, err := biosim.NewEngineFromConfig(cfg)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	run, err := db.BeginRun(cfg.Seed, cfg.Geography, false)
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	var snaps []biosim.Snapshot
	sink := biosim.MultiSink{run, biosim.SinkFunc(func(s biosim.Snapshot) error {
		snaps = append(snaps, s)
		return nil
	})}
	if _, err := engine.Run(context.Background(), 2, sink); err != nil {
		t.Fatalf("run: %v", err)
	}

	years, err := db.Years(run.ID)
	if err != nil {
		t.Fatalf("years: %v", err)
	}
	if len(years) != 2 {
		t.Fatalf("expected 2 stored years, got %d", len(years))
	}
	for i, row := range years {
		snap := snaps[i]
		if len(snap.Animals) != 0 {
			t.Fatal("expected snapshots without animal samples")
		}
		if row.Herbivores > 0 && row.HerbivoreWeightMean <= 0 {
			t.Fatalf("year %d: %d herbivores stored with mean weight %f", row.Year, row.Herbivores, row.HerbivoreWeightMean)
		}
		if row.Carnivores > 0 && row.CarnivoreWeightMean <= 0 {
			t.Fatalf("year %d: %d carnivores stored with mean weight %f", row.Year, row.Carnivores, row.CarnivoreWeightMean)
		}
		if row.HerbivoreWeightMean != snap.HerbivoreWeightMean || row.CarnivoreWeightMean != snap.CarnivoreWeightMean {
			t.Fatalf("year %d: stored means %+v differ from snapshot", row.Year, row)
		}
	}
}
