package main

import (
	"context"
	"testing"

	"biosim/internal/sims/biosim"
)

func TestBuildGrid(t *testing.T) {
	sets := buildGrid(10, 2)
	if len(sets) != 3*3*3*3*2 {
		t.Fatalf("unexpected grid size %d", len(sets))
	}
	if sets[0].seed != 10 || sets[1].seed != 11 {
		t.Fatalf("expected consecutive seeds, got %d and %d", sets[0].seed, sets[1].seed)
	}
}

func TestSweepIsDeterministic(t *testing.T) {
	base := biosim.DefaultConfig()
	sets := buildGrid(base.Seed, 1)[:6]

	first := sweep(context.Background(), base, sets, 5, 3)
	second := sweep(context.Background(), base, sets, 5, 1)
	rank(first)
	rank(second)
	if len(first) != len(sets) || len(second) != len(sets) {
		t.Fatalf("expected %d results, got %d and %d", len(sets), len(first), len(second))
	}
	for i := range first {
		if first[i].params != second[i].params || first[i].herbivores != second[i].herbivores ||
			first[i].carnivores != second[i].carnivores || first[i].coexistence != second[i].coexistence {
			t.Fatalf("result %d differs with worker count: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRankPrefersCoexistence(t *testing.T) {
	all := []scenarioResult{
		{params: paramSet{seed: 1}, coexistence: 3, carnivores: 9},
		{params: paramSet{seed: 2}, coexistence: 10, carnivores: 1},
		{params: paramSet{seed: 3}, coexistence: 10, carnivores: 4},
	}
	rank(all)
	if all[0].params.seed != 3 || all[1].params.seed != 2 || all[2].params.seed != 1 {
		t.Fatalf("unexpected order %+v", all)
	}
}

func TestSweepStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := sweep(ctx, biosim.DefaultConfig(), buildGrid(1, 1), 50, 2)
	for _, res := range got {
		if res.coexistence != 0 {
			t.Fatalf("cancelled scenarios should not simulate, got %+v", res)
		}
	}
}
