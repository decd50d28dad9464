package core

import (
	"testing"
	"time"
)

func TestByteGridIndex(t *testing.T) {
	g := NewByteGrid(13, 11)
	if len(g.Cells()) != 13*11 {
		t.Fatalf("unexpected cell count %d", len(g.Cells()))
	}
	if got := g.Index(2, 3); got != 3*13+2 {
		t.Fatalf("row-major index mismatch: %d", got)
	}
	if empty := NewByteGrid(0, -1); empty.W != 1 || empty.H != 1 {
		t.Fatalf("expected degenerate sizes clamped to 1, got %dx%d", empty.W, empty.H)
	}
}

func TestFixedStepFirstTickAndRate(t *testing.T) {
	fs := NewFixedStep(1)
	if !fs.ShouldStep() {
		t.Fatal("expected an immediate first step")
	}
	if fs.ShouldStep() {
		t.Fatal("expected no second step within the same second")
	}
	fs.SetRate(1000)
	if fs.Rate() != 1000 {
		t.Fatalf("unexpected rate %d", fs.Rate())
	}
	time.Sleep(20 * time.Millisecond)
	steps := 0
	for fs.ShouldStep() {
		steps++
	}
	if steps < 1 || steps > maxBacklog {
		t.Fatalf("expected between 1 and %d catch-up steps, got %d", maxBacklog, steps)
	}

	fs.Reset()
	if fs.ShouldStep() {
		t.Fatal("expected no step right after Reset")
	}
	if NewFixedStep(0).Rate() != 60 {
		t.Fatal("expected default rate for non-positive input")
	}
}

type namedSim struct{ name string }

func (s namedSim) Name() string   { return s.name }
func (s namedSim) Size() Size     { return Size{W: 1, H: 1} }
func (s namedSim) Reset(int64)    {}
func (s namedSim) Step()          {}
func (s namedSim) Cells() []uint8 { return []uint8{0} }

func TestRegisterIgnoresInvalidEntries(t *testing.T) {
	Register("", func(map[string]string) Sim { return namedSim{} })
	Register("nil-factory", nil)
	if _, ok := Sims()[""]; ok {
		t.Fatal("empty names must be ignored")
	}
	if _, ok := Sims()["nil-factory"]; ok {
		t.Fatal("nil factories must be ignored")
	}
	Register("test-sim", func(map[string]string) Sim { return namedSim{name: "test-sim"} })
	if got := Sims()["test-sim"](nil).Name(); got != "test-sim" {
		t.Fatalf("unexpected sim %q", got)
	}
}
