package biosim

import (
	"math"
	"testing"

	"biosim/pkg/core"
)

func TestFitnessMonotoneInWeightAndAge(t *testing.T) {
	for _, s := range AllSpecies {
		params := DefaultConfig().Params
		p := params.Species(s)

		prev := -1.0
		for w := 0.5; w <= 80; w += 0.5 {
			f := computeFitness(p, 5, w)
			if f < 0 || f > 1 {
				t.Fatalf("%s fitness %f out of range at weight %f", s, f, w)
			}
			if f < prev {
				t.Fatalf("%s fitness decreased with weight at %f: %f < %f", s, w, f, prev)
			}
			prev = f
		}

		prev = 2.0
		for age := 0; age <= 120; age++ {
			f := computeFitness(p, age, 20)
			if f > prev {
				t.Fatalf("%s fitness increased with age at %d: %f > %f", s, age, f, prev)
			}
			prev = f
		}

		if f := computeFitness(p, 5, 0); f != 0 {
			t.Fatalf("%s fitness with zero weight should be 0, got %f", s, f)
		}
	}
}

func TestFitnessRecomputedAfterMutation(t *testing.T) {
	p := DefaultHerbivoreParams()
	a := newAnimal(Herbivore, &p, 5, 20)
	before := a.Fitness()

	a.Feed(10)
	if after := a.Fitness(); after <= before {
		t.Fatalf("expected fitness to rise after feeding, before %f after %f", before, after)
	}

	fed := a.Fitness()
	a.AgeOneYear()
	if aged := a.Fitness(); aged >= fed {
		t.Fatalf("expected fitness to drop after ageing, before %f after %f", fed, aged)
	}
}

func TestFeedBoundedByAvailableFood(t *testing.T) {
	p := DefaultHerbivoreParams()
	a := newAnimal(Herbivore, &p, 5, 20)

	if got := a.Feed(3); got != 3 {
		t.Fatalf("expected to eat the 3 units offered, ate %f", got)
	}
	if want := 20 + 0.9*3; math.Abs(a.Weight()-want) > 1e-9 {
		t.Fatalf("expected weight %f, got %f", want, a.Weight())
	}
	if got := a.Feed(100); got != p.F {
		t.Fatalf("expected appetite %f to cap intake, ate %f", p.F, got)
	}
	if got := a.Feed(0); got != 0 {
		t.Fatalf("expected nothing eaten from empty cell, ate %f", got)
	}

	cp := DefaultCarnivoreParams()
	c := newAnimal(Carnivore, &cp, 5, 20)
	if got := c.Feed(100); got != 0 {
		t.Fatalf("carnivores must not graze, ate %f", got)
	}
}

func TestHuntWithoutPreyIsNoop(t *testing.T) {
	p := DefaultCarnivoreParams()
	c := newAnimal(Carnivore, &p, 5, 20)
	rng := core.NewRNG(1)

	if killed := c.Hunt(rng, nil); len(killed) != 0 {
		t.Fatalf("expected no kills without prey, got %d", len(killed))
	}
	if c.Weight() != 20 {
		t.Fatalf("expected weight unchanged, got %f", c.Weight())
	}
}

func TestHuntStopsWhenAppetiteMet(t *testing.T) {
	cp := DefaultCarnivoreParams()
	cp.DeltaPhiMax = 0.1
	hp := DefaultHerbivoreParams()
	rng := core.NewRNG(3)

	c := newAnimal(Carnivore, &cp, 5, 50)
	prey := []*Animal{
		newAnimal(Herbivore, &hp, 100, 30),
		newAnimal(Herbivore, &hp, 100, 30),
		newAnimal(Herbivore, &hp, 100, 30),
	}

	killed := c.Hunt(rng, prey)
	if len(killed) != 2 {
		t.Fatalf("expected two kills to fill appetite %f, got %d", cp.F, len(killed))
	}
	if want := 50 + cp.Beta*cp.F; math.Abs(c.Weight()-want) > 1e-9 {
		t.Fatalf("expected weight %f after eating %f, got %f", want, cp.F, c.Weight())
	}
}

func TestHuntRaisesKillOddsAfterEachKill(t *testing.T) {
	cp := DefaultCarnivoreParams()
	hp := DefaultHerbivoreParams()
	rng := core.NewRNG(9)

	c := newAnimal(Carnivore, &cp, 5, 3)
	next := newAnimal(Herbivore, &hp, 100, 30)
	cp.DeltaPhiMax = 1
	before := c.killProbability(next)
	if before <= 0 || before >= 1 {
		t.Fatalf("test setup: expected a partial kill chance, got %f", before)
	}

	cp.DeltaPhiMax = 1e-6
	if killed := c.Hunt(rng, []*Animal{newAnimal(Herbivore, &hp, 100, 30)}); len(killed) != 1 {
		t.Fatalf("expected a certain kill, got %d", len(killed))
	}

	cp.DeltaPhiMax = 1
	if after := c.killProbability(next); after <= before {
		t.Fatalf("kill chance should grow with the predator's new weight: %f then %f", before, after)
	}
}

func TestHuntNeverKillsFitterPrey(t *testing.T) {
	cp := DefaultCarnivoreParams()
	hp := DefaultHerbivoreParams()
	rng := core.NewRNG(5)

	c := newAnimal(Carnivore, &cp, 100, 2)
	prey := []*Animal{newAnimal(Herbivore, &hp, 2, 60)}
	if c.Fitness() > prey[0].Fitness() {
		t.Fatalf("test setup: predator fitness %f should not exceed prey %f", c.Fitness(), prey[0].Fitness())
	}
	for i := 0; i < 100; i++ {
		if killed := c.Hunt(rng, prey); len(killed) != 0 {
			t.Fatal("predator killed fitter prey")
		}
	}
}

func TestProcreateRules(t *testing.T) {
	rng := core.NewRNG(11)

	p := DefaultHerbivoreParams()
	p.Gamma = 100
	lonely := newAnimal(Herbivore, &p, 5, 50)
	if child := lonely.Procreate(rng, 1); child != nil {
		t.Fatal("a lone animal must not give birth")
	}

	light := newAnimal(Herbivore, &p, 5, p.birthThreshold()-1)
	if child := light.Procreate(rng, 10); child != nil {
		t.Fatal("animals below the birth threshold must not give birth")
	}

	mother := newAnimal(Herbivore, &p, 5, 50)
	child := mother.Procreate(rng, 10)
	if child == nil {
		t.Fatal("expected a birth with certain probability")
	}
	if child.Age() != 0 || !child.Newborn() || child.Weight() <= 0 {
		t.Fatalf("unexpected newborn state: %v", child)
	}
	if want := 50 - p.Xi*child.Weight(); math.Abs(mother.Weight()-want) > 1e-9 {
		t.Fatalf("expected mother weight %f, got %f", want, mother.Weight())
	}
}

func TestProcreateFailsWhenBirthWouldStarveMother(t *testing.T) {
	p := DefaultHerbivoreParams()
	p.Gamma = 100
	p.Zeta = 0
	p.Xi = 100
	rng := core.NewRNG(13)

	a := newAnimal(Herbivore, &p, 5, 10)
	if child := a.Procreate(rng, 5); child != nil {
		t.Fatal("birth must fail when it would take the mother to zero weight")
	}
	if a.Weight() != 10 {
		t.Fatalf("failed birth must not change weight, got %f", a.Weight())
	}
}

func TestAnnualLossAndAgeing(t *testing.T) {
	p := DefaultHerbivoreParams()
	a := newAnimal(Herbivore, &p, 0, 20)
	a.newborn = true

	a.LoseWeightAnnual()
	if math.Abs(a.Weight()-19) > 1e-9 {
		t.Fatalf("expected weight 19 after annual loss, got %f", a.Weight())
	}
	a.AgeOneYear()
	if a.Age() != 1 || a.Newborn() {
		t.Fatalf("expected age 1 and newborn flag cleared, got age %d newborn %v", a.Age(), a.Newborn())
	}
}

func TestDies(t *testing.T) {
	rng := core.NewRNG(17)
	p := DefaultHerbivoreParams()

	starved := newAnimal(Herbivore, &p, 5, 0)
	if !starved.Dies(rng) {
		t.Fatal("animals without weight must die")
	}

	immortal := DefaultHerbivoreParams()
	immortal.Omega = 0
	a := newAnimal(Herbivore, &immortal, 5, 20)
	for i := 0; i < 100; i++ {
		if a.Dies(rng) {
			t.Fatal("zero death rate must never kill a healthy animal")
		}
	}
}

func TestMigrationPropensityClamped(t *testing.T) {
	p := DefaultHerbivoreParams()
	p.Mu = 50
	a := newAnimal(Herbivore, &p, 5, 20)
	if got := a.MigrationPropensity(); got != 1 {
		t.Fatalf("expected propensity clamped to 1, got %f", got)
	}

	p.Mu = 0.25
	a.invalidateFitness()
	if got, want := a.MigrationPropensity(), 0.25*a.Fitness(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected propensity %f, got %f", want, got)
	}
}
