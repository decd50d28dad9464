package biosim

import (
	"fmt"
	"math"

	"biosim/pkg/core"
)

// AnimalID identifies an animal for as long as it lives. IDs are never reused
// within a simulation.
type AnimalID uint64

// Animal is one individual. Its location is whichever cell lists its ID.
type Animal struct {
	id      AnimalID
	species Species
	age     int
	weight  float64

	fitness      float64
	fitnessValid bool

	// newborn animals skip migration in their birth year.
	newborn bool

	p *SpeciesParams
}

func newAnimal(species Species, p *SpeciesParams, age int, weight float64) *Animal {
	return &Animal{species: species, p: p, age: age, weight: weight}
}

func (a *Animal) String() string {
	return fmt.Sprintf("%s#%d(%d years, %.3g kg)", a.species, a.id, a.age, a.weight)
}

// ID returns the animal's stable identifier.
func (a *Animal) ID() AnimalID { return a.id }

// Species returns the animal's species.
func (a *Animal) Species() Species { return a.species }

// Age returns the age in years.
func (a *Animal) Age() int { return a.age }

// Weight returns the current weight.
func (a *Animal) Weight() float64 { return a.weight }

// Newborn reports whether the animal was born this year.
func (a *Animal) Newborn() bool { return a.newborn }

// Fitness returns the cached fitness, recomputing it after age or weight changed.
func (a *Animal) Fitness() float64 {
	if !a.fitnessValid {
		a.fitness = computeFitness(a.p, a.age, a.weight)
		a.fitnessValid = true
	}
	return a.fitness
}

func (a *Animal) setWeight(w float64) {
	a.weight = w
	a.fitnessValid = false
}

func (a *Animal) invalidateFitness() { a.fitnessValid = false }

// computeFitness is a logistic curve falling with age and rising with weight.
func computeFitness(p *SpeciesParams, age int, weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	return q(+1, float64(age), p.AHalf, p.PhiAge) * q(-1, weight, p.WHalf, p.PhiWeight)
}

func q(sign, x, half, phi float64) float64 {
	return 1.0 / (1.0 + math.Exp(sign*phi*(x-half)))
}

// Feed lets a herbivore eat up to its appetite from available and returns the
// amount actually eaten. Carnivores never graze.
func (a *Animal) Feed(available float64) float64 {
	if a.species != Herbivore || available <= 0 {
		return 0
	}
	eaten := math.Min(a.p.F, available)
	a.setWeight(a.weight + a.p.Beta*eaten)
	return eaten
}

// Hunt lets a carnivore attack prey in the given order until its appetite is
// met. It returns the prey that were killed; removing them is up to the caller.
func (a *Animal) Hunt(rng *core.RNG, prey []*Animal) []*Animal {
	if a.species != Carnivore || len(prey) == 0 {
		return nil
	}
	var killed []*Animal
	eaten := 0.0
	for _, h := range prey {
		if eaten >= a.p.F {
			break
		}
		if !rng.Chance(a.killProbability(h)) {
			continue
		}
		meal := math.Min(h.weight, a.p.F-eaten)
		eaten += meal
		a.setWeight(a.weight + a.p.Beta*meal)
		killed = append(killed, h)
	}
	return killed
}

// killProbability uses the predator's current fitness. Every kill raises its
// weight and so its fitness, which makes later kills in the same hunt more
// likely; the fitness is not frozen at the start of the hunt.
func (a *Animal) killProbability(prey *Animal) float64 {
	diff := a.Fitness() - prey.Fitness()
	switch {
	case diff <= 0:
		return 0
	case diff < a.p.DeltaPhiMax:
		return diff / a.p.DeltaPhiMax
	default:
		return 1
	}
}

// Procreate may produce one offspring given the number of same-species animals
// in the cell, including this one. The mother pays for the birth with weight.
func (a *Animal) Procreate(rng *core.RNG, sameSpecies int) *Animal {
	if sameSpecies < 2 || a.weight < a.p.birthThreshold() {
		return nil
	}
	prob := math.Min(1, a.p.Gamma*a.Fitness()*float64(sameSpecies-1))
	if !rng.Chance(prob) {
		return nil
	}
	birthWeight := sampleBirthWeight(rng, a.p)
	cost := a.p.Xi * birthWeight
	if cost >= a.weight {
		return nil
	}
	a.setWeight(a.weight - cost)
	child := newAnimal(a.species, a.p, 0, birthWeight)
	child.newborn = true
	return child
}

// sampleBirthWeight draws from the birth-weight Gaussian until it is positive.
func sampleBirthWeight(rng *core.RNG, p *SpeciesParams) float64 {
	for {
		if w := rng.Gauss(p.WBirth, p.SigmaBirth); w > 0 {
			return w
		}
	}
}

// LoseWeightAnnual applies the yearly metabolic loss.
func (a *Animal) LoseWeightAnnual() {
	a.setWeight(a.weight - a.p.Eta*a.weight)
}

// AgeOneYear increments the age by one year.
func (a *Animal) AgeOneYear() {
	a.age++
	a.newborn = false
	a.fitnessValid = false
}

// Dies reports whether the animal dies this year. Starved animals always die.
func (a *Animal) Dies(rng *core.RNG) bool {
	if a.weight <= 0 {
		return true
	}
	return rng.Chance(a.p.Omega * (1 - a.Fitness()))
}

// MigrationPropensity is the probability that the animal tries to move this year.
func (a *Animal) MigrationPropensity() float64 {
	return clamp01(a.p.Mu * a.Fitness())
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
