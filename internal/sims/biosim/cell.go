package biosim

import (
	"sort"

	"biosim/pkg/core"
)

// Cell is one square of the island. It owns its food stock and the IDs of
// the animals living on it; the animals themselves live in the shared Arena.
type Cell struct {
	loc       Loc
	terrain   Terrain
	food      float64
	residents [numSpecies][]AnimalID

	arena  *Arena
	params *Params
}

// Move relocates one animal from one cell to another during migration.
type Move struct {
	ID      AnimalID
	Species Species
	From    Loc
	To      Loc
}

func newCell(loc Loc, terrain Terrain, arena *Arena, params *Params) *Cell {
	return &Cell{loc: loc, terrain: terrain, arena: arena, params: params}
}

// Loc returns the cell's position on the island.
func (c *Cell) Loc() Loc { return c.loc }

// Terrain returns the cell's landscape type.
func (c *Cell) Terrain() Terrain { return c.terrain }

// Food returns the fodder left this year.
func (c *Cell) Food() float64 { return c.food }

// FoodMax returns the amount of fodder the cell regrows every year.
func (c *Cell) FoodMax() float64 { return c.params.FoodMax(c.terrain) }

// Count returns the number of residents of a species.
func (c *Cell) Count(s Species) int { return len(c.residents[s]) }

// Total returns the number of residents of every species.
func (c *Cell) Total() int {
	n := 0
	for _, ids := range c.residents {
		n += len(ids)
	}
	return n
}

// Residents returns the living animals of a species in resident-list order.
func (c *Cell) Residents(s Species) []*Animal {
	out := make([]*Animal, 0, len(c.residents[s]))
	for _, id := range c.residents[s] {
		if a := c.arena.Get(id); a != nil {
			out = append(out, a)
		}
	}
	return out
}

// RegrowFood resets the fodder to the terrain's yearly maximum.
func (c *Cell) RegrowFood() {
	c.food = c.FoodMax()
}

// FeedHerbivores lets herbivores graze, fittest first, until the fodder runs
// out. It returns the amount eaten.
func (c *Cell) FeedHerbivores() float64 {
	herbs := c.Residents(Herbivore)
	sortByFitness(herbs, true)
	eaten := 0.0
	for _, h := range herbs {
		if c.food <= 0 {
			break
		}
		got := h.Feed(c.food)
		eaten += got
		c.food -= got
		if c.food < 0 {
			c.food = 0
		}
	}
	c.residents[Herbivore] = ids(herbs)
	return eaten
}

// FeedCarnivores lets carnivores hunt, fittest first, with the weakest
// herbivores attacked first. It returns the number of herbivores killed.
func (c *Cell) FeedCarnivores(rng *core.RNG) int {
	if len(c.residents[Carnivore]) == 0 {
		return 0
	}
	carns := c.Residents(Carnivore)
	sortByFitness(carns, true)
	prey := c.Residents(Herbivore)
	sortByFitness(prey, false)

	kills := 0
	for _, carn := range carns {
		if len(prey) == 0 {
			break
		}
		killed := carn.Hunt(rng, prey)
		if len(killed) == 0 {
			continue
		}
		dead := make(map[AnimalID]struct{}, len(killed))
		for _, h := range killed {
			dead[h.id] = struct{}{}
			c.arena.release(h.id)
		}
		kept := prey[:0]
		for _, h := range prey {
			if _, ok := dead[h.id]; !ok {
				kept = append(kept, h)
			}
		}
		prey = kept
		kills += len(killed)
	}
	c.residents[Carnivore] = ids(carns)
	c.residents[Herbivore] = ids(prey)
	return kills
}

// ProcreateAll gives every resident a chance to reproduce. The number of
// potential mates is fixed at the start of the phase; newborns are appended
// to the resident list. It returns the number of births.
func (c *Cell) ProcreateAll(rng *core.RNG) int {
	births := 0
	for _, s := range AllSpecies {
		parents := c.Residents(s)
		n := len(parents)
		if n < 2 {
			continue
		}
		for _, parent := range parents {
			child := parent.Procreate(rng, n)
			if child == nil {
				continue
			}
			c.residents[s] = append(c.residents[s], c.arena.adopt(child))
			births++
		}
	}
	return births
}

// AgeAndStarve applies the yearly weight loss and ageing to every resident,
// then removes the animals that die. It returns the number of deaths.
func (c *Cell) AgeAndStarve(rng *core.RNG) int {
	deaths := 0
	for _, s := range AllSpecies {
		animals := c.Residents(s)
		for _, a := range animals {
			a.LoseWeightAnnual()
			a.AgeOneYear()
		}
		survivors := animals[:0]
		for _, a := range animals {
			if a.Dies(rng) {
				c.arena.release(a.id)
				deaths++
				continue
			}
			survivors = append(survivors, a)
		}
		c.residents[s] = ids(survivors)
	}
	return deaths
}

// MigrationCandidates decides which residents leave this year and where they
// go. Newborns stay put. The cell is not modified; the island applies the
// moves.
func (c *Cell) MigrationCandidates(rng *core.RNG, neighbors []*Cell, weighting Weighting) []Move {
	if len(neighbors) == 0 {
		return nil
	}
	var moves []Move
	for _, s := range AllSpecies {
		for _, a := range c.Residents(s) {
			if a.newborn {
				continue
			}
			if !rng.Chance(a.MigrationPropensity()) {
				continue
			}
			dest := pickDestination(rng, neighbors, weighting)
			moves = append(moves, Move{ID: a.id, Species: s, From: c.loc, To: dest.loc})
		}
	}
	return moves
}

func pickDestination(rng *core.RNG, neighbors []*Cell, weighting Weighting) *Cell {
	if weighting == WeightingFood {
		weights := make([]float64, len(neighbors))
		for i, n := range neighbors {
			weights[i] = n.food
		}
		if i := rng.WeightedIndex(weights); i >= 0 {
			return neighbors[i]
		}
	}
	return neighbors[rng.IntN(len(neighbors))]
}

func (c *Cell) admit(s Species, id AnimalID) {
	c.residents[s] = append(c.residents[s], id)
}

func (c *Cell) evict(s Species, gone map[AnimalID]struct{}) {
	kept := c.residents[s][:0]
	for _, id := range c.residents[s] {
		if _, ok := gone[id]; !ok {
			kept = append(kept, id)
		}
	}
	c.residents[s] = kept
}

func sortByFitness(animals []*Animal, descending bool) {
	sort.SliceStable(animals, func(i, j int) bool {
		if descending {
			return animals[i].Fitness() > animals[j].Fitness()
		}
		return animals[i].Fitness() < animals[j].Fitness()
	})
}

func ids(animals []*Animal) []AnimalID {
	out := make([]AnimalID, len(animals))
	for i, a := range animals {
		out[i] = a.id
	}
	return out
}
