package biosim

// CellSnapshot is the state of one cell at the end of a year.
type CellSnapshot struct {
	Loc        Loc     `json:"loc"`
	Terrain    Terrain `json:"terrain"`
	Food       float64 `json:"food"`
	Herbivores int     `json:"herbivores"`
	Carnivores int     `json:"carnivores"`
}

// AnimalSample is the histogram-relevant state of one animal.
type AnimalSample struct {
	Species Species `json:"species"`
	Age     int     `json:"age"`
	Weight  float64 `json:"weight"`
	Fitness float64 `json:"fitness"`
}

// Snapshot is an immutable copy of the island after a completed year.
type Snapshot struct {
	Year       int `json:"year"`
	Herbivores int `json:"herbivores"`
	Carnivores int `json:"carnivores"`

	// Island-wide mean weights, zero for an extinct species. Filled whether
	// or not animal samples are taken.
	HerbivoreWeightMean float64 `json:"herbivore_weight_mean"`
	CarnivoreWeightMean float64 `json:"carnivore_weight_mean"`

	Rows    int            `json:"rows"`
	Cols    int            `json:"cols"`
	Cells   []CellSnapshot `json:"cells"`
	Animals []AnimalSample `json:"animals,omitempty"`
}

func takeSnapshot(isl *Island, year int, withAnimals bool) Snapshot {
	snap := Snapshot{
		Year:  year,
		Rows:  isl.rows,
		Cols:  isl.cols,
		Cells: make([]CellSnapshot, len(isl.cells)),
	}
	for i, cell := range isl.cells {
		cs := CellSnapshot{
			Loc:        cell.loc,
			Terrain:    cell.terrain,
			Food:       cell.food,
			Herbivores: cell.Count(Herbivore),
			Carnivores: cell.Count(Carnivore),
		}
		snap.Herbivores += cs.Herbivores
		snap.Carnivores += cs.Carnivores
		snap.Cells[i] = cs
	}
	var weight [numSpecies]float64
	for _, cell := range isl.land {
		for _, s := range AllSpecies {
			for _, a := range cell.Residents(s) {
				weight[s] += a.weight
			}
		}
	}
	if snap.Herbivores > 0 {
		snap.HerbivoreWeightMean = weight[Herbivore] / float64(snap.Herbivores)
	}
	if snap.Carnivores > 0 {
		snap.CarnivoreWeightMean = weight[Carnivore] / float64(snap.Carnivores)
	}
	if withAnimals {
		snap.Animals = make([]AnimalSample, 0, isl.arena.Len())
		for _, cell := range isl.land {
			for _, s := range AllSpecies {
				for _, a := range cell.Residents(s) {
					snap.Animals = append(snap.Animals, AnimalSample{
						Species: s,
						Age:     a.age,
						Weight:  a.weight,
						Fitness: a.Fitness(),
					})
				}
			}
		}
	}
	return snap
}

// MeanWeight returns the island-wide mean weight of a species.
func (s Snapshot) MeanWeight(sp Species) float64 {
	if sp == Carnivore {
		return s.CarnivoreWeightMean
	}
	return s.HerbivoreWeightMean
}

// Count returns the island-wide population of a species.
func (s Snapshot) Count(sp Species) int {
	if sp == Carnivore {
		return s.Carnivores
	}
	return s.Herbivores
}

// Cell returns the snapshot of the cell at loc.
func (s Snapshot) Cell(loc Loc) (CellSnapshot, bool) {
	if loc.Row < 1 || loc.Row > s.Rows || loc.Col < 1 || loc.Col > s.Cols {
		return CellSnapshot{}, false
	}
	return s.Cells[(loc.Row-1)*s.Cols+loc.Col-1], true
}

// Density returns the per-cell population of a species as a rows x cols
// matrix for heatmaps.
func (s Snapshot) Density(sp Species) [][]int {
	out := make([][]int, s.Rows)
	for r := range out {
		out[r] = make([]int, s.Cols)
	}
	for _, c := range s.Cells {
		n := c.Herbivores
		if sp == Carnivore {
			n = c.Carnivores
		}
		out[c.Loc.Row-1][c.Loc.Col-1] = n
	}
	return out
}

// Values extracts one attribute ("weight", "age" or "fitness") of the
// sampled animals of a species.
func (s Snapshot) Values(sp Species, attr string) []float64 {
	var out []float64
	for _, a := range s.Animals {
		if a.Species != sp {
			continue
		}
		switch attr {
		case "weight":
			out = append(out, a.Weight)
		case "age":
			out = append(out, float64(a.Age))
		case "fitness":
			out = append(out, a.Fitness)
		}
	}
	return out
}
