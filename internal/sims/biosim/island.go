package biosim

import (
	"fmt"
	"math"
	"strings"

	"biosim/pkg/core"
)

// ParseMap reads a geography text of W, D, L and H codes. Rows must all have
// the same length; surrounding whitespace on each line is ignored.
func ParseMap(geography string) ([][]Terrain, error) {
	lines := strings.Split(strings.TrimSpace(geography), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("%w: empty geography", ErrConfig)
	}
	grid := make([][]Terrain, len(lines))
	width := -1
	for r, line := range lines {
		line = strings.TrimSpace(line)
		runes := []rune(line)
		if width < 0 {
			width = len(runes)
		} else if len(runes) != width {
			return nil, fmt.Errorf("%w: geography row %d has length %d, want %d", ErrConfig, r+1, len(runes), width)
		}
		row := make([]Terrain, width)
		for col, code := range runes {
			t, err := ParseTerrain(code)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", r+1, col+1, err)
			}
			row[col] = t
		}
		grid[r] = row
	}
	return grid, nil
}

func checkBorder(grid [][]Terrain) error {
	rows, cols := len(grid), len(grid[0])
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			border := r == 0 || c == 0 || r == rows-1 || c == cols-1
			if border && grid[r][c] != Water {
				return fmt.Errorf("%w: border cell %s is %s, want Water", ErrConfig, Loc{Row: r + 1, Col: c + 1}, grid[r][c])
			}
		}
	}
	return nil
}

// Island is the fixed grid of cells plus the arena of every living animal.
type Island struct {
	rows, cols int
	cells      []*Cell
	land       []*Cell
	neighbors  [][]*Cell
	arena      *Arena
	params     *Params

	lastYear YearStats
}

// YearStats counts the events of the most recent year.
type YearStats struct {
	Eaten      float64
	Kills      int
	Births     int
	Migrations int
	Deaths     int
}

// NewIsland builds the island described by geography. Every cell on the outer
// ring must be Water.
func NewIsland(geography string, params *Params) (*Island, error) {
	grid, err := ParseMap(geography)
	if err != nil {
		return nil, err
	}
	if err := checkBorder(grid); err != nil {
		return nil, err
	}
	rows, cols := len(grid), len(grid[0])

	isl := &Island{rows: rows, cols: cols, arena: newArena(), params: params}
	isl.cells = make([]*Cell, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := newCell(Loc{Row: r + 1, Col: c + 1}, grid[r][c], isl.arena, params)
			isl.cells = append(isl.cells, cell)
			if cell.terrain.Habitable() {
				isl.land = append(isl.land, cell)
			}
		}
	}
	isl.neighbors = make([][]*Cell, len(isl.cells))
	offsets := [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}
	for i, cell := range isl.cells {
		if !cell.terrain.Habitable() {
			continue
		}
		for _, off := range offsets {
			n := isl.Cell(Loc{Row: cell.loc.Row + off[0], Col: cell.loc.Col + off[1]})
			if n != nil && n.terrain.Habitable() {
				isl.neighbors[i] = append(isl.neighbors[i], n)
			}
		}
	}
	for _, cell := range isl.land {
		cell.RegrowFood()
	}
	return isl, nil
}

// Size returns the grid dimensions in rows and columns.
func (isl *Island) Size() (rows, cols int) { return isl.rows, isl.cols }

// Cell returns the cell at loc, or nil when loc is out of bounds.
func (isl *Island) Cell(loc Loc) *Cell {
	if loc.Row < 1 || loc.Row > isl.rows || loc.Col < 1 || loc.Col > isl.cols {
		return nil
	}
	return isl.cells[(loc.Row-1)*isl.cols+loc.Col-1]
}

// Cells returns every cell in row-major order.
func (isl *Island) Cells() []*Cell { return isl.cells }

// Neighbors returns the habitable orthogonal neighbours of cell.
func (isl *Island) Neighbors(cell *Cell) []*Cell {
	return isl.neighbors[(cell.loc.Row-1)*isl.cols+cell.loc.Col-1]
}

// Arena exposes the animals living on the island.
func (isl *Island) Arena() *Arena { return isl.arena }

// Count returns the island-wide number of animals of a species.
func (isl *Island) Count(s Species) int {
	n := 0
	for _, cell := range isl.land {
		n += cell.Count(s)
	}
	return n
}

// LastYear returns the event counts of the most recent RunYear.
func (isl *Island) LastYear() YearStats { return isl.lastYear }

// Place puts a new animal on the island. A nil weight draws one from the
// species' birth-weight distribution.
func (isl *Island) Place(rng *core.RNG, p Placement) (AnimalID, error) {
	cell, err := isl.placementCell(p)
	if err != nil {
		return 0, err
	}
	sp := isl.params.Species(p.Species)
	weight := 0.0
	if p.Weight != nil {
		weight = *p.Weight
	} else {
		weight = sampleBirthWeight(rng, sp)
	}
	id := isl.arena.adopt(newAnimal(p.Species, sp, p.Age, weight))
	cell.admit(p.Species, id)
	return id, nil
}

func (isl *Island) placementCell(p Placement) (*Cell, error) {
	cell := isl.Cell(p.Loc)
	if cell == nil {
		return nil, fmt.Errorf("%w: %s is outside the %dx%d island", ErrConfig, p.Loc, isl.rows, isl.cols)
	}
	if !cell.terrain.Habitable() {
		return nil, fmt.Errorf("%w: cannot place %s on Water at %s", ErrConfig, p.Species, p.Loc)
	}
	if p.Species != Herbivore && p.Species != Carnivore {
		return nil, fmt.Errorf("%w: unknown species %s", ErrConfig, p.Species)
	}
	if p.Age < 0 {
		return nil, fmt.Errorf("%w: negative age %d at %s", ErrConfig, p.Age, p.Loc)
	}
	if p.Weight != nil && !(*p.Weight > 0) {
		return nil, fmt.Errorf("%w: non-positive weight %g at %s", ErrConfig, *p.Weight, p.Loc)
	}
	return cell, nil
}

// RunYear runs one annual cycle. Each phase completes on every cell before
// the next phase starts. An ErrInvariant error means the island is corrupt.
func (isl *Island) RunYear(rng *core.RNG) error {
	var stats YearStats

	for _, cell := range isl.land {
		cell.RegrowFood()
	}
	for _, cell := range isl.land {
		stats.Eaten += cell.FeedHerbivores()
		stats.Kills += cell.FeedCarnivores(rng)
	}
	if err := isl.checkFood(); err != nil {
		return err
	}
	for _, cell := range isl.land {
		stats.Births += cell.ProcreateAll(rng)
	}
	if isl.params.Migration.Enabled {
		before := isl.arena.Len()
		stats.Migrations = isl.migrate(rng)
		if after := isl.residentTotal(); after != before {
			return fmt.Errorf("%w: migration changed the population from %d to %d", ErrInvariant, before, after)
		}
	}
	for _, cell := range isl.land {
		stats.Deaths += cell.AgeAndStarve(rng)
	}

	isl.lastYear = stats
	return isl.CheckInvariants()
}

// migrate collects every move before applying any, so an animal moves at
// most once per year.
func (isl *Island) migrate(rng *core.RNG) int {
	var moves []Move
	for i, cell := range isl.cells {
		if !cell.terrain.Habitable() {
			continue
		}
		moves = append(moves, cell.MigrationCandidates(rng, isl.neighbors[i], isl.params.Migration.Weighting)...)
	}
	if len(moves) == 0 {
		return 0
	}

	leaving := make(map[Loc][numSpecies]map[AnimalID]struct{})
	for _, m := range moves {
		sets := leaving[m.From]
		if sets[m.Species] == nil {
			sets[m.Species] = make(map[AnimalID]struct{})
		}
		sets[m.Species][m.ID] = struct{}{}
		leaving[m.From] = sets
	}
	for _, cell := range isl.land {
		sets, ok := leaving[cell.loc]
		if !ok {
			continue
		}
		for _, s := range AllSpecies {
			if sets[s] != nil {
				cell.evict(s, sets[s])
			}
		}
	}
	for _, m := range moves {
		isl.Cell(m.To).admit(m.Species, m.ID)
	}
	return len(moves)
}

func (isl *Island) residentTotal() int {
	n := 0
	for _, cell := range isl.land {
		n += cell.Total()
	}
	return n
}

func (isl *Island) checkFood() error {
	for _, cell := range isl.land {
		if cell.food < 0 || cell.food > cell.FoodMax() || math.IsNaN(cell.food) {
			return fmt.Errorf("%w: food %g outside [0, %g] at %s", ErrInvariant, cell.food, cell.FoodMax(), cell.loc)
		}
	}
	return nil
}

// CheckInvariants verifies that Water is empty, food is within bounds and
// every living animal is resident in exactly one cell.
func (isl *Island) CheckInvariants() error {
	seen := make(map[AnimalID]Loc, isl.arena.Len())
	for _, cell := range isl.cells {
		if !cell.terrain.Habitable() {
			if cell.Total() != 0 {
				return fmt.Errorf("%w: Water cell %s holds %d animals", ErrInvariant, cell.loc, cell.Total())
			}
			continue
		}
		for _, s := range AllSpecies {
			for _, id := range cell.residents[s] {
				a := isl.arena.Get(id)
				if a == nil {
					return fmt.Errorf("%w: cell %s lists dead animal %d", ErrInvariant, cell.loc, id)
				}
				if a.species != s {
					return fmt.Errorf("%w: %s listed as %s at %s", ErrInvariant, a, s, cell.loc)
				}
				if a.weight <= 0 {
					return fmt.Errorf("%w: %s survived with weight %g", ErrInvariant, a, a.weight)
				}
				if prev, dup := seen[id]; dup {
					return fmt.Errorf("%w: animal %d resident at both %s and %s", ErrInvariant, id, prev, cell.loc)
				}
				seen[id] = cell.loc
			}
		}
	}
	if len(seen) != isl.arena.Len() {
		return fmt.Errorf("%w: %d living animals but %d residents", ErrInvariant, isl.arena.Len(), len(seen))
	}
	return isl.checkFood()
}
