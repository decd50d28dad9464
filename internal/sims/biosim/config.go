package biosim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"biosim/pkg/logger"
)

// Weighting selects how a migrating animal picks its destination.
type Weighting string

const (
	// WeightingUniform picks any habitable neighbour with equal probability.
	WeightingUniform Weighting = "uniform"
	// WeightingFood favours neighbours with more food left after feeding.
	WeightingFood Weighting = "food"
)

// MigrationParams controls the migration phase.
type MigrationParams struct {
	Enabled   bool      `yaml:"enabled"`
	Weighting Weighting `yaml:"weighting"`
}

// Params holds every tunable coefficient of the simulation.
type Params struct {
	Herbivore SpeciesParams   `yaml:"herbivore"`
	Carnivore SpeciesParams   `yaml:"carnivore"`
	Lowland   TerrainParams   `yaml:"lowland"`
	Highland  TerrainParams   `yaml:"highland"`
	Migration MigrationParams `yaml:"migration"`
}

// Species returns the coefficient table of s.
func (p *Params) Species(s Species) *SpeciesParams {
	if s == Carnivore {
		return &p.Carnivore
	}
	return &p.Herbivore
}

// FoodMax returns the yearly regrowth ceiling of a terrain type.
func (p *Params) FoodMax(t Terrain) float64 {
	switch t {
	case Lowland:
		return p.Lowland.FMax
	case Highland:
		return p.Highland.FMax
	default:
		return 0
	}
}

// Validate checks every coefficient.
func (p *Params) Validate() error {
	for _, s := range AllSpecies {
		if err := p.Species(s).Validate(s); err != nil {
			return err
		}
	}
	if p.Lowland.FMax <= 0 {
		return fmt.Errorf("%w: lowland.f_max must be positive", ErrConfig)
	}
	if p.Highland.FMax <= 0 {
		return fmt.Errorf("%w: highland.f_max must be positive", ErrConfig)
	}
	switch p.Migration.Weighting {
	case WeightingUniform, WeightingFood:
	default:
		return fmt.Errorf("%w: unknown migration weighting %q", ErrConfig, p.Migration.Weighting)
	}
	return nil
}

func (p *Params) fields() []floatField {
	var out []floatField
	for _, s := range AllSpecies {
		prefix := strings.ToLower(s.String()) + "."
		for _, f := range p.Species(s).fields() {
			out = append(out, floatField{key: prefix + f.key, ptr: f.ptr})
		}
	}
	out = append(out,
		floatField{key: "lowland.f_max", ptr: &p.Lowland.FMax},
		floatField{key: "highland.f_max", ptr: &p.Highland.FMax},
	)
	return out
}

// Keys lists every numeric parameter key accepted by Set.
func (p *Params) Keys() []string {
	fields := p.fields()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.key
	}
	return keys
}

// Get returns the value of a numeric parameter.
func (p *Params) Get(key string) (float64, bool) {
	for _, f := range p.fields() {
		if f.key == key {
			return *f.ptr, true
		}
	}
	return 0, false
}

// Set overrides one numeric parameter such as "herbivore.f" or "lowland.f_max".
// The result is validated; on error p is left unchanged.
func (p *Params) Set(key string, value float64) error {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, f := range p.fields() {
		if f.key != key {
			continue
		}
		old := *f.ptr
		*f.ptr = value
		if err := p.Validate(); err != nil {
			*f.ptr = old
			return err
		}
		return nil
	}
	if guess := closestKey(key, p.Keys()); guess != "" {
		return fmt.Errorf("%w: unknown parameter %q (did you mean %q?)", ErrConfig, key, guess)
	}
	return fmt.Errorf("%w: unknown parameter %q", ErrConfig, key)
}

func closestKey(key string, candidates []string) string {
	best := ""
	bestDist := 0
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(key, cand)
		if dist > suggestionLimit(len(cand)) {
			continue
		}
		if best == "" || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best
}

func suggestionLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 10:
		return 2
	default:
		return 3
	}
}

// AnimalSpec describes Count identical animals in a population group. A nil
// Weight samples each animal's weight from the birth-weight distribution.
// In YAML an omitted count means one animal; an explicit 0 places none.
type AnimalSpec struct {
	Species Species  `yaml:"species"`
	Age     int      `yaml:"age"`
	Weight  *float64 `yaml:"weight"`
	Count   int      `yaml:"count"`
}

var animalSpecKeys = map[string]bool{"species": true, "age": true, "weight": true, "count": true}

// UnmarshalYAML defaults Count to 1 and rejects unknown keys.
func (a *AnimalSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		for i := 0; i < len(node.Content); i += 2 {
			if key := node.Content[i].Value; !animalSpecKeys[key] {
				return fmt.Errorf("%w: unknown animal field %q (line %d)", ErrConfig, key, node.Content[i].Line)
			}
		}
	}
	type plain AnimalSpec
	p := plain{Count: 1}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*a = AnimalSpec(p)
	return nil
}

// PopulationGroup places animals into one cell.
type PopulationGroup struct {
	Loc Loc          `yaml:"loc"`
	Pop []AnimalSpec `yaml:"pop"`
}

// Placement is a single animal to put on the island.
type Placement struct {
	Species Species
	Loc     Loc
	Age     int
	Weight  *float64
}

// Weight returns a pointer to w for use in placements.
func Weight(w float64) *float64 { return &w }

// Placements expands population groups into individual placements.
func Placements(groups []PopulationGroup) []Placement {
	var out []Placement
	for _, g := range groups {
		for _, spec := range g.Pop {
			for i := 0; i < spec.Count; i++ {
				out = append(out, Placement{Species: spec.Species, Loc: g.Loc, Age: spec.Age, Weight: spec.Weight})
			}
		}
	}
	return out
}

// HistogramSpec bounds one histogram axis.
type HistogramSpec struct {
	Max   float64 `yaml:"max"`
	Delta float64 `yaml:"delta"`
}

// DisplayParams configures heatmap and histogram presentation.
type DisplayParams struct {
	CMaxHerbivore int                      `yaml:"cmax_herbivore"`
	CMaxCarnivore int                      `yaml:"cmax_carnivore"`
	Histograms    map[string]HistogramSpec `yaml:"hist_specs"`
}

// SnapshotOptions controls what each yearly snapshot carries.
type SnapshotOptions struct {
	Animals bool `yaml:"animals"`
}

// Config describes a complete simulation.
type Config struct {
	Seed       int64             `yaml:"seed"`
	Geography  string            `yaml:"geography"`
	Population []PopulationGroup `yaml:"population"`
	Params     Params            `yaml:"params"`
	Snapshot   SnapshotOptions   `yaml:"snapshot"`
	Display    DisplayParams     `yaml:"display"`
}

const defaultGeography = `WWWWWWWWWWWWW
WWWWWLLLWWWWW
WWWLLLLLLLWWW
WWLLLLHHLLLWW
WWLLHHHHDDLWW
WLLLHHHHDDLLW
WLLLLHHDDDLLW
WWLLLLLLDDLWW
WWWLLLLLLLWWW
WWWWWLLLWWWWW
WWWWWWWWWWWWW`

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Seed:      1337,
		Geography: defaultGeography,
		Population: []PopulationGroup{
			{
				Loc: Loc{Row: 6, Col: 6},
				Pop: []AnimalSpec{
					{Species: Herbivore, Age: 5, Weight: Weight(20), Count: 150},
					{Species: Carnivore, Age: 5, Weight: Weight(20), Count: 20},
				},
			},
		},
		Params: Params{
			Herbivore: DefaultHerbivoreParams(),
			Carnivore: DefaultCarnivoreParams(),
			Lowland:   TerrainParams{FMax: 800},
			Highland:  TerrainParams{FMax: 300},
			Migration: MigrationParams{Enabled: true, Weighting: WeightingUniform},
		},
		Display: DisplayParams{
			CMaxHerbivore: 200,
			CMaxCarnivore: 50,
			Histograms: map[string]HistogramSpec{
				"weight":  {Max: 80, Delta: 2},
				"fitness": {Max: 1.0, Delta: 0.05},
				"age":     {Max: 80, Delta: 2},
			},
		},
	}
}

// Validate reports configuration errors before any simulation is built.
func (c Config) Validate() error {
	grid, err := ParseMap(c.Geography)
	if err != nil {
		return err
	}
	if err := checkBorder(grid); err != nil {
		return err
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	for _, g := range c.Population {
		for _, spec := range g.Pop {
			if spec.Age < 0 {
				return fmt.Errorf("%w: negative age %d at %s", ErrConfig, spec.Age, g.Loc)
			}
			if spec.Weight != nil && *spec.Weight <= 0 {
				return fmt.Errorf("%w: non-positive weight %g at %s", ErrConfig, *spec.Weight, g.Loc)
			}
			if spec.Count < 0 {
				return fmt.Errorf("%w: negative count %d at %s", ErrConfig, spec.Count, g.Loc)
			}
		}
	}
	if c.Display.CMaxHerbivore < 0 || c.Display.CMaxCarnivore < 0 {
		return fmt.Errorf("%w: cmax must not be negative", ErrConfig)
	}
	for name, spec := range c.Display.Histograms {
		switch name {
		case "weight", "age", "fitness":
		default:
			return fmt.Errorf("%w: unknown histogram %q", ErrConfig, name)
		}
		if spec.Max <= 0 || spec.Delta <= 0 {
			return fmt.Errorf("%w: histogram %q needs positive max and delta", ErrConfig, name)
		}
	}
	return nil
}

// LoadConfig reads a YAML file layered over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes YAML over DefaultConfig and validates the result.
// Unknown keys are rejected.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromMap builds a config from string overrides, as used by the simulation
// registry. A "config" entry names a YAML file that replaces the defaults as
// the base. Invalid entries are logged and skipped.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if path := cfg[ConfigKey]; path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			logger.Log.WithError(err).WithField("path", path).Warn("ignoring config file")
		} else {
			c = loaded
		}
	}
	for _, k := range sortedKeys(cfg) {
		if k == ConfigKey {
			continue
		}
		if err := c.Override(k, cfg[k]); err != nil {
			logger.Log.WithError(err).WithField("key", k).Warn("ignoring override")
		}
	}
	return c
}

// ConfigKey is the FromMap entry naming a YAML config file.
const ConfigKey = "config"

// Apply sets every override in key order and reports all rejected entries.
func (c *Config) Apply(overrides map[string]string) error {
	var errs []error
	for _, k := range sortedKeys(overrides) {
		if err := c.Override(k, overrides[k]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Override sets a single key from its text form. Besides the coefficient keys
// accepted by Params.Set it understands seed, geography (rows separated by
// '|'), migration, weighting and animals.
func (c *Config) Override(key, value string) error {
	switch key {
	case "seed":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: seed %q is not an integer", ErrConfig, value)
		}
		c.Seed = parsed
	case "geography":
		geo := strings.ReplaceAll(value, "|", "\n")
		grid, err := ParseMap(geo)
		if err != nil {
			return err
		}
		if err := checkBorder(grid); err != nil {
			return err
		}
		c.Geography = geo
	case "migration":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: migration %q is not a boolean", ErrConfig, value)
		}
		c.Params.Migration.Enabled = parsed
	case "weighting":
		w := Weighting(value)
		if w != WeightingUniform && w != WeightingFood {
			return fmt.Errorf("%w: unknown weighting %q", ErrConfig, value)
		}
		c.Params.Migration.Weighting = w
	case "animals":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: animals %q is not a boolean", ErrConfig, value)
		}
		c.Snapshot.Animals = parsed
	default:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s value %q is not a number", ErrConfig, key, value)
		}
		return c.Params.Set(key, parsed)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
