package biosim

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Species enumerates the animal variants living on the island.
type Species uint8

const (
	Herbivore Species = iota
	Carnivore
)

const numSpecies = 2

var speciesNames = [numSpecies]string{"Herbivore", "Carnivore"}

// AllSpecies lists every species in processing order.
var AllSpecies = [numSpecies]Species{Herbivore, Carnivore}

func (s Species) String() string {
	if int(s) < len(speciesNames) {
		return speciesNames[s]
	}
	return fmt.Sprintf("Species(%d)", uint8(s))
}

// ParseSpecies resolves a species name, ignoring case.
func ParseSpecies(name string) (Species, error) {
	for i, n := range speciesNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return Species(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown species %q", ErrConfig, name)
}

// MarshalText encodes the species by name.
func (s Species) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a species name.
func (s *Species) UnmarshalText(text []byte) error {
	parsed, err := ParseSpecies(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalYAML decodes a species name from a scalar node.
func (s *Species) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: species must be a name (line %d)", ErrConfig, node.Line)
	}
	return s.UnmarshalText([]byte(node.Value))
}

// SpeciesParams holds the behaviour coefficients of one species.
type SpeciesParams struct {
	WBirth      float64 `yaml:"w_birth"`
	SigmaBirth  float64 `yaml:"sigma_birth"`
	Beta        float64 `yaml:"beta"`
	Eta         float64 `yaml:"eta"`
	AHalf       float64 `yaml:"a_half"`
	PhiAge      float64 `yaml:"phi_age"`
	WHalf       float64 `yaml:"w_half"`
	PhiWeight   float64 `yaml:"phi_weight"`
	Mu          float64 `yaml:"mu"`
	Gamma       float64 `yaml:"gamma"`
	Zeta        float64 `yaml:"zeta"`
	Xi          float64 `yaml:"xi"`
	Omega       float64 `yaml:"omega"`
	F           float64 `yaml:"f"`
	DeltaPhiMax float64 `yaml:"delta_phi_max"`
}

// DefaultHerbivoreParams returns the standard herbivore coefficients.
func DefaultHerbivoreParams() SpeciesParams {
	return SpeciesParams{
		WBirth:     8.0,
		SigmaBirth: 1.5,
		Beta:       0.9,
		Eta:        0.05,
		AHalf:      40.0,
		PhiAge:     0.6,
		WHalf:      10.0,
		PhiWeight:  0.1,
		Mu:         0.25,
		Gamma:      0.2,
		Zeta:       3.5,
		Xi:         1.2,
		Omega:      0.4,
		F:          10.0,
	}
}

// DefaultCarnivoreParams returns the standard carnivore coefficients.
func DefaultCarnivoreParams() SpeciesParams {
	return SpeciesParams{
		WBirth:      6.0,
		SigmaBirth:  1.0,
		Beta:        0.75,
		Eta:         0.125,
		AHalf:       40.0,
		PhiAge:      0.3,
		WHalf:       4.0,
		PhiWeight:   0.4,
		Mu:          0.4,
		Gamma:       0.8,
		Zeta:        3.5,
		Xi:          1.1,
		Omega:       0.8,
		F:           50.0,
		DeltaPhiMax: 10.0,
	}
}

type floatField struct {
	key string
	ptr *float64
}

func (p *SpeciesParams) fields() []floatField {
	return []floatField{
		{"w_birth", &p.WBirth},
		{"sigma_birth", &p.SigmaBirth},
		{"beta", &p.Beta},
		{"eta", &p.Eta},
		{"a_half", &p.AHalf},
		{"phi_age", &p.PhiAge},
		{"w_half", &p.WHalf},
		{"phi_weight", &p.PhiWeight},
		{"mu", &p.Mu},
		{"gamma", &p.Gamma},
		{"zeta", &p.Zeta},
		{"xi", &p.Xi},
		{"omega", &p.Omega},
		{"f", &p.F},
		{"delta_phi_max", &p.DeltaPhiMax},
	}
}

// Validate reports coefficients that cannot drive a stable simulation.
func (p SpeciesParams) Validate(s Species) error {
	for _, f := range p.fields() {
		if *f.ptr < 0 {
			return fmt.Errorf("%w: %s.%s must not be negative, got %g", ErrConfig, strings.ToLower(s.String()), f.key, *f.ptr)
		}
	}
	if p.F <= 0 {
		return fmt.Errorf("%w: %s appetite f must be positive", ErrConfig, strings.ToLower(s.String()))
	}
	if p.WBirth <= 0 {
		return fmt.Errorf("%w: %s w_birth must be positive", ErrConfig, strings.ToLower(s.String()))
	}
	if p.Eta > 1 {
		return fmt.Errorf("%w: %s eta must be at most 1, got %g", ErrConfig, strings.ToLower(s.String()), p.Eta)
	}
	if s == Carnivore && p.DeltaPhiMax <= 0 {
		return fmt.Errorf("%w: carnivore delta_phi_max must be positive", ErrConfig)
	}
	return nil
}

// birthThreshold is the weight below which an animal never gives birth.
func (p *SpeciesParams) birthThreshold() float64 {
	return p.Zeta * (p.WBirth + p.SigmaBirth)
}
