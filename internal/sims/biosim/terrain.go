package biosim

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Terrain enumerates the landscape types of a cell.
type Terrain uint8

const (
	Water Terrain = iota
	Desert
	Lowland
	Highland
)

var terrainNames = [...]string{"Water", "Desert", "Lowland", "Highland"}

var terrainCodes = map[rune]Terrain{
	'W': Water,
	'D': Desert,
	'L': Lowland,
	'H': Highland,
}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("Terrain(%d)", uint8(t))
}

// Code returns the single-letter geography code.
func (t Terrain) Code() rune {
	for code, terrain := range terrainCodes {
		if terrain == t {
			return code
		}
	}
	return '?'
}

// Habitable reports whether animals may live on the terrain.
func (t Terrain) Habitable() bool { return t != Water }

// MarshalText encodes the terrain by name.
func (t Terrain) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText decodes a terrain name.
func (t *Terrain) UnmarshalText(text []byte) error {
	for i, name := range terrainNames {
		if name == string(text) {
			*t = Terrain(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown terrain %q", ErrConfig, text)
}

// ParseTerrain resolves a geography code.
func ParseTerrain(code rune) (Terrain, error) {
	t, ok := terrainCodes[code]
	if !ok {
		return 0, fmt.Errorf("%w: unknown terrain code %q", ErrConfig, code)
	}
	return t, nil
}

// Loc is a 1-based (row, column) position matching the geography text.
type Loc struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (l Loc) String() string { return fmt.Sprintf("(%d, %d)", l.Row, l.Col) }

// UnmarshalYAML accepts a two-element sequence such as [3, 4].
func (l *Loc) UnmarshalYAML(node *yaml.Node) error {
	var pair []int
	if err := node.Decode(&pair); err != nil || len(pair) != 2 {
		return fmt.Errorf("%w: loc must be [row, col] (line %d)", ErrConfig, node.Line)
	}
	l.Row, l.Col = pair[0], pair[1]
	return nil
}

// TerrainParams holds the tunables of a vegetated terrain type.
type TerrainParams struct {
	FMax float64 `yaml:"f_max"`
}
