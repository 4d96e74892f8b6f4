package geo

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/paulmach/orb"
)

// Unknown is returned by FromCoordinates when no outline contains the point.
const Unknown = ""

var ErrInvalidContinent = errors.New("invalid continent outline")

//go:embed data/continents.yaml
var defaultContinentsYAML []byte

// Continent is a named outline used only for click classification.
type Continent struct {
	Name string
	Ring orb.Ring
}

// ContinentTable is an ordered list of outlines. Outlines may overlap; the
// first registered outline containing a point wins.
type ContinentTable []Continent

type continentFile struct {
	Continents []struct {
		Name string      `yaml:"name"`
		Ring [][]float64 `yaml:"ring"`
	} `yaml:"continents"`
}

// FromCoordinates returns the name of the first outline containing the point,
// or Unknown.
func (t ContinentTable) FromCoordinates(lng, lat float64) string {
	for _, c := range t {
		if PointInPolygon(lng, lat, c.Ring) {
			return c.Name
		}
	}
	return Unknown
}

// Names lists the outline names in table order.
func (t ContinentTable) Names() []string {
	out := make([]string, 0, len(t))
	for _, c := range t {
		out = append(out, c.Name)
	}
	return out
}

// ParseContinents decodes a YAML continent table and validates every outline.
func ParseContinents(data []byte) (ContinentTable, error) {
	var f continentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding continent table: %w", err)
	}

	table := make(ContinentTable, 0, len(f.Continents))
	for i, raw := range f.Continents {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidContinent, i)
		}
		if len(raw.Ring) < 3 {
			return nil, fmt.Errorf("%w: %s needs at least 3 vertices", ErrInvalidContinent, name)
		}

		ring := make(orb.Ring, 0, len(raw.Ring))
		for _, v := range raw.Ring {
			if len(v) != 2 {
				return nil, fmt.Errorf("%w: %s has a vertex with %d values", ErrInvalidContinent, name, len(v))
			}
			ring = append(ring, orb.Point{v[0], v[1]})
		}

		b := ring.Bound()
		if b.Min.X() < -180 || b.Max.X() > 180 || b.Min.Y() < -90 || b.Max.Y() > 90 {
			return nil, fmt.Errorf("%w: %s leaves the lon/lat range", ErrInvalidContinent, name)
		}

		table = append(table, Continent{Name: name, Ring: ring})
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("%w: table is empty", ErrInvalidContinent)
	}
	return table, nil
}

// LoadContinents reads the table at path, or the embedded table when path is
// empty.
func LoadContinents(path string) (ContinentTable, error) {
	if path == "" {
		return ParseContinents(defaultContinentsYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading continent table: %w", err)
	}
	return ParseContinents(data)
}

// DefaultContinents returns the embedded table.
func DefaultContinents() ContinentTable {
	t, err := ParseContinents(defaultContinentsYAML)
	if err != nil {
		panic(fmt.Sprintf("geo: embedded continent table: %v", err))
	}
	return t
}
