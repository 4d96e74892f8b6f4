// Package alias maps free-text actor names onto a fixed, ordered table of
// geographic entries. Matching is substring containment after normalisation;
// the first entry with any matching key wins.
package alias

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/paulmach/orb"
)

var ErrInvalidEntry = errors.New("invalid alias entry")

//go:embed data/aliases.yaml
var defaultAliasesYAML []byte

// Entry is one row of the alias table.
type Entry struct {
	Keys    []string  // normalised
	Point   orb.Point // lon, lat
	Place   string
	Country string
	Region  string
}

// Table is ordered; order decides which entry claims a name that matches
// several.
type Table []Entry

type aliasFile struct {
	Aliases []struct {
		Keys    []string `yaml:"keys"`
		Lon     float64  `yaml:"lon"`
		Lat     float64  `yaml:"lat"`
		Place   string   `yaml:"place"`
		Country string   `yaml:"country"`
		Region  string   `yaml:"region"`
	} `yaml:"aliases"`
}

// Match returns the first entry whose normalised keys occur inside the
// normalised name.
func (t Table) Match(name string) (Entry, bool) {
	n := Normalize(name)
	if n == "" {
		return Entry{}, false
	}
	for _, e := range t {
		for _, k := range e.Keys {
			if strings.Contains(n, k) {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// Regions lists the distinct regions in table order.
func (t Table) Regions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range t {
		if !seen[e.Region] {
			seen[e.Region] = true
			out = append(out, e.Region)
		}
	}
	return out
}

// ParseTable decodes a YAML alias table. Keys are normalised on load; a key
// that normalises to nothing is rejected since it would match every name.
func ParseTable(data []byte) (Table, error) {
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding alias table: %w", err)
	}

	table := make(Table, 0, len(f.Aliases))
	for i, raw := range f.Aliases {
		if len(raw.Keys) == 0 {
			return nil, fmt.Errorf("%w: entry %d has no keys", ErrInvalidEntry, i)
		}
		keys := make([]string, 0, len(raw.Keys))
		for _, k := range raw.Keys {
			nk := Normalize(k)
			if nk == "" {
				return nil, fmt.Errorf("%w: entry %d key %q normalises to empty", ErrInvalidEntry, i, k)
			}
			keys = append(keys, nk)
		}
		if strings.TrimSpace(raw.Region) == "" {
			return nil, fmt.Errorf("%w: entry %d has no region", ErrInvalidEntry, i)
		}
		if raw.Lon < -180 || raw.Lon > 180 || raw.Lat < -90 || raw.Lat > 90 {
			return nil, fmt.Errorf("%w: entry %d coordinate out of range", ErrInvalidEntry, i)
		}

		table = append(table, Entry{
			Keys:    keys,
			Point:   orb.Point{raw.Lon, raw.Lat},
			Place:   strings.TrimSpace(raw.Place),
			Country: strings.TrimSpace(raw.Country),
			Region:  strings.TrimSpace(raw.Region),
		})
	}
	return table, nil
}

// Load reads the table at path, or the embedded table when path is empty.
func Load(path string) (Table, error) {
	if path == "" {
		return ParseTable(defaultAliasesYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias table: %w", err)
	}
	return ParseTable(data)
}

// Default returns the embedded table.
func Default() Table {
	t, err := ParseTable(defaultAliasesYAML)
	if err != nil {
		panic(fmt.Sprintf("alias: embedded table: %v", err))
	}
	return t
}
