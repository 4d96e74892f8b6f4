package geography

import (
	"github.com/ThreatAtlas/atlas-backend/internal/alias"
	"github.com/ThreatAtlas/atlas-backend/internal/geo"
)

// LoadTables reads the alias and continent tables from the given paths. An
// empty path selects the embedded table.
func LoadTables(aliasPath, continentPath string) (alias.Table, geo.ContinentTable, error) {
	aliases, err := alias.Load(aliasPath)
	if err != nil {
		return nil, nil, err
	}
	continents, err := geo.LoadContinents(continentPath)
	if err != nil {
		return nil, nil, err
	}

	for _, region := range UncoveredRegions(aliases, continents) {
		logUncoveredRegion(region)
	}
	return aliases, continents, nil
}

// UncoveredRegions lists alias regions with no continent outline of the same
// name. Actors in those regions never appear in a continent selection.
func UncoveredRegions(aliases alias.Table, continents geo.ContinentTable) []string {
	known := make(map[string]bool)
	for _, name := range continents.Names() {
		known[name] = true
	}
	var out []string
	for _, region := range aliases.Regions() {
		if !known[region] {
			out = append(out, region)
		}
	}
	return out
}
