package geography

import (
	"strings"

	"github.com/ThreatAtlas/atlas-backend/internal/actors"
	"github.com/ThreatAtlas/atlas-backend/internal/alias"
	"github.com/paulmach/orb"
)

// GeoPoint is the map representation of one actor.
type GeoPoint struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	IsTracked bool    `json:"is_tracked"`
	Status    Status  `json:"status"`
	Summary   string  `json:"summary"`
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
	Place     string  `json:"place"`
	Country   string  `json:"country"`
	Region    string  `json:"region"`
}

// Key is the exact coordinate used for clustering.
func (p GeoPoint) Key() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// ResolveGeo places an actor using the alias table. Actors whose name matches
// no entry are left off the map.
func ResolveGeo(a actors.Actor, table alias.Table) (GeoPoint, bool) {
	name := strings.TrimSpace(a.DisplayName)
	e, ok := table.Match(name)
	if !ok {
		return GeoPoint{}, false
	}
	return GeoPoint{
		ID:        a.ID.String(),
		Name:      name,
		IsTracked: a.IsTracked,
		Status:    ActorStatus(a.NotebookStatus),
		Summary:   strings.TrimSpace(a.ScopeStatement),
		Longitude: e.Point.Lon(),
		Latitude:  e.Point.Lat(),
		Place:     e.Place,
		Country:   e.Country,
		Region:    e.Region,
	}, true
}

// BuildPoints resolves every actor, keeping input order.
func BuildPoints(list []actors.Actor, table alias.Table) []GeoPoint {
	out := make([]GeoPoint, 0, len(list))
	for _, a := range list {
		if p, ok := ResolveGeo(a, table); ok {
			out = append(out, p)
		}
	}
	return out
}
