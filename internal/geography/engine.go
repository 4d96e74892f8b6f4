// Package geography places actors on the map and drives the drill-down panel:
// continent and country selection from map clicks, marker clusters, and the
// actor detail overlay. Each open map view is a View owned by a Registry.
package geography

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreatAtlas/atlas-backend/internal/actors"
	"github.com/ThreatAtlas/atlas-backend/internal/alias"
	"github.com/ThreatAtlas/atlas-backend/internal/geo"
)

var (
	ErrUnknownSession   = errors.New("unknown map session")
	ErrUnknownActor     = errors.New("actor is not on the map")
	ErrNoMarker         = errors.New("no marker at that coordinate")
	ErrBadCoordinate    = errors.New("coordinate outside lat/lng range")
	ErrMutationFailed   = errors.New("track action failed")
	ErrGeocoderDisabled = errors.New("country lookup disabled")
)

// ActorSource supplies the actor list.
type ActorSource interface {
	ListActors(ctx context.Context) ([]actors.Actor, error)
}

// Tracker marks an actor as tracked on the backend.
type Tracker interface {
	MarkTracked(ctx context.Context, id string) error
}

// Geocoder resolves a coordinate to an English country name.
type Geocoder interface {
	ReverseCountry(ctx context.Context, lat, lng float64) (string, error)
}

// Engine bundles the collaborators and static tables shared by every view.
type Engine struct {
	Source     ActorSource
	Tracker    Tracker
	Geocoder   Geocoder // nil disables country lookups
	Aliases    alias.Table
	Continents geo.ContinentTable
	Metrics    *Metrics
}

// LoadPoints fetches actors and resolves them without any view state.
func (e *Engine) LoadPoints(ctx context.Context) ([]GeoPoint, error) {
	list, err := e.Source.ListActors(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading actors: %w", err)
	}
	return BuildPoints(list, e.Aliases), nil
}

func (e *Engine) reverseCountry(ctx context.Context, lat, lng float64) (string, error) {
	if e.Geocoder == nil {
		return "", ErrGeocoderDisabled
	}
	return e.Geocoder.ReverseCountry(ctx, lat, lng)
}

func validCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
