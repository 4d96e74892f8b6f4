package geography

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreatAtlas/atlas-backend/internal/geocoding"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Outcome says what happened to a country lookup once it settled.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeDegraded Outcome = "degraded"
	OutcomeStale    Outcome = "stale"
)

// Pending is a map click whose country lookup has not settled yet.
type Pending struct {
	Generation uint64
	Lat, Lng   float64
	Continent  string
}

// View is one open map panel. All state sits behind mu; collaborator calls
// run without it so a slow lookup never blocks other interaction.
type View struct {
	ID     uuid.UUID
	engine *Engine

	mu         sync.Mutex
	points     []GeoPoint
	sel        Selection
	generation uint64
	loadSeq    uint64
	listFailed bool
	lastUsed   time.Time
}

func newView(e *Engine, now time.Time) *View {
	return &View{
		ID:       uuid.New(),
		engine:   e,
		sel:      NewSelection(),
		lastUsed: now,
	}
}

// Reload replaces the points with a fresh actor list. A failed fetch leaves
// the view empty with a notice; the error is returned for logging only.
func (v *View) Reload(ctx context.Context) error {
	v.mu.Lock()
	v.loadSeq++
	seq := v.loadSeq
	v.mu.Unlock()

	list, err := v.engine.Source.ListActors(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.loadSeq {
		return nil
	}
	if err != nil {
		v.points = nil
		v.listFailed = true
		logListUnavailable(v.ID, err)
		return fmt.Errorf("loading actors: %w", err)
	}
	v.points = BuildPoints(list, v.engine.Aliases)
	v.listFailed = false
	v.engine.Metrics.setMapped(len(v.points))
	return nil
}

// Click classifies the coordinate into a continent immediately and bumps the
// generation. The returned Pending must be passed to Resolve.
func (v *View) Click(lat, lng float64) (Pending, error) {
	if !validCoordinate(lat, lng) {
		return Pending{}, ErrBadCoordinate
	}
	continent := v.engine.Continents.FromCoordinates(lng, lat)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	v.sel = v.sel.MapClick(continent)
	return Pending{Generation: v.generation, Lat: lat, Lng: lng, Continent: continent}, nil
}

// Resolve runs the country lookup for p and applies it only if no newer
// click or marker pick happened in the meantime.
func (v *View) Resolve(ctx context.Context, p Pending) Outcome {
	country, err := v.engine.reverseCountry(ctx, p.Lat, p.Lng)
	if err == nil && country == "" {
		err = geocoding.ErrLookupEmpty
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if p.Generation != v.generation {
		logStale(v.ID, p.Generation, v.generation)
		v.engine.Metrics.lookup(OutcomeStale)
		return OutcomeStale
	}
	if err != nil {
		logLookupDegraded(v.ID, p, err)
		v.sel = v.sel.LookupFailed()
		v.engine.Metrics.lookup(OutcomeDegraded)
		return OutcomeDegraded
	}

	v.sel = v.sel.ApplyCountry(country)
	logLookupApplied(v.ID, p, country)
	v.engine.Metrics.lookup(OutcomeApplied)
	return OutcomeApplied
}

// PickMarker handles a marker click at the exact cluster coordinate.
func (v *View) PickMarker(lng, lat float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	c, ok := BuildClusters(v.points)[orb.Point{lng, lat}]
	if !ok {
		return ErrNoMarker
	}
	v.generation++
	if len(c.Members) == 1 {
		v.sel = v.sel.PickSingleton(c.Members[0])
	} else {
		v.sel = v.sel.PickCluster(c)
	}
	return nil
}

// PickActor opens an actor in the detail panel.
func (v *View) PickActor(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.findPoint(id); !ok {
		return ErrUnknownActor
	}
	v.sel = v.sel.PickActor(id)
	return nil
}

// Track marks the actor tracked on the backend and, on success, flips the flag
// on every matching point. The selection is left alone either way.
func (v *View) Track(ctx context.Context, id string) error {
	v.mu.Lock()
	_, ok := v.findPoint(id)
	v.mu.Unlock()
	if !ok {
		return ErrUnknownActor
	}

	if err := v.engine.Tracker.MarkTracked(ctx, id); err != nil {
		logTrackFailed(v.ID, id, err)
		v.engine.Metrics.track(false)
		return fmt.Errorf("%w: %v", ErrMutationFailed, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.points {
		if v.points[i].ID == id {
			v.points[i].IsTracked = true
		}
	}
	v.engine.Metrics.track(true)
	return nil
}

// Points returns a copy of the current points.
func (v *View) Points() []GeoPoint {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]GeoPoint(nil), v.points...)
}

// Selection returns the current selection.
func (v *View) Selection() Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sel.clone()
}

// Generation returns the current click generation.
func (v *View) Generation() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.generation
}

// reset returns the view to its initial state and invalidates any lookup in
// flight.
func (v *View) reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	v.sel = NewSelection()
}

func (v *View) touch(now time.Time) {
	v.mu.Lock()
	v.lastUsed = now
	v.mu.Unlock()
}

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUsed
}

// findPoint expects mu to be held.
func (v *View) findPoint(id string) (GeoPoint, bool) {
	for _, p := range v.points {
		if p.ID == id {
			return p, true
		}
	}
	return GeoPoint{}, false
}
