package geography

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ThreatAtlas/atlas-backend/internal/actors"
	"github.com/ThreatAtlas/atlas-backend/internal/alias"
	"github.com/ThreatAtlas/atlas-backend/internal/geo"
	"github.com/google/uuid"
)

var (
	idFancy    = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	idCozy     = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	idSandworm = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	idLazarus  = uuid.MustParse("00000000-0000-0000-0000-000000000004")
	idMuddy    = uuid.MustParse("00000000-0000-0000-0000-000000000005")
	idUnmapped = uuid.MustParse("00000000-0000-0000-0000-000000000006")
)

func testActors() []actors.Actor {
	return []actors.Actor{
		{ID: idFancy, DisplayName: "APT28 (Fancy Bear)", NotebookStatus: actors.StatusRunning, ScopeStatement: "GRU unit 26165."},
		{ID: idCozy, DisplayName: "Cozy Bear", NotebookStatus: actors.StatusWarning, IsTracked: true},
		{ID: idSandworm, DisplayName: "Sandworm", NotebookStatus: actors.StatusError},
		{ID: idLazarus, DisplayName: "Lazarus Group", NotebookStatus: actors.StatusReady},
		{ID: idMuddy, DisplayName: "MuddyWater", NotebookStatus: actors.StatusIdle},
		{ID: idUnmapped, DisplayName: "Unknown Crew", NotebookStatus: actors.StatusReady},
	}
}

type fakeSource struct {
	mu     sync.Mutex
	actors []actors.Actor
	err    error
}

func (f *fakeSource) ListActors(ctx context.Context) ([]actors.Actor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]actors.Actor(nil), f.actors...), nil
}

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type fakeTracker struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeTracker) MarkTracked(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	return f.err
}

func (f *fakeTracker) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeTracker) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type lookupResult struct {
	country string
	err     error
}

// gatedGeocoder blocks each lookup until the test releases the gate for that
// latitude, so completion order is controlled by the test.
type gatedGeocoder struct {
	mu    sync.Mutex
	gates map[float64]chan lookupResult
}

func newGatedGeocoder() *gatedGeocoder {
	return &gatedGeocoder{gates: make(map[float64]chan lookupResult)}
}

func (g *gatedGeocoder) gate(lat float64) chan lookupResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[lat]
	if !ok {
		ch = make(chan lookupResult, 1)
		g.gates[lat] = ch
	}
	return ch
}

func (g *gatedGeocoder) release(lat float64, country string, err error) {
	g.gate(lat) <- lookupResult{country: country, err: err}
}

func (g *gatedGeocoder) ReverseCountry(ctx context.Context, lat, lng float64) (string, error) {
	select {
	case r := <-g.gate(lat):
		return r.country, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// staticGeocoder answers every lookup immediately.
type staticGeocoder struct {
	country string
	err     error
}

func (s staticGeocoder) ReverseCountry(ctx context.Context, lat, lng float64) (string, error) {
	return s.country, s.err
}

var errBackend = errors.New("backend down")

type testEnv struct {
	engine  *Engine
	source  *fakeSource
	tracker *fakeTracker
}

func newTestEnv(t *testing.T, g Geocoder) *testEnv {
	t.Helper()
	src := &fakeSource{actors: testActors()}
	tr := &fakeTracker{}
	return &testEnv{
		engine: &Engine{
			Source:     src,
			Tracker:    tr,
			Geocoder:   g,
			Aliases:    alias.Default(),
			Continents: geo.DefaultContinents(),
		},
		source:  src,
		tracker: tr,
	}
}

func (env *testEnv) openView(t *testing.T) *View {
	t.Helper()
	return NewRegistry(env.engine, 0).Open(context.Background())
}
