package geography

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	g := newGatedGeocoder()
	env := newTestEnv(t, g)
	env.engine.Metrics = m
	r := NewRegistry(env.engine, 0)
	v := r.Open(context.Background())

	if got := testutil.ToFloat64(m.OpenSessions); got != 1 {
		t.Errorf("open sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.MappedActors); got != 5 {
		t.Errorf("mapped actors = %v, want 5", got)
	}

	stale, _ := v.Click(moscowLat, moscowLng)
	latest, _ := v.Click(tehranLat, tehranLng)
	g.release(moscowLat, "Russia", nil)
	g.release(tehranLat, "Iran", nil)
	v.Resolve(context.Background(), stale)
	v.Resolve(context.Background(), latest)

	if got := testutil.ToFloat64(m.Lookups.WithLabelValues("stale")); got != 1 {
		t.Errorf("stale = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Lookups.WithLabelValues("applied")); got != 1 {
		t.Errorf("applied = %v, want 1", got)
	}

	if err := v.Track(context.Background(), idLazarus.String()); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if got := testutil.ToFloat64(m.TrackActions.WithLabelValues("ok")); got != 1 {
		t.Errorf("track ok = %v, want 1", got)
	}

	_ = r.Close(v.ID)
	if got := testutil.ToFloat64(m.OpenSessions); got != 0 {
		t.Errorf("open sessions after close = %v", got)
	}
}

func TestNewMetricsReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	b, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("second NewMetrics: %v", err)
	}
	if a.Lookups != b.Lookups {
		t.Error("second registration did not reuse the existing collector")
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.lookup(OutcomeApplied)
	m.track(false)
	m.setOpen(3)
	m.setMapped(3)
}
