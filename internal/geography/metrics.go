package geography

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the geography collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Lookups      *prometheus.CounterVec
	TrackActions *prometheus.CounterVec
	OpenSessions prometheus.Gauge
	MappedActors prometheus.Gauge
}

// NewMetrics registers the collectors against reg, defaulting to the global
// registry when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	lookups, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geography_lookups_total",
		Help: "Settled country lookups, labeled by outcome (applied, degraded, stale).",
	}, []string{"outcome"}), "geography_lookups_total")
	if err != nil {
		return nil, err
	}

	tracks, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geography_track_actions_total",
		Help: "Track actions issued from the map, labeled by outcome (ok, failed).",
	}, []string{"outcome"}), "geography_track_actions_total")
	if err != nil {
		return nil, err
	}

	open, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geography_open_sessions",
		Help: "Currently open map views.",
	}), "geography_open_sessions")
	if err != nil {
		return nil, err
	}

	mapped, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geography_mapped_actors",
		Help: "Actors placed on the map by the most recent load.",
	}), "geography_mapped_actors")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		Lookups:      lookups,
		TrackActions: tracks,
		OpenSessions: open,
		MappedActors: mapped,
	}, nil
}

func (m *Metrics) lookup(o Outcome) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(string(o)).Inc()
}

func (m *Metrics) track(ok bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if ok {
		outcome = "ok"
	}
	m.TrackActions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) setOpen(n int) {
	if m == nil {
		return
	}
	m.OpenSessions.Set(float64(n))
}

func (m *Metrics) setMapped(n int) {
	if m == nil {
		return
	}
	m.MappedActors.Set(float64(n))
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
