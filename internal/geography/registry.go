package geography

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry owns the open views. A view lives from Open until Close or until
// it sits idle past the TTL.
type Registry struct {
	engine  *Engine
	idleTTL time.Duration
	now     func() time.Time

	mu    sync.Mutex
	views map[uuid.UUID]*View
}

func NewRegistry(e *Engine, idleTTL time.Duration) *Registry {
	return &Registry{
		engine:  e,
		idleTTL: idleTTL,
		now:     time.Now,
		views:   make(map[uuid.UUID]*View),
	}
}

// Open creates a view in the initial state and loads the actor list. A list
// failure does not fail the open; the view carries a notice instead.
func (r *Registry) Open(ctx context.Context) *View {
	v := newView(r.engine, r.now())
	_ = v.Reload(ctx)

	r.mu.Lock()
	r.views[v.ID] = v
	n := len(r.views)
	r.mu.Unlock()

	r.engine.Metrics.setOpen(n)
	logSessionOpened(v.ID, len(v.Points()))
	return v
}

// Get returns the view and marks it used.
func (r *Registry) Get(id uuid.UUID) (*View, error) {
	r.mu.Lock()
	v, ok := r.views[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrUnknownSession
	}
	v.touch(r.now())
	return v, nil
}

// Close discards the view. Lookups still in flight for it are dropped when
// they settle.
func (r *Registry) Close(id uuid.UUID) error {
	r.mu.Lock()
	v, ok := r.views[id]
	delete(r.views, id)
	n := len(r.views)
	r.mu.Unlock()
	if !ok {
		return ErrUnknownSession
	}

	v.reset()
	r.engine.Metrics.setOpen(n)
	return nil
}

// Len reports the number of open views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep closes views idle longer than the TTL and returns how many it closed.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	var expired []*View
	for id, v := range r.views {
		if now.Sub(v.idleSince()) > r.idleTTL {
			expired = append(expired, v)
			delete(r.views, id)
		}
	}
	n := len(r.views)
	r.mu.Unlock()

	for _, v := range expired {
		v.reset()
	}
	if len(expired) > 0 {
		r.engine.Metrics.setOpen(n)
		log.Printf("[geography] swept %d idle sessions, %d open", len(expired), n)
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			r.Sweep(now)
		}
	}
}
