package geography

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Handler exposes the registry over HTTP.
type Handler struct {
	Registry      *Registry
	Engine        *Engine
	LookupTimeout time.Duration

	inflight sync.WaitGroup
}

// Wait blocks until every background country lookup has settled.
func (h *Handler) Wait() {
	h.inflight.Wait()
}

func (h *Handler) lookupTimeout() time.Duration {
	if h.LookupTimeout <= 0 {
		return 5 * time.Second
	}
	return h.LookupTimeout
}

// view resolves {sid} or writes the error response.
func (h *Handler) view(w http.ResponseWriter, r *http.Request) (*View, bool) {
	sid, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return nil, false
	}
	v, err := h.Registry.Get(sid)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return v, true
}

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	v := h.Registry.Open(r.Context())
	writeJSONStatus(w, http.StatusCreated, v.Snapshot())
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sid, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}
	if err := h.Registry.Close(sid); err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, v.Snapshot())
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	// A failed reload is reported through the snapshot notices.
	_ = v.Reload(r.Context())
	writeJSON(w, v.Snapshot())
}

type coordinateBody struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func decodeCoordinate(r *http.Request) (float64, float64, bool) {
	var body coordinateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return 0, 0, false
	}
	if body.Lat == nil || body.Lng == nil {
		return 0, 0, false
	}
	return *body.Lat, *body.Lng, true
}

// Click handles a map click. The continent-level snapshot is returned right
// away; the country lookup finishes in the background unless ?wait=1.
func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	lat, lng, ok := decodeCoordinate(r)
	if !ok {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := v.Click(lat, lng)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if wait {
		ctx, cancel := context.WithTimeout(r.Context(), h.lookupTimeout())
		v.Resolve(ctx, p)
		cancel()
		writeJSON(w, v.Snapshot())
		return
	}

	// The immediate response shows the continent selection with the lookup
	// still pending, whatever the background lookup does next.
	snap := v.Snapshot()
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.lookupTimeout())
		defer cancel()
		v.Resolve(ctx, p)
	}()
	writeJSON(w, snap)
}

func (h *Handler) PickMarker(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	lat, lng, ok := decodeCoordinate(r)
	if !ok {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := v.PickMarker(lng, lat); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, v.Snapshot())
}

func (h *Handler) PickActor(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	if err := v.PickActor(chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, v.Snapshot())
}

func (h *Handler) TrackActor(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	err := v.Track(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, ErrUnknownActor):
		http.Error(w, err.Error(), http.StatusNotFound)
	case err != nil:
		writeJSONStatus(w, http.StatusBadGateway, map[string]any{
			"error":    "Could not track actor: " + err.Error(),
			"snapshot": v.Snapshot(),
		})
	default:
		writeJSON(w, v.Snapshot())
	}
}

func (h *Handler) ListMarkers(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{"markers": Markers(v.Points())})
}

// ListPoints serves every resolved point without opening a session.
func (h *Handler) ListPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.Engine.LoadPoints(r.Context())
	if err != nil {
		log.Printf("[geography] points unavailable: %v", err)
		writeJSON(w, map[string]any{"points": []GeoPoint{}, "notices": []Notice{listUnavailable}})
		return
	}
	writeJSON(w, map[string]any{"points": points, "notices": []Notice{}})
}

// ClassifyContinent handles GET /continent?lat=&lng=
func (h *Handler) ClassifyContinent(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err1 != nil || err2 != nil || !validCoordinate(lat, lng) {
		http.Error(w, "lat and lng are required", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{
		"lat":       lat,
		"lng":       lng,
		"continent": h.Engine.Continents.FromCoordinates(lng, lat),
	})
}
