package actors

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ThreatAtlas/atlas-backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Handler serves the actor list and the track action.
type Handler struct {
	Store *Store
}

// ListActors handles GET /actors?tracked=1&status=ready,running
func (h Handler) ListActors(w http.ResponseWriter, r *http.Request) {
	var f Filter
	switch strings.ToLower(r.URL.Query().Get("tracked")) {
	case "1", "true", "yes":
		f.TrackedOnly = true
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		f.Statuses = strings.Split(raw, ",")
	}

	list, err := h.Store.List(r.Context(), f)
	if err != nil {
		log.Printf("[actors] list error: %v", err)
		http.Error(w, "Failed to load actors", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Actor{}
	}
	writeJSON(w, map[string]any{"actors": list})
}

func (h Handler) GetActor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid actor id", http.StatusBadRequest)
		return
	}
	a, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, ErrActorNotFound) {
		http.Error(w, "Actor not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[actors] get %s error: %v", id, err)
		http.Error(w, "Failed to load actor", http.StatusInternalServerError)
		return
	}
	writeJSON(w, a)
}

func (h Handler) TrackActor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Store.MarkTracked(r.Context(), id)
	if errors.Is(err, ErrActorNotFound) {
		http.Error(w, "Actor not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[actors] track %s error: %v", id, err)
		http.Error(w, "Failed to track actor", http.StatusInternalServerError)
		return
	}
	client, _ := utils.GetClientIDFromContext(r.Context())
	log.Printf("[actors] %s tracked by client=%s", id, client)
	writeJSON(w, map[string]any{"id": id, "is_tracked": true})
}
