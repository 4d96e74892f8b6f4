package actors

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(store *Store) http.Handler {
	r := chi.NewRouter()
	h := Handler{Store: store}

	r.Get("/", h.ListActors)
	r.Get("/{id}", h.GetActor)
	r.Post("/{id}/track", h.TrackActor)

	return r
}
