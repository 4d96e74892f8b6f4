package geography

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/points", h.ListPoints)
	r.Get("/continent", h.ClassifyContinent)

	r.Post("/sessions", h.OpenSession)
	r.Route("/sessions/{sid}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.CloseSession)
		r.Post("/reload", h.Reload)
		r.Post("/click", h.Click)
		r.Get("/markers", h.ListMarkers)
		r.Post("/markers/pick", h.PickMarker)
		r.Post("/actors/{id}/pick", h.PickActor)
		r.Post("/actors/{id}/track", h.TrackActor)
	})

	return r
}
