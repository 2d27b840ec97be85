// internal/app/features/directory/routes.go
package directory

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the public directory endpoints at the API root:
//
//	GET /listings
//	GET /chambers/search
//	GET /chambers/{id}
//	GET /agents/index
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/listings", h.HandleListings)
	r.Get("/chambers/search", h.HandleSearch)
	r.Get("/chambers/{id}", h.HandleChamber)
	r.Get("/agents/index", h.HandleAgentsIndex)

	return r
}
