// internal/app/features/handoff/routes.go
package handoff

import (
	"github.com/go-chi/chi/v5"

	"github.com/localchambers/localchambers/internal/app/system/auth"
)

// Routes mounts the handoff endpoint. Typically:
// r.Mount("/api/handoff", handoff.Routes(handler, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.HandleGenerate)
	})

	return r
}
