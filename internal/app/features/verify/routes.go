// internal/app/features/verify/routes.go
package verify

import (
	"github.com/go-chi/chi/v5"

	"github.com/localchambers/localchambers/internal/app/system/auth"
)

// Routes mounts the verification endpoint. Typically:
// r.Mount("/api/verify", verify.Routes(handler, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.HandleVerify)
	})

	return r
}
