// internal/app/features/account/routes.go
package account

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/localchambers/localchambers/internal/app/system/auth"
	"github.com/localchambers/localchambers/internal/app/system/ratelimit"
)

// Routes mounts the account endpoints. Typically:
// r.Mount("/api/auth", account.Routes(handler, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Credential endpoints are rate limited against stuffing.
	r.Group(func(pr chi.Router) {
		pr.Use(ratelimit.New(10, time.Minute).Middleware)
		pr.Post("/signup", h.HandleSignup)
		pr.Post("/login", h.HandleLogin)
	})

	r.Post("/logout", h.HandleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/me", h.HandleMe)
	})

	return r
}
