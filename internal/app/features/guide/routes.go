// internal/app/features/guide/routes.go
package guide

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/localchambers/localchambers/internal/app/system/auth"
	"github.com/localchambers/localchambers/internal/app/system/ratelimit"
)

// Routes mounts the guide endpoints. Chat is public but rate limited;
// the tier wizard requires a signed-in caller.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	chatLimiter := ratelimit.New(20, time.Minute)
	r.Group(func(pr chi.Router) {
		pr.Use(chatLimiter.Middleware)
		pr.Post("/chat", h.HandleChat)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/tiers", h.HandleSuggestTiers)
	})

	return r
}
