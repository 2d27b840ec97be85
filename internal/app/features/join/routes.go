// internal/app/features/join/routes.go
package join

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/localchambers/localchambers/internal/app/system/ratelimit"
)

// Routes mounts the checkout endpoint. Join is open to the public, with a
// rate limit in front of the payment gateway.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	limiter := ratelimit.New(10, time.Minute)
	r.Group(func(pr chi.Router) {
		pr.Use(limiter.Middleware)
		pr.Post("/", h.HandleJoin)
	})

	return r
}
