// internal/app/features/admin/routes.go
package admin

import (
	"github.com/go-chi/chi/v5"

	"github.com/localchambers/localchambers/internal/app/system/auth"
)

// Routes mounts the chamber administration endpoints. Typically:
// r.Mount("/api/admin", admin.Routes(handler, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Route("/{chamberId}", func(cr chi.Router) {
		cr.Use(sm.RequireSignedIn)
		cr.Use(h.requireChamberAdmin)

		cr.Get("/members", h.HandleListMembers)
		cr.Post("/members/{id}/activate", h.HandleActivateMember)

		cr.Get("/products", h.HandleListTiers)
		cr.Post("/products", h.HandleCreateTier)
		cr.Put("/products/{id}", h.HandleUpdateTier)
		cr.Delete("/products/{id}", h.HandleDeleteTier)

		cr.Put("/profile", h.HandleUpdateProfile)

		cr.Get("/leads", h.HandleListLeads)
	})

	return r
}
