// internal/app/features/admin/handler.go
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	credentialstore "github.com/localchambers/localchambers/internal/app/store/credentials"
	leadstore "github.com/localchambers/localchambers/internal/app/store/leads"
	memberstore "github.com/localchambers/localchambers/internal/app/store/members"
	productstore "github.com/localchambers/localchambers/internal/app/store/products"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/auditlog"
	"github.com/localchambers/localchambers/internal/app/system/auth"
)

// Handler owns the chamber administration endpoints: member management,
// tier CRUD, profile updates, and the lead inbox. Every route is gated on
// the caller holding the admin credential for the chamber in the URL.
type Handler struct {
	Log         *zap.Logger
	AuditLog    *auditlog.Logger
	Chambers    *chamberstore.Store
	Members     *memberstore.Store
	Products    *productstore.Store
	Leads       *leadstore.Store
	Credentials *credentialstore.Store
}

func NewHandler(client *mongo.Client, db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		AuditLog:    auditLog,
		Chambers:    chamberstore.New(client, db),
		Members:     memberstore.New(db),
		Products:    productstore.New(db),
		Leads:       leadstore.New(db),
		Credentials: credentialstore.New(db),
	}
}

// requireChamberAdmin refuses requests whose caller does not hold the
// admin claim for the chamber named in the URL. Claims are read per
// request so a freshly granted claim works without re-login.
func (h *Handler) requireChamberAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.CurrentUser(r)
		if !ok {
			apperr.Render(w, apperr.New(apperr.Unauthenticated, "sign in required"))
			return
		}
		chamberID := chi.URLParam(r, "chamberId")
		if chamberID == "" {
			apperr.Render(w, apperr.New(apperr.InvalidArgument, "chamberId is required"))
			return
		}

		claimed, err := h.Credentials.ChamberClaim(r.Context(), user.ID)
		if err != nil {
			apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to load credentials", err))
			return
		}
		if claimed == "" || claimed != chamberID {
			apperr.Render(w, apperr.New(apperr.PermissionDenied, "you are not the verified administrator of this chamber"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// adminContext returns the request's user and chamber id after the gate
// has run.
func adminContext(r *http.Request) (userID, chamberID string) {
	if user, ok := auth.CurrentUser(r); ok {
		userID = user.ID
	}
	return userID, chi.URLParam(r, "chamberId")
}
