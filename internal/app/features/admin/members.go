// internal/app/features/admin/members.go
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/store/audit"
	memberstore "github.com/localchambers/localchambers/internal/app/store/members"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/timeouts"
	"github.com/localchambers/localchambers/internal/domain/models"
)

type memberView struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Email       string    `json:"email"`
	Tier        string    `json:"tier"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// HandleListMembers serves GET /api/admin/{chamberId}/members. The status
// filter defaults to all; the dashboard passes pending states.
func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, chamberID := adminContext(r)
	status := r.URL.Query().Get("status")

	members, err := h.Members.ListByChamber(ctx, chamberID, status, 500)
	if err != nil {
		h.Log.Error("failed to list members", zap.Error(err))
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to load members", err))
		return
	}

	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, memberView{
			ID:          m.ID.Hex(),
			CompanyName: m.CompanyName,
			Email:       m.Email,
			Tier:        m.Tier,
			Amount:      m.Amount,
			Status:      m.Status,
			JoinedAt:    m.JoinedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]memberView{"members": views})
}

// HandleActivateMember serves POST /api/admin/{chamberId}/members/{id}/activate,
// moving a provisional or pending-invoice member to Active.
func (h *Handler) HandleActivateMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, chamberID := adminContext(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "invalid member id"))
		return
	}

	if err := h.Members.SetStatus(ctx, chamberID, id, models.MembershipActive); err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			apperr.Render(w, apperr.New(apperr.NotFound, "member not found"))
			return
		}
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to activate member", err))
		return
	}

	h.AuditLog.LogRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventMemberActivated,
		ChamberID: chamberID,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"member_id": id.Hex()},
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

type leadView struct {
	ID          string    `json:"id"`
	ProductName string    `json:"productName"`
	UserName    string    `json:"userName"`
	UserEmail   string    `json:"userEmail"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HandleListLeads serves GET /api/admin/{chamberId}/leads, the invoice and
// contact-pricing follow-up inbox.
func (h *Handler) HandleListLeads(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, chamberID := adminContext(r)
	leads, err := h.Leads.ListByChamber(ctx, chamberID, 200)
	if err != nil {
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to load leads", err))
		return
	}

	views := make([]leadView, 0, len(leads))
	for _, l := range leads {
		views = append(views, leadView{
			ID:          l.ID.Hex(),
			ProductName: l.ProductName,
			UserName:    l.UserName,
			UserEmail:   l.UserEmail,
			Message:     l.Message,
			CreatedAt:   l.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]leadView{"leads": views})
}
