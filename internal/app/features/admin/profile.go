// internal/app/features/admin/profile.go
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/localchambers/localchambers/internal/app/store/audit"
	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/limits"
	"github.com/localchambers/localchambers/internal/app/system/timeouts"
)

var profileSanitizer = bluemonday.StrictPolicy()

// profileInput mirrors ProfilePatch in JSON; absent fields are left
// untouched on the record.
type profileInput struct {
	Name         *string  `json:"name"`
	Region       *string  `json:"region"`
	Address      *string  `json:"address"`
	Description  *string  `json:"description"`
	LogoURL      *string  `json:"logoUrl"`
	IndustryTags []string `json:"industryTags"`
	Services     []string `json:"services"`
}

func sanitized(p *string) *string {
	if p == nil {
		return nil
	}
	clean := strings.TrimSpace(profileSanitizer.Sanitize(*p))
	return &clean
}

// HandleUpdateProfile serves PUT /api/admin/{chamberId}/profile. Only
// business fields are reachable; verification status and claim ownership
// stay with the verification flow.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, chamberID := adminContext(r)
	var in profileInput
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "invalid JSON body"))
		return
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "name must not be empty"))
		return
	}

	patch := chamberstore.ProfilePatch{
		Name:         sanitized(in.Name),
		Region:       sanitized(in.Region),
		Address:      sanitized(in.Address),
		Description:  sanitized(in.Description),
		LogoURL:      sanitized(in.LogoURL),
		IndustryTags: in.IndustryTags,
		Services:     in.Services,
	}

	if err := h.Chambers.UpdateProfile(ctx, chamberID, patch); err != nil {
		if errors.Is(err, chamberstore.ErrNotFound) {
			apperr.Render(w, apperr.New(apperr.NotFound, "chamber not found"))
			return
		}
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to update chamber profile", err))
		return
	}

	h.AuditLog.LogRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventChamberUpdated,
		ChamberID: chamberID,
		UserID:    userID,
		Success:   true,
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
