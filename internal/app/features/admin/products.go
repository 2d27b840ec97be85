// internal/app/features/admin/products.go
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/localchambers/localchambers/internal/app/store/audit"
	productstore "github.com/localchambers/localchambers/internal/app/store/products"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/limits"
	"github.com/localchambers/localchambers/internal/app/system/timeouts"
	"github.com/localchambers/localchambers/internal/domain/models"
)

type tierInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PricingType string   `json:"pricingType"`
	Price       int64    `json:"price"`
	Benefits    []string `json:"benefits"`
}

type tierView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	PricingType string   `json:"pricingType"`
	Price       int64    `json:"price,omitempty"`
	Benefits    []string `json:"benefits,omitempty"`
}

func tierViewOf(p models.Product) tierView {
	return tierView{
		ID:          p.ID.Hex(),
		Name:        p.Name,
		Description: p.Description,
		PricingType: p.PricingType,
		Price:       p.Price,
		Benefits:    p.Benefits,
	}
}

func (in *tierInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperr.New(apperr.InvalidArgument, "tier name is required")
	}
	if in.PricingType == "" {
		in.PricingType = models.PricingFixed
	}
	if in.PricingType != models.PricingFixed && in.PricingType != models.PricingContact {
		return apperr.Newf(apperr.InvalidArgument, "pricingType must be %s or %s", models.PricingFixed, models.PricingContact)
	}
	if in.PricingType == models.PricingFixed && in.Price < 0 {
		return apperr.New(apperr.InvalidArgument, "price must not be negative")
	}
	if len(in.Benefits) > limits.MaxTierBenefits {
		in.Benefits = in.Benefits[:limits.MaxTierBenefits]
	}
	return nil
}

// HandleListTiers serves GET /api/admin/{chamberId}/products.
func (h *Handler) HandleListTiers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, chamberID := adminContext(r)
	products, err := h.Products.ListByChamber(ctx, chamberID)
	if err != nil {
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to load tiers", err))
		return
	}

	views := make([]tierView, 0, len(products))
	for _, p := range products {
		views = append(views, tierViewOf(p))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]tierView{"tiers": views})
}

// HandleCreateTier serves POST /api/admin/{chamberId}/products.
func (h *Handler) HandleCreateTier(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, chamberID := adminContext(r)
	var in tierInput
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "invalid JSON body"))
		return
	}
	if err := in.validate(); err != nil {
		apperr.Render(w, err)
		return
	}

	created, err := h.Products.Create(ctx, models.Product{
		ChamberID:   chamberID,
		Name:        in.Name,
		Description: in.Description,
		PricingType: in.PricingType,
		Price:       in.Price,
		Benefits:    in.Benefits,
	})
	if err != nil {
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to create tier", err))
		return
	}

	h.AuditLog.LogRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventTierCreated,
		ChamberID: chamberID,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"tier_id": created.ID.Hex(), "name": created.Name},
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(tierViewOf(created))
}

// HandleUpdateTier serves PUT /api/admin/{chamberId}/products/{id}.
func (h *Handler) HandleUpdateTier(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, chamberID := adminContext(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "invalid tier id"))
		return
	}

	var in tierInput
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "invalid JSON body"))
		return
	}
	if err := in.validate(); err != nil {
		apperr.Render(w, err)
		return
	}

	err = h.Products.Update(ctx, chamberID, id, models.Product{
		Name:        in.Name,
		Description: in.Description,
		PricingType: in.PricingType,
		Price:       in.Price,
		Benefits:    in.Benefits,
	})
	if err != nil {
		if errors.Is(err, productstore.ErrNotFound) {
			apperr.Render(w, apperr.New(apperr.NotFound, "tier not found"))
			return
		}
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to update tier", err))
		return
	}

	h.AuditLog.LogRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventTierUpdated,
		ChamberID: chamberID,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"tier_id": id.Hex()},
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// HandleDeleteTier serves DELETE /api/admin/{chamberId}/products/{id}.
func (h *Handler) HandleDeleteTier(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, chamberID := adminContext(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "invalid tier id"))
		return
	}

	if err := h.Products.Delete(ctx, chamberID, id); err != nil {
		if errors.Is(err, productstore.ErrNotFound) {
			apperr.Render(w, apperr.New(apperr.NotFound, "tier not found"))
			return
		}
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to delete tier", err))
		return
	}

	h.AuditLog.LogRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventTierDeleted,
		ChamberID: chamberID,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"tier_id": id.Hex()},
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}
