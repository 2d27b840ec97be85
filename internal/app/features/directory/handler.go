// internal/app/features/directory/handler.go
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	listingstore "github.com/localchambers/localchambers/internal/app/store/listings"
	productstore "github.com/localchambers/localchambers/internal/app/store/products"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/timeouts"
	"github.com/localchambers/localchambers/internal/domain/models"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// Handler serves the public directory: the listings page, chamber
// profiles, search, and the machine-readable index.
type Handler struct {
	Log      *zap.Logger
	Listings *listingstore.Store
	Chambers *chamberstore.Store
	Products *productstore.Store
}

func NewHandler(client *mongo.Client, db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		Listings: listingstore.New(db),
		Chambers: chamberstore.New(client, db),
		Products: productstore.New(db),
	}
}

func pageSize(r *http.Request) int64 {
	limit := int64(defaultPageSize)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit
}

type listingsPage struct {
	Listings   []models.PublicListing `json:"listings"`
	NextCursor string                 `json:"nextCursor,omitempty"`
}

// HandleListings serves GET /api/listings with keyset paging over the
// projection. The page is read from public_listings only; organization
// documents are never touched on this path.
func (h *Handler) HandleListings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	limit := pageSize(r)
	afterName, afterID := "", ""
	if after := r.URL.Query().Get("after"); after != "" {
		c, ok := decodeCursor(after)
		if !ok {
			apperr.Render(w, apperr.New(apperr.InvalidArgument, "invalid after cursor"))
			return
		}
		afterName, afterID = c.Name, c.ID
	}

	var (
		page []models.PublicListing
		err  error
	)
	if region := r.URL.Query().Get("region"); region != "" {
		page, err = h.Listings.ByRegion(ctx, region, limit)
	} else {
		page, err = h.Listings.Page(ctx, afterName, afterID, limit)
	}
	if err != nil {
		h.Log.Error("failed to page listings", zap.Error(err))
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to load listings", err))
		return
	}

	resp := listingsPage{Listings: page}
	if int64(len(page)) == limit && len(page) > 0 {
		last := page[len(page)-1]
		resp.NextCursor = encodeCursor(last.Name, last.ID)
	}
	if resp.Listings == nil {
		resp.Listings = []models.PublicListing{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// chamberProfile is the public view of a chamber, claim fields reduced to
// a verification flag.
type chamberProfile struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Region       string              `json:"region"`
	Description  string              `json:"description,omitempty"`
	LogoURL      string              `json:"logoUrl,omitempty"`
	WebsiteURL   string              `json:"websiteUrl,omitempty"`
	Address      string              `json:"address,omitempty"`
	Coordinates  *models.Coordinates `json:"coordinates,omitempty"`
	IndustryTags []string            `json:"industryTags"`
	Services     []string            `json:"services,omitempty"`
	Verified     bool                `json:"verified"`
	Tiers        []tierView          `json:"tiers"`
}

type tierView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	PricingType string   `json:"pricingType"`
	Price       int64    `json:"price,omitempty"`
	Benefits    []string `json:"benefits,omitempty"`
}

// HandleChamber serves GET /api/chambers/{id}: profile plus membership
// tiers.
func (h *Handler) HandleChamber(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	id := chi.URLParam(r, "id")
	ch, err := h.Chambers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, chamberstore.ErrNotFound) {
			apperr.Render(w, apperr.Newf(apperr.NotFound, "chamber %s not found", id))
			return
		}
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to load chamber", err))
		return
	}

	products, err := h.Products.ListByChamber(ctx, id)
	if err != nil {
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to load tiers", err))
		return
	}

	profile := chamberProfile{
		ID:           ch.ID,
		Name:         ch.Name,
		Region:       ch.Region,
		Description:  ch.Description,
		LogoURL:      ch.LogoURL,
		WebsiteURL:   ch.Website,
		Address:      ch.Address,
		Coordinates:  ch.Coordinates,
		IndustryTags: ch.IndustryTags,
		Services:     ch.Services,
		Verified:     ch.VerificationStatus == models.VerificationVerified,
		Tiers:        make([]tierView, 0, len(products)),
	}
	if profile.IndustryTags == nil {
		profile.IndustryTags = []string{}
	}
	for _, p := range products {
		profile.Tiers = append(profile.Tiers, tierView{
			ID:          p.ID.Hex(),
			Name:        p.Name,
			Description: p.Description,
			PricingType: p.PricingType,
			Price:       p.Price,
			Benefits:    p.Benefits,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(profile)
}

type searchResult struct {
	Chambers []searchRow `json:"chambers"`
}

type searchRow struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Region       string   `json:"region"`
	IndustryTags []string `json:"industryTags"`
	Verified     bool     `json:"verified"`
}

// HandleSearch serves GET /api/chambers/search?q=&tag=. Prefix match on
// the folded name; no relevance ranking.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q := r.URL.Query().Get("q")
	tag := r.URL.Query().Get("tag")
	if q == "" && tag == "" {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "q or tag is required"))
		return
	}

	chambers, err := h.Chambers.SearchByName(ctx, q, tag, pageSize(r))
	if err != nil {
		h.Log.Error("chamber search failed", zap.Error(err))
		apperr.Render(w, apperr.Wrap(apperr.Internal, "search failed", err))
		return
	}

	result := searchResult{Chambers: make([]searchRow, 0, len(chambers))}
	for _, ch := range chambers {
		tags := ch.IndustryTags
		if tags == nil {
			tags = []string{}
		}
		result.Chambers = append(result.Chambers, searchRow{
			ID:           ch.ID,
			Name:         ch.Name,
			Region:       ch.Region,
			IndustryTags: tags,
			Verified:     ch.VerificationStatus == models.VerificationVerified,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

type agentIndex struct {
	GeneratedAt string          `json:"generatedAt"`
	Count       int             `json:"count"`
	Chambers    []agentIndexRow `json:"chambers"`
}

type agentIndexRow struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Region       string   `json:"region"`
	WebsiteURL   string   `json:"websiteUrl"`
	IndustryTags []string `json:"industryTags"`
}

// HandleAgentsIndex serves GET /api/agents/index, a flat directory dump
// for AI agents and crawlers. Reads the projection, capped at one page of
// the maximum size.
func (h *Handler) HandleAgentsIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	listings, err := h.Listings.Page(ctx, "", "", 1000)
	if err != nil {
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to build index", err))
		return
	}

	index := agentIndex{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Count:       len(listings),
		Chambers:    make([]agentIndexRow, 0, len(listings)),
	}
	for _, l := range listings {
		index.Chambers = append(index.Chambers, agentIndexRow{
			ID:           l.ID,
			Name:         l.Name,
			Region:       l.Region,
			WebsiteURL:   l.WebsiteURL,
			IndustryTags: l.IndustryTags,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_ = json.NewEncoder(w).Encode(index)
}
