// internal/app/features/guide/handler.go
package guide

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/auth"
	"github.com/localchambers/localchambers/internal/app/system/limits"
)

// Handler is the feature-level handler for the chamber guide.
type Handler struct {
	Log     *zap.Logger
	Service *Service
}

func NewHandler(generator Generator, logger *zap.Logger) *Handler {
	return &Handler{
		Log:     logger,
		Service: NewService(generator, logger),
	}
}

// HandleChat processes POST /api/guide/chat. The guide is public;
// unauthenticated callers are allowed but logged, since the rate limiter
// is the only brake on them.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); !ok {
		h.Log.Debug("unauthenticated guide chat")
	}

	var req ChatRequest
	body := http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "request body must be JSON"))
		return
	}

	resp, err := h.Service.Chat(r.Context(), req)
	if err != nil {
		apperr.Render(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleSuggestTiers processes POST /api/guide/tiers.
func (h *Handler) HandleSuggestTiers(w http.ResponseWriter, r *http.Request) {
	var req TiersRequest
	body := http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "request body must be JSON"))
		return
	}

	tiers, err := h.Service.SuggestTiers(r.Context(), req)
	if err != nil {
		apperr.Render(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]TierSuggestion{"tiers": tiers})
}
