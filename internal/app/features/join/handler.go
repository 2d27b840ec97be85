// internal/app/features/join/handler.go
package join

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	leadstore "github.com/localchambers/localchambers/internal/app/store/leads"
	memberstore "github.com/localchambers/localchambers/internal/app/store/members"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/limits"
)

// Handler is the feature-level handler for membership checkout.
type Handler struct {
	Log     *zap.Logger
	Service *Service
}

func NewHandler(client *mongo.Client, db *mongo.Database, gateway Gateway, logger *zap.Logger) *Handler {
	return &Handler{
		Log: logger,
		Service: NewService(
			chamberstore.New(client, db),
			memberstore.New(db),
			leadstore.New(db),
			gateway,
			logger,
		),
	}
}

// HandleJoin processes POST /api/join.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var payload MembershipPayload
	body := http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "request body must be JSON"))
		return
	}

	result, err := h.Service.Process(r.Context(), payload)
	if err != nil {
		apperr.Render(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
