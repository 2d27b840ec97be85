// internal/app/features/handoff/handler.go
package handoff

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/store/audit"
	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	credentialstore "github.com/localchambers/localchambers/internal/app/store/credentials"
	memberstore "github.com/localchambers/localchambers/internal/app/store/members"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/auditlog"
	"github.com/localchambers/localchambers/internal/app/system/auth"
	"github.com/localchambers/localchambers/internal/app/system/limits"
)

// Handler is the feature-level handler for handoff packet generation.
type Handler struct {
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Service  *Service
}

func NewHandler(client *mongo.Client, db *mongo.Database, store BlobStore, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		AuditLog: auditLog,
		Service: NewService(
			chamberstore.New(client, db),
			memberstore.New(db),
			credentialstore.New(db),
			store,
			logger,
		),
	}
}

type handoffRequest struct {
	ChamberID string `json:"chamberId"`
}

// HandleGenerate processes POST /api/handoff.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		apperr.Render(w, apperr.New(apperr.Unauthenticated, "sign in to generate a handoff packet"))
		return
	}

	var req handoffRequest
	body := http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "request body must be JSON with a chamberId field"))
		return
	}

	result, err := h.Service.Generate(r.Context(), user.ID, req.ChamberID)
	if err != nil {
		apperr.Render(w, err)
		return
	}

	h.AuditLog.LogRequest(r, audit.Event{
		Category:  audit.CategoryVerify,
		EventType: audit.EventPacketGenerated,
		ChamberID: req.ChamberID,
		UserID:    user.ID,
		Success:   true,
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
