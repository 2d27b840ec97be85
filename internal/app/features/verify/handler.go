// internal/app/features/verify/handler.go
package verify

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/store/audit"
	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	credentialstore "github.com/localchambers/localchambers/internal/app/store/credentials"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/auditlog"
	"github.com/localchambers/localchambers/internal/app/system/auth"
	"github.com/localchambers/localchambers/internal/app/system/limits"
)

// Handler is the feature-level handler for chamber verification.
type Handler struct {
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Service  *Service
}

func NewHandler(client *mongo.Client, db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	chambers := chamberstore.New(client, db)
	credentials := credentialstore.New(db)
	return &Handler{
		Log:      logger,
		AuditLog: auditLog,
		Service:  NewService(chambers, credentials, logger),
	}
}

type verifyRequest struct {
	ChamberID string `json:"chamberId"`
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleVerify processes POST /api/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	var req verifyRequest
	body := http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "request body must be JSON with a chamberId field"))
		return
	}

	msg, err := h.Service.Verify(r.Context(), user, req.ChamberID)
	if err != nil {
		h.audit(r, user, req.ChamberID, err)
		apperr.Render(w, err)
		return
	}

	h.AuditLog.LogRequest(r, audit.Event{
		Category:  audit.CategoryVerify,
		EventType: audit.EventClaimVerified,
		ChamberID: req.ChamberID,
		UserID:    user.ID,
		Success:   true,
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(verifyResponse{Success: true, Message: msg})
}

// audit records the failure outcomes worth keeping an audit trail of.
// Validation noise (bad input, unauthenticated) is not audited.
func (h *Handler) audit(r *http.Request, user *auth.SessionUser, chamberID string, err error) {
	var eventType string
	switch apperr.KindOf(err) {
	case apperr.PermissionDenied:
		eventType = audit.EventClaimDomainReject
	case apperr.AlreadyExists:
		eventType = audit.EventClaimConflict
	case apperr.Internal:
		eventType = audit.EventClaimGrantFailed
	default:
		return
	}

	userID := ""
	if user != nil {
		userID = user.ID
	}
	h.AuditLog.LogRequest(r, audit.Event{
		Category:      audit.CategoryVerify,
		EventType:     eventType,
		ChamberID:     chamberID,
		UserID:        userID,
		Success:       false,
		FailureReason: err.Error(),
	})
}
