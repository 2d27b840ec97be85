// internal/app/features/account/handler.go
package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/store/audit"
	credentialstore "github.com/localchambers/localchambers/internal/app/store/credentials"
	userstore "github.com/localchambers/localchambers/internal/app/store/users"
	"github.com/localchambers/localchambers/internal/app/system/apperr"
	"github.com/localchambers/localchambers/internal/app/system/auditlog"
	"github.com/localchambers/localchambers/internal/app/system/auth"
	"github.com/localchambers/localchambers/internal/app/system/limits"
	"github.com/localchambers/localchambers/internal/app/system/timeouts"
)

const minPasswordLen = 8

// Handler owns the password account endpoints: signup, login, logout, and
// the current-user view.
type Handler struct {
	Log         *zap.Logger
	AuditLog    *auditlog.Logger
	SessionMgr  *auth.SessionManager
	Users       *userstore.Store
	Credentials *credentialstore.Store
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		AuditLog:    auditLog,
		SessionMgr:  sm,
		Users:       userstore.New(db),
		Credentials: credentialstore.New(db),
	}
}

type signupInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CompanyName string `json:"companyName"`
	IsNonProfit bool   `json:"isNonProfit"`
}

// HandleSignup serves POST /api/auth/signup and signs the new account in.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var in signupInput
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "invalid JSON body"))
		return
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "a valid email is required"))
		return
	}
	if len(in.Password) < minPasswordLen {
		apperr.Render(w, apperr.Newf(apperr.InvalidArgument, "password must be at least %d characters", minPasswordLen))
		return
	}

	user, err := h.Users.Create(ctx, userstore.SignUpParams{
		Email:       in.Email,
		Password:    in.Password,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		CompanyName: in.CompanyName,
		IsNonProfit: in.IsNonProfit,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			apperr.Render(w, apperr.New(apperr.AlreadyExists, err.Error()))
			return
		}
		h.Log.Error("signup failed", zap.Error(err))
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to create account", err))
		return
	}

	sessionUser := auth.SessionUser{
		ID:            user.ID.Hex(),
		Name:          strings.TrimSpace(user.FirstName + " " + user.LastName),
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser); err != nil {
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to start session", err))
		return
	}

	h.AuditLog.LogRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignup,
		UserID:    sessionUser.ID,
		Success:   true,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(userResponse(sessionUser, ""))
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin serves POST /api/auth/login. Unknown emails and wrong
// passwords produce the same response.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var in loginInput
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperr.Render(w, apperr.New(apperr.InvalidArgument, "invalid JSON body"))
		return
	}

	user, err := h.Users.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, userstore.ErrBadCredentials) {
			h.AuditLog.LogRequest(r, audit.Event{
				Category:      audit.CategoryAuth,
				EventType:     audit.EventLoginFailed,
				Success:       false,
				FailureReason: "bad credentials",
			})
			apperr.Render(w, apperr.New(apperr.Unauthenticated, "invalid email or password"))
			return
		}
		apperr.Render(w, apperr.Wrap(apperr.Internal, "login failed", err))
		return
	}

	sessionUser := auth.SessionUser{
		ID:            user.ID.Hex(),
		Name:          strings.TrimSpace(user.FirstName + " " + user.LastName),
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser); err != nil {
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to start session", err))
		return
	}

	claimed, err := h.Credentials.ChamberClaim(ctx, sessionUser.ID)
	if err != nil {
		h.Log.Warn("failed to load claims at login", zap.Error(err))
	}

	h.AuditLog.LogRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    sessionUser.ID,
		Success:   true,
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(userResponse(sessionUser, claimed))
}

// HandleLogout serves POST /api/auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := auth.CurrentUser(r); ok {
		h.AuditLog.LogRequest(r, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLogout,
			UserID:    user.ID,
			Success:   true,
		})
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to end session", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// HandleMe serves GET /api/auth/me: the session user plus the chamber
// claim, read fresh so a verification completed this session shows up.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, ok := auth.CurrentUser(r)
	if !ok {
		apperr.Render(w, apperr.New(apperr.Unauthenticated, "sign in required"))
		return
	}

	claimed, err := h.Credentials.ChamberClaim(ctx, user.ID)
	if err != nil {
		apperr.Render(w, apperr.Wrap(apperr.Internal, "failed to load credentials", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(userResponse(*user, claimed))
}

type meView struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	ChamberID     string `json:"chamberId,omitempty"`
}

func userResponse(u auth.SessionUser, chamberID string) map[string]meView {
	return map[string]meView{"user": {
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		ChamberID:     chamberID,
	}}
}
