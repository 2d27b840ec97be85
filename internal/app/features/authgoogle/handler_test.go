// internal/app/features/authgoogle/handler_test.go
package authgoogle_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/features/authgoogle"
	"github.com/localchambers/localchambers/internal/app/store/audit"
	"github.com/localchambers/localchambers/internal/app/store/oauthstate"
	"github.com/localchambers/localchambers/internal/app/system/auditlog"
	"github.com/localchambers/localchambers/internal/app/system/auth"
	"github.com/localchambers/localchambers/internal/testutil"
)

func newTestHandler(t *testing.T) *authgoogle.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "lc_test", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{})

	return authgoogle.NewHandler(db, sm, auditLog,
		"test-client-id", "test-client-secret", "http://localhost:8080", logger)
}

func TestIsConfigured(t *testing.T) {
	h := newTestHandler(t)
	if !h.IsConfigured() {
		t.Error("handler with client id and secret should be configured")
	}

	h.ClientSecret = ""
	if h.IsConfigured() {
		t.Error("handler without a secret should not be configured")
	}
}

func TestServeLogin_RedirectsToGoogle(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d, want 307", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "accounts.google.com") {
		t.Errorf("redirect target: %s", loc)
	}
	if !strings.Contains(loc, "state=") {
		t.Errorf("redirect should carry a state parameter: %s", loc)
	}
}

func TestServeLogin_Unconfigured(t *testing.T) {
	h := newTestHandler(t)
	h.ClientID = ""

	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Location"), "google_not_configured") {
		t.Errorf("redirect: %s", rec.Header().Get("Location"))
	}
}

func TestServeCallback_RejectsUnknownState(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state=forged&code=abc", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Location"), "invalid_state") {
		t.Errorf("redirect: %s", rec.Header().Get("Location"))
	}
}

func TestServeCallback_StateIsSingleUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "once", "/dashboard", time.Now().UTC().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	returnURL, valid, err := store.Validate(ctx, "once")
	if err != nil || !valid || returnURL != "/dashboard" {
		t.Fatalf("first validate: url=%q valid=%v err=%v", returnURL, valid, err)
	}

	_, valid, err = store.Validate(ctx, "once")
	if err != nil {
		t.Fatalf("second validate: %v", err)
	}
	if valid {
		t.Error("state token must be consumed on first use")
	}
}
