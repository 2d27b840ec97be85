package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newManager(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager(strings.Repeat("k", 32), "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := NewSessionManager("", "s", "", false, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}

func TestSignInRoundTrip(t *testing.T) {
	sm := newManager(t)

	// Sign in and capture the cookie.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	err := sm.SignIn(rec, req, SessionUser{
		ID: "u1", Name: "Admin", Email: "admin@acme.com", EmailVerified: true,
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}

	// Replay the cookie through the middleware.
	var got *SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))

	req2 := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("no user loaded from session")
	}
	if got.ID != "u1" || got.Email != "admin@acme.com" || !got.EmailVerified {
		t.Errorf("loaded user = %+v", got)
	}
}

func TestRequireSignedIn(t *testing.T) {
	sm := newManager(t)
	called := false
	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	// Anonymous request gets 401.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/verify", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if called {
		t.Error("handler should not run for anonymous request")
	}

	// Request with a user in context passes.
	req := WithUser(httptest.NewRequest("GET", "/api/verify", nil), &SessionUser{ID: "u1"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !called {
		t.Error("handler should run for signed-in request")
	}
}

func TestSignOut(t *testing.T) {
	sm := newManager(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/logout", nil)
	if err := sm.SignOut(rec, req); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Error("session cookie should be expired")
	}
}
