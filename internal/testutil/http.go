package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/localchambers/localchambers/internal/app/system/auth"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID            string
	Name          string
	Email         string
	EmailVerified bool
}

// VerifiedUser returns a TestUser whose email address is verified.
func VerifiedUser(email string) TestUser {
	return TestUser{
		ID:            primitive.NewObjectID().Hex(),
		Name:          "Test User",
		Email:         email,
		EmailVerified: true,
	}
}

// UnverifiedUser returns a TestUser whose email address is not verified.
func UnverifiedUser(email string) TestUser {
	u := VerifiedUser(email)
	u.EmailVerified = false
	return u
}

// WithUser adds a user to the request context for testing authenticated
// handlers. This bypasses the session middleware and injects the user
// directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
	})
}

// NewJSONRequest creates an HTTP request carrying a JSON body.
func NewJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedJSONRequest creates a JSON request with a user in context.
func NewAuthenticatedJSONRequest(method, target, body string, user TestUser) *http.Request {
	return WithUser(NewJSONRequest(method, target, body), user)
}
