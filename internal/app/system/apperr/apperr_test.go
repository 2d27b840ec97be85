package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Unauthenticated, http.StatusUnauthorized},
		{InvalidArgument, http.StatusBadRequest},
		{FailedPrecondition, http.StatusPreconditionFailed},
		{NotFound, http.StatusNotFound},
		{PermissionDenied, http.StatusForbidden},
		{AlreadyExists, http.StatusConflict},
		{Aborted, http.StatusConflict},
		{Internal, http.StatusInternalServerError},
		{Kind("something-new"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := Status(tt.kind); got != tt.want {
				t.Errorf("Status(%s) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(New(NotFound, "missing")); got != NotFound {
		t.Errorf("KindOf = %s, want %s", got, NotFound)
	}
	if got := KindOf(errors.New("plain")); got != Internal {
		t.Errorf("KindOf(plain) = %s, want %s", got, Internal)
	}

	// Kinds survive wrapping with fmt.Errorf.
	wrapped := fmt.Errorf("handler: %w", New(AlreadyExists, "claimed"))
	if got := KindOf(wrapped); got != AlreadyExists {
		t.Errorf("KindOf(wrapped) = %s, want %s", got, AlreadyExists)
	}
}

func TestRender_KindedError(t *testing.T) {
	rec := httptest.NewRecorder()
	Render(rec, Newf(PermissionDenied, "Email domain (@%s) does not match Chamber domain (@%s).", "other.com", "acme.com"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	var body struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Error.Kind != "permission-denied" {
		t.Errorf("kind = %q, want permission-denied", body.Error.Kind)
	}
	if body.Error.Message == "" {
		t.Error("message should not be empty")
	}
}

func TestRender_UnclassifiedErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	Render(rec, errors.New("mongo: connection reset"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := rec.Body.String(); len(got) > 0 && (contains(got, "mongo") || contains(got, "connection")) {
		t.Errorf("internal cause leaked to caller: %s", got)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Internal, "claim persistence failed", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
