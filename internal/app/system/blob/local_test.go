// internal/app/system/blob/local_test.go
package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir(), "http://localhost:8080/files", []byte("test-secret"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return l
}

func TestPutAndDownload(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()

	err := l.Put(ctx, "packets/springfield_1.pdf", strings.NewReader("%PDF-1.4 test"),
		&storage.PutOptions{ContentType: "application/pdf"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	u, err := l.PresignedURL(ctx, "packets/springfield_1.pdf", &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: `attachment; filename="packet.pdf"`,
	})
	if err != nil {
		t.Fatalf("PresignedURL: %v", err)
	}

	req := httptest.NewRequest("GET", strings.TrimPrefix(u, "http://localhost:8080/files"), nil)
	rec := httptest.NewRecorder()
	l.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "%PDF-1.4 test" {
		t.Errorf("body: got %q", body)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "packet.pdf") {
		t.Errorf("content disposition: got %q", cd)
	}
}

func TestDownload_RejectsTamperedSignature(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()

	if err := l.Put(ctx, "packets/a.pdf", strings.NewReader("data"), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	u, err := l.PresignedURL(ctx, "packets/a.pdf", nil)
	if err != nil {
		t.Fatalf("PresignedURL: %v", err)
	}

	tampered := strings.Replace(u, "sig=", "sig=ff", 1)
	req := httptest.NewRequest("GET", strings.TrimPrefix(tampered, "http://localhost:8080/files"), nil)
	rec := httptest.NewRecorder()
	l.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestDownload_RejectsExpiredLink(t *testing.T) {
	l := newLocal(t)

	// Signature valid but exp is in the past.
	exp := time.Now().UTC().Add(-1 * time.Minute).Unix()
	sig := l.sign("packets/a.pdf", exp, "")
	target := "/packets/a.pdf?exp=" + strconv.FormatInt(exp, 10) + "&sig=" + sig

	rec := httptest.NewRecorder()
	l.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestPut_RejectsTraversal(t *testing.T) {
	l := newLocal(t)
	err := l.Put(context.Background(), "../escape.txt", strings.NewReader("x"), nil)
	if err == nil {
		t.Error("path traversal must be refused")
	}
}
