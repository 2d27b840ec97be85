package handoff_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/features/handoff"
	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	credentialstore "github.com/localchambers/localchambers/internal/app/store/credentials"
	memberstore "github.com/localchambers/localchambers/internal/app/store/members"
	"github.com/localchambers/localchambers/internal/testutil"
)

// memBlobStore keeps stored objects in memory and signs fake URLs.
type memBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: make(map[string][]byte)}
}

func (m *memBlobStore) Put(_ context.Context, path string, r io.Reader, _ *storage.PutOptions) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = data
	return nil
}

func (m *memBlobStore) PresignedURL(_ context.Context, path string, _ *storage.PresignOptions) (string, error) {
	return "https://blobs.test/" + path + "?sig=fake", nil
}

func (m *memBlobStore) get(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	return data, ok
}

func (m *memBlobStore) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for p := range m.objects {
		out = append(out, p)
	}
	return out
}

func newTestService(t *testing.T) (*handoff.Service, *memBlobStore, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	blobs := newMemBlobStore()
	svc := handoff.NewService(
		chamberstore.New(db.Client(), db),
		memberstore.New(db),
		credentialstore.New(db),
		blobs,
		zap.NewNop(),
	)
	return svc, blobs, testutil.NewFixtures(t, db)
}

func TestGenerate_Success(t *testing.T) {
	svc, blobs, fixtures := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateVerifiedChamber(ctx, "springfield", "Springfield Chamber", "springfieldchamber.org", "admin-1")
	fixtures.GrantChamberClaim(ctx, "admin-1", "springfield")
	fixtures.CreateMember(ctx, "springfield", "Pawn Shop", "Active")
	fixtures.CreateMember(ctx, "springfield", "Diner", "Active")

	result, err := svc.Generate(ctx, "admin-1", "springfield")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.Contains(result.DownloadURL, "packets/springfield_") {
		t.Errorf("download URL not namespaced by chamber: %s", result.DownloadURL)
	}
	expires, err := time.Parse(time.RFC3339, result.ExpiresAt)
	if err != nil {
		t.Fatalf("expiresAt not RFC3339: %v", err)
	}
	ttl := time.Until(expires)
	if ttl < 14*time.Minute || ttl > 16*time.Minute {
		t.Errorf("expiry should be about 15 minutes out, got %v", ttl)
	}

	// The stored PDF plus sidecar salt must reproduce the returned digest.
	var pdfPath, metaPath string
	for _, p := range blobs.paths() {
		if strings.HasSuffix(p, ".meta.json") {
			metaPath = p
		} else if strings.HasSuffix(p, ".pdf") {
			pdfPath = p
		}
	}
	if pdfPath == "" || metaPath == "" {
		t.Fatalf("expected pdf and metadata objects, got %v", blobs.paths())
	}

	pdf, _ := blobs.get(pdfPath)
	if !bytes.Contains(pdf, []byte("Springfield Chamber")) || !bytes.Contains(pdf, []byte("Member businesses: 2")) {
		t.Error("packet missing chamber fields")
	}

	metaRaw, _ := blobs.get(metaPath)
	var meta struct {
		Salt string `json:"salt"`
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		t.Fatalf("bad metadata: %v", err)
	}
	mac := hmac.New(sha256.New, []byte(meta.Salt))
	mac.Write(pdf)
	if hex.EncodeToString(mac.Sum(nil)) != result.Hash || meta.Hash != result.Hash {
		t.Error("digest does not verify against stored bytes and salt")
	}
}

func TestGenerate_RequiresExactClaim(t *testing.T) {
	svc, _, fixtures := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateVerifiedChamber(ctx, "springfield", "Springfield Chamber", "springfieldchamber.org", "admin-1")
	fixtures.GrantChamberClaim(ctx, "admin-1", "springfield")

	// No claim at all.
	if _, err := svc.Generate(ctx, "stranger", "springfield"); err == nil {
		t.Error("caller without a claim must be refused")
	}

	// Claim for a different chamber, including a prefix of the target.
	fixtures.CreateVerifiedChamber(ctx, "spring", "Spring Chamber", "spring.org", "admin-2")
	fixtures.GrantChamberClaim(ctx, "admin-2", "spring")
	if _, err := svc.Generate(ctx, "admin-2", "springfield"); err == nil {
		t.Error("prefix-matching claim must be refused")
	}
}

func TestGenerate_ChamberGone(t *testing.T) {
	svc, _, fixtures := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Credential exists but the record was removed.
	fixtures.GrantChamberClaim(ctx, "admin-1", "ghost")
	if _, err := svc.Generate(ctx, "admin-1", "ghost"); err == nil {
		t.Error("missing chamber must be an error")
	}
}

func TestHandleGenerate_Unauthenticated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := handoff.NewHandler(db.Client(), db, newMemBlobStore(), nil, zap.NewNop())

	req := testutil.NewJSONRequest("POST", "/api/handoff", `{"chamberId":"springfield"}`)
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}
