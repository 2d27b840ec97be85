package directory_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/features/directory"
	"github.com/localchambers/localchambers/internal/app/projection"
	listingstore "github.com/localchambers/localchambers/internal/app/store/listings"
	"github.com/localchambers/localchambers/internal/testutil"
)

func newTestHandler(t *testing.T) (*directory.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return directory.NewHandler(db.Client(), db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func seedListings(t *testing.T, fixtures *testutil.Fixtures, names ...string) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := projection.New(listingstore.New(fixtures.DB()), zap.NewNop())
	for _, name := range names {
		id := name
		if err := p.Apply(ctx, id, bson.M{"name": name, "region": "Test Region", "website": "https://" + name + ".example"}); err != nil {
			t.Fatalf("seed listing %s: %v", name, err)
		}
	}
}

func TestHandleListings_Paging(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	seedListings(t, fixtures, "alpha", "bravo", "charlie", "delta", "echo")

	type pageBody struct {
		Listings []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"listings"`
		NextCursor string `json:"nextCursor"`
	}
	get := func(target string) (int, pageBody) {
		req := httptest.NewRequest("GET", target, nil)
		rec := httptest.NewRecorder()
		handler.HandleListings(rec, req)
		var body pageBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		return rec.Code, body
	}

	code, page1 := get("/api/listings?limit=2")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(page1.Listings) != 2 || page1.Listings[0].Name != "alpha" || page1.Listings[1].Name != "bravo" {
		t.Fatalf("first page wrong: %+v", page1.Listings)
	}
	if page1.NextCursor == "" {
		t.Fatal("full page must carry a next cursor")
	}

	code, page2 := get("/api/listings?limit=2&after=" + page1.NextCursor)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(page2.Listings) != 2 || page2.Listings[0].Name != "charlie" {
		t.Errorf("second page wrong: %+v", page2.Listings)
	}

	code, page3 := get("/api/listings?limit=2&after=" + page2.NextCursor)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(page3.Listings) != 1 || page3.Listings[0].Name != "echo" {
		t.Errorf("last page wrong: %+v", page3.Listings)
	}
}

func TestHandleListings_BadCursor(t *testing.T) {
	handler, _ := newTestHandler(t)
	req := httptest.NewRequest("GET", "/api/listings?after=%25garbage", nil)
	rec := httptest.NewRecorder()
	handler.HandleListings(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleListings_Empty(t *testing.T) {
	handler, _ := newTestHandler(t)
	req := httptest.NewRequest("GET", "/api/listings", nil)
	rec := httptest.NewRecorder()
	handler.HandleListings(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if string(body["listings"]) != "[]" {
		t.Errorf("empty directory must serialize as [], got %s", body["listings"])
	}
}

func TestHandleChamber_ProfileWithTiers(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateVerifiedChamber(ctx, "springfield", "Springfield Chamber", "springfieldchamber.org", "admin-1")
	fixtures.CreateProduct(ctx, "springfield", "Silver", 75000)

	req := testutil.WithChiURLParam(httptest.NewRequest("GET", "/api/chambers/springfield", nil), "id", "springfield")
	rec := httptest.NewRecorder()
	handler.HandleChamber(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var profile struct {
		Name     string `json:"name"`
		Verified bool   `json:"verified"`
		Tiers    []struct {
			Name  string `json:"name"`
			Price int64  `json:"price"`
		} `json:"tiers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if profile.Name != "Springfield Chamber" || !profile.Verified {
		t.Errorf("profile wrong: %+v", profile)
	}
	if len(profile.Tiers) != 1 || profile.Tiers[0].Price != 75000 {
		t.Errorf("tiers wrong: %+v", profile.Tiers)
	}

	// The admin user id must not leak into the public profile.
	if bodyStr := rec.Body.String(); json.Valid([]byte(bodyStr)) {
		if containsField(bodyStr, "admin_user_id") || containsField(bodyStr, "adminUserId") {
			t.Error("claim fields leaked into public profile")
		}
	}
}

func containsField(body, field string) bool {
	var m map[string]any
	_ = json.Unmarshal([]byte(body), &m)
	_, ok := m[field]
	return ok
}

func TestHandleChamber_NotFound(t *testing.T) {
	handler, _ := newTestHandler(t)
	req := testutil.WithChiURLParam(httptest.NewRequest("GET", "/api/chambers/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()
	handler.HandleChamber(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateChamber(ctx, "springfield", "Springfield Chamber", "springfieldchamber.org")
	fixtures.CreateChamber(ctx, "shelbyville", "Shelbyville Chamber", "shelbyvillechamber.org")

	req := httptest.NewRequest("GET", "/api/chambers/search?q=spring", nil)
	rec := httptest.NewRecorder()
	handler.HandleSearch(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var result struct {
		Chambers []struct {
			ID string `json:"id"`
		} `json:"chambers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(result.Chambers) != 1 || result.Chambers[0].ID != "springfield" {
		t.Errorf("search result wrong: %+v", result.Chambers)
	}
}

func TestHandleSearch_RequiresQuery(t *testing.T) {
	handler, _ := newTestHandler(t)
	req := httptest.NewRequest("GET", "/api/chambers/search", nil)
	rec := httptest.NewRecorder()
	handler.HandleSearch(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleAgentsIndex(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	seedListings(t, fixtures, "alpha", "bravo")

	req := httptest.NewRequest("GET", "/api/agents/index", nil)
	rec := httptest.NewRecorder()
	handler.HandleAgentsIndex(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var index struct {
		GeneratedAt string `json:"generatedAt"`
		Count       int    `json:"count"`
		Chambers    []struct {
			ID         string `json:"id"`
			WebsiteURL string `json:"websiteUrl"`
		} `json:"chambers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &index); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if index.Count != 2 || len(index.Chambers) != 2 {
		t.Errorf("index wrong: %+v", index)
	}
	if index.GeneratedAt == "" {
		t.Error("index must carry a generation timestamp")
	}
}
