package projection_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/projection"
	listingstore "github.com/localchambers/localchambers/internal/app/store/listings"
	"github.com/localchambers/localchambers/internal/testutil"
)

func TestProjector_UpsertAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ls := listingstore.New(db)
	p := projection.New(ls, zap.NewNop())

	after := bson.M{
		"name":          "Harborview Chamber",
		"region":        "Coastal",
		"website":       "https://harborview.example",
		"industry_tags": bson.A{"marine", "tourism"},
	}

	if err := p.Apply(ctx, "harborview", after); err != nil {
		t.Fatalf("Apply upsert failed: %v", err)
	}

	l, err := ls.Get(ctx, "harborview")
	if err != nil {
		t.Fatalf("Get after upsert failed: %v", err)
	}
	if l.Name != "Harborview Chamber" || l.Region != "Coastal" {
		t.Errorf("unexpected listing: %+v", l)
	}
	if l.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be server-assigned on upsert")
	}

	if err := p.Apply(ctx, "harborview", nil); err != nil {
		t.Fatalf("Apply delete failed: %v", err)
	}
	ok, err := ls.Exists(ctx, "harborview")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("listing should be removed after delete event")
	}
}

func TestProjector_DeleteAbsentListing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := projection.New(listingstore.New(db), zap.NewNop())
	if err := p.Apply(ctx, "never-existed", nil); err != nil {
		t.Fatalf("deleting an absent listing should be a no-op, got %v", err)
	}
}

func TestProjector_EmptySnapshotSkipped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ls := listingstore.New(db)
	p := projection.New(ls, zap.NewNop())

	if err := p.Apply(ctx, "skipper", bson.M{"name": "Live Listing"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// A malformed empty snapshot must not wipe the live listing.
	if err := p.Apply(ctx, "skipper", bson.M{}); err != nil {
		t.Fatalf("Apply with empty snapshot should not error, got %v", err)
	}

	l, err := ls.Get(ctx, "skipper")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if l.Name != "Live Listing" {
		t.Errorf("listing was altered by empty snapshot: %+v", l)
	}
}

func TestProjector_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ls := listingstore.New(db)
	p := projection.New(ls, zap.NewNop())

	after := bson.M{"org_name": "Twice Chamber", "region": "East"}
	if err := p.Apply(ctx, "twice", after); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}
	first, err := ls.Get(ctx, "twice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if err := p.Apply(ctx, "twice", after); err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	second, err := ls.Get(ctx, "twice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if first.Name != second.Name || first.Region != second.Region ||
		first.WebsiteURL != second.WebsiteURL {
		t.Errorf("redelivery changed business fields: %+v vs %+v", first, second)
	}
}
