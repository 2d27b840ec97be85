// internal/app/bootstrap/startup_test.go
package bootstrap

import (
	"testing"

	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/testutil"
)

func TestEnsureSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	if err := EnsureSchema(ctx, nil, AppConfig{}, deps, zap.NewNop()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	cur, err := db.Collection("users").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	var found bool
	for cur.Next(ctx) {
		var idx struct {
			Unique bool `bson:"unique"`
		}
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("decode index: %v", err)
		}
		if idx.Unique {
			found = true
		}
	}
	if !found {
		t.Error("users collection should carry a unique index")
	}
}

func TestStartup_HookMode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	if err := Startup(ctx, nil, AppConfig{ProjectionMode: "hook"}, deps, zap.NewNop()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	t.Cleanup(func() {
		projector = nil
		projWatcher = nil
		projectionMode = ""
	})

	if projectionMode != "hook" {
		t.Errorf("projection mode: got %q, want hook", projectionMode)
	}
	if projector == nil {
		t.Error("projector should be built in hook mode")
	}
	if projWatcher != nil {
		t.Error("no watcher should run in hook mode")
	}
}

func TestValidateConfig_RejectsBadProjectionMode(t *testing.T) {
	cfg := AppConfig{
		MongoURI:       "mongodb://localhost:27017",
		ProjectionMode: "sometimes",
	}
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("unknown projection_mode must be rejected")
	}
}
