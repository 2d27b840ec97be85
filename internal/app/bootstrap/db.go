// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/store/audit"
	chamberstore "github.com/localchambers/localchambers/internal/app/store/chambers"
	leadstore "github.com/localchambers/localchambers/internal/app/store/leads"
	listingstore "github.com/localchambers/localchambers/internal/app/store/listings"
	memberstore "github.com/localchambers/localchambers/internal/app/store/members"
	"github.com/localchambers/localchambers/internal/app/store/oauthstate"
	productstore "github.com/localchambers/localchambers/internal/app/store/products"
	userstore "github.com/localchambers/localchambers/internal/app/store/users"
	"github.com/localchambers/localchambers/internal/app/system/timeouts"
)

// ConnectDB opens the MongoDB connection and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes each store queries by.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"organizations", chamberstore.New(deps.MongoClient, db).EnsureIndexes},
		{"public_listings", listingstore.New(db).EnsureIndexes},
		{"members", memberstore.New(db).EnsureIndexes},
		{"products", productstore.New(db).EnsureIndexes},
		{"leads", leadstore.New(db).EnsureIndexes},
		{"users", userstore.New(db).EnsureIndexes},
		{"audit_events", audit.New(db).EnsureIndexes},
		{"oauth_states", oauthstate.New(db).EnsureIndexes},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("ensure indexes for %s: %w", s.name, err)
		}
	}

	logger.Info("database indexes ensured")
	return nil
}
