// internal/app/store/leads/leadstore.go
package leadstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localchambers/localchambers/internal/app/system/normalize"
	"github.com/localchambers/localchambers/internal/domain/models"
)

// Store is the leads collection: contact requests from businesses that want
// to join by invoice or asked about contact-priced tiers.
type Store struct {
	c *mongo.Collection
}

// New creates a Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("leads")}
}

// EnsureIndexes creates the per-chamber inbox index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chamber_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

// Create records a lead.
func (s *Store) Create(ctx context.Context, l models.Lead) (models.Lead, error) {
	l.ID = primitive.NewObjectID()
	l.UserEmail = normalize.Email(l.UserEmail)
	l.UserName = normalize.Name(l.UserName)
	l.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Lead{}, err
	}
	return l, nil
}

// ListByChamber returns a chamber's leads, newest first.
func (s *Store) ListByChamber(ctx context.Context, chamberID string, limit int64) ([]models.Lead, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"chamber_id": chamberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var leads []models.Lead
	if err := cur.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}
