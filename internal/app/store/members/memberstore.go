// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localchambers/localchambers/internal/app/system/normalize"
	"github.com/localchambers/localchambers/internal/domain/models"
)

// ErrNotFound is returned when no member record matches.
var ErrNotFound = errors.New("member not found")

// Store is the members collection: businesses that joined (or are joining)
// a chamber.
type Store struct {
	c *mongo.Collection
}

// New creates a Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

// EnsureIndexes creates the dashboard listing index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "chamber_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "joined_at", Value: -1},
		},
	})
	return err
}

// Create records a new member. The status reflects how they joined:
// Provisional after a card charge, Pending_Invoice for invoice requests.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.Email = normalize.Email(m.Email)
	m.CompanyName = normalize.Name(m.CompanyName)
	if m.Status == "" {
		m.Status = models.MembershipProvisional
	}
	m.JoinedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// CountByChamber returns the number of member records for a chamber. The
// membership packet reports this figure.
func (s *Store) CountByChamber(ctx context.Context, chamberID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"chamber_id": chamberID})
}

// ListByChamber returns a chamber's members, optionally filtered by status,
// newest first.
func (s *Store) ListByChamber(ctx context.Context, chamberID, status string, limit int64) ([]models.Member, error) {
	filter := bson.M{"chamber_id": chamberID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "joined_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var members []models.Member
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// SetStatus moves a member to a new membership status. The member must
// belong to chamberID; admins cannot reach across chambers.
func (s *Store) SetStatus(ctx context.Context, chamberID string, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "chamber_id": chamberID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns one member of a chamber.
func (s *Store) Get(ctx context.Context, chamberID string, id primitive.ObjectID) (models.Member, error) {
	var m models.Member
	err := s.c.FindOne(ctx, bson.M{"_id": id, "chamber_id": chamberID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Member{}, ErrNotFound
	}
	if err != nil {
		return models.Member{}, err
	}
	return m, nil
}
