// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryVerify = "verify"
	CategoryAdmin  = "admin"
	CategoryAuth   = "auth"
)

// Verification event types
const (
	EventClaimVerified      = "chamber_claim_verified"
	EventClaimDomainReject  = "chamber_claim_domain_rejected"
	EventClaimConflict      = "chamber_claim_conflict"
	EventClaimGrantFailed   = "chamber_claim_grant_failed"
	EventPacketGenerated    = "membership_packet_generated"
)

// Admin event types
const (
	EventChamberUpdated  = "chamber_updated"
	EventTierCreated     = "tier_created"
	EventTierUpdated     = "tier_updated"
	EventTierDeleted     = "tier_deleted"
	EventMemberActivated = "member_activated"
)

// Auth event types
const (
	EventLoginSuccess = "login_success"
	EventLoginFailed  = "login_failed"
	EventSignup       = "signup"
	EventLogout       = "logout"
)

// Event is one audit record.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`
	ChamberID string             `bson:"chamber_id,omitempty"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// UserID is the identity the event is about; for admin actions it is
	// also the actor.
	UserID string `bson:"user_id,omitempty"`

	IP string `bson:"ip,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// EnsureIndexes creates the indexes the audit views query by.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{
			{Key: "chamber_id", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "category", Value: 1},
			{Key: "event_type", Value: 1},
			{Key: "timestamp", Value: -1},
		}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Recent returns the newest events for a chamber, most recent first.
func (s *Store) Recent(ctx context.Context, chamberID string, limit int64) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"chamber_id": chamberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
