// internal/app/store/chambers/chamberstore.go
package chamberstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localchambers/localchambers/internal/app/system/fieldmap"
	"github.com/localchambers/localchambers/internal/app/system/txn"
	"github.com/localchambers/localchambers/internal/domain/models"
)

var (
	// ErrNotFound is returned when no chamber exists under the given id.
	ErrNotFound = errors.New("chamber not found")
	// ErrAlreadyClaimed is returned by ClaimAsAdmin when the chamber is
	// already verified under a different administrator.
	ErrAlreadyClaimed = errors.New("chamber already verified by another administrator")
	// ErrDuplicateChamber is returned when an insert collides on a unique index.
	ErrDuplicateChamber = errors.New("a chamber with this id already exists")
)

// WriteHook is invoked after every committed write with the chamber id and
// the post-write document (nil after a delete). Bootstrap wires the listing
// projection here on deployments where change streams are unavailable; with
// a change-stream watcher running the hook stays nil.
type WriteHook func(ctx context.Context, id string, after bson.M)

// Store is the authoritative organizations collection.
type Store struct {
	client  *mongo.Client
	c       *mongo.Collection
	onWrite WriteHook
}

// New creates a Store. The client is retained for transactions.
func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, c: db.Collection("organizations")}
}

// SetWriteHook installs the post-write hook. Call once during startup,
// before the store handles requests.
func (s *Store) SetWriteHook(h WriteHook) { s.onWrite = h }

// EnsureIndexes creates the search indexes for the directory.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name_ci", Value: 1}}},
		{Keys: bson.D{{Key: "industry_tags", Value: 1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// notify reloads the document and fires the write hook, if installed.
func (s *Store) notify(ctx context.Context, id string) {
	if s.onWrite == nil {
		return
	}
	raw, err := s.GetRaw(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.onWrite(ctx, id, nil)
		}
		return
	}
	s.onWrite(ctx, id, raw)
}

// GetRaw returns the raw document for id, preserving legacy fields that the
// normalized model drops. Callers wanting a typed record use Get.
func (s *Store) GetRaw(ctx context.Context, id string) (bson.M, error) {
	var doc bson.M
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Get returns the chamber for id with all legacy-field fallbacks applied.
func (s *Store) Get(ctx context.Context, id string) (models.Chamber, error) {
	doc, err := s.GetRaw(ctx, id)
	if err != nil {
		return models.Chamber{}, err
	}
	return fieldmap.Chamber(id, doc), nil
}

// Insert creates a chamber record. Seed imports and fixtures use this; the
// service itself never creates chambers.
func (s *Store) Insert(ctx context.Context, ch models.Chamber) error {
	now := time.Now().UTC()
	ch.NameCI = text.Fold(ch.Name)
	if ch.VerificationStatus == "" {
		ch.VerificationStatus = models.VerificationUnverified
	}
	ch.CreatedAt = now
	ch.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, ch); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateChamber
		}
		return err
	}
	s.notify(ctx, ch.ID)
	return nil
}

// UpdateProfile sets the business fields an administrator may edit. Status
// and claim fields are deliberately not reachable from here; only
// ClaimAsAdmin mutates them.
func (s *Store) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
		set["name_ci"] = text.Fold(*patch.Name)
	}
	if patch.Region != nil {
		set["region"] = *patch.Region
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.LogoURL != nil {
		set["logo_url"] = *patch.LogoURL
	}
	if patch.IndustryTags != nil {
		set["industry_tags"] = patch.IndustryTags
	}
	if patch.Services != nil {
		set["services"] = patch.Services
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	s.notify(ctx, id)
	return nil
}

// ProfilePatch holds optional business-field updates; nil fields are left
// untouched.
type ProfilePatch struct {
	Name         *string
	Region       *string
	Address      *string
	Description  *string
	LogoURL      *string
	IndustryTags []string
	Services     []string
}

// Delete removes a chamber. The projection reacts through the change stream
// or the write hook.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if s.onWrite != nil {
		s.onWrite(ctx, id, nil)
	}
	return nil
}

// claimUpdate is the write applied when a claim succeeds. verified_at is a
// server-assigned timestamp.
func claimUpdate(userID string) bson.M {
	return bson.M{
		"$set": bson.M{
			"verification_status": models.VerificationVerified,
			"admin_user_id":       userID,
		},
		"$currentDate": bson.M{"verified_at": true},
	}
}

// ClaimAsAdmin performs the transactional compare-and-set that grants
// administrative control of a chamber:
//
//   - the record must still exist (ErrNotFound otherwise),
//   - a record already Verified under a different identity is never
//     displaced (ErrAlreadyClaimed),
//   - the same identity may re-claim idempotently.
//
// On deployments without transaction support the same check-and-write runs
// as a single conditional update, which MongoDB applies atomically per
// document, so two racing claimants still cannot both win.
func (s *Store) ClaimAsAdmin(ctx context.Context, id, userID string) error {
	err := txn.WithTransaction(ctx, s.client, func(sc mongo.SessionContext) error {
		var doc struct {
			VerificationStatus string `bson:"verification_status"`
			AdminUserID        string `bson:"admin_user_id"`
		}
		// Transactional re-read; the caller's earlier read may be stale.
		findErr := s.c.FindOne(sc, bson.M{"_id": id}).Decode(&doc)
		if findErr == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		if findErr != nil {
			return findErr
		}

		if doc.VerificationStatus == models.VerificationVerified && doc.AdminUserID != userID {
			return ErrAlreadyClaimed
		}

		_, updErr := s.c.UpdateOne(sc, bson.M{"_id": id}, claimUpdate(userID))
		return updErr
	})

	if err != nil && txn.IsNotSupported(err) {
		err = s.claimConditional(ctx, id, userID)
	}
	if err == nil {
		s.notify(ctx, id)
	}
	return err
}

// claimConditional is the non-transactional fallback: one conditional
// update whose filter encodes the compare half of the compare-and-set.
func (s *Store) claimConditional(ctx context.Context, id, userID string) error {
	filter := bson.M{
		"_id": id,
		"$or": []bson.M{
			{"verification_status": bson.M{"$ne": models.VerificationVerified}},
			{"admin_user_id": userID},
		},
	}
	res, err := s.c.UpdateOne(ctx, filter, claimUpdate(userID))
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: either the record is gone or another admin holds it.
	err = s.c.FindOne(ctx, bson.M{"_id": id}).Err()
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadyClaimed
}

// SearchByName returns chambers whose folded name starts with the folded
// query, optionally filtered by industry tag, capped at limit.
func (s *Store) SearchByName(ctx context.Context, query, tag string, limit int64) ([]models.Chamber, error) {
	filter := bson.M{}
	if query != "" {
		filter["name_ci"] = bson.M{"$regex": "^" + escapeRegex(text.Fold(query))}
	}
	if tag != "" {
		filter["industry_tags"] = tag
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Chamber
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		id, _ := doc["_id"].(string)
		out = append(out, fieldmap.Chamber(id, doc))
	}
	return out, cur.Err()
}

// All streams every chamber, normalized. Used by the agent directory index.
func (s *Store) All(ctx context.Context, limit int64) ([]models.Chamber, error) {
	return s.SearchByName(ctx, "", "", limit)
}

// Count returns the number of chambers matching the filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// escapeRegex quotes regex metacharacters in a search prefix.
func escapeRegex(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
