// internal/app/store/listings/listingstore.go
package listingstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localchambers/localchambers/internal/domain/models"
)

// ErrNotFound is returned when no listing exists under the given id.
var ErrNotFound = errors.New("listing not found")

// Store is the public_listings collection: the denormalized read copy the
// directory pages and agent index serve from. Only the projection writes
// here.
type Store struct {
	c *mongo.Collection
}

// New creates a Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("public_listings")}
}

// EnsureIndexes creates the paging and region indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "region", Value: 1}, {Key: "name", Value: 1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Upsert writes the mapped listing fields for id with a field-level merge,
// so future listing fields not covered by the mapping survive. updated_at
// is server-assigned at write time, never copied from the source record.
func (s *Store) Upsert(ctx context.Context, id string, listing models.PublicListing) error {
	set := bson.M{
		"name":          listing.Name,
		"region":        listing.Region,
		"website_url":   listing.WebsiteURL,
		"industry_tags": listing.IndustryTags,
	}
	update := bson.M{
		"$set":         set,
		"$currentDate": bson.M{"updated_at": true},
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	return err
}

// Delete removes the listing for id. Deleting an absent listing is not an
// error; redelivered delete events must be safe.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Get returns the listing for id.
func (s *Store) Get(ctx context.Context, id string) (models.PublicListing, error) {
	var l models.PublicListing
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return models.PublicListing{}, ErrNotFound
	}
	if err != nil {
		return models.PublicListing{}, err
	}
	return l, nil
}

// Exists reports whether a listing exists for id.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Page returns up to limit listings ordered by name, starting after the
// given name/id pair (both empty for the first page). The directory uses
// keyset paging; offsets degrade on large collections.
func (s *Store) Page(ctx context.Context, afterName, afterID string, limit int64) ([]models.PublicListing, error) {
	filter := bson.M{}
	if afterName != "" || afterID != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$gt": afterName}},
			{"name": afterName, "_id": bson.M{"$gt": afterID}},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var listings []models.PublicListing
	if err := cur.All(ctx, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// ByRegion returns listings in a region, ordered by name.
func (s *Store) ByRegion(ctx context.Context, region string, limit int64) ([]models.PublicListing, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"region": region}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var listings []models.PublicListing
	if err := cur.All(ctx, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Count returns the number of listings.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

