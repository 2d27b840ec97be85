// internal/app/store/products/productstore.go
package productstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localchambers/localchambers/internal/domain/models"
)

// ErrNotFound is returned when no product matches.
var ErrNotFound = errors.New("membership tier not found")

// Store is the products collection: membership tiers per chamber. Some
// legacy chamber records carry inline bronze/silver/gold prices instead;
// ListByChamber folds those into the same shape when the collection has
// nothing for the chamber.
type Store struct {
	c        *mongo.Collection
	chambers *mongo.Collection
}

// New creates a Store. The organizations collection is consulted for
// legacy inline tiers.
func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("products"),
		chambers: db.Collection("organizations"),
	}
}

// EnsureIndexes creates the per-chamber listing index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chamber_id", Value: 1}, {Key: "price", Value: 1}},
	})
	return err
}

// Create adds a membership tier for a chamber.
func (s *Store) Create(ctx context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if p.PricingType == "" {
		p.PricingType = models.PricingFixed
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Update replaces a tier's mutable fields. The tier must belong to chamberID.
func (s *Store) Update(ctx context.Context, chamberID string, id primitive.ObjectID, p models.Product) error {
	set := bson.M{
		"name":         p.Name,
		"description":  p.Description,
		"pricing_type": p.PricingType,
		"benefits":     p.Benefits,
		"updated_at":   time.Now().UTC(),
	}
	if p.PricingType == models.PricingFixed {
		set["price"] = p.Price
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "chamber_id": chamberID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a tier. The tier must belong to chamberID.
func (s *Store) Delete(ctx context.Context, chamberID string, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "chamber_id": chamberID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns one tier of a chamber.
func (s *Store) Get(ctx context.Context, chamberID string, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	err := s.c.FindOne(ctx, bson.M{"_id": id, "chamber_id": chamberID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// ListByChamber returns a chamber's tiers, cheapest first. When the chamber
// has no products, legacy inline bronze/silver/gold prices on the chamber
// record are surfaced instead.
func (s *Store) ListByChamber(ctx context.Context, chamberID string) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"chamber_id": chamberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	if len(products) > 0 {
		return products, nil
	}
	return s.legacyInlineTiers(ctx, chamberID)
}

// legacyInlineTiers reads the tiers sub-document on old chamber records.
// Zero-priced entries are dropped; the seed data used 0 for "not offered".
func (s *Store) legacyInlineTiers(ctx context.Context, chamberID string) ([]models.Product, error) {
	var doc struct {
		Tiers map[string]int64 `bson:"tiers"`
	}
	err := s.chambers.FindOne(ctx, bson.M{"_id": chamberID}).Decode(&doc)
	if err == mongo.ErrNoDocuments || len(doc.Tiers) == 0 {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Stable order: bronze, silver, gold, then anything else.
	order := []string{"bronze", "silver", "gold"}
	seen := map[string]bool{}
	var names []string
	for _, n := range order {
		if _, ok := doc.Tiers[n]; ok {
			names = append(names, n)
			seen[n] = true
		}
	}
	for n := range doc.Tiers {
		if !seen[n] {
			names = append(names, n)
		}
	}

	var products []models.Product
	for _, n := range names {
		price := doc.Tiers[n]
		if price <= 0 {
			continue
		}
		display := strings.ToUpper(n[:1]) + n[1:]
		products = append(products, models.Product{
			ChamberID:   chamberID,
			Name:        display,
			Description: fmt.Sprintf("%s tier membership", display),
			PricingType: models.PricingFixed,
			Price:       price,
		})
	}
	return products, nil
}
