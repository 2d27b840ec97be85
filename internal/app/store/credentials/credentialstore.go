// internal/app/store/credentials/credentialstore.go
package credentialstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/localchambers/localchambers/internal/domain/models"
)

// Store is the user_claims collection: the credential set attached to each
// identity. The verification service merges the chamber admin claim here
// strictly after its record mutation commits.
type Store struct {
	c *mongo.Collection
}

// New creates a Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_claims")}
}

// Get returns the claim set for userID. An identity with no claims yet gets
// an empty, non-nil map.
func (s *Store) Get(ctx context.Context, userID string) (models.UserClaims, error) {
	var uc models.UserClaims
	err := s.c.FindOne(ctx, bson.M{"_id": userID}).Decode(&uc)
	if err == mongo.ErrNoDocuments {
		return models.UserClaims{UserID: userID, Claims: map[string]string{}}, nil
	}
	if err != nil {
		return models.UserClaims{}, err
	}
	if uc.Claims == nil {
		uc.Claims = map[string]string{}
	}
	return uc, nil
}

// Merge folds the given claims into the identity's existing set without
// discarding unrelated entries. Each claim is written under its own key so
// concurrent merges of disjoint claims cannot clobber one another.
func (s *Store) Merge(ctx context.Context, userID string, claims map[string]string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range claims {
		set["claims."+k] = v
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": set}, options.Update().SetUpsert(true))
	return err
}

// ChamberClaim returns the chamber id the identity administers, or "" when
// the identity holds no admin claim.
func (s *Store) ChamberClaim(ctx context.Context, userID string) (string, error) {
	uc, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if uc.Claims[models.ClaimRole] != models.RoleAdmin {
		return "", nil
	}
	return uc.Claims[models.ClaimChamberID], nil
}
