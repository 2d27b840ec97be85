// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/localchambers/localchambers/internal/app/system/normalize"
	"github.com/localchambers/localchambers/internal/domain/models"
)

const bcryptCost = 12

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	// ErrBadCredentials is returned on a failed password check.
	ErrBadCredentials = errors.New("invalid email or password")
)

// Store is the users collection.
type Store struct {
	c *mongo.Collection
}

// New creates a Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique email index duplicate detection
// depends on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// SignUpParams are the fields collected at signup.
type SignUpParams struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	CompanyName string
	IsNonProfit bool
}

// Create registers a password account. Accounts created through OAuth
// arrive via UpsertOAuth instead.
func (s *Store) Create(ctx context.Context, p SignUpParams) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcryptCost)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Email:        normalize.Email(p.Email),
		PasswordHash: string(hash),
		AuthMethod:   "password",
		FirstName:    normalize.Name(p.FirstName),
		LastName:     normalize.Name(p.LastName),
		CompanyName:  normalize.Name(p.CompanyName),
		IsNonProfit:  p.IsNonProfit,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate checks an email/password pair. The same error is returned
// for unknown emails and wrong passwords.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrBadCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if u.PasswordHash == "" {
		return models.User{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrBadCredentials
	}
	return u, nil
}

// UpsertOAuth creates or refreshes an account signed in through an OAuth
// provider. Provider emails are treated as verified.
func (s *Store) UpsertOAuth(ctx context.Context, email, firstName, lastName string) (models.User, error) {
	email = normalize.Email(email)
	now := time.Now().UTC()

	var existing models.User
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	switch err {
	case mongo.ErrNoDocuments:
		u := models.User{
			ID:            primitive.NewObjectID(),
			Email:         email,
			EmailVerified: true,
			AuthMethod:    "google",
			FirstName:     normalize.Name(firstName),
			LastName:      normalize.Name(lastName),
			Status:        "active",
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := s.c.InsertOne(ctx, u); err != nil {
			return models.User{}, err
		}
		return u, nil
	case nil:
		_, err := s.c.UpdateByID(ctx, existing.ID, bson.M{"$set": bson.M{
			"email_verified": true,
			"updated_at":     now,
		}})
		if err != nil {
			return models.User{}, err
		}
		existing.EmailVerified = true
		return existing, nil
	default:
		return models.User{}, err
	}
}

// GetByID returns a user by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// MarkEmailVerified records that the user completed email verification.
func (s *Store) MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"email_verified": true,
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
