package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/localchambers/localchambers/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateChamber creates an unverified chamber with the given id, name, and
// website domain.
func (f *Fixtures) CreateChamber(ctx context.Context, id, name, websiteDomain string) models.Chamber {
	f.t.Helper()

	now := time.Now().UTC()
	ch := models.Chamber{
		ID:                 id,
		Name:               name,
		NameCI:             text.Fold(name),
		Region:             "Test Region",
		WebsiteDomain:      websiteDomain,
		Website:            "https://" + websiteDomain,
		VerificationStatus: models.VerificationUnverified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	_, err := f.db.Collection("organizations").InsertOne(ctx, ch)
	if err != nil {
		f.t.Fatalf("failed to create test chamber: %v", err)
	}

	return ch
}

// CreateVerifiedChamber creates a chamber already claimed by adminUserID.
func (f *Fixtures) CreateVerifiedChamber(ctx context.Context, id, name, websiteDomain, adminUserID string) models.Chamber {
	f.t.Helper()

	ch := f.CreateChamber(ctx, id, name, websiteDomain)
	now := time.Now().UTC()
	_, err := f.db.Collection("organizations").UpdateOne(ctx,
		map[string]interface{}{"_id": id},
		map[string]interface{}{"$set": map[string]interface{}{
			"verification_status": models.VerificationVerified,
			"admin_user_id":       adminUserID,
			"verified_at":         now,
		}})
	if err != nil {
		f.t.Fatalf("failed to verify test chamber: %v", err)
	}

	ch.VerificationStatus = models.VerificationVerified
	ch.AdminUserID = adminUserID
	ch.VerifiedAt = &now
	return ch
}

// CreateLegacyChamber inserts a raw organization document, for exercising
// the field fallbacks applied to bulk-imported records.
func (f *Fixtures) CreateLegacyChamber(ctx context.Context, id string, doc map[string]interface{}) {
	f.t.Helper()

	doc["_id"] = id
	_, err := f.db.Collection("organizations").InsertOne(ctx, doc)
	if err != nil {
		f.t.Fatalf("failed to create legacy test chamber: %v", err)
	}
}

// CreateUser creates a password-auth user with a verified email.
func (f *Fixtures) CreateUser(ctx context.Context, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:            primitive.NewObjectID(),
		Email:         email,
		EmailVerified: true,
		AuthMethod:    "password",
		Status:        "active",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, u)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return u
}

// CreateMember creates a member of the given chamber with the given status.
func (f *Fixtures) CreateMember(ctx context.Context, chamberID, companyName, status string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:          primitive.NewObjectID(),
		ChamberID:   chamberID,
		CompanyName: companyName,
		Email:       "member@example.com",
		Tier:        "Silver",
		Amount:      25000,
		Status:      status,
		JoinedAt:    now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("members").InsertOne(ctx, m)
	if err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}

	return m
}

// CreateProduct creates a fixed-price membership tier for a chamber.
func (f *Fixtures) CreateProduct(ctx context.Context, chamberID, name string, priceCents int64) models.Product {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Product{
		ID:          primitive.NewObjectID(),
		ChamberID:   chamberID,
		Name:        name,
		Description: name + " membership",
		PricingType: models.PricingFixed,
		Price:       priceCents,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("products").InsertOne(ctx, p)
	if err != nil {
		f.t.Fatalf("failed to create test product: %v", err)
	}

	return p
}

// GrantChamberClaim writes an admin credential for userID over chamberID,
// as the verification service would after a successful claim.
func (f *Fixtures) GrantChamberClaim(ctx context.Context, userID, chamberID string) {
	f.t.Helper()

	claims := models.UserClaims{
		UserID: userID,
		Claims: map[string]string{
			models.ClaimChamberID: chamberID,
			models.ClaimRole:      models.RoleAdmin,
		},
		UpdatedAt: time.Now().UTC(),
	}
	_, err := f.db.Collection("user_claims").InsertOne(ctx, claims)
	if err != nil {
		f.t.Fatalf("failed to grant test chamber claim: %v", err)
	}
}
