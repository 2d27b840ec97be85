// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that can sign in and claim a chamber.
type User struct {
	ID            primitive.ObjectID `bson:"_id"`
	Email         string             `bson:"email"`
	EmailVerified bool               `bson:"email_verified"`
	PasswordHash  string             `bson:"password_hash,omitempty"` // empty for OAuth-only accounts
	AuthMethod    string             `bson:"auth_method"`             // "password" or "google"
	FirstName     string             `bson:"first_name,omitempty"`
	LastName      string             `bson:"last_name,omitempty"`
	CompanyName   string             `bson:"company_name,omitempty"`
	IsNonProfit   bool               `bson:"is_non_profit,omitempty"`
	Status        string             `bson:"status"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

// UserClaims is the credential set attached to an identity. Claims are merged
// on write; granting the chamber admin claim must never discard unrelated
// entries already present.
type UserClaims struct {
	UserID    string            `bson:"_id"`
	Claims    map[string]string `bson:"claims"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// Claim keys used by the verification and handoff services.
const (
	ClaimChamberID = "chamber_id"
	ClaimRole      = "role"

	RoleAdmin = "admin"
)
