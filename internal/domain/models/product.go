// internal/domain/models/product.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pricing types for a membership tier.
const (
	PricingFixed   = "Fixed"
	PricingContact = "Contact"
)

// Product is a membership tier offered by a chamber. Tiers authored through
// the admin wizard land here; legacy inline bronze/silver/gold tiers on the
// chamber record are surfaced through the same shape by the products store.
type Product struct {
	ID          primitive.ObjectID `bson:"_id"`
	ChamberID   string             `bson:"chamber_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	PricingType string             `bson:"pricing_type"`
	Price       int64              `bson:"price,omitempty"` // cents; unset for Contact pricing
	Benefits    []string           `bson:"benefits,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

// Lead is a contact request for invoice-based or contact-priced memberships.
type Lead struct {
	ID          primitive.ObjectID `bson:"_id"`
	ChamberID   string             `bson:"chamber_id"`
	ProductID   string             `bson:"product_id,omitempty"`
	ProductName string             `bson:"product_name"`
	UserName    string             `bson:"user_name"`
	UserEmail   string             `bson:"user_email"`
	UserPhone   string             `bson:"user_phone,omitempty"`
	Message     string             `bson:"message,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}
