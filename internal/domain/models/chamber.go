// internal/domain/models/chamber.go
package models

import (
	"time"
)

// Verification statuses for a chamber record.
const (
	VerificationUnverified = "Unverified"
	VerificationPending    = "Pending"
	VerificationVerified   = "Verified"
)

// Chamber is the authoritative organization record.
//
// Records are bulk-imported from research data, so several fields exist in
// legacy spellings (org_name, website, domain). Readers should go through
// fieldmap.Chamber rather than decoding raw documents, so the fallbacks are
// applied in one place.
type Chamber struct {
	ID     string `bson:"_id"`
	Name   string `bson:"name,omitempty"`
	NameCI string `bson:"name_ci,omitempty"` // folded, for prefix search
	// OrgName is the legacy name field from seed data; Name wins when both exist.
	OrgName     string       `bson:"org_name,omitempty"`
	Region      string       `bson:"region,omitempty"`
	Address     string       `bson:"address,omitempty"`
	Coordinates *Coordinates `bson:"coordinates,omitempty"`
	IndustryTags []string    `bson:"industry_tags,omitempty"`
	Description string       `bson:"description,omitempty"`
	LogoURL     string       `bson:"logo_url,omitempty"`

	// WebsiteDomain is the registered domain used as the verification gate.
	// Website and Domain are legacy spellings from seed data.
	WebsiteDomain string `bson:"website_domain,omitempty"`
	Website       string `bson:"website,omitempty"`
	Domain        string `bson:"domain,omitempty"`

	Services []string `bson:"services,omitempty"`

	VerificationStatus string     `bson:"verification_status,omitempty"`
	AdminUserID        string     `bson:"admin_user_id,omitempty"`
	VerifiedAt         *time.Time `bson:"verified_at,omitempty"`

	OwnerID         string `bson:"owner_id,omitempty"`
	StripeConnected bool   `bson:"stripe_connected,omitempty"`

	CreatedAt time.Time `bson:"created_at,omitempty"`
	UpdatedAt time.Time `bson:"updated_at,omitempty"`
}

// Coordinates is a lat/lng pair for the map view.
type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}
