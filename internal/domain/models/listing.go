// internal/domain/models/listing.go
package models

import "time"

// PublicListing is the denormalized, read-optimized copy of a chamber kept in
// the public_listings collection. It shares the chamber's id and is maintained
// by the projection package; nothing else writes to it.
type PublicListing struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Region       string    `bson:"region" json:"region"`
	WebsiteURL   string    `bson:"website_url" json:"websiteUrl"`
	IndustryTags []string  `bson:"industry_tags" json:"industryTags"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}
