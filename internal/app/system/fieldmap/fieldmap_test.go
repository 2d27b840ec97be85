package fieldmap

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestName_FallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		doc  bson.M
		want string
	}{
		{"name wins", bson.M{"name": "Acme Chamber", "org_name": "Old Acme"}, "Acme Chamber"},
		{"org_name fallback", bson.M{"org_name": "Acme"}, "Acme"},
		{"empty name skipped", bson.M{"name": "", "org_name": "Acme"}, "Acme"},
		{"default", bson.M{}, "Unnamed"},
		{"non-string ignored", bson.M{"name": 42}, "Unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.doc); got != tt.want {
				t.Errorf("Name(%v) = %q, want %q", tt.doc, got, tt.want)
			}
		})
	}
}

func TestWebsiteURL_FallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		doc  bson.M
		want string
	}{
		{"website wins", bson.M{"website": "acme.com", "websiteUrl": "other.com"}, "acme.com"},
		{"websiteUrl fallback", bson.M{"websiteUrl": "acme.com"}, "acme.com"},
		{"snake_case fallback", bson.M{"website_url": "acme.com"}, "acme.com"},
		{"default empty", bson.M{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WebsiteURL(tt.doc); got != tt.want {
				t.Errorf("WebsiteURL(%v) = %q, want %q", tt.doc, got, tt.want)
			}
		})
	}
}

func TestIndustryTags_NeverPropagatesNonArray(t *testing.T) {
	tests := []struct {
		name string
		doc  bson.M
		want []string
	}{
		{"string slice", bson.M{"industry_tags": []string{"Tech", "Retail"}}, []string{"Tech", "Retail"}},
		{"bson array", bson.M{"industry_tags": bson.A{"Tech"}}, []string{"Tech"}},
		{"camelCase fallback", bson.M{"industryTags": bson.A{"Tech"}}, []string{"Tech"}},
		{"legacy tags fallback", bson.M{"tags": []string{"Tech"}}, []string{"Tech"}},
		{"scalar value", bson.M{"industry_tags": "Tech"}, []string{}},
		{"absent", bson.M{}, []string{}},
		{"mixed array keeps strings", bson.M{"industry_tags": bson.A{"Tech", 7}}, []string{"Tech"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IndustryTags(tt.doc)
			if got == nil {
				t.Fatal("IndustryTags returned nil; want non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("IndustryTags(%v) = %v, want %v", tt.doc, got, tt.want)
			}
		})
	}
}

func TestChamber_Normalization(t *testing.T) {
	doc := bson.M{
		"org_name": "Acme",
		"website":  "acme.com",
		"region":   "WA",
		"coordinates": bson.M{
			"lat": 47.6,
			"lng": -122.3,
		},
	}

	c := Chamber("c1", doc)

	if c.ID != "c1" {
		t.Errorf("ID = %q, want c1", c.ID)
	}
	if c.Name != "Acme" {
		t.Errorf("Name = %q, want Acme", c.Name)
	}
	if c.Website != "acme.com" {
		t.Errorf("Website = %q, want acme.com", c.Website)
	}
	// With no explicit website_domain, the registered domain falls back to
	// the website field.
	if c.WebsiteDomain != "acme.com" {
		t.Errorf("WebsiteDomain = %q, want acme.com", c.WebsiteDomain)
	}
	if len(c.IndustryTags) != 0 {
		t.Errorf("IndustryTags = %v, want empty", c.IndustryTags)
	}
	if c.VerificationStatus != "Unverified" {
		t.Errorf("VerificationStatus = %q, want Unverified", c.VerificationStatus)
	}
	if c.Coordinates == nil || c.Coordinates.Lat != 47.6 {
		t.Errorf("Coordinates = %+v, want lat 47.6", c.Coordinates)
	}
}
