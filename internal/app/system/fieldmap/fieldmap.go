// internal/app/system/fieldmap/fieldmap.go

// Package fieldmap centralizes the legacy-field fallbacks applied when
// reading organization documents. Seed data was imported from research
// spreadsheets over several schema generations, so the same logical field
// exists under multiple names (name/org_name, website/websiteUrl/domain).
// Every reader goes through this table so the fallback order lives in
// exactly one place.
package fieldmap

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/localchambers/localchambers/internal/domain/models"
)

// fallback is an ordered list of source keys tried in turn, with a default
// used when none yields a usable value.
type fallback struct {
	keys []string
	def  string
}

var (
	nameField    = fallback{keys: []string{"name", "org_name"}, def: "Unnamed"}
	regionField  = fallback{keys: []string{"region"}, def: ""}
	websiteField = fallback{keys: []string{"website", "website_url", "websiteUrl"}, def: ""}
	domainField  = fallback{keys: []string{"website_domain", "domain", "website"}, def: ""}
	descField    = fallback{keys: []string{"description", "about"}, def: ""}
	logoField    = fallback{keys: []string{"logo_url", "logo"}, def: ""}
)

// str resolves a fallback chain against a raw document. Only non-empty
// string values count as present.
func (f fallback) str(doc bson.M) string {
	for _, k := range f.keys {
		if v, ok := doc[k].(string); ok && v != "" {
			return v
		}
	}
	return f.def
}

// Name resolves the display name of an organization document.
func Name(doc bson.M) string { return nameField.str(doc) }

// Region resolves the region of an organization document.
func Region(doc bson.M) string { return regionField.str(doc) }

// WebsiteURL resolves the public website URL of an organization document.
func WebsiteURL(doc bson.M) string { return websiteField.str(doc) }

// WebsiteDomain resolves the registered domain used by the verification gate.
func WebsiteDomain(doc bson.M) string { return domainField.str(doc) }

// IndustryTags resolves the industry tag list. Non-array values (including
// absent fields) resolve to an empty slice; a non-array value is never
// propagated.
func IndustryTags(doc bson.M) []string {
	tags := stringSlice(doc["industry_tags"])
	if tags == nil {
		tags = stringSlice(doc["industryTags"])
	}
	if tags == nil {
		tags = stringSlice(doc["tags"])
	}
	if tags == nil {
		return []string{}
	}
	return tags
}

func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		out := make([]string, len(vv))
		copy(out, vv)
		return out
	case bson.A:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Chamber normalizes a raw organization document into a models.Chamber,
// applying every fallback in the table. The id must be supplied by the
// caller since documents decoded from change events carry it separately.
func Chamber(id string, doc bson.M) models.Chamber {
	c := models.Chamber{
		ID:            id,
		Name:          Name(doc),
		Region:        Region(doc),
		Description:   descField.str(doc),
		LogoURL:       logoField.str(doc),
		Website:       WebsiteURL(doc),
		WebsiteDomain: WebsiteDomain(doc),
		IndustryTags:  IndustryTags(doc),
	}

	if v, ok := doc["address"].(string); ok {
		c.Address = v
	}
	if v, ok := doc["verification_status"].(string); ok {
		c.VerificationStatus = v
	} else {
		c.VerificationStatus = models.VerificationUnverified
	}
	if v, ok := doc["admin_user_id"].(string); ok {
		c.AdminUserID = v
	}
	if v, ok := doc["owner_id"].(string); ok {
		c.OwnerID = v
	}
	if v, ok := doc["stripe_connected"].(bool); ok {
		c.StripeConnected = v
	}
	if coords, ok := doc["coordinates"].(bson.M); ok {
		lat, latOK := numeric(coords["lat"])
		lng, lngOK := numeric(coords["lng"])
		if latOK && lngOK {
			c.Coordinates = &models.Coordinates{Lat: lat, Lng: lng}
		}
	}
	c.Services = stringSlice(doc["services"])

	return c
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
