// internal/app/projection/mapper.go
package projection

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/localchambers/localchambers/internal/app/system/fieldmap"
	"github.com/localchambers/localchambers/internal/domain/models"
)

// Map derives the public listing fields from an organization document's
// "after" snapshot. It is a pure function: mapping the same snapshot twice
// yields identical business fields, which is what makes redelivered change
// events harmless. UpdatedAt is left zero here; the store assigns server
// time at write.
func Map(after bson.M) models.PublicListing {
	return models.PublicListing{
		Name:         fieldmap.Name(after),
		Region:       fieldmap.Region(after),
		WebsiteURL:   fieldmap.WebsiteURL(after),
		IndustryTags: fieldmap.IndustryTags(after),
	}
}
