// internal/app/projection/projector.go
package projection

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	listingstore "github.com/localchambers/localchambers/internal/app/store/listings"
)

// Projector applies organization write events to the public_listings
// collection. It is the single funnel for both delivery paths (the change
// stream watcher and the in-process write hook), so the delete/upsert
// policy lives in exactly one place.
type Projector struct {
	listings *listingstore.Store
	log      *zap.Logger
}

func New(ls *listingstore.Store, log *zap.Logger) *Projector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Projector{listings: ls, log: log}
}

// Apply reconciles the listing for one organization. A nil after snapshot
// means the organization was deleted and its listing is removed. An empty
// (but non-nil) snapshot is treated as a malformed event: it is logged and
// skipped rather than wiping a live listing. Apply is idempotent, so
// at-least-once delivery from the watcher is safe.
func (p *Projector) Apply(ctx context.Context, chamberID string, after bson.M) error {
	if chamberID == "" {
		return fmt.Errorf("projection: apply with empty chamber id")
	}

	if after == nil {
		if err := p.listings.Delete(ctx, chamberID); err != nil {
			return fmt.Errorf("projection: delete listing %s: %w", chamberID, err)
		}
		p.log.Info("listing removed", zap.String("chamber_id", chamberID))
		return nil
	}

	if len(after) == 0 {
		p.log.Warn("skipping empty organization snapshot", zap.String("chamber_id", chamberID))
		return nil
	}

	l := Map(after)
	if err := p.listings.Upsert(ctx, chamberID, l); err != nil {
		return fmt.Errorf("projection: upsert listing %s: %w", chamberID, err)
	}
	p.log.Debug("listing upserted",
		zap.String("chamber_id", chamberID),
		zap.String("name", l.Name))
	return nil
}
