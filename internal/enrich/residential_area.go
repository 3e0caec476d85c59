package enrich

import (
	"context"
	"fmt"

	"github.com/nomadlab/seoulbang/internal/logger"
	"github.com/nomadlab/seoulbang/internal/repository"
)

// ResidentialAreaJob labels listings with the zoning district containing
// their point. A listing with no coordinates or no containing district is
// left untouched; the label is only ever written where it is still NULL.
type ResidentialAreaJob struct {
	listings  repository.ListingRepository
	batchSize int
	log       *logger.Logger
}

func NewResidentialAreaJob(listings repository.ListingRepository, batchSize int, log *logger.Logger) *ResidentialAreaJob {
	return &ResidentialAreaJob{
		listings:  listings,
		batchSize: batchSize,
		log:       log,
	}
}

// Run processes one batch of the newest unlabeled listings.
func (j *ResidentialAreaJob) Run(ctx context.Context) error {
	points, err := j.listings.FindMissingResidentialArea(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("failed to load listings missing residential area: %w", err)
	}
	if len(points) == 0 {
		return nil
	}

	var updates []repository.ResidentialAreaUpdate
	for _, p := range points {
		if !p.HasCoordinates() {
			continue
		}

		area, err := j.listings.FindResidentialArea(ctx, *p.Lon, *p.Lat)
		if err != nil {
			j.log.Warn("Residential area lookup failed", map[string]interface{}{
				"listing_id": p.ID,
				"error":      err.Error(),
			})
			continue
		}
		if area == "" {
			continue
		}

		updates = append(updates, repository.ResidentialAreaUpdate{ID: p.ID, ResidentialArea: area})
	}

	if len(updates) > 0 {
		if err := j.listings.BatchUpdateResidentialArea(ctx, updates); err != nil {
			return fmt.Errorf("failed to write residential areas: %w", err)
		}
	}

	j.log.Info("Residential area batch complete", map[string]interface{}{
		"candidates": len(points),
		"updated":    len(updates),
	})
	return nil
}
