package enrich

import (
	"context"
	"fmt"

	"github.com/nomadlab/seoulbang/internal/logger"
	"github.com/nomadlab/seoulbang/internal/models"
	"github.com/nomadlab/seoulbang/internal/repository"
)

// FacilityLinkJob links every still-unlinked listing to the facilities of one
// class within the distance cutoff. The insert skips existing pairs, so a rerun
// after a partial failure only fills in what is missing.
type FacilityLinkJob struct {
	facilities    repository.FacilityRepository
	class         models.FacilityClass
	expandDegrees float64
	maxMeters     float64
	log           *logger.Logger
}

// NewFacilityLinkJob creates a link job for one facility class. expandDegrees
// sizes the index-assisted bounding box; maxMeters is the exact geodesic
// cutoff applied inside it.
func NewFacilityLinkJob(
	facilities repository.FacilityRepository,
	class models.FacilityClass,
	expandDegrees, maxMeters float64,
	log *logger.Logger,
) *FacilityLinkJob {
	return &FacilityLinkJob{
		facilities:    facilities,
		class:         class,
		expandDegrees: expandDegrees,
		maxMeters:     maxMeters,
		log:           log,
	}
}

// Run links all currently unlinked listings. Each listing is linked in its
// own statement so one bad row cannot block the rest.
func (j *FacilityLinkJob) Run(ctx context.Context) error {
	ids, err := j.facilities.FindUnlinkedListingIDs(ctx, j.class)
	if err != nil {
		return fmt.Errorf("failed to load listings unlinked to %s: %w", j.class.Name, err)
	}
	if len(ids) == 0 {
		return nil
	}

	var linked int64
	failed := 0
	for _, id := range ids {
		n, err := j.facilities.LinkNearby(ctx, j.class, id, j.expandDegrees, j.maxMeters)
		if err != nil {
			failed++
			j.log.Warn("Facility link failed", map[string]interface{}{
				"listing_id": id,
				"facility":   j.class.Name,
				"error":      err.Error(),
			})
			continue
		}
		linked += n
	}

	j.log.Info("Facility link batch complete", map[string]interface{}{
		"facility":   j.class.Name,
		"candidates": len(ids),
		"links":      linked,
		"failed":     failed,
	})
	return nil
}
