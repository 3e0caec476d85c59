// Package enrich holds the background jobs that fill in missing listing data:
// building-registry attributes, geocoded addresses, zoning labels, and
// proximity links to public facilities. Each run processes one bounded batch;
// a failure on one record is logged and never aborts the rest of the batch.
package enrich

import (
	"context"
	"fmt"

	"github.com/nomadlab/seoulbang/internal/cache"
	"github.com/nomadlab/seoulbang/internal/logger"
	"github.com/nomadlab/seoulbang/internal/lotnumber"
	"github.com/nomadlab/seoulbang/internal/models"
	"github.com/nomadlab/seoulbang/internal/registry"
	"github.com/nomadlab/seoulbang/internal/repository"
)

// BuildingInfoJob resolves registry attributes for unchecked listings.
// A listing stays unchecked until the registry actually returns an entry, so
// lots the register has no data for are retried on later runs.
type BuildingInfoJob struct {
	listings  repository.ListingRepository
	registry  registry.Fetcher
	cache     *cache.Cache[models.BuildingAttributes]
	batchSize int
	log       *logger.Logger
}

// NewBuildingInfoJob creates a new BuildingInfoJob. The cache deduplicates
// registry calls for listings sharing a lot within and across runs.
func NewBuildingInfoJob(
	listings repository.ListingRepository,
	fetcher registry.Fetcher,
	resultCache *cache.Cache[models.BuildingAttributes],
	batchSize int,
	log *logger.Logger,
) *BuildingInfoJob {
	return &BuildingInfoJob{
		listings:  listings,
		registry:  fetcher,
		cache:     resultCache,
		batchSize: batchSize,
		log:       log,
	}
}

// Run processes one batch of unchecked listings and writes all resolved
// attributes in a single transaction.
func (j *BuildingInfoJob) Run(ctx context.Context) error {
	rows, err := j.listings.FindUnchecked(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("failed to load unchecked listings: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	var updates []repository.BuildingUpdate
	skipped := 0
	for _, row := range rows {
		loc, ok := j.locationFor(row)
		if !ok {
			skipped++
			continue
		}

		attrs, found, err := j.cache.GetOrCompute(loc.CacheKey(), func() (models.BuildingAttributes, bool, error) {
			item, err := j.registry.FetchBuildingInfo(ctx, loc)
			if err != nil {
				return models.BuildingAttributes{}, false, err
			}
			if item == nil {
				return models.BuildingAttributes{}, false, nil
			}
			return item.Attributes(), true, nil
		})
		if err != nil {
			j.log.Warn("Building registry lookup failed", map[string]interface{}{
				"listing_id": row.ID,
				"location":   loc.CacheKey(),
				"error":      err.Error(),
			})
			continue
		}
		if !found {
			continue
		}

		updates = append(updates, repository.BuildingUpdate{ID: row.ID, Attrs: attrs})
	}

	if len(updates) > 0 {
		if err := j.listings.BatchUpdateBuildingAttributes(ctx, updates); err != nil {
			return fmt.Errorf("failed to write building attributes: %w", err)
		}
	}

	j.log.Info("Building info batch complete", map[string]interface{}{
		"candidates": len(rows),
		"updated":    len(updates),
		"unusable":   skipped,
	})
	return nil
}

// locationFor derives the registry query key from a listing's administrative
// code and lot number. Listings with malformed keys are skipped, not failed.
func (j *BuildingInfoJob) locationFor(row models.UncheckedListing) (models.LocationInfo, bool) {
	if row.AdministrativeCode == nil || len(*row.AdministrativeCode) != models.AdministrativeCodeLength {
		return models.LocationInfo{}, false
	}
	if row.LotNumber == nil {
		return models.LocationInfo{}, false
	}

	code := *row.AdministrativeCode
	loc := models.LocationInfo{
		SigunguCd: code[:5],
		BjdongCd:  code[5:],
		Bun:       lotnumber.ExtractBun(*row.LotNumber),
		Ji:        lotnumber.ExtractJi(*row.LotNumber),
	}
	return loc, loc.Valid()
}
