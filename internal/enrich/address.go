package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/nomadlab/seoulbang/internal/cache"
	"github.com/nomadlab/seoulbang/internal/geocode"
	"github.com/nomadlab/seoulbang/internal/logger"
	"github.com/nomadlab/seoulbang/internal/repository"
)

// AddressJob reverse-geocodes listings that have coordinates but no lot
// number. Each record gets the road address and the lot-number address it is
// still missing; records that need both are written in one statement.
type AddressJob struct {
	listings  repository.ListingRepository
	geocoder  geocode.Resolver
	cache     *cache.Cache[geocode.AddressResult]
	batchSize int
	log       *logger.Logger
}

// NewAddressJob creates a new AddressJob. The cache deduplicates reverse
// geocodes for listings sharing a point within and across runs; empty
// results are not cached so the provider is retried later.
func NewAddressJob(
	listings repository.ListingRepository,
	geocoder geocode.Resolver,
	resultCache *cache.Cache[geocode.AddressResult],
	batchSize int,
	log *logger.Logger,
) *AddressJob {
	return &AddressJob{
		listings:  listings,
		geocoder:  geocoder,
		cache:     resultCache,
		batchSize: batchSize,
		log:       log,
	}
}

// Run processes one batch. The three update buckets commit in separate
// transactions so a failure writing one bucket does not discard the others.
func (j *AddressJob) Run(ctx context.Context) error {
	rows, err := j.listings.FindMissingLotNumber(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("failed to load listings missing lot number: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	var both []repository.AddressAndLotNumberUpdate
	var addressOnly []repository.AddressUpdate
	var lotOnly []repository.LotNumberUpdate

	for _, row := range rows {
		if !row.HasCoordinates() {
			continue
		}

		lon, lat := *row.Lon, *row.Lat
		result, _, err := j.cache.GetOrCompute(geocode.CacheKey(lon, lat), func() (geocode.AddressResult, bool, error) {
			r, err := j.geocoder.ResolveAddress(ctx, lon, lat)
			if err != nil {
				return geocode.AddressResult{}, false, err
			}
			return r, !r.Empty(), nil
		})
		if err != nil {
			j.log.Warn("Reverse geocode failed", map[string]interface{}{
				"listing_id": row.ID,
				"error":      err.Error(),
			})
			continue
		}

		needsAddress := (row.Address == nil || *row.Address == "") && result.RoadAddress != ""
		needsLot := result.LotAddress != ""

		switch {
		case needsAddress && needsLot:
			both = append(both, repository.AddressAndLotNumberUpdate{
				ID: row.ID, Address: result.RoadAddress, LotNumber: result.LotAddress,
			})
		case needsAddress:
			addressOnly = append(addressOnly, repository.AddressUpdate{
				ID: row.ID, Address: result.RoadAddress,
			})
		case needsLot:
			lotOnly = append(lotOnly, repository.LotNumberUpdate{
				ID: row.ID, LotNumber: result.LotAddress,
			})
		}
	}

	var errs []error
	if len(both) > 0 {
		if err := j.listings.BatchUpdateAddressAndLotNumber(ctx, both); err != nil {
			errs = append(errs, fmt.Errorf("failed to write combined address updates: %w", err))
		}
	}
	if len(addressOnly) > 0 {
		if err := j.listings.BatchUpdateAddress(ctx, addressOnly); err != nil {
			errs = append(errs, fmt.Errorf("failed to write address updates: %w", err))
		}
	}
	if len(lotOnly) > 0 {
		if err := j.listings.BatchUpdateLotNumber(ctx, lotOnly); err != nil {
			errs = append(errs, fmt.Errorf("failed to write lot number updates: %w", err))
		}
	}

	j.log.Info("Address batch complete", map[string]interface{}{
		"candidates":   len(rows),
		"combined":     len(both),
		"address_only": len(addressOnly),
		"lot_only":     len(lotOnly),
	})
	return errors.Join(errs...)
}
