package repository

import (
	"context"
	"fmt"

	"github.com/nomadlab/seoulbang/internal/database"
	"github.com/nomadlab/seoulbang/internal/models"
)

// FacilityRepository links listings to nearby public facilities. One link row
// per (listing, facility) pair carries the geodesic distance in meters.
type FacilityRepository interface {
	// FindUnlinkedListingIDs returns listings with coordinates that have no
	// link rows yet for the given class.
	FindUnlinkedListingIDs(ctx context.Context, class models.FacilityClass) ([]int64, error)

	// LinkNearby inserts link rows for every facility of the class within
	// maxMeters of the listing. Existing pairs are left untouched, so the
	// operation is idempotent. Returns the number of rows inserted.
	LinkNearby(ctx context.Context, class models.FacilityClass, listingID int64, expandDegrees, maxMeters float64) (int64, error)
}

type facilityRepository struct {
	db *database.Database
}

// NewFacilityRepository creates a new instance of FacilityRepository.
func NewFacilityRepository(db *database.Database) FacilityRepository {
	return &facilityRepository{
		db: db,
	}
}

func (r *facilityRepository) FindUnlinkedListingIDs(ctx context.Context, class models.FacilityClass) ([]int64, error) {
	query := fmt.Sprintf(`
		SELECT p.id
		FROM listing p
		WHERE p.location IS NOT NULL
			AND NOT EXISTS (
				SELECT 1 FROM %s m WHERE m.listing_id = p.id
			)
	`, class.MapTable)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings unlinked to %s: %w", class.Name, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan unlinked listing id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unlinked listing ids: %w", err)
	}

	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// LinkNearby prefilters with a bounding box so the && operator can use the
// spatial index, then applies the exact geography distance cutoff. Distance is
// stored once at link time instead of being recomputed per read.
func (r *facilityRepository) LinkNearby(ctx context.Context, class models.FacilityClass, listingID int64, expandDegrees, maxMeters float64) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (listing_id, %[2]s, distance)
		SELECT
			p.id,
			f.id,
			ST_Distance(p.location::geography, f.location::geography)
		FROM listing p
		JOIN %[3]s f
			ON f.location && ST_Expand(p.location, $2)
			AND ST_DWithin(p.location::geography, f.location::geography, $3)
		WHERE p.id = $1
			AND p.location IS NOT NULL
			AND NOT EXISTS (
				SELECT 1 FROM %[1]s m
				WHERE m.listing_id = p.id AND m.%[2]s = f.id
			)
	`, class.MapTable, class.FacilityColumn, class.Table)

	tag, err := r.db.Pool.Exec(ctx, query, listingID, expandDegrees, maxMeters)
	if err != nil {
		return 0, fmt.Errorf("failed to link listing %d to nearby %s: %w", listingID, class.Name, err)
	}
	return tag.RowsAffected(), nil
}
