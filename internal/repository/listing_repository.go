package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nomadlab/seoulbang/internal/database"
	"github.com/nomadlab/seoulbang/internal/models"
)

// AddressUpdate writes a resolved address for one listing.
type AddressUpdate struct {
	ID      int64
	Address string
}

// LotNumberUpdate writes a resolved lot-number address for one listing.
type LotNumberUpdate struct {
	ID        int64
	LotNumber string
}

// AddressAndLotNumberUpdate writes both resolved addresses in one statement.
type AddressAndLotNumberUpdate struct {
	ID        int64
	Address   string
	LotNumber string
}

// BuildingUpdate writes the registry-derived attributes for one listing and
// marks it checked.
type BuildingUpdate struct {
	ID    int64
	Attrs models.BuildingAttributes
}

// ResidentialAreaUpdate writes a resolved zoning label for one listing.
type ResidentialAreaUpdate struct {
	ID              int64
	ResidentialArea string
}

// ListingRepository defines the data access operations the enrichment jobs
// and the read API need. All batch updates run in a single transaction and
// bump updated_at on every touched row.
type ListingRepository interface {
	// FindMissingLotNumber returns listings with coordinates but no lot
	// number. Returns an empty slice when none qualify.
	FindMissingLotNumber(ctx context.Context, limit int) ([]models.AddressCandidate, error)

	// FindUnchecked returns listings whose registry attributes have not
	// been resolved. NULL is_checked counts as unchecked.
	FindUnchecked(ctx context.Context, limit int) ([]models.UncheckedListing, error)

	// FindMissingResidentialArea returns the newest listings without a
	// zoning label.
	FindMissingResidentialArea(ctx context.Context, limit int) ([]models.ListingPoint, error)

	// FindResidentialArea resolves the zoning district name containing the
	// point. Returns "" with nil error when no district contains it.
	FindResidentialArea(ctx context.Context, lon, lat float64) (string, error)

	BatchUpdateAddress(ctx context.Context, updates []AddressUpdate) error
	BatchUpdateLotNumber(ctx context.Context, updates []LotNumberUpdate) error
	BatchUpdateAddressAndLotNumber(ctx context.Context, updates []AddressAndLotNumberUpdate) error
	BatchUpdateBuildingAttributes(ctx context.Context, updates []BuildingUpdate) error
	BatchUpdateResidentialArea(ctx context.Context, updates []ResidentialAreaUpdate) error

	// FindDetail loads a listing with its photos, tags, and linked
	// facilities. Returns nil, nil when the listing does not exist.
	FindDetail(ctx context.Context, id int64) (*models.ListingDetail, error)
}

type listingRepository struct {
	db *database.Database
}

// NewListingRepository creates a new instance of ListingRepository.
func NewListingRepository(db *database.Database) ListingRepository {
	return &listingRepository{
		db: db,
	}
}

func (r *listingRepository) FindMissingLotNumber(ctx context.Context, limit int) ([]models.AddressCandidate, error) {
	query := `
		SELECT
			id,
			ST_X(location) as longitude,
			ST_Y(location) as latitude,
			address,
			lot_number
		FROM listing
		WHERE location IS NOT NULL
			AND (lot_number IS NULL OR lot_number = '')
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings missing lot number: %w", err)
	}
	defer rows.Close()

	var results []models.AddressCandidate
	for rows.Next() {
		var c models.AddressCandidate
		if err := rows.Scan(&c.ID, &c.Lon, &c.Lat, &c.Address, &c.LotNumber); err != nil {
			return nil, fmt.Errorf("failed to scan address candidate row: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating address candidate rows: %w", err)
	}

	if results == nil {
		results = []models.AddressCandidate{}
	}
	return results, nil
}

func (r *listingRepository) FindUnchecked(ctx context.Context, limit int) ([]models.UncheckedListing, error) {
	query := `
		SELECT id, administrative_code, lot_number
		FROM listing
		WHERE is_checked IS NOT TRUE
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unchecked listings: %w", err)
	}
	defer rows.Close()

	var results []models.UncheckedListing
	for rows.Next() {
		var u models.UncheckedListing
		if err := rows.Scan(&u.ID, &u.AdministrativeCode, &u.LotNumber); err != nil {
			return nil, fmt.Errorf("failed to scan unchecked listing row: %w", err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unchecked listing rows: %w", err)
	}

	if results == nil {
		results = []models.UncheckedListing{}
	}
	return results, nil
}

func (r *listingRepository) FindMissingResidentialArea(ctx context.Context, limit int) ([]models.ListingPoint, error) {
	query := `
		SELECT
			id,
			ST_X(location) as longitude,
			ST_Y(location) as latitude
		FROM listing
		WHERE residential_area IS NULL
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings missing residential area: %w", err)
	}
	defer rows.Close()

	var results []models.ListingPoint
	for rows.Next() {
		var p models.ListingPoint
		if err := rows.Scan(&p.ID, &p.Lon, &p.Lat); err != nil {
			return nil, fmt.Errorf("failed to scan listing point row: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing point rows: %w", err)
	}

	if results == nil {
		results = []models.ListingPoint{}
	}
	return results, nil
}

// FindResidentialArea performs a point-in-polygon lookup against the imported
// zoning layer. The layer keeps its source column naming, hence the quoted
// identifiers.
func (r *listingRepository) FindResidentialArea(ctx context.Context, lon, lat float64) (string, error) {
	query := `
		SELECT "DGM_NM"
		FROM "UPIS_C_UQ111"
		WHERE ST_Contains(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326))
		LIMIT 1
	`

	var area string
	err := r.db.Pool.QueryRow(ctx, query, lon, lat).Scan(&area)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to query residential area at (lng=%f, lat=%f): %w", lon, lat, err)
	}
	return area, nil
}

// execBatch runs every queued statement in one transaction.
func (r *listingRepository) execBatch(ctx context.Context, batch *pgx.Batch, what string) error {
	if batch.Len() == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin %s transaction: %w", what, err)
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute %s batch: %w", what, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s batch: %w", what, err)
	}
	return nil
}

func (r *listingRepository) BatchUpdateAddress(ctx context.Context, updates []AddressUpdate) error {
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE listing SET address = $1, updated_at = NOW() WHERE id = $2`, u.Address, u.ID)
	}
	return r.execBatch(ctx, batch, "address update")
}

func (r *listingRepository) BatchUpdateLotNumber(ctx context.Context, updates []LotNumberUpdate) error {
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE listing SET lot_number = $1, updated_at = NOW() WHERE id = $2`, u.LotNumber, u.ID)
	}
	return r.execBatch(ctx, batch, "lot number update")
}

func (r *listingRepository) BatchUpdateAddressAndLotNumber(ctx context.Context, updates []AddressAndLotNumberUpdate) error {
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(
			`UPDATE listing SET address = $1, lot_number = $2, updated_at = NOW() WHERE id = $3`,
			u.Address, u.LotNumber, u.ID,
		)
	}
	return r.execBatch(ctx, batch, "address and lot number update")
}

func (r *listingRepository) BatchUpdateBuildingAttributes(ctx context.Context, updates []BuildingUpdate) error {
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`
			UPDATE listing SET
				parking_spaces = $1,
				elevator_count = $2,
				household_count = $3,
				family_count = $4,
				main_purpose = $5,
				etc_purpose = $6,
				structure_code = $7,
				approval_date = $8,
				is_checked = TRUE,
				updated_at = NOW()
			WHERE id = $9`,
			u.Attrs.ParkingSpaces,
			u.Attrs.ElevatorCount,
			u.Attrs.HouseholdCount,
			u.Attrs.FamilyCount,
			u.Attrs.MainPurpose,
			u.Attrs.EtcPurpose,
			u.Attrs.StructureCode,
			u.Attrs.ApprovalDate,
			u.ID,
		)
	}
	return r.execBatch(ctx, batch, "building attributes update")
}

func (r *listingRepository) BatchUpdateResidentialArea(ctx context.Context, updates []ResidentialAreaUpdate) error {
	batch := &pgx.Batch{}
	for _, u := range updates {
		// The guard keeps a concurrently resolved label from being overwritten.
		batch.Queue(
			`UPDATE listing SET residential_area = $1, updated_at = NOW() WHERE id = $2 AND residential_area IS NULL`,
			u.ResidentialArea, u.ID,
		)
	}
	return r.execBatch(ctx, batch, "residential area update")
}

func (r *listingRepository) FindDetail(ctx context.Context, id int64) (*models.ListingDetail, error) {
	query := `
		SELECT
			id,
			address,
			ST_X(location) as longitude,
			ST_Y(location) as latitude,
			deposit,
			monthly_rent_cost,
			maintenance_cost,
			area,
			floor,
			total_floor,
			property_type,
			room_type,
			features,
			direction,
			residential_area,
			lot_number,
			administrative_code,
			description,
			main_image_url,
			parking_spaces,
			elevator_count,
			household_count,
			family_count,
			main_purpose,
			etc_purpose,
			structure_code,
			approval_date
		FROM listing
		WHERE id = $1
	`

	var d models.ListingDetail
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Address,
		&d.Longitude,
		&d.Latitude,
		&d.Deposit,
		&d.MonthlyRentCost,
		&d.MaintenanceCost,
		&d.Area,
		&d.Floor,
		&d.TotalFloor,
		&d.PropertyType,
		&d.RoomType,
		&d.Features,
		&d.Direction,
		&d.ResidentialArea,
		&d.LotNumber,
		&d.AdministrativeCode,
		&d.Description,
		&d.MainImageURL,
		&d.ParkingSpaces,
		&d.ElevatorCount,
		&d.HouseholdCount,
		&d.FamilyCount,
		&d.MainPurpose,
		&d.EtcPurpose,
		&d.StructureCode,
		&d.ApprovalDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query listing %d: %w", id, err)
	}

	if d.Photos, err = r.findPhotos(ctx, id); err != nil {
		return nil, err
	}
	if d.Tags, err = r.findTags(ctx, id); err != nil {
		return nil, err
	}
	if d.BusStops, err = r.findNearbyFacilities(ctx, models.BusStops, id); err != nil {
		return nil, err
	}
	if d.Subways, err = r.findNearbyFacilities(ctx, models.Subways, id); err != nil {
		return nil, err
	}
	if d.Cctvs, err = r.findNearbyFacilities(ctx, models.Cctvs, id); err != nil {
		return nil, err
	}
	if d.RestFoodPermits, err = r.findNearbyFacilities(ctx, models.RestFoodPermits, id); err != nil {
		return nil, err
	}

	return &d, nil
}

func (r *listingRepository) findPhotos(ctx context.Context, id int64) ([]models.ListingPhoto, error) {
	query := `
		SELECT image_url, image_type, image_order
		FROM listing_photo
		WHERE listing_id = $1
		ORDER BY image_order
	`

	rows, err := r.db.Pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos for listing %d: %w", id, err)
	}
	defer rows.Close()

	photos := []models.ListingPhoto{}
	for rows.Next() {
		var p models.ListingPhoto
		var imageType *string
		if err := rows.Scan(&p.ImageURL, &imageType, &p.Order); err != nil {
			return nil, fmt.Errorf("failed to scan photo row: %w", err)
		}
		if imageType != nil {
			p.ImageType = *imageType
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photo rows: %w", err)
	}
	return photos, nil
}

func (r *listingRepository) findTags(ctx context.Context, id int64) ([]string, error) {
	query := `
		SELECT t.name
		FROM tag t
		JOIN listing_tag_map m ON m.tag_id = t.id
		WHERE m.listing_id = $1
		ORDER BY t.name
	`

	rows, err := r.db.Pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags for listing %d: %w", id, err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}
	return tags, nil
}

// findNearbyFacilities reads the precomputed link rows for one facility class,
// closest first. Identifiers come from the fixed FacilityClass set.
func (r *listingRepository) findNearbyFacilities(ctx context.Context, class models.FacilityClass, id int64) ([]models.NearbyFacility, error) {
	query := fmt.Sprintf(`
		SELECT
			f.id,
			m.distance,
			f.name,
			f.category,
			ST_X(f.location) as longitude,
			ST_Y(f.location) as latitude
		FROM %s m
		JOIN %s f ON f.id = m.%s
		WHERE m.listing_id = $1
		ORDER BY m.distance
	`, class.MapTable, class.Table, class.FacilityColumn)

	rows, err := r.db.Pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s links for listing %d: %w", class.Name, id, err)
	}
	defer rows.Close()

	facilities := []models.NearbyFacility{}
	for rows.Next() {
		var f models.NearbyFacility
		if err := rows.Scan(&f.ID, &f.DistanceMeters, &f.Name, &f.Category, &f.Longitude, &f.Latitude); err != nil {
			return nil, fmt.Errorf("failed to scan %s link row: %w", class.Name, err)
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s link rows: %w", class.Name, err)
	}
	return facilities, nil
}
