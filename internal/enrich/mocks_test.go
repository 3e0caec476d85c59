package enrich

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nomadlab/seoulbang/internal/geocode"
	"github.com/nomadlab/seoulbang/internal/models"
	"github.com/nomadlab/seoulbang/internal/registry"
	"github.com/nomadlab/seoulbang/internal/repository"
)

// MockListingRepository is a mock implementation of ListingRepository for testing
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) FindMissingLotNumber(ctx context.Context, limit int) ([]models.AddressCandidate, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AddressCandidate), args.Error(1)
}

func (m *MockListingRepository) FindUnchecked(ctx context.Context, limit int) ([]models.UncheckedListing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UncheckedListing), args.Error(1)
}

func (m *MockListingRepository) FindMissingResidentialArea(ctx context.Context, limit int) ([]models.ListingPoint, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ListingPoint), args.Error(1)
}

func (m *MockListingRepository) FindResidentialArea(ctx context.Context, lon, lat float64) (string, error) {
	args := m.Called(ctx, lon, lat)
	return args.String(0), args.Error(1)
}

func (m *MockListingRepository) BatchUpdateAddress(ctx context.Context, updates []repository.AddressUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockListingRepository) BatchUpdateLotNumber(ctx context.Context, updates []repository.LotNumberUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockListingRepository) BatchUpdateAddressAndLotNumber(ctx context.Context, updates []repository.AddressAndLotNumberUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockListingRepository) BatchUpdateBuildingAttributes(ctx context.Context, updates []repository.BuildingUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockListingRepository) BatchUpdateResidentialArea(ctx context.Context, updates []repository.ResidentialAreaUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockListingRepository) FindDetail(ctx context.Context, id int64) (*models.ListingDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListingDetail), args.Error(1)
}

// MockFetcher is a mock implementation of registry.Fetcher for testing
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchBuildingInfo(ctx context.Context, loc models.LocationInfo) (*registry.BuildingItem, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.BuildingItem), args.Error(1)
}

// MockResolver is a mock implementation of geocode.Resolver for testing
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveAddress(ctx context.Context, lon, lat float64) (geocode.AddressResult, error) {
	args := m.Called(ctx, lon, lat)
	return args.Get(0).(geocode.AddressResult), args.Error(1)
}

func (m *MockResolver) ResolveCoordinates(ctx context.Context, address string) (geocode.Coordinates, bool, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(geocode.Coordinates), args.Bool(1), args.Error(2)
}

// MockFacilityRepository is a mock implementation of FacilityRepository for testing
type MockFacilityRepository struct {
	mock.Mock
}

func (m *MockFacilityRepository) FindUnlinkedListingIDs(ctx context.Context, class models.FacilityClass) ([]int64, error) {
	args := m.Called(ctx, class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockFacilityRepository) LinkNearby(ctx context.Context, class models.FacilityClass, listingID int64, expandDegrees, maxMeters float64) (int64, error) {
	args := m.Called(ctx, class, listingID, expandDegrees, maxMeters)
	return args.Get(0).(int64), args.Error(1)
}
