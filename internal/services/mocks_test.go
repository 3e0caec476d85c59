package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nomadlab/seoulbang/internal/geocode"
	"github.com/nomadlab/seoulbang/internal/models"
	"github.com/nomadlab/seoulbang/internal/repository"
)

// Remaining ListingRepository methods the read-path tests never exercise.

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
	return m.Called(ctx, updates).Error(0)
}

func (m *MockListingRepository) BatchUpdateLotNumber(ctx context.Context, updates []repository.LotNumberUpdate) error {
	return m.Called(ctx, updates).Error(0)
}

func (m *MockListingRepository) BatchUpdateAddressAndLotNumber(ctx context.Context, updates []repository.AddressAndLotNumberUpdate) error {
	return m.Called(ctx, updates).Error(0)
}

func (m *MockListingRepository) BatchUpdateBuildingAttributes(ctx context.Context, updates []repository.BuildingUpdate) error {
	return m.Called(ctx, updates).Error(0)
}

func (m *MockListingRepository) BatchUpdateResidentialArea(ctx context.Context, updates []repository.ResidentialAreaUpdate) error {
	return m.Called(ctx, updates).Error(0)
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
