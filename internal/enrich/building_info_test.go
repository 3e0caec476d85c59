package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nomadlab/seoulbang/internal/cache"
	"github.com/nomadlab/seoulbang/internal/logger"
	"github.com/nomadlab/seoulbang/internal/models"
	"github.com/nomadlab/seoulbang/internal/registry"
	"github.com/nomadlab/seoulbang/internal/repository"
)

func strPtr(s string) *string {
	return &s
}

func newBuildingInfoJob(listings *MockListingRepository, fetcher *MockFetcher) *BuildingInfoJob {
	return NewBuildingInfoJob(listings, fetcher, cache.New[models.BuildingAttributes](), 50, logger.New("test"))
}

func TestBuildingInfoJob_UpdatesResolvedListings(t *testing.T) {
	mockRepo := new(MockListingRepository)
	mockFetcher := new(MockFetcher)
	job := newBuildingInfoJob(mockRepo, mockFetcher)
	ctx := context.Background()

	rows := []models.UncheckedListing{
		{ID: 1, AdministrativeCode: strPtr("1121510100"), LotNumber: strPtr("서울 광진구 광장동 256-1")},
	}
	mockRepo.On("FindUnchecked", ctx, 50).Return(rows, nil)

	expectedLoc := models.LocationInfo{SigunguCd: "11215", BjdongCd: "10100", Bun: "0256", Ji: "0001"}
	item := &registry.BuildingItem{Households: 20, Families: 18}
	mockFetcher.On("FetchBuildingInfo", ctx, expectedLoc).Return(item, nil).Once()

	mockRepo.On("BatchUpdateBuildingAttributes", ctx, mock.MatchedBy(func(updates []repository.BuildingUpdate) bool {
		return len(updates) == 1 &&
			updates[0].ID == 1 &&
			updates[0].Attrs.HouseholdCount == 20 &&
			updates[0].Attrs.FamilyCount == 18
	})).Return(nil)

	require.NoError(t, job.Run(ctx))
	mockRepo.AssertExpectations(t)
	mockFetcher.AssertExpectations(t)
}

func TestBuildingInfoJob_NoDataLeavesListingUnchecked(t *testing.T) {
	mockRepo := new(MockListingRepository)
	mockFetcher := new(MockFetcher)
	job := newBuildingInfoJob(mockRepo, mockFetcher)
	ctx := context.Background()

	rows := []models.UncheckedListing{
		{ID: 1, AdministrativeCode: strPtr("1121510100"), LotNumber: strPtr("광장동 256-1")},
	}
	mockRepo.On("FindUnchecked", ctx, 50).Return(rows, nil)
	mockFetcher.On("FetchBuildingInfo", ctx, mock.Anything).Return(nil, nil)

	require.NoError(t, job.Run(ctx))

	// No write happens, so is_checked stays false and the row is retried later.
	mockRepo.AssertNotCalled(t, "BatchUpdateBuildingAttributes")
}

func TestBuildingInfoJob_SharedLotFetchedOnce(t *testing.T) {
	mockRepo := new(MockListingRepository)
	mockFetcher := new(MockFetcher)
	job := newBuildingInfoJob(mockRepo, mockFetcher)
	ctx := context.Background()

	rows := []models.UncheckedListing{
		{ID: 1, AdministrativeCode: strPtr("1121510100"), LotNumber: strPtr("광장동 256-1")},
		{ID: 2, AdministrativeCode: strPtr("1121510100"), LotNumber: strPtr("광장동 256-1")},
	}
	mockRepo.On("FindUnchecked", ctx, 50).Return(rows, nil)

	item := &registry.BuildingItem{Households: 20}
	mockFetcher.On("FetchBuildingInfo", ctx, mock.Anything).Return(item, nil).Once()

	mockRepo.On("BatchUpdateBuildingAttributes", ctx, mock.MatchedBy(func(updates []repository.BuildingUpdate) bool {
		return len(updates) == 2
	})).Return(nil)

	require.NoError(t, job.Run(ctx))
	mockFetcher.AssertNumberOfCalls(t, "FetchBuildingInfo", 1)
}

func TestBuildingInfoJob_SkipsMalformedKeys(t *testing.T) {
	mockRepo := new(MockListingRepository)
	mockFetcher := new(MockFetcher)
	job := newBuildingInfoJob(mockRepo, mockFetcher)
	ctx := context.Background()

	rows := []models.UncheckedListing{
		{ID: 1, AdministrativeCode: nil, LotNumber: strPtr("광장동 256-1")},
		{ID: 2, AdministrativeCode: strPtr("112"), LotNumber: strPtr("광장동 256-1")},
		{ID: 3, AdministrativeCode: strPtr("1121510100"), LotNumber: nil},
		{ID: 4, AdministrativeCode: strPtr("1121510100"), LotNumber: strPtr("광장동 번지없음")},
	}
	mockRepo.On("FindUnchecked", ctx, 50).Return(rows, nil)

	require.NoError(t, job.Run(ctx))
	mockFetcher.AssertNotCalled(t, "FetchBuildingInfo")
	mockRepo.AssertNotCalled(t, "BatchUpdateBuildingAttributes")
}

func TestBuildingInfoJob_FetchErrorDoesNotAbortBatch(t *testing.T) {
	mockRepo := new(MockListingRepository)
	mockFetcher := new(MockFetcher)
	job := newBuildingInfoJob(mockRepo, mockFetcher)
	ctx := context.Background()

	rows := []models.UncheckedListing{
		{ID: 1, AdministrativeCode: strPtr("1121510100"), LotNumber: strPtr("광장동 256-1")},
		{ID: 2, AdministrativeCode: strPtr("1121510100"), LotNumber: strPtr("광장동 300")},
	}
	mockRepo.On("FindUnchecked", ctx, 50).Return(rows, nil)

	failLoc := models.LocationInfo{SigunguCd: "11215", BjdongCd: "10100", Bun: "0256", Ji: "0001"}
	okLoc := models.LocationInfo{SigunguCd: "11215", BjdongCd: "10100", Bun: "0300", Ji: "0000"}
	mockFetcher.On("FetchBuildingInfo", ctx, failLoc).Return(nil, errors.New("upstream down"))
	mockFetcher.On("FetchBuildingInfo", ctx, okLoc).Return(&registry.BuildingItem{Households: 5}, nil)

	mockRepo.On("BatchUpdateBuildingAttributes", ctx, mock.MatchedBy(func(updates []repository.BuildingUpdate) bool {
		return len(updates) == 1 && updates[0].ID == 2
	})).Return(nil)

	require.NoError(t, job.Run(ctx))
	mockRepo.AssertExpectations(t)
}

func TestBuildingInfoJob_SelectFailurePropagates(t *testing.T) {
	mockRepo := new(MockListingRepository)
	mockFetcher := new(MockFetcher)
	job := newBuildingInfoJob(mockRepo, mockFetcher)
	ctx := context.Background()

	mockRepo.On("FindUnchecked", ctx, 50).Return(nil, errors.New("db down"))

	err := job.Run(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unchecked listings")
}
