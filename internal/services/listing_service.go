package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nomadlab/seoulbang/internal/logger"
	"github.com/nomadlab/seoulbang/internal/models"
	"github.com/nomadlab/seoulbang/internal/repository"
)

var ErrListingNotFound = errors.New("listing not found")

// ListingService defines the interface for listing read operations.
type ListingService interface {
	// GetListingDetail retrieves a listing with its photos, tags, and
	// linked facilities. Returns ErrListingNotFound when no such listing
	// exists.
	GetListingDetail(ctx context.Context, id int64) (*models.ListingDetail, error)
}

type listingService struct {
	repo repository.ListingRepository
	log  *logger.Logger
}

// NewListingService creates a new instance of ListingService.
func NewListingService(repo repository.ListingRepository, log *logger.Logger) ListingService {
	return &listingService{
		repo: repo,
		log:  log,
	}
}

func (s *listingService) GetListingDetail(ctx context.Context, id int64) (*models.ListingDetail, error) {
	detail, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		s.log.Error("Failed to query listing detail", err, map[string]interface{}{
			"listing_id": id,
		})
		return nil, fmt.Errorf("failed to query listing detail: %w", err)
	}

	if detail == nil {
		s.log.Debug("Listing not found", map[string]interface{}{
			"listing_id": id,
		})
		return nil, ErrListingNotFound
	}

	return detail, nil
}
