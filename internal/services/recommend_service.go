package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nomadlab/seoulbang/internal/cache"
	"github.com/nomadlab/seoulbang/internal/config"
	"github.com/nomadlab/seoulbang/internal/geocode"
	"github.com/nomadlab/seoulbang/internal/logger"
)

// Service-level errors
var (
	// ErrCoordinateConversion means the submitted address could not be
	// forward-geocoded, so no recommendation is possible.
	ErrCoordinateConversion = errors.New("failed to convert address to coordinates")

	// ErrRecommendUpstream means the scoring service failed or answered
	// with a non-success status.
	ErrRecommendUpstream = errors.New("recommendation service unavailable")
)

// RecommendRequest is the validated profile a recommendation is scored for.
type RecommendRequest struct {
	Age            int
	Gender         string
	Address        string
	Transportation []string
}

// RecommendService scores neighborhoods and listings for a user profile.
// The submitted address is geocoded here; the scoring itself is delegated to
// the external recommendation engine and its response relayed verbatim.
type RecommendService interface {
	RecommendArea(ctx context.Context, req RecommendRequest) (json.RawMessage, error)
	RecommendProperty(ctx context.Context, req RecommendRequest) (json.RawMessage, error)
}

type recommendService struct {
	baseURL    string
	httpClient *http.Client
	geocoder   geocode.Resolver
	coordCache *cache.Cache[geocode.Coordinates]
	log        *logger.Logger
}

// NewRecommendService creates a new instance of RecommendService. The
// coordinate cache memoizes forward geocodes, so repeated requests for the
// same address hit the provider once.
func NewRecommendService(cfg config.RecommendConfig, geocoder geocode.Resolver, log *logger.Logger) RecommendService {
	return &recommendService{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		geocoder:   geocoder,
		coordCache: cache.New[geocode.Coordinates](),
		log:        log,
	}
}

func (s *recommendService) RecommendArea(ctx context.Context, req RecommendRequest) (json.RawMessage, error) {
	return s.recommend(ctx, "/recommend/area", req)
}

func (s *recommendService) RecommendProperty(ctx context.Context, req RecommendRequest) (json.RawMessage, error) {
	return s.recommend(ctx, "/recommend/property", req)
}

func (s *recommendService) recommend(ctx context.Context, path string, req RecommendRequest) (json.RawMessage, error) {
	coords, err := s.resolveCoordinates(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"age":            req.Age,
		"gender":         req.Gender,
		"longitude":      coords.Longitude,
		"latitude":       coords.Latitude,
		"transportation": req.Transportation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode recommendation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build recommendation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.log.Error("Recommendation request failed", err, map[string]interface{}{
			"path": path,
		})
		return nil, fmt.Errorf("%w: %v", ErrRecommendUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrRecommendUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		s.log.Error("Recommendation upstream error", nil, map[string]interface{}{
			"path":   path,
			"status": resp.StatusCode,
		})
		return nil, fmt.Errorf("%w: status %d", ErrRecommendUpstream, resp.StatusCode)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: malformed response body", ErrRecommendUpstream)
	}

	return json.RawMessage(body), nil
}

// resolveCoordinates forward-geocodes the address through the cache. Unlike
// the enrichment jobs, a miss here is a hard failure surfaced to the caller.
func (s *recommendService) resolveCoordinates(ctx context.Context, address string) (geocode.Coordinates, error) {
	coords, found, err := s.coordCache.GetOrCompute(address, func() (geocode.Coordinates, bool, error) {
		return s.geocoder.ResolveCoordinates(ctx, address)
	})
	if err != nil {
		s.log.Error("Forward geocode failed", err, map[string]interface{}{
			"address": address,
		})
		return geocode.Coordinates{}, fmt.Errorf("%w: %v", ErrCoordinateConversion, err)
	}
	if !found {
		s.log.Warn("Address has no coordinates", map[string]interface{}{
			"address": address,
		})
		return geocode.Coordinates{}, ErrCoordinateConversion
	}
	return coords, nil
}
