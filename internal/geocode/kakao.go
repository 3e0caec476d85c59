// Package geocode wraps the Kakao local API for coordinate-to-address and
// address-to-coordinate resolution.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nomadlab/seoulbang/internal/config"
)

const (
	coordToAddressPath = "/v2/local/geo/coord2address.json"
	addressSearchPath  = "/v2/local/search/address.json"
)

// AddressResult is the outcome of a reverse geocode. A field is empty when
// the provider did not return it; both empty means no data for the point.
type AddressResult struct {
	RoadAddress string
	LotAddress  string
}

// Empty reports whether the provider returned no usable address.
func (r AddressResult) Empty() bool {
	return r.RoadAddress == "" && r.LotAddress == ""
}

// CacheKey returns the memoization key for a reverse geocode request.
func CacheKey(lon, lat float64) string {
	return fmt.Sprintf("%g-%g", lon, lat)
}

// Coordinates is a forward-geocoded point in lon/lat order.
type Coordinates struct {
	Longitude float64
	Latitude  float64
}

// Resolver resolves between coordinates and addresses.
type Resolver interface {
	ResolveAddress(ctx context.Context, lon, lat float64) (AddressResult, error)
	ResolveCoordinates(ctx context.Context, address string) (Coordinates, bool, error)
}

// Client calls the Kakao local API. The two endpoints are authorized by
// separate keys. A zero-match response is not an error; transport failures,
// non-2xx statuses, and unparseable bodies are.
type Client struct {
	baseURL       string
	addressKey    string
	coordinateKey string
	httpClient    *http.Client
}

// NewClient builds a Client from configuration. The per-call timeout bounds
// how long one slow upstream round trip can stall a batch.
func NewClient(cfg config.KakaoConfig) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		addressKey:    cfg.AddressKey,
		coordinateKey: cfg.CoordinateKey,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
	}
}

var _ Resolver = (*Client)(nil)

// ResolveAddress reverse-geocodes a point into its road and lot addresses.
// Missing fields in the provider response stay empty rather than failing.
func (c *Client) ResolveAddress(ctx context.Context, lon, lat float64) (AddressResult, error) {
	params := url.Values{}
	params.Set("x", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("y", strconv.FormatFloat(lat, 'f', -1, 64))

	var body struct {
		Documents []struct {
			Address *struct {
				AddressName string `json:"address_name"`
			} `json:"address"`
			RoadAddress *struct {
				AddressName string `json:"address_name"`
			} `json:"road_address"`
		} `json:"documents"`
	}
	if err := c.get(ctx, coordToAddressPath, params, c.addressKey, &body); err != nil {
		return AddressResult{}, fmt.Errorf("reverse geocode (%g, %g): %w", lon, lat, err)
	}

	if len(body.Documents) == 0 {
		return AddressResult{}, nil
	}

	var result AddressResult
	doc := body.Documents[0]
	if doc.Address != nil {
		result.LotAddress = doc.Address.AddressName
	}
	if doc.RoadAddress != nil {
		result.RoadAddress = doc.RoadAddress.AddressName
	}
	return result, nil
}

// ResolveCoordinates forward-geocodes free-text address into a point.
// Returns found=false when the provider has no match.
func (c *Client) ResolveCoordinates(ctx context.Context, address string) (Coordinates, bool, error) {
	params := url.Values{}
	params.Set("query", address)

	var body struct {
		Documents []struct {
			X string `json:"x"`
			Y string `json:"y"`
		} `json:"documents"`
	}
	if err := c.get(ctx, addressSearchPath, params, c.coordinateKey, &body); err != nil {
		return Coordinates{}, false, fmt.Errorf("forward geocode %q: %w", address, err)
	}

	if len(body.Documents) == 0 {
		return Coordinates{}, false, nil
	}

	lon, err := strconv.ParseFloat(body.Documents[0].X, 64)
	if err != nil {
		return Coordinates{}, false, fmt.Errorf("forward geocode %q: parse x: %w", address, err)
	}
	lat, err := strconv.ParseFloat(body.Documents[0].Y, 64)
	if err != nil {
		return Coordinates{}, false, fmt.Errorf("forward geocode %q: parse y: %w", address, err)
	}
	return Coordinates{Longitude: lon, Latitude: lat}, true, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, key string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Authorization", "KakaoAK "+key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
