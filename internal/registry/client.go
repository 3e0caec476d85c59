// Package registry wraps the national building register API. The upstream
// payload is loosely typed: counts arrive as numbers or strings and the item
// node is an array or a single object depending on match count, so decoding
// normalizes both shapes.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nomadlab/seoulbang/internal/config"
	"github.com/nomadlab/seoulbang/internal/models"
)

const approvalDateLayout = "20060102"

// Fetcher retrieves building register entries for a lot.
type Fetcher interface {
	FetchBuildingInfo(ctx context.Context, loc models.LocationInfo) (*BuildingItem, error)
}

// Client calls the building register endpoint. A nil item with nil error
// means the register has no entry for the lot.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewClient(cfg config.RegistryConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

var _ Fetcher = (*Client)(nil)

// flexInt tolerates numeric fields encoded as JSON numbers or strings.
// Blank and null both decode to zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("numeric field %q: %w", s, err)
		}
		*f = flexInt(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	v, err := n.Int64()
	if err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

// flexString tolerates string fields encoded as bare numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

// BuildingItem is one register entry in the upstream field naming.
type BuildingItem struct {
	IndoorMechanical   flexInt    `json:"indrMechUtcnt"`
	OutdoorMechanical  flexInt    `json:"oudrMechUtcnt"`
	IndoorSelfParking  flexInt    `json:"indrAutoUtcnt"`
	OutdoorSelfParking flexInt    `json:"oudrAutoUtcnt"`
	PassengerElevators flexInt    `json:"rideUseElvtCnt"`
	EmergencyElevators flexInt    `json:"emgenUseElvtCnt"`
	Households         flexInt    `json:"hhldCnt"`
	Families           flexInt    `json:"fmlyCnt"`
	MainPurpose        flexString `json:"mainPurpsCdNm"`
	EtcPurpose         flexString `json:"etcPurps"`
	StructureCode      flexString `json:"strctCdNm"`
	ApprovalDate       flexString `json:"useAprDay"`
}

// Attributes flattens the register entry into storable building attributes.
// Parking is the sum of the four mechanical and self-parking counts, the
// elevator count the sum of passenger and emergency cars. An unparseable or
// blank approval date stays nil.
func (b *BuildingItem) Attributes() models.BuildingAttributes {
	attrs := models.BuildingAttributes{
		ParkingSpaces:  int(b.IndoorMechanical + b.OutdoorMechanical + b.IndoorSelfParking + b.OutdoorSelfParking),
		ElevatorCount:  int(b.PassengerElevators + b.EmergencyElevators),
		HouseholdCount: int(b.Households),
		FamilyCount:    int(b.Families),
		MainPurpose:    string(b.MainPurpose),
		EtcPurpose:     string(b.EtcPurpose),
		StructureCode:  string(b.StructureCode),
	}
	if day := strings.TrimSpace(string(b.ApprovalDate)); day != "" {
		if t, err := time.Parse(approvalDateLayout, day); err == nil {
			attrs.ApprovalDate = &t
		}
	}
	return attrs
}

// itemList tolerates the item node being an object or an array of objects.
type itemList []BuildingItem

func (l *itemList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" || string(data) == `""` {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []BuildingItem
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var item BuildingItem
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*l = itemList{item}
	return nil
}

// FetchBuildingInfo queries the register for one lot and returns the first
// matching entry, or nil when the register holds none.
func (c *Client) FetchBuildingInfo(ctx context.Context, loc models.LocationInfo) (*BuildingItem, error) {
	params := url.Values{}
	params.Set("serviceKey", c.serviceKey)
	params.Set("sigunguCd", loc.SigunguCd)
	params.Set("bjdongCd", loc.BjdongCd)
	params.Set("bun", loc.Bun)
	params.Set("ji", loc.Ji)
	params.Set("_type", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = params.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("building register %s: %w", loc.CacheKey(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("building register %s: status %d", loc.CacheKey(), resp.StatusCode)
	}

	var body struct {
		Response struct {
			Body struct {
				Items struct {
					Item itemList `json:"item"`
				} `json:"items"`
			} `json:"body"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("building register %s: decode response: %w", loc.CacheKey(), err)
	}

	items := body.Response.Body.Items.Item
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}
