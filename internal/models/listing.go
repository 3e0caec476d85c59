package models

import (
	"fmt"
	"time"
)

// AdministrativeCodeLength is the required length of the 10-digit code whose
// first five digits are the district (sigungu) code and last five the
// sub-district (bjdong) code.
const AdministrativeCodeLength = 10

// LocationInfo is the four-part key the building registry is queried by.
// It is only usable when every part is present.
type LocationInfo struct {
	SigunguCd string
	BjdongCd  string
	Bun       string
	Ji        string
}

// Valid reports whether all four code parts are present.
func (l LocationInfo) Valid() bool {
	return l.SigunguCd != "" && l.BjdongCd != "" && l.Bun != "" && l.Ji != ""
}

// CacheKey returns the deterministic key used to memoize registry lookups.
func (l LocationInfo) CacheKey() string {
	return fmt.Sprintf("%s-%s-%s-%s", l.SigunguCd, l.BjdongCd, l.Bun, l.Ji)
}

// BuildingAttributes holds the derived building-registry fields written back
// to a listing in a single combined update.
type BuildingAttributes struct {
	ParkingSpaces  int
	ElevatorCount  int
	HouseholdCount int
	FamilyCount    int
	MainPurpose    string
	EtcPurpose     string
	StructureCode  string
	ApprovalDate   *time.Time
}

// ListingPoint is a candidate row carrying only identity and coordinates.
// Lon and Lat are pointers because a listing created without a usable
// geometry scans as NULL.
type ListingPoint struct {
	ID  int64
	Lon *float64
	Lat *float64
}

// HasCoordinates reports whether both coordinates are present.
func (p ListingPoint) HasCoordinates() bool {
	return p.Lon != nil && p.Lat != nil
}

// AddressCandidate is a row selected by the address enrichment job: a listing
// with coordinates but a missing lot number.
type AddressCandidate struct {
	ID        int64
	Lon       *float64
	Lat       *float64
	Address   *string
	LotNumber *string
}

// HasCoordinates reports whether both coordinates are present.
func (c AddressCandidate) HasCoordinates() bool {
	return c.Lon != nil && c.Lat != nil
}

// UncheckedListing is a row selected by the building-info job: a listing whose
// registry attributes have not been resolved yet.
type UncheckedListing struct {
	ID                 int64
	AdministrativeCode *string
	LotNumber          *string
}

// ListingDetail is the read model for the listing-detail endpoint. Nullable
// columns use pointers so absent values are omitted from the JSON body.
type ListingDetail struct {
	ID                 int64            `json:"id"`
	Address            *string          `json:"address,omitempty"`
	Longitude          *float64         `json:"longitude,omitempty"`
	Latitude           *float64         `json:"latitude,omitempty"`
	Deposit            *int64           `json:"deposit,omitempty"`
	MonthlyRentCost    *int64           `json:"monthly_rent_cost,omitempty"`
	MaintenanceCost    *int64           `json:"maintenance_cost,omitempty"`
	Area               *float64         `json:"area,omitempty"`
	Floor              *int             `json:"floor,omitempty"`
	TotalFloor         *int             `json:"total_floor,omitempty"`
	PropertyType       *string          `json:"property_type,omitempty"`
	RoomType           *string          `json:"room_type,omitempty"`
	Features           *string          `json:"features,omitempty"`
	Direction          *string          `json:"direction,omitempty"`
	ResidentialArea    *string          `json:"residential_area,omitempty"`
	LotNumber          *string          `json:"lot_number,omitempty"`
	AdministrativeCode *string          `json:"administrative_code,omitempty"`
	Description        *string          `json:"description,omitempty"`
	MainImageURL       *string          `json:"main_image_url,omitempty"`
	ParkingSpaces      *int             `json:"parking_spaces,omitempty"`
	ElevatorCount      *int             `json:"elevator_count,omitempty"`
	HouseholdCount     *int             `json:"household_count,omitempty"`
	FamilyCount        *int             `json:"family_count,omitempty"`
	MainPurpose        *string          `json:"main_purpose,omitempty"`
	EtcPurpose         *string          `json:"etc_purpose,omitempty"`
	StructureCode      *string          `json:"structure_code,omitempty"`
	ApprovalDate       *time.Time       `json:"approval_date,omitempty"`
	Photos             []ListingPhoto   `json:"photos"`
	Tags               []string         `json:"tags"`
	BusStops           []NearbyFacility `json:"bus_stops"`
	Subways            []NearbyFacility `json:"subways"`
	Cctvs              []NearbyFacility `json:"cctvs"`
	RestFoodPermits    []NearbyFacility `json:"rest_food_permits"`
}

// ListingPhoto is one image attached to a listing, ordered for display.
type ListingPhoto struct {
	ImageURL  string `json:"image_url"`
	ImageType string `json:"image_type,omitempty"`
	Order     *int   `json:"order,omitempty"`
}
