package models

// FacilityClass identifies one of the proximity-linked facility kinds. The
// table and column names are fixed identifiers from the schema, never user
// input, so they are safe to interpolate into link SQL.
type FacilityClass struct {
	// Name is the short identifier used in logs and job names.
	Name string
	// Table is the facility table holding the point geometry.
	Table string
	// MapTable is the (listing, facility, distance) link table.
	MapTable string
	// FacilityColumn is the facility foreign-key column in MapTable.
	FacilityColumn string
}

var (
	BusStops = FacilityClass{
		Name:           "bus_stop",
		Table:          "bus_stop",
		MapTable:       "listing_bus_stop_map",
		FacilityColumn: "bus_stop_id",
	}
	Subways = FacilityClass{
		Name:           "subway",
		Table:          "subway",
		MapTable:       "listing_subway_map",
		FacilityColumn: "subway_id",
	}
	Cctvs = FacilityClass{
		Name:           "cctv",
		Table:          "cctv",
		MapTable:       "listing_cctv_map",
		FacilityColumn: "cctv_id",
	}
	RestFoodPermits = FacilityClass{
		Name:           "rest_food_permit",
		Table:          "rest_food_permit",
		MapTable:       "listing_rest_food_permit_map",
		FacilityColumn: "rest_food_permit_id",
	}
)

// FacilityClasses lists every class the proximity linker runs for.
var FacilityClasses = []FacilityClass{BusStops, Subways, Cctvs, RestFoodPermits}

// NearbyFacility is one linked facility row in the listing-detail response,
// read back closest-first.
type NearbyFacility struct {
	ID             int64    `json:"id"`
	DistanceMeters float64  `json:"distance_meters"`
	Name           *string  `json:"name,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
}
