package domain

type Hotel struct {
	Slug               string   `json:"slug"`
	Name               string   `json:"name"`
	Location           string   `json:"location"`
	City               string   `json:"city"`
	Country            string   `json:"country"`
	Tagline            string   `json:"tagline,omitempty"`
	Description        string   `json:"description,omitempty"`
	StartingPriceCents int64    `json:"startingPriceCents"`
	Currency           string   `json:"currency"`
	Amenities          []string `json:"amenities"`
	NearbyLocations    []string `json:"nearbyLocations,omitempty"`
	Images             []string `json:"images,omitempty"`
}

// Room is a rate class within a hotel, keyed by (HotelSlug, Type).
// TotalRooms is fixed capacity. BookedRooms counts rooms on outstanding
// confirmed bookings; it never goes below zero but may exceed TotalRooms
// when stays don't overlap. Capacity for a given window is decided by the
// overlap aggregation in the ledger, not by this counter.
type Room struct {
	HotelSlug   string   `json:"hotelSlug"`
	HotelName   string   `json:"hotelName"`
	Type        string   `json:"type"`
	PriceCents  int64    `json:"priceCents"`
	TotalRooms  int      `json:"totalRooms"`
	BookedRooms int      `json:"bookedRooms"`
	Amenities   []string `json:"amenities,omitempty"`
}

// Available is a browse-time hint, clamped at zero. The booking path never
// relies on it.
func (r Room) Available() int {
	if n := r.TotalRooms - r.BookedRooms; n > 0 {
		return n
	}
	return 0
}

// Read models & queries

type HotelsQuery struct {
	City             *string
	Country          *string
	Name             *string
	MaxStartingPrice *int64 // cents, inclusive ceiling
	Sort             string // price_asc|price_desc|name_asc|name_desc
	Page             int
	Limit            int
}

type HotelsPage struct {
	Items []Hotel
	Total int
}

// HotelDetail is the browse view for a single hotel with its room classes.
type HotelDetail struct {
	Hotel
	Rooms []Room `json:"rooms"`
}
