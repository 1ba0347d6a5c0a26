package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

// Booking is one reservation of N rooms of a rate class for a half-open stay
// interval [CheckIn, CheckOut). CheckIn/CheckOut carry date-only semantics:
// midnight UTC, no time-of-day component.
type Booking struct {
	ID              string        `json:"id"`
	HotelSlug       string        `json:"hotelSlug"`
	HotelName       string        `json:"hotelName"`
	RoomType        string        `json:"roomType"`
	UserID          string        `json:"userId"`
	UserName        string        `json:"userName"`
	Email           string        `json:"email"`
	CheckIn         time.Time     `json:"checkIn"`
	CheckOut        time.Time     `json:"checkOut"`
	Guests          int           `json:"guests"`
	RoomsBooked     int           `json:"roomsBooked"`
	TotalPriceCents int64         `json:"totalPriceCents"`
	Status          BookingStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Overlaps reports whether the stay intersects [from, to) using the half-open
// interval test: existing.CheckIn < to AND existing.CheckOut > from.
func (b Booking) Overlaps(from, to time.Time) bool {
	return b.CheckIn.Before(to) && b.CheckOut.After(from)
}

type BookingsPage struct {
	Items      []Booking
	Total      int
	Page       int
	TotalPages int
}

// Truncate a timestamp to date granularity in UTC. All stay-interval math in
// the system happens on values produced by this.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
