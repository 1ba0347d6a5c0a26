package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookaway/internal/domain"
)

type CreateBookingInput struct {
	HotelSlug   string
	RoomType    string
	UserName    string
	Email       string
	CheckIn     time.Time // date-only, midnight UTC
	CheckOut    time.Time // date-only, midnight UTC
	Guests      int
	RoomsBooked int
}

const guestsPerRoom = 3

// BookingService enforces the overbooking invariant: for any hotel, room type
// and date, the committed room count across confirmed overlapping bookings
// never exceeds the room class capacity. The capacity check itself happens
// inside the ledger's create transaction; this service owns the validation
// chain in front of it.
type BookingService struct {
	inventory domain.InventoryRepository
	ledger    domain.BookingRepository
	users     domain.UserRepository
	now       func() time.Time
}

type BookingServiceOption func(*BookingService)

// WithClock overrides the wall clock, used by the date-validation tests.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) { s.now = now }
}

func NewBookingService(
	inventory domain.InventoryRepository,
	ledger domain.BookingRepository,
	users domain.UserRepository,
	opts ...BookingServiceOption,
) *BookingService {
	s := &BookingService{
		inventory: inventory,
		ledger:    ledger,
		users:     users,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking runs the validation chain (short-circuit, first failure wins)
// and hands the reserve-and-record step to the ledger.
func (s *BookingService) CreateBooking(ctx context.Context, userID string, in CreateBookingInput) (domain.Booking, error) {
	if in.HotelSlug == "" || in.RoomType == "" || in.UserName == "" || in.Email == "" ||
		in.CheckIn.IsZero() || in.CheckOut.IsZero() || in.Guests <= 0 || in.RoomsBooked <= 0 {
		return domain.Booking{}, domain.Validationf("missing required fields in request body")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("load requester profile: %w", err)
	}
	name := strings.TrimSpace(in.UserName)
	email := strings.TrimSpace(in.Email)
	if name != user.Name || !strings.EqualFold(email, user.Email) {
		return domain.Booking{}, domain.ErrForbidden
	}

	today := domain.DateOnly(s.now())
	tomorrow := today.AddDate(0, 0, 1)
	checkIn := domain.DateOnly(in.CheckIn)
	checkOut := domain.DateOnly(in.CheckOut)

	if checkIn.Before(tomorrow) {
		return domain.Booking{}, domain.Validationf("check-in date can only be after the current day")
	}
	if !checkOut.After(checkIn) {
		return domain.Booking{}, domain.Validationf("check-out date must be after check-in date")
	}
	if checkIn.After(today.AddDate(1, 0, 0)) {
		return domain.Booking{}, domain.Validationf("you can only book up to 1 year in advance")
	}
	if in.Guests > in.RoomsBooked*guestsPerRoom {
		return domain.Booking{}, domain.Validationf(
			"guest limit exceeded: max %d guests allowed for %d room(s)",
			in.RoomsBooked*guestsPerRoom, in.RoomsBooked)
	}

	hotel, err := s.inventory.GetHotel(ctx, in.HotelSlug)
	if err != nil {
		return domain.Booking{}, err
	}
	if _, err := s.inventory.GetRoom(ctx, in.HotelSlug, in.RoomType); err != nil {
		return domain.Booking{}, err
	}

	b := domain.Booking{
		HotelSlug:   in.HotelSlug,
		HotelName:   hotel.Name,
		RoomType:    in.RoomType,
		UserID:      user.ID,
		UserName:    name,
		Email:       email,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Guests:      in.Guests,
		RoomsBooked: in.RoomsBooked,
	}
	if err := s.ledger.CreateConfirmed(ctx, &b); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

// CancelBooking releases the booking's rooms and flips its status. The
// lookup is restricted to the requester's own bookings.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID string) (domain.Booking, error) {
	if bookingID == "" {
		return domain.Booking{}, domain.Validationf("booking id is required")
	}
	return s.ledger.Cancel(ctx, bookingID, userID)
}

// ListMyBookings returns the requester's bookings, check-in descending.
// A requester with zero bookings gets ErrNotFound, preserving the documented
// API contract.
func (s *BookingService) ListMyBookings(ctx context.Context, userID string, page, limit int) (domain.BookingsPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	total, err := s.ledger.CountByUser(ctx, userID)
	if err != nil {
		return domain.BookingsPage{}, err
	}
	if total == 0 {
		return domain.BookingsPage{}, domain.ErrNotFound
	}
	items, err := s.ledger.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return domain.BookingsPage{}, err
	}
	return domain.BookingsPage{
		Items:      items,
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}
