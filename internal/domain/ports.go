package domain

import (
	"context"
	"time"
)

// InventoryRepository holds the hotel/room catalog and the mutable room
// counters. Counter mutations must be single atomic relative updates in the
// store, never a blind overwrite of a stale read.
type InventoryRepository interface {
	GetHotel(ctx context.Context, slug string) (Hotel, error)
	ListHotels(ctx context.Context, q HotelsQuery) (HotelsPage, error)
	GetRoom(ctx context.Context, hotelSlug, roomType string) (Room, error)
	ListRooms(ctx context.Context, hotelSlug string) ([]Room, error)
}

// BookingRepository is the booking ledger. CreateConfirmed performs the whole
// reserve-and-record step in one transaction: overlap aggregation, capacity
// check, room counter increment and booking insert, serialized per
// (hotelSlug, roomType). It returns ErrNoCapacity when the request does not
// fit and fills in ID/Status/CreatedAt on success.
type BookingRepository interface {
	CreateConfirmed(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (Booking, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]Booking, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	// OverlapTotal sums RoomsBooked over confirmed bookings for the room class
	// whose stay intersects [from, to), half-open.
	OverlapTotal(ctx context.Context, hotelSlug, roomType string, from, to time.Time) (int, error)
	// Cancel flips the requester's confirmed booking to cancelled and releases
	// its rooms (clamped at zero) in one transaction. ErrNotFound when the
	// booking is absent or owned by someone else, ErrNotConfirmed when it is
	// already cancelled or expired.
	Cancel(ctx context.Context, id, userID string) (Booking, error)
	// ListExpiredConfirmed returns confirmed bookings with CheckOut <= asOf.
	ListExpiredConfirmed(ctx context.Context, asOf time.Time) ([]Booking, error)
	// Expire flips one confirmed booking to expired and releases its rooms in
	// one transaction. Re-running on an already-expired booking is a no-op.
	Expire(ctx context.Context, id string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// Cache is a read-side cache for catalog views. Bookings are never cached.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Token and password capabilities. The mechanics (signing algorithm, cost
// factors) live behind these; the application only sees user ids.
type TokenIssuer interface {
	Issue(userID string, ttl time.Duration) (string, error)
}

type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}
