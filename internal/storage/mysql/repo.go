package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"bookaway/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

const mysqlErrDuplicateEntry = 1062

func jsonOrEmpty(b []byte, dst *[]string) {
	if len(b) > 0 {
		_ = json.Unmarshal(b, dst)
	}
}

func marshalList(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

// -----------------------------------------------------------------------------
// InventoryRepository
// -----------------------------------------------------------------------------

func (r *Repo) GetHotel(ctx context.Context, slug string) (domain.Hotel, error) {
	row := r.db.QueryRowContext(ctx, getHotelSQL, slug)
	h, err := scanHotel(row)
	if err == sql.ErrNoRows {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanHotel(row rowScanner) (domain.Hotel, error) {
	var h domain.Hotel
	var tagline, desc sql.NullString
	var amenities, nearby, images []byte
	if err := row.Scan(
		&h.Slug, &h.Name, &h.Location, &h.City, &h.Country,
		&tagline, &desc, &h.StartingPriceCents, &h.Currency,
		&amenities, &nearby, &images,
	); err != nil {
		return domain.Hotel{}, err
	}
	h.Tagline = tagline.String
	h.Description = desc.String
	jsonOrEmpty(amenities, &h.Amenities)
	jsonOrEmpty(nearby, &h.NearbyLocations)
	jsonOrEmpty(images, &h.Images)
	return h, nil
}

func (r *Repo) ListHotels(ctx context.Context, q domain.HotelsQuery) (domain.HotelsPage, error) {
	var where []string
	var args []any
	if q.City != nil {
		where = append(where, "LOWER(city) = LOWER(?)")
		args = append(args, *q.City)
	}
	if q.Country != nil {
		where = append(where, "LOWER(country) = LOWER(?)")
		args = append(args, *q.Country)
	}
	if q.Name != nil {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+*q.Name+"%")
	}
	if q.MaxStartingPrice != nil {
		where = append(where, "starting_price_cents <= ?")
		args = append(args, *q.MaxStartingPrice)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hotels"+cond, args...).Scan(&total); err != nil {
		return domain.HotelsPage{}, err
	}

	// Sort keys come from a fixed whitelist, never from the raw query string.
	order := " ORDER BY slug"
	switch q.Sort {
	case "price_asc":
		order = " ORDER BY starting_price_cents, slug"
	case "price_desc":
		order = " ORDER BY starting_price_cents DESC, slug"
	case "name_asc":
		order = " ORDER BY name, slug"
	case "name_desc":
		order = " ORDER BY name DESC, slug"
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT slug, name, location, city, country, tagline, description,
		        starting_price_cents, currency, amenities, nearby_locations, images
		 FROM hotels`+cond+order+" LIMIT ? OFFSET ?", args...)
	if err != nil {
		return domain.HotelsPage{}, err
	}
	defer rows.Close()

	var out []domain.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return domain.HotelsPage{}, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return domain.HotelsPage{}, err
	}
	return domain.HotelsPage{Items: out, Total: total}, nil
}

func (r *Repo) GetRoom(ctx context.Context, hotelSlug, roomType string) (domain.Room, error) {
	row := r.db.QueryRowContext(ctx, getRoomSQL, hotelSlug, roomType)
	rm, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return domain.Room{}, domain.ErrNotFound
	}
	return rm, err
}

func scanRoom(row rowScanner) (domain.Room, error) {
	var rm domain.Room
	var amenities []byte
	if err := row.Scan(
		&rm.HotelSlug, &rm.HotelName, &rm.Type,
		&rm.PriceCents, &rm.TotalRooms, &rm.BookedRooms, &amenities,
	); err != nil {
		return domain.Room{}, err
	}
	jsonOrEmpty(amenities, &rm.Amenities)
	return rm, nil
}

func (r *Repo) ListRooms(ctx context.Context, hotelSlug string) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, listRoomsSQL, hotelSlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------
// BookingRepository
// -----------------------------------------------------------------------------

// CreateConfirmed reserves the rooms and records the booking atomically.
// The FOR UPDATE on the room row serializes concurrent requests for the same
// (hotel_slug, room_type); both the overlap-sum check and the counter
// increment happen under that lock, so two concurrent bookings can never both
// pass the capacity check and jointly overbook.
func (r *Repo) CreateConfirmed(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var totalRooms int
	var priceCents int64
	if err := tx.QueryRowContext(ctx, lockRoomSQL, b.HotelSlug, b.RoomType).
		Scan(&totalRooms, &priceCents); err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return err
	}

	var committed int
	if err := tx.QueryRowContext(ctx, overlapSumSQL,
		b.HotelSlug, b.RoomType, b.CheckOut, b.CheckIn).Scan(&committed); err != nil {
		return err
	}
	if committed+b.RoomsBooked > totalRooms {
		return domain.ErrNoCapacity
	}

	if _, err := tx.ExecContext(ctx, reserveRoomsSQL,
		b.RoomsBooked, b.HotelSlug, b.RoomType); err != nil {
		return err
	}

	b.ID = uuid.NewString()
	b.Status = domain.BookingStatusConfirmed
	b.TotalPriceCents = priceCents * int64(b.RoomsBooked)
	b.CreatedAt = time.Now().UTC()

	if _, err := tx.ExecContext(ctx, insertBookingSQL,
		b.ID, b.HotelSlug, b.HotelName, b.RoomType, b.UserID, b.UserName, b.Email,
		b.CheckIn, b.CheckOut, b.Guests, b.RoomsBooked, b.TotalPriceCents,
		b.Status, b.CreatedAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repo) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, id))
	if err == sql.ErrNoRows {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, err
}

func scanBooking(row rowScanner) (domain.Booking, error) {
	var b domain.Booking
	var status string
	if err := row.Scan(
		&b.ID, &b.HotelSlug, &b.HotelName, &b.RoomType, &b.UserID, &b.UserName, &b.Email,
		&b.CheckIn, &b.CheckOut, &b.Guests, &b.RoomsBooked, &b.TotalPriceCents,
		&status, &b.CreatedAt,
	); err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.Booking, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	rows, err := r.db.QueryContext(ctx, listByUserSQL, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countByUserSQL, userID).Scan(&n)
	return n, err
}

func (r *Repo) OverlapTotal(ctx context.Context, hotelSlug, roomType string, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, overlapSumSQL, hotelSlug, roomType, to, from).Scan(&n)
	return n, err
}

func (r *Repo) Cancel(ctx context.Context, id, userID string) (domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Booking{}, err
	}
	defer tx.Rollback()

	b, err := scanBooking(tx.QueryRowContext(ctx, lockBookingForUserSQL, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			// Absent and owned-by-someone-else are indistinguishable on purpose.
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}
	if b.Status != domain.BookingStatusConfirmed {
		return domain.Booking{}, domain.ErrNotConfirmed
	}

	if _, err := tx.ExecContext(ctx, updateStatusSQL, domain.BookingStatusCancelled, id); err != nil {
		return domain.Booking{}, err
	}
	if _, err := tx.ExecContext(ctx, releaseRoomsSQL, b.RoomsBooked, b.HotelSlug, b.RoomType); err != nil {
		return domain.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatusCancelled
	return b, nil
}

func (r *Repo) ListExpiredConfirmed(ctx context.Context, asOf time.Time) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, listExpiredConfirmedSQL, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Expire flips one confirmed booking to expired and releases its rooms.
// The confirmed-status guard in the row lock makes re-runs no-ops.
func (r *Repo) Expire(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var hotelSlug, roomType string
	var roomsBooked int
	if err := tx.QueryRowContext(ctx, lockConfirmedBookingSQL, id).
		Scan(&hotelSlug, &roomType, &roomsBooked); err != nil {
		if err == sql.ErrNoRows {
			return nil // already expired or cancelled
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, updateStatusSQL, domain.BookingStatusExpired, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, releaseRoomsSQL, roomsBooked, hotelSlug, roomType); err != nil {
		return err
	}
	return tx.Commit()
}

// -----------------------------------------------------------------------------
// UserRepository
// -----------------------------------------------------------------------------

func (r *Repo) CreateUser(ctx context.Context, u *domain.User) error {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, insertUserSQL, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
		return domain.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, getUserByIDSQL, id))
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, getUserByEmailSQL, email))
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

var (
	_ domain.InventoryRepository = (*Repo)(nil)
	_ domain.BookingRepository   = (*Repo)(nil)
	_ domain.UserRepository      = (*Repo)(nil)
)
