package mysql

// -----------------------------------------------------------------------------
// INVENTORY
// -----------------------------------------------------------------------------

const getHotelSQL = `
SELECT slug, name, location, city, country, tagline, description,
       starting_price_cents, currency, amenities, nearby_locations, images
FROM hotels
WHERE slug = ?
`

const getRoomSQL = `
SELECT hotel_slug, hotel_name, room_type, price_cents, total_rooms, booked_rooms, amenities
FROM rooms
WHERE hotel_slug = ? AND room_type = ?
`

const listRoomsSQL = `
SELECT hotel_slug, hotel_name, room_type, price_cents, total_rooms, booked_rooms, amenities
FROM rooms
WHERE hotel_slug = ?
ORDER BY price_cents
`

// -----------------------------------------------------------------------------
// BOOKING LEDGER
// -----------------------------------------------------------------------------

// Locks the room row so the overlap sum, the capacity check and the counter
// increment are serialized per (hotel_slug, room_type).
const lockRoomSQL = `
SELECT total_rooms, price_cents
FROM rooms
WHERE hotel_slug = ? AND room_type = ?
FOR UPDATE
`

// Half-open interval overlap: existing.check_in < requested.check_out AND
// existing.check_out > requested.check_in. Only confirmed bookings count.
const overlapSumSQL = `
SELECT COALESCE(SUM(rooms_booked), 0)
FROM bookings
WHERE hotel_slug = ? AND room_type = ? AND status = 'confirmed'
  AND check_in < ? AND check_out > ?
`

// Relative increment under the room-row lock. The counter tracks outstanding
// confirmed rooms across all windows, so it is not bounded by total_rooms;
// capacity is enforced by the overlap sum above.
const reserveRoomsSQL = `
UPDATE rooms
SET booked_rooms = booked_rooms + ?
WHERE hotel_slug = ? AND room_type = ?
`

// Release clamps at zero, matching the counter invariant's lower bound.
const releaseRoomsSQL = `
UPDATE rooms
SET booked_rooms = GREATEST(booked_rooms - ?, 0)
WHERE hotel_slug = ? AND room_type = ?
`

const insertBookingSQL = `
INSERT INTO bookings
  (id, hotel_slug, hotel_name, room_type, user_id, user_name, email,
   check_in, check_out, guests, rooms_booked, total_price_cents, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const bookingColumns = `
id, hotel_slug, hotel_name, room_type, user_id, user_name, email,
check_in, check_out, guests, rooms_booked, total_price_cents, status, created_at
`

const getBookingSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

const listByUserSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE user_id = ?
ORDER BY check_in DESC, created_at DESC
LIMIT ? OFFSET ?
`

const countByUserSQL = `SELECT COUNT(*) FROM bookings WHERE user_id = ?`

const lockBookingForUserSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE id = ? AND user_id = ?
FOR UPDATE
`

// The status guard makes the expiry transition idempotent: a booking that was
// already expired (or cancelled) simply yields no row.
const lockConfirmedBookingSQL = `
SELECT hotel_slug, room_type, rooms_booked
FROM bookings
WHERE id = ? AND status = 'confirmed'
FOR UPDATE
`

const updateStatusSQL = `UPDATE bookings SET status = ? WHERE id = ?`

const listExpiredConfirmedSQL = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE check_out <= ? AND status = 'confirmed'
ORDER BY check_out, id
`

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const insertUserSQL = `
INSERT INTO users (id, name, email, password_hash, created_at)
VALUES (?, ?, ?, ?, ?)
`

const getUserByIDSQL = `
SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?
`

const getUserByEmailSQL = `
SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?
`
