package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookaway/internal/adapters/auth"
	httpserver "bookaway/internal/adapters/http_server"
	"bookaway/internal/app"
	"bookaway/internal/domain"
)

// ---- fakes ----

type stubStore struct {
	hotels   map[string]domain.Hotel
	rooms    map[string]domain.Room
	users    map[string]domain.User
	bookings map[string]domain.Booking
	ledger   error // forced CreateConfirmed error, nil means success
	seq      int
}

func newStubStore() *stubStore {
	return &stubStore{
		hotels:   map[string]domain.Hotel{},
		rooms:    map[string]domain.Room{},
		users:    map[string]domain.User{},
		bookings: map[string]domain.Booking{},
	}
}

func (s *stubStore) GetHotel(_ context.Context, slug string) (domain.Hotel, error) {
	h, ok := s.hotels[slug]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (s *stubStore) ListHotels(context.Context, domain.HotelsQuery) (domain.HotelsPage, error) {
	var out []domain.Hotel
	for _, h := range s.hotels {
		out = append(out, h)
	}
	return domain.HotelsPage{Items: out, Total: len(out)}, nil
}

func (s *stubStore) GetRoom(_ context.Context, slug, typ string) (domain.Room, error) {
	r, ok := s.rooms[slug+"|"+typ]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}

func (s *stubStore) ListRooms(_ context.Context, slug string) ([]domain.Room, error) {
	var out []domain.Room
	for _, r := range s.rooms {
		if r.HotelSlug == slug {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) CreateConfirmed(_ context.Context, b *domain.Booking) error {
	if s.ledger != nil {
		return s.ledger
	}
	s.seq++
	b.ID = fmt.Sprintf("bk-%d", s.seq)
	b.Status = domain.BookingStatusConfirmed
	if r, ok := s.rooms[b.HotelSlug+"|"+b.RoomType]; ok {
		b.TotalPriceCents = r.PriceCents * int64(b.RoomsBooked)
	}
	b.CreatedAt = time.Now().UTC()
	s.bookings[b.ID] = *b
	return nil
}

func (s *stubStore) GetByID(_ context.Context, id string) (domain.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *stubStore) ListByUser(_ context.Context, userID string, page, limit int) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubStore) CountByUser(_ context.Context, userID string) (int, error) {
	n := 0
	for _, b := range s.bookings {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *stubStore) OverlapTotal(context.Context, string, string, time.Time, time.Time) (int, error) {
	return 0, nil
}

func (s *stubStore) Cancel(_ context.Context, id, userID string) (domain.Booking, error) {
	b, ok := s.bookings[id]
	if !ok || b.UserID != userID {
		return domain.Booking{}, domain.ErrNotFound
	}
	b.Status = domain.BookingStatusCancelled
	s.bookings[id] = b
	return b, nil
}

func (s *stubStore) ListExpiredConfirmed(context.Context, time.Time) ([]domain.Booking, error) {
	return nil, nil
}

func (s *stubStore) Expire(context.Context, string) error { return nil }

func (s *stubStore) CreateUser(_ context.Context, u *domain.User) error {
	s.seq++
	u.ID = fmt.Sprintf("usr-%d", s.seq)
	s.users[u.ID] = *u
	return nil
}

func (s *stubStore) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *stubStore) GetUserByID(_ context.Context, id string) (domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// ---- harness ----

type harness struct {
	ts    *httptest.Server
	store *stubStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := newStubStore()
	tokens, err := auth.NewJWT("test-secret")
	require.NoError(t, err)

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Q:       app.NewQueryService(store, nopCache{}, time.Minute),
		B:       app.NewBookingService(store, store, store),
		U:       app.NewUserService(store, auth.Bcrypt{}, tokens, time.Hour),
		Verify:  tokens,
		AuthRPS: 100,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return &harness{ts: ts, store: store}
}

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (nopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (nopCache) Del(context.Context, string) error                     { return nil }

func (h *harness) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.ts.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (h *harness) registered(t *testing.T) (domain.User, string) {
	resp := h.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@example.com", "password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}](t, resp)
	return out.User, out.Token
}

func (h *harness) seedCatalog() {
	h.store.hotels["taj"] = domain.Hotel{Slug: "taj", Name: "The Taj", City: "Mumbai"}
	h.store.rooms["taj|Deluxe Room"] = domain.Room{
		HotelSlug: "taj", HotelName: "The Taj", Type: "Deluxe Room",
		PriceCents: 15000, TotalRooms: 5,
	}
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

// ---- tests ----

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	resp, err := http.Get(h.ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBookingsRequireAuth(t *testing.T) {
	h := newHarness(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/bookings"},
		{http.MethodDelete, "/api/bookings/bk-1"},
		{http.MethodGet, "/api/bookings/my-bookings"},
		{http.MethodGet, "/api/users/me"},
	} {
		resp := h.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}

	resp := h.do(t, http.MethodGet, "/api/users/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterLoginMe(t *testing.T) {
	h := newHarness(t)
	user, token := h.registered(t)

	resp := h.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[map[string]any](t, resp)
	assert.Equal(t, user.ID, me["id"])
	assert.NotContains(t, me, "passwordHash", "password material never leaves the API")

	resp = h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "s3cret",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateBooking_Endpoint(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	_, token := h.registered(t)

	body := map[string]any{
		"hotelSlug": "taj", "roomType": "Deluxe Room",
		"userName": "Ana", "email": "ana@example.com",
		"checkIn": futureDate(7), "checkOut": futureDate(10),
		"guests": 2, "roomsBooked": 1,
	}
	resp := h.do(t, http.MethodPost, "/api/bookings", token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[struct {
		Message string         `json:"message"`
		Booking domain.Booking `json:"booking"`
	}](t, resp)
	assert.Equal(t, "Booking confirmed!", out.Message)
	assert.Equal(t, domain.BookingStatusConfirmed, out.Booking.Status)
	assert.Equal(t, int64(15000), out.Booking.TotalPriceCents)

	// past check-in is rejected before any store write
	body["checkIn"] = "2020-01-01"
	resp = h.do(t, http.MethodPost, "/api/bookings", token, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// malformed date
	body["checkIn"] = "01/02/2026"
	resp = h.do(t, http.MethodPost, "/api/bookings", token, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// identity mismatch
	body["checkIn"] = futureDate(7)
	body["email"] = "mallory@example.com"
	resp = h.do(t, http.MethodPost, "/api/bookings", token, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// full room class
	h.store.ledger = domain.ErrNoCapacity
	body["email"] = "ana@example.com"
	resp = h.do(t, http.MethodPost, "/api/bookings", token, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMyBookingsAndCancel(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()
	_, token := h.registered(t)

	resp := h.do(t, http.MethodGet, "/api/bookings/my-bookings", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "empty history is a 404 by contract")

	body := map[string]any{
		"hotelSlug": "taj", "roomType": "Deluxe Room",
		"userName": "Ana", "email": "ana@example.com",
		"checkIn": futureDate(7), "checkOut": futureDate(10),
		"guests": 2, "roomsBooked": 2,
	}
	resp = h.do(t, http.MethodPost, "/api/bookings", token, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[struct {
		Booking domain.Booking `json:"booking"`
	}](t, resp)

	resp = h.do(t, http.MethodGet, "/api/bookings/my-bookings?page=1&limit=5", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[struct {
		TotalBookings int              `json:"totalBookings"`
		CurrentPage   int              `json:"currentPage"`
		TotalPages    int              `json:"totalPages"`
		Bookings      []domain.Booking `json:"bookings"`
	}](t, resp)
	assert.Equal(t, 1, list.TotalBookings)
	assert.Equal(t, 1, list.TotalPages)
	require.Len(t, list.Bookings, 1)

	resp = h.do(t, http.MethodDelete, "/api/bookings/"+created.Booking.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodDelete, "/api/bookings/no-such-id", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListHotels_Endpoint(t *testing.T) {
	h := newHarness(t)
	h.seedCatalog()

	resp := h.do(t, http.MethodGet, "/api/hotels?page=1&limit=10", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[struct {
		Hotels     []domain.Hotel `json:"hotels"`
		Pagination struct {
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}](t, resp)
	assert.Len(t, out.Hotels, 1)
	assert.Equal(t, 1, out.Pagination.Total)

	resp = h.do(t, http.MethodGet, "/api/hotels?limit=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/hotels/taj", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[domain.HotelDetail](t, resp)
	assert.Equal(t, "The Taj", detail.Name)
	require.Len(t, detail.Rooms, 1)

	resp = h.do(t, http.MethodGet, "/api/hotels/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
