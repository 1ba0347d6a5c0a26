package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"bookaway/internal/adapters/observability"
	"bookaway/internal/app"
	"bookaway/internal/domain"
)

type Handlers struct {
	Q         *app.QueryService
	B         *app.BookingService
	U         *app.UserService
	Verify    domain.TokenVerifier
	AuthRPS   int
	PageLimit int // default page size when the query string omits limit
}

func (h *Handlers) pageLimit() int {
	if h.PageLimit > 0 {
		return h.PageLimit
	}
	return 10
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(RateLimit(h.AuthRPS))
			r.Post("/auth/register", h.register)
			r.Post("/auth/login", h.login)
		})
		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/{slug}", h.getHotel)
		r.Group(func(r chi.Router) {
			r.Use(Authenticate(h.Verify))
			r.Get("/users/me", h.me)
			r.Post("/bookings", h.createBooking)
			r.Delete("/bookings/{id}", h.cancelBooking)
			r.Get("/bookings/my-bookings", h.myBookings)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Unexpected
// errors are logged and surfaced as a generic 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Bad Request", ve.Msg)
	case errors.Is(err, domain.ErrNoCapacity):
		writeProblem(w, http.StatusBadRequest, "Bad Request", "not enough rooms available for these dates")
	case errors.Is(err, domain.ErrNotConfirmed):
		writeProblem(w, http.StatusBadRequest, "Bad Request", "booking is not confirmed")
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeProblem(w, http.StatusBadRequest, "Bad Request", "email already registered")
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", "booking details don't match your profile")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// ---- auth & profile ----

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	u, token, err := h.U.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Message: "user registered successfully", Token: token, User: u})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	u, token, err := h.U.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.U.Profile(r.Context(), UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ---- catalog ----

type paginationResponse struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	q := domain.HotelsQuery{Sort: r.URL.Query().Get("sort"), Page: 1, Limit: h.pageLimit()}
	opt := func(k string) *string {
		if v := r.URL.Query().Get(k); v != "" {
			return &v
		}
		return nil
	}
	q.City = opt("city")
	q.Country = opt("country")
	q.Name = opt("name")
	if v := r.URL.Query().Get("startingPrice"); v != "" {
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil || p < 0 {
			writeProblem(w, http.StatusBadRequest, "Bad Request", "startingPrice must be a non-negative integer (cents)")
			return
		}
		q.MaxStartingPrice = &p
	}
	var err error
	if q.Page, q.Limit, err = pageParams(r, h.pageLimit()); err != nil {
		writeError(w, err)
		return
	}

	page, err := h.Q.ListHotels(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	hotels := page.Items
	if hotels == nil {
		hotels = []domain.Hotel{}
	}
	writeJSON(w, http.StatusOK, struct {
		Hotels     []domain.Hotel     `json:"hotels"`
		Pagination paginationResponse `json:"pagination"`
	}{
		Hotels: hotels,
		Pagination: paginationResponse{
			Total:      page.Total,
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: (page.Total + q.Limit - 1) / q.Limit,
		},
	})
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hd, err := h.Q.GetHotel(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hd)
}

// ---- bookings ----

type createBookingRequest struct {
	HotelSlug   string `json:"hotelSlug"`
	RoomType    string `json:"roomType"`
	UserName    string `json:"userName"`
	Email       string `json:"email"`
	CheckIn     string `json:"checkIn"`  // YYYY-MM-DD
	CheckOut    string `json:"checkOut"` // YYYY-MM-DD
	Guests      int    `json:"guests"`
	RoomsBooked int    `json:"roomsBooked"`
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil // missing, caught by the validation chain
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "checkIn must be YYYY-MM-DD")
		return
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "checkOut must be YYYY-MM-DD")
		return
	}

	b, err := h.B.CreateBooking(r.Context(), UserID(r), app.CreateBookingInput{
		HotelSlug:   req.HotelSlug,
		RoomType:    req.RoomType,
		UserName:    req.UserName,
		Email:       req.Email,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Guests:      req.Guests,
		RoomsBooked: req.RoomsBooked,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoCapacity):
			observability.ObserveBooking("rejected_capacity")
		case domain.IsValidation(err):
			observability.ObserveBooking("rejected_validation")
		}
		writeError(w, err)
		return
	}
	observability.ObserveBooking("created")
	writeJSON(w, http.StatusCreated, struct {
		Message string         `json:"message"`
		Booking domain.Booking `json:"booking"`
	}{Message: "Booking confirmed!", Booking: b})
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	if _, err := h.B.CancelBooking(r.Context(), UserID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveBooking("cancelled")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled successfully"})
}

func (h *Handlers) myBookings(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r, h.pageLimit())
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.B.ListMyBookings(r.Context(), UserID(r), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		TotalBookings int              `json:"totalBookings"`
		CurrentPage   int              `json:"currentPage"`
		TotalPages    int              `json:"totalPages"`
		Bookings      []domain.Booking `json:"bookings"`
	}{
		TotalBookings: out.Total,
		CurrentPage:   out.Page,
		TotalPages:    out.TotalPages,
		Bookings:      out.Items,
	})
}

func pageParams(r *http.Request, defLimit int) (page, limit int, err error) {
	page, limit = 1, defLimit
	if v := r.URL.Query().Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page <= 0 {
			return 0, 0, domain.Validationf("page must be a positive integer")
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 || limit > 100 {
			return 0, 0, domain.Validationf("limit must be an integer between 1 and 100")
		}
	}
	return page, limit, nil
}
