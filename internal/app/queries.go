package app

import (
	"context"
	"fmt"
	"time"

	"bookaway/internal/domain"
)

// QueryService serves the hotel catalog read paths with a cache-aside Redis
// layer. Bookings never pass through here; only static catalog views are
// cached.
type QueryService struct {
	repo     domain.InventoryRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.InventoryRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetHotel(ctx context.Context, slug string) (domain.HotelDetail, error) {
	key := "hotel:" + slug
	var hd domain.HotelDetail
	if ok, _ := s.cache.Get(ctx, key, &hd); ok {
		return hd, nil
	}
	h, err := s.repo.GetHotel(ctx, slug)
	if err != nil {
		return domain.HotelDetail{}, err
	}
	rooms, err := s.repo.ListRooms(ctx, slug)
	if err != nil {
		return domain.HotelDetail{}, err
	}
	hd = domain.HotelDetail{Hotel: h, Rooms: rooms}
	_ = s.cache.Set(ctx, key, hd, s.cacheTTL)
	return hd, nil
}

func (s *QueryService) ListHotels(ctx context.Context, q domain.HotelsQuery) (domain.HotelsPage, error) {
	key := listKey(q)
	var out domain.HotelsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	page, err := s.repo.ListHotels(ctx, q)
	if err != nil {
		return domain.HotelsPage{}, err
	}

	// copy the slice to avoid aliasing the repo's backing array
	cp := domain.HotelsPage{Total: page.Total}
	if n := len(page.Items); n > 0 {
		cp.Items = make([]domain.Hotel, n)
		copy(cp.Items, page.Items)
	}
	_ = s.cache.Set(ctx, key, cp, s.cacheTTL)
	return cp, nil
}

func listKey(q domain.HotelsQuery) string {
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	price := int64(-1)
	if q.MaxStartingPrice != nil {
		price = *q.MaxStartingPrice
	}
	return fmt.Sprintf("hotels:%s:%s:%s:%d:%s:%d:%d",
		str(q.City), str(q.Country), str(q.Name), price, q.Sort, q.Page, q.Limit)
}
