package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"bookaway/internal/domain"
)

// Sweeper reconciles stale confirmed bookings: any booking whose check-out
// date has passed is flipped to expired and its rooms are released back to
// inventory. Each booking is processed in its own transaction so one failure
// never aborts the rest of the batch.
type Sweeper struct {
	ledger  domain.BookingRepository
	workers int64
	now     func() time.Time
}

type SweeperOption func(*Sweeper)

func SweeperWithClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) { s.now = now }
}

func NewSweeper(ledger domain.BookingRepository, workers int, opts ...SweeperOption) *Sweeper {
	if workers <= 0 {
		workers = 1
	}
	s := &Sweeper{ledger: ledger, workers: int64(workers), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweepOnce runs one full pass and reports how many bookings it expired.
// Re-running after all matching bookings are expired is a no-op: the
// selection comes back empty.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	today := domain.DateOnly(s.now())
	stale, err := s.ledger.ListExpiredConfirmed(ctx, today)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	var expired atomic.Int64

	for _, b := range stale {
		if err := sem.Acquire(ctx, 1); err != nil {
			break // context cancelled mid-sweep
		}
		wg.Add(1)
		go func(b domain.Booking) {
			defer wg.Done()
			defer sem.Release(1)

			if err := s.ledger.Expire(ctx, b.ID); err != nil {
				log.Warn().Str("booking", b.ID).Str("hotel", b.HotelSlug).
					Str("room_type", b.RoomType).Err(err).Msg("expire failed")
				return
			}
			expired.Add(1)
			log.Info().Str("booking", b.ID).Str("hotel", b.HotelSlug).
				Str("room_type", b.RoomType).Int("rooms", b.RoomsBooked).
				Msg("booking expired, rooms released")
		}(b)
	}
	wg.Wait()
	return int(expired.Load()), ctx.Err()
}

// Run blocks, firing a sweep once per day at the given UTC hour until the
// context is cancelled.
func (s *Sweeper) Run(ctx context.Context, hour int, onDone func(expired int, dur time.Duration, err error)) {
	for {
		next := nextRun(s.now(), hour)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			start := time.Now()
			n, err := s.SweepOnce(ctx)
			if onDone != nil {
				onDone(n, time.Since(start), err)
			}
		}
	}
}

func nextRun(now time.Time, hour int) time.Time {
	n := now.UTC()
	run := time.Date(n.Year(), n.Month(), n.Day(), hour, 0, 0, 0, time.UTC)
	if !run.After(n) {
		run = run.AddDate(0, 0, 1)
	}
	return run
}
