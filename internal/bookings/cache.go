package bookings

import (
	"context"
	"errors"
	"time"

	"turfbook/internal/shared/constants"
	"turfbook/pkg/cache"
	"turfbook/pkg/logger"
)

// AvailabilityCache stores computed slot grids per turf and date. Every
// write path that changes a booking's status calls Invalidate after commit.
type AvailabilityCache struct {
	store cache.Service
	ttl   time.Duration
	loc   *time.Location
}

func NewAvailabilityCache(store cache.Service, ttl time.Duration, loc *time.Location) *AvailabilityCache {
	if store == nil {
		store = cache.Nop{}
	}
	if ttl <= 0 {
		ttl = constants.TTL_AVAILABILITY
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityCache{store: store, ttl: ttl, loc: loc}
}

func (c *AvailabilityCache) Get(ctx context.Context, turfID int64, date string) (*Availability, bool) {
	if c == nil {
		return nil, false
	}
	var out Availability
	if err := c.store.Get(ctx, constants.BuildAvailabilityKey(turfID, date), &out); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.GetDefault().DebugWithContext(ctx, "availability cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}
	return &out, true
}

func (c *AvailabilityCache) Put(ctx context.Context, a *Availability) {
	if c == nil || a == nil {
		return
	}
	if err := c.store.Set(ctx, constants.BuildAvailabilityKey(a.TurfID, a.Date), a, c.ttl); err != nil {
		logger.GetDefault().DebugWithContext(ctx, "availability cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

// Invalidate drops the grid for the day the booking starts on.
func (c *AvailabilityCache) Invalidate(ctx context.Context, b *Booking) {
	if c == nil || b == nil {
		return
	}
	date := b.StartTime.In(c.loc).Format(DateLayout)
	if err := c.store.Delete(ctx, constants.BuildAvailabilityKey(b.TurfID, date)); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "availability cache invalidation failed", err, map[string]interface{}{
			"turf_id": b.TurfID,
			"date":    date,
		})
	}
}
