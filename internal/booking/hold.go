package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"studio-booking-service/internal/apperr"
)

// SlotHolds takes short-lived reservation tokens on chosen slots so
// concurrent bookers usually fail fast before reaching the database. The
// database's unique index remains the final arbiter; redis being down or
// unconfigured degrades to that.
type SlotHolds struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSlotHolds(rdb *redis.Client, ttl time.Duration) *SlotHolds {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SlotHolds{rdb: rdb, ttl: ttl}
}

// Acquire takes a hold on (staffID, startAt). The returned release frees
// the hold early; otherwise it expires with the TTL. Redis errors fail
// open.
func (h *SlotHolds) Acquire(ctx context.Context, staffID string, startAt time.Time) (func(), error) {
	if h == nil || h.rdb == nil {
		return func() {}, nil
	}
	key := holdKey(staffID, startAt)
	ok, err := h.rdb.SetNX(ctx, key, "held", h.ttl).Result()
	if err != nil {
		// Fail open: holds are an optimization, the unique index decides.
		return func() {}, nil
	}
	if !ok {
		return nil, fmt.Errorf("hold on %s: %w", key, apperr.ErrSlotTaken)
	}
	return func() { h.rdb.Del(context.Background(), key) }, nil
}

func holdKey(staffID string, startAt time.Time) string {
	return fmt.Sprintf("slot-hold:%s:%d", staffID, startAt.UTC().Unix())
}
