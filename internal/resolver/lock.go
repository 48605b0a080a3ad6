package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DateLock serializes resolution attempts per date using Redis SetNX. Two
// concurrent attempts for the same date are a race the state machine does
// not defend against, so callers acquire before invoking it.
type DateLock struct {
	redis   *redis.Client
	enabled bool
	ttl     time.Duration
}

// NewDateLock creates a per-date resolution lock. When disabled, Acquire
// always succeeds and Release is a no-op.
func NewDateLock(redisClient *redis.Client, enabled bool, ttl time.Duration) *DateLock {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &DateLock{
		redis:   redisClient,
		enabled: enabled,
		ttl:     ttl,
	}
}

// IsEnabled returns whether the lock is enabled
func (l *DateLock) IsEnabled() bool {
	return l.enabled && l.redis != nil
}

// Acquire attempts to take the resolution lock for a date. Returns false
// when another resolution for the same date is in flight.
func (l *DateLock) Acquire(ctx context.Context, date string) (bool, error) {
	if !l.IsEnabled() {
		return true, nil
	}

	ok, err := l.redis.SetNX(ctx, l.lockKey(date), time.Now().Unix(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire resolution lock: %w", err)
	}
	return ok, nil
}

// Release frees the resolution lock for a date.
func (l *DateLock) Release(ctx context.Context, date string) error {
	if !l.IsEnabled() {
		return nil
	}

	if err := l.redis.Del(ctx, l.lockKey(date)).Err(); err != nil {
		return fmt.Errorf("failed to release resolution lock: %w", err)
	}
	return nil
}

func (l *DateLock) lockKey(date string) string {
	return "resolution-lock:" + date
}
