package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	rediskey "donation-settle-api/internal/types/redis-key"
)

// GuardRepo holds short-lived Redis markers for submissions in flight.
type GuardRepo struct {
	rdb    redis.Cmdable
	prefix string
}

func NewGuardRepo(rdb redis.Cmdable, prefix string) *GuardRepo {
	return &GuardRepo{rdb: rdb, prefix: prefix}
}

// Acquire reports false when the key is already held.
func (r *GuardRepo) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, rediskey.DonationGuard(r.prefix, key), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire guard %s: %w", key, err)
	}
	return ok, nil
}

func (r *GuardRepo) Release(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, rediskey.DonationGuard(r.prefix, key)).Err(); err != nil {
		return fmt.Errorf("release guard %s: %w", key, err)
	}
	return nil
}
