package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	rediskey "donation-settle-api/internal/types/redis-key"
)

// SeenRepo caches notification ids whose effect is committed. It is only a shortcut;
// the event log's unique key stays authoritative.
type SeenRepo struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewSeenRepo(rdb redis.Cmdable, prefix string, ttl time.Duration) *SeenRepo {
	return &SeenRepo{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *SeenRepo) Seen(ctx context.Context, rail, eventID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, rediskey.WebhookSeen(r.prefix, rail, eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("check seen %s/%s: %w", rail, eventID, err)
	}
	return n > 0, nil
}

func (r *SeenRepo) Mark(ctx context.Context, rail, eventID string) error {
	if err := r.rdb.Set(ctx, rediskey.WebhookSeen(r.prefix, rail, eventID), 1, r.ttl).Err(); err != nil {
		return fmt.Errorf("mark seen %s/%s: %w", rail, eventID, err)
	}
	return nil
}
