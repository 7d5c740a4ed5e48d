package health

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	rediskey "donation-settle-api/internal/types/redis-key"
)

const fullRate = 100.0

// Manager 在 Redis 中维护每个处理方的成功率，所有实例共享。
// 两个 key 都有 TTL，过期后降级的处理方以新的成功率重新尝试
type Manager struct {
	rdb       redis.Cmdable
	prefix    string
	strategy  SuccessRateStrategy
	threshold float64
	ttl       time.Duration
}

func NewManager(rdb redis.Cmdable, prefix string, strategy SuccessRateStrategy, threshold float64, ttl time.Duration) *Manager {
	return &Manager{rdb: rdb, prefix: prefix, strategy: strategy, threshold: threshold, ttl: ttl}
}

// Record 记录一次调用结果。只有使成功率跌破阈值的那次调用 tripped 为 true
func (m *Manager) Record(ctx context.Context, name string, success bool) (tripped bool, err error) {
	current, err := m.rate(ctx, name)
	if err != nil {
		return false, err
	}
	next := m.strategy.Update(current, success)
	if next < m.threshold && current >= m.threshold {
		if err := m.rdb.Set(ctx, rediskey.ProcessorDegraded(m.prefix, name), 1, m.ttl).Err(); err != nil {
			return false, fmt.Errorf("mark %s degraded: %w", name, err)
		}
		tripped = true
	}
	if err := m.rdb.Set(ctx, rediskey.ProcessorRate(m.prefix, name), strconv.FormatFloat(next, 'f', 4, 64), m.ttl).Err(); err != nil {
		return tripped, fmt.Errorf("store %s rate: %w", name, err)
	}
	return tripped, nil
}

func (m *Manager) Degraded(ctx context.Context, name string) (bool, error) {
	n, err := m.rdb.Exists(ctx, rediskey.ProcessorDegraded(m.prefix, name)).Result()
	if err != nil {
		return false, fmt.Errorf("check %s degraded: %w", name, err)
	}
	return n > 0, nil
}

func (m *Manager) rate(ctx context.Context, name string) (float64, error) {
	v, err := m.rdb.Get(ctx, rediskey.ProcessorRate(m.prefix, name)).Float64()
	if errors.Is(err, redis.Nil) {
		return fullRate, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s rate: %w", name, err)
	}
	return v, nil
}
