package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// memRedis implements the few commands the repos use; any other call panics
// through the nil embedded interface.
type memRedis struct {
	redis.Cmdable
	data map[string]interface{}
	ttl  map[string]time.Duration
	err  error
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]interface{}{}, ttl: map[string]time.Duration{}}
}

func (m *memRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if m.err != nil {
		return redis.NewBoolResult(false, m.err)
	}
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = value
	m.ttl[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *memRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	m.data[key] = value
	m.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, m.err)
}

func (m *memRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if m.err != nil {
		return redis.NewIntResult(0, m.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestGuardRepo(t *testing.T) {
	ctx := context.Background()
	rdb := newMemRedis()
	g := NewGuardRepo(rdb, "settle")

	ok, err := g.Acquire(ctx, "k1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire = %v, %v", ok, err)
	}
	if rdb.ttl["settle:donation:guard:k1"] != time.Minute {
		t.Errorf("ttl = %v", rdb.ttl["settle:donation:guard:k1"])
	}
	ok, _ = g.Acquire(ctx, "k1", time.Minute)
	if ok {
		t.Error("second acquire succeeded")
	}
	if err := g.Release(ctx, "k1"); err != nil {
		t.Fatal(err)
	}
	ok, _ = g.Acquire(ctx, "k1", time.Minute)
	if !ok {
		t.Error("acquire after release failed")
	}
}

func TestGuardRepo_RedisDown(t *testing.T) {
	rdb := newMemRedis()
	rdb.err = errors.New("connection refused")
	if _, err := NewGuardRepo(rdb, "settle").Acquire(context.Background(), "k", time.Second); err == nil {
		t.Error("expected error")
	}
}

func TestSeenRepo(t *testing.T) {
	ctx := context.Background()
	rdb := newMemRedis()
	s := NewSeenRepo(rdb, "settle", 72*time.Hour)

	seen, err := s.Seen(ctx, "bank", "evt_1")
	if err != nil || seen {
		t.Fatalf("Seen before mark = %v, %v", seen, err)
	}
	if err := s.Mark(ctx, "bank", "evt_1"); err != nil {
		t.Fatal(err)
	}
	if seen, _ := s.Seen(ctx, "bank", "evt_1"); !seen {
		t.Error("not seen after mark")
	}
	if seen, _ := s.Seen(ctx, "card", "evt_1"); seen {
		t.Error("rails share seen markers")
	}
	if rdb.ttl["settle:webhook:seen:bank:evt_1"] != 72*time.Hour {
		t.Errorf("ttl = %v", rdb.ttl["settle:webhook:seen:bank:evt_1"])
	}
}
