// Package system reads operator settings kept in the database.
package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	mainmodel "donation-settle-api/internal/model/main"
	rediskey "donation-settle-api/internal/types/redis-key"
)

const KeyTelegramChat = "sys.telegram.notify.group"

// ConfigSystem serves s_sys_config values through a Redis hash so most reads skip MySQL.
type ConfigSystem struct {
	rdb    redis.Cmdable
	prefix string
	load   func(ctx context.Context, key string) (string, bool, error)
}

func NewConfigSystem(db *gorm.DB, rdb redis.Cmdable, prefix string) *ConfigSystem {
	return &ConfigSystem{rdb: rdb, prefix: prefix, load: fromDB(db)}
}

func fromDB(db *gorm.DB) func(ctx context.Context, key string) (string, bool, error) {
	return func(ctx context.Context, key string) (string, bool, error) {
		var row mainmodel.SysConfig
		err := db.WithContext(ctx).Where("config_key = ?", key).Last(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("load sys config %s: %w", key, err)
		}
		return row.ConfigValue, true, nil
	}
}

// Value returns the setting for key; ok is false when no row exists. A cache failure
// falls through to the database.
func (s *ConfigSystem) Value(ctx context.Context, key string) (value string, ok bool, err error) {
	hash := rediskey.SysConfig(s.prefix)
	if v, err := s.rdb.HGet(ctx, hash, key).Result(); err == nil {
		return v, true, nil
	}
	value, ok, err = s.load(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	_ = s.rdb.HSet(ctx, hash, key, value).Err()
	return value, true, nil
}
