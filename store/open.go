package store

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/constructorio/config"
)

// Open builds the Store selected by cfg.Driver.
func Open(cfg config.StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case "", config.StoreDriverMemory:
		return NewMemory(), nil
	case config.StoreDriverSQLite:
		b, err := NewSQLiteBackend(cfg.Path)
		if err != nil {
			return nil, err
		}
		return New(b), nil
	case config.StoreDriverRedis:
		b, err := NewRedisBackend(RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return New(b), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
