package stores

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/herald/internal/core/kv"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Backend is a kv.KV that owns resources.
type Backend interface {
	kv.KV
	Close() error
}

// Options selects and configures a storage driver.
type Options struct {
	Driver      string
	Path        string // file driver
	Watch       bool   // file driver: reload on external writes
	RedisURL    string // redis driver
	RedisPrefix string // redis driver
}

// Open constructs the configured storage backend.
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (Backend, error) {
	switch opts.Driver {
	case DriverFile, "":
		store, err := OpenFileKV(opts.Path, logger)
		if err != nil {
			return nil, err
		}
		if opts.Watch {
			if err := store.Watch(); err != nil {
				logger.Warn().Err(err).Msg("storage watcher unavailable, continuing without reload")
			}
		}
		return store, nil
	case DriverRedis:
		return OpenRedisKV(ctx, opts.RedisURL, opts.RedisPrefix)
	case DriverMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
