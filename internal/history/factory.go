// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	BackendMemory    = "memory"
	BackendSqlite    = "sqlite"
	BackendRedis     = "redis"
	BackendBadger    = "badger"
	BackendCassandra = "cassandra"
)

// Config selects and parameterises a backend.
type Config struct {
	Backend   string
	Path      string // sqlite file or badger directory
	Redis     RedisConfig
	Cassandra CassandraConfig
}

// Open creates a Store for cfg.Backend, instrumented with spans and metrics.
// An empty backend means memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendMemory
	}
	store, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Instrument(store, backend), nil
}

func openBackend(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSqlite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite history backend requires a path")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0750); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
		return NewSqliteStore(ctx, cfg.Path)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case BackendBadger:
		if cfg.Path != "" {
			if err := os.MkdirAll(cfg.Path, 0750); err != nil {
				return nil, fmt.Errorf("create history dir: %w", err)
			}
		}
		return OpenBadgerStore(cfg.Path)
	case BackendCassandra:
		return NewCassandraStore(cfg.Cassandra)
	default:
		return nil, fmt.Errorf("unknown history backend: %s (supported: memory, sqlite, redis, badger, cassandra)", cfg.Backend)
	}
}
