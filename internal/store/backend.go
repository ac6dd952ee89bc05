package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"cadence/internal/config"
)

// ErrNotFound is returned when a key has never been written
var ErrNotFound = errors.New("document not found")

// ErrConflict is returned when an optimistic update lost every retry
var ErrConflict = errors.New("document changed concurrently")

// UpdateFunc receives the current value (nil when the key is absent) and
// returns the value to write. Returning a nil slice leaves the key untouched.
type UpdateFunc func(current []byte) ([]byte, error)

// Backend stores whole JSON documents by key.
//
// Update is the only read-modify-write path. Every implementation
// serializes it against other writers of the same key so that concurrent
// requests cannot silently drop each other's changes.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// OpenBackend builds the backend selected by the storage config.
func OpenBackend(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case "", config.BackendFile:
		return NewFileBackend(cfg.Dir)
	case config.BackendSQLite:
		return OpenSQLite(filepath.Join(cfg.Dir, "cadence.db"))
	case config.BackendRedis:
		return NewRedisBackend(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	case config.BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
