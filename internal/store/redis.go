package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// maxRedisRetries bounds the WATCH/MULTI loop in Update
const maxRedisRetries = 5

// RedisBackend stores documents as plain string values under prefix+key.
// Update uses optimistic WATCH/MULTI transactions.
type RedisBackend struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedisBackend connects and pings the server.
func NewRedisBackend(ctx context.Context, addr, prefix string) (*RedisBackend, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisBackendFromClient(rdb, prefix), nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(rdb *goredis.Client, prefix string) *RedisBackend {
	return &RedisBackend{rdb: rdb, prefix: prefix}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.rdb.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (b *RedisBackend) Put(ctx context.Context, key string, value []byte) error {
	return b.rdb.Set(ctx, b.prefix+key, value, 0).Err()
}

func (b *RedisBackend) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := b.prefix + key

	txf := func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, goredis.Nil) {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxRedisRetries; attempt++ {
		err := b.rdb.Watch(ctx, txf, k)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (b *RedisBackend) Close() error {
	return b.rdb.Close()
}
