package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps documents in a map. Used by tests and the "memory"
// storage setting.
type MemoryBackend struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (b *MemoryBackend) Put(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[key] = clone(value)
	return nil
}

func (b *MemoryBackend) Update(ctx context.Context, key string, fn UpdateFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var current []byte
	if v, ok := b.docs[key]; ok {
		current = clone(v)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next != nil {
		b.docs[key] = clone(next)
	}
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

func clone(v []byte) []byte {
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
