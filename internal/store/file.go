package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend keeps each document in <dir>/<key>.json, the same layout the
// dashboard has always used (tokens.json, plan.json, ...).
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileBackend creates the directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, fileName(key))
}

// fileName maps store keys onto the historical file names.
func fileName(key string) string {
	if key == KeyPlans {
		return "plan.json"
	}
	return key + ".json"
}

func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read(key)
}

func (b *FileBackend) Put(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.write(key, value)
}

func (b *FileBackend) Update(ctx context.Context, key string, fn UpdateFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, err := b.read(key)
	if err != nil && err != ErrNotFound {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	return b.write(key, next)
}

func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) read(key string) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (b *FileBackend) write(key string, value []byte) error {
	tmp, err := os.CreateTemp(b.dir, fileName(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", key, err)
	}
	if err := os.Rename(tmpName, b.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", key, err)
	}
	return nil
}
