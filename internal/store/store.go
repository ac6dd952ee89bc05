package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Store provides typed access to the dashboard's documents on top of a
// Backend.
type Store struct {
	backend Backend
}

// New wraps a backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// NewMemory returns a Store over a fresh in-memory backend.
func NewMemory() *Store {
	return New(NewMemoryBackend())
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// getJSON decodes the document at key into v.
func (s *Store) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// putJSON replaces the document at key.
func (s *Store) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.backend.Put(ctx, key, data)
}

// errSkipWrite tells updateJSON to leave the document untouched.
var errSkipWrite = errors.New("skip write")

// updateJSON runs a typed read-modify-write of the document at key. fn
// receives the decoded value (zero value and exists=false when absent). If
// fn returns errSkipWrite nothing is written. The value left in *out is the
// one fn saw or produced.
func updateJSON[T any](ctx context.Context, b Backend, key string, out *T, fn func(cur *T, exists bool) error) error {
	return b.Update(ctx, key, func(current []byte) ([]byte, error) {
		var v T
		exists := current != nil
		if exists {
			if err := json.Unmarshal(current, &v); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", key, err)
			}
		}

		err := fn(&v, exists)
		if out != nil {
			*out = v
		}
		if errors.Is(err, errSkipWrite) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}
		return data, nil
	})
}
