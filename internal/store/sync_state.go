package store

import (
	"context"
	"errors"
)

// GetSyncState retrieves a sync state value by key
// Returns empty string if key doesn't exist
func (s *Store) GetSyncState(ctx context.Context, key string) (string, error) {
	state := map[string]string{}
	err := s.getJSON(ctx, KeySyncState, &state)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return state[key], nil
}

// SetSyncState sets a sync state value
func (s *Store) SetSyncState(ctx context.Context, key, value string) error {
	return updateJSON[map[string]string](ctx, s.backend, KeySyncState, nil, func(state *map[string]string, exists bool) error {
		if *state == nil {
			*state = map[string]string{}
		}
		(*state)[key] = value
		return nil
	})
}
