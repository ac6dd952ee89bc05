package store

import (
	"context"
	"errors"
)

// GetSnapshot returns the mirrored activities, most recent first.
// A missing snapshot yields ErrNotFound.
func (s *Store) GetSnapshot(ctx context.Context) ([]ActivitySummary, error) {
	var activities []ActivitySummary
	if err := s.getJSON(ctx, KeyActivities, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// SaveSnapshot replaces the mirrored activities
func (s *Store) SaveSnapshot(ctx context.Context, activities []ActivitySummary) error {
	if activities == nil {
		activities = []ActivitySummary{}
	}
	return s.putJSON(ctx, KeyActivities, activities)
}

// HasSnapshot reports whether a non-empty snapshot exists
func (s *Store) HasSnapshot(ctx context.Context) (bool, error) {
	activities, err := s.GetSnapshot(ctx)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(activities) > 0, nil
}
