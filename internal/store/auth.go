package store

import (
	"context"
	"errors"
)

// ErrNoAuth is returned when no authentication is stored
var ErrNoAuth = errors.New("no authentication stored")

// GetTokens retrieves the stored authentication tokens
func (s *Store) GetTokens(ctx context.Context) (*Tokens, error) {
	var t Tokens
	err := s.getJSON(ctx, KeyTokens, &t)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoAuth
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveTokens overwrites the stored tokens with a full token response
func (s *Store) SaveTokens(ctx context.Context, t *Tokens) error {
	return s.putJSON(ctx, KeyTokens, t)
}
