package store

import (
	"context"
	"errors"
)

// GetTranscript returns the full chat history, oldest first
func (s *Store) GetTranscript(ctx context.Context) ([]ChatMessage, error) {
	var history []ChatMessage
	err := s.getJSON(ctx, KeyChat, &history)
	if errors.Is(err, ErrNotFound) {
		return []ChatMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	return history, nil
}

// AppendMessage appends one turn and returns the full transcript after the
// append.
func (s *Store) AppendMessage(ctx context.Context, msg ChatMessage) ([]ChatMessage, error) {
	var out []ChatMessage
	err := updateJSON(ctx, s.backend, KeyChat, &out, func(history *[]ChatMessage, exists bool) error {
		*history = append(*history, msg)
		return nil
	})
	return out, err
}

// LastMessages returns at most n trailing entries of history
func LastMessages(history []ChatMessage, n int) []ChatMessage {
	if n <= 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
