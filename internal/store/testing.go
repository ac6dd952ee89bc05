package store

import (
	"database/sql"
)

// NewTestStore creates a Store for testing on top of an in-memory SQLite
// database. This is only intended for use in tests.
func NewTestStore(sqlDB *sql.DB) (*Store, error) {
	b, err := NewSQLiteBackend(sqlDB)
	if err != nil {
		return nil, err
	}
	return New(b), nil
}
