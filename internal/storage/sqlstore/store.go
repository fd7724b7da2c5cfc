// Package sqlstore implements storage.Provider data access on top of sqlx. The same SQL
// serves SQLite and PostgreSQL; placeholders are rebound per driver.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/ymhp64t9bz-png/habitus-strict-html/internal/errors"
)

// ErrNotOpen is returned when a store method is used before Init or Load.
var ErrNotOpen = errors.New("storage not initialized, run 'habitus init' first")

// Store holds the shared query implementation. Backends embed it and own the lifecycle.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB returns the underlying handle, nil before the backend has opened it.
func (s *Store) DB() *sqlx.DB {
	if s == nil {
		return nil
	}
	return s.db
}

func (s *Store) conn() (*sqlx.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotOpen
	}
	return s.db, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func parseTimestamp(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

func nullableDay(day *string) sql.NullString {
	if day == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *day, Valid: true}
}

func dayPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	d := ns.String
	return &d
}

// notFound maps sql.ErrNoRows onto the engine's not-found sentinel.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, apperrors.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %s: %w", what, id, err)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}
