// Package store persists questions, assessments, answers, investors and
// investor matches in Postgres.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = eris.New("record not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return eris.Is(err, ErrNotFound)
}

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the tables the workers use if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return eris.Wrap(err, "store: migrate")
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func nullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullFloatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// jsonColumn marshals v for a jsonb column. A nil map or slice is stored as NULL.
func jsonColumn(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return data, nil
}
