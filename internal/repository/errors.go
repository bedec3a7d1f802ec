package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a lookup or keyed update matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert violates a unique constraint.
	ErrConflict = errors.New("already exists")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	// pqInvalidText is raised for a malformed uuid key; no such row can exist.
	pqInvalidText = "22P02"
)

// classify maps driver errors onto the package sentinels; other errors
// are returned unchanged.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrConflict
		case pqForeignKeyViolation, pqInvalidText:
			return ErrNotFound
		}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}
