package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PersistenceError reports a failed transactional operation. The transaction
// has been rolled back when this is returned.
type PersistenceError struct {
	Op string
	// Code is the Postgres SQLSTATE, empty for other drivers.
	Code string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: sqlstate %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistenceError(op string, err error) error {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	out := &PersistenceError{Op: op, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		out.Code = pgErr.Code
	}
	return out
}
