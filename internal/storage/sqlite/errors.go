package sqlite

import (
	"database/sql"

	"github.com/go-faster/errors"
	"github.com/mattn/go-sqlite3"

	"github.com/madangbooks/madang/internal/domain/apperr"
)

// classify wraps err with op, mapping constraint violations to
// *apperr.IntegrityError and lock or file failures to
// *apperr.StorageUnavailableError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint:
			return &apperr.IntegrityError{Op: op, Err: err}
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen,
			sqlite3.ErrIoErr, sqlite3.ErrNotADB, sqlite3.ErrReadonly:
			return &apperr.StorageUnavailableError{Op: op, Err: err}
		}
		return errors.Wrap(err, op)
	}
	if errors.Is(err, sql.ErrConnDone) {
		return &apperr.StorageUnavailableError{Op: op, Err: err}
	}

	return errors.Wrap(err, op)
}
