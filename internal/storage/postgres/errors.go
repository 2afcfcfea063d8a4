package postgres

import (
	"net"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/madangbooks/madang/internal/domain/apperr"
)

// classify wraps err with op, mapping constraint violations to
// *apperr.IntegrityError, data exceptions to *apperr.ValidationError and
// connection failures to *apperr.StorageUnavailableError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return &apperr.IntegrityError{Op: op, Err: err}
		case strings.HasPrefix(pgErr.Code, "22"):
			field := pgErr.ColumnName
			if field == "" {
				field = "value"
			}
			return errors.Wrap(apperr.Validation(field, pgErr.Message), op)
		case strings.HasPrefix(pgErr.Code, "08"),
			strings.HasPrefix(pgErr.Code, "57P"),
			pgErr.Code == "53300": // too_many_connections
			return &apperr.StorageUnavailableError{Op: op, Err: err}
		}
		return errors.Wrap(err, op)
	}

	var (
		connErr *pgconn.ConnectError
		netErr  net.Error
	)
	if errors.As(err, &connErr) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return &apperr.StorageUnavailableError{Op: op, Err: err}
	}
	if strings.Contains(err.Error(), "closed pool") {
		return &apperr.StorageUnavailableError{Op: op, Err: err}
	}

	return errors.Wrap(err, op)
}
