package sqlite

import (
	"database/sql"
	"testing"

	"github.com/go-faster/errors"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madangbooks/madang/internal/domain/apperr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint}, want: apperr.ErrIntegrity},
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: apperr.ErrStorageUnavailable},
		{name: "locked", err: sqlite3.Error{Code: sqlite3.ErrLocked}, want: apperr.ErrStorageUnavailable},
		{name: "cannot open", err: sqlite3.Error{Code: sqlite3.ErrCantOpen}, want: apperr.ErrStorageUnavailable},
		{name: "not a database", err: sqlite3.Error{Code: sqlite3.ErrNotADB}, want: apperr.ErrStorageUnavailable},
		{name: "connection done", err: sql.ErrConnDone, want: apperr.ErrStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("insert customer", tt.err)
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "insert customer")
		})
	}
}

func TestClassify_Passthrough(t *testing.T) {
	assert.NoError(t, classify("op", nil))

	err := classify("list books", errors.New("syntax error"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrIntegrity)
	assert.NotErrorIs(t, err, apperr.ErrStorageUnavailable)
	assert.Equal(t, "list books: syntax error", err.Error())
}
