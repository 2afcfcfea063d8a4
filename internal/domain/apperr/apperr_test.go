package apperr

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassification(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "validation", err: Validation("name", "required"), target: ErrValidation},
		{name: "ambiguous", err: &AmbiguousMatchError{Name: "a", CustomerIDs: []int64{1, 2}}, target: ErrValidation},
		{name: "integrity", err: &IntegrityError{Op: "insert order", Err: cause}, target: ErrIntegrity},
		{name: "unavailable", err: &StorageUnavailableError{Op: "begin", Err: cause}, target: ErrStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := errors.Wrap(tt.err, "resolve customer")
			assert.ErrorIs(t, wrapped, tt.target)

			for _, other := range []error{ErrValidation, ErrIntegrity, ErrStorageUnavailable} {
				if other != tt.target {
					assert.NotErrorIs(t, wrapped, other)
				}
			}
		})
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := errors.Wrap(&StorageUnavailableError{Op: "begin", Err: cause}, "submit")

	require.ErrorIs(t, err, cause)

	var se *StorageUnavailableError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "begin", se.Op)
}

func TestAmbiguousMatchMessage(t *testing.T) {
	err := &AmbiguousMatchError{Name: "김연아", CustomerIDs: []int64{2, 7}}
	assert.Equal(t, `name "김연아" matches 2 customers (2, 7)`, err.Error())
}

func TestValidationMessage(t *testing.T) {
	assert.Equal(t, "invalid bookid: no such book", Validation("bookid", "no such book").Error())
}
