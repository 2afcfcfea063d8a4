// Package apperr defines the error taxonomy shared by the order-entry core and
// its storage adapters.
//
// Callers match classes with errors.Is against the sentinels (ErrValidation,
// ErrIntegrity, ErrStorageUnavailable) and extract details with errors.As.
package apperr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

var (
	// ErrValidation classifies bad or missing user input. The caller should
	// re-prompt; nothing has been written.
	ErrValidation = errors.New("validation failed")
	// ErrIntegrity classifies writes rejected by a storage constraint.
	ErrIntegrity = errors.New("integrity violation")
	// ErrStorageUnavailable classifies connection or backing store failures.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

// Validation returns a ValidationError for field.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AmbiguousMatchError is returned by the customer resolver when a name matches
// several customers and the caller has to pick one of CustomerIDs.
type AmbiguousMatchError struct {
	Name        string
	CustomerIDs []int64
}

func (e *AmbiguousMatchError) Error() string {
	ids := make([]string, len(e.CustomerIDs))
	for i, id := range e.CustomerIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("name %q matches %d customers (%s)", e.Name, len(e.CustomerIDs), strings.Join(ids, ", "))
}

// Is reports ErrValidation: disambiguation is input the caller must supply.
func (e *AmbiguousMatchError) Is(target error) bool { return target == ErrValidation }

// IntegrityError wraps a constraint violation reported by the store. The
// enclosing transaction has been rolled back.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: integrity violation: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// Is reports ErrIntegrity.
func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// StorageUnavailableError wraps a failure to reach the backing store. It is
// never retried automatically: a single-writer store may be locked by another
// process and retrying would hide that.
type StorageUnavailableError struct {
	Op  string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("%s: storage unavailable: %v", e.Op, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error { return e.Err }

// Is reports ErrStorageUnavailable.
func (e *StorageUnavailableError) Is(target error) bool { return target == ErrStorageUnavailable }
