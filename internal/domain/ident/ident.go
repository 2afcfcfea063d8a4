// Package ident allocates integer primary keys as one plus the current maximum.
//
// Allocation is a read followed by an insert, which is only race-free when both
// happen inside the same unit of work and the Source serializes writers on the
// table (a transaction-scoped lock, or a store that admits a single writer).
package ident

import (
	"context"

	"github.com/go-faster/errors"
)

// Table names an entity table and its integer key column.
type Table struct {
	Name string
	Key  string
}

func (t Table) String() string { return t.Name + "." + t.Key }

// Tables with allocated keys. Storage adapters map these to prebuilt SQL, so
// identifiers never reach query text from user input.
var (
	Customers = Table{Name: "customer", Key: "custid"}
	Orders    = Table{Name: "orders", Key: "orderid"}
)

// ErrUnknownTable is returned for a Table outside the allocated set.
var ErrUnknownTable = errors.New("unknown table")

// Lookup returns the allocated table with the given name.
func Lookup(name string) (Table, error) {
	switch name {
	case Customers.Name:
		return Customers, nil
	case Orders.Name:
		return Orders, nil
	default:
		return Table{}, errors.Wrapf(ErrUnknownTable, "%q", name)
	}
}

// Source exposes key state of the store within one unit of work.
type Source interface {
	// Lock serializes allocation on t until the enclosing unit of work ends.
	// Taking it more than once in the same unit is allowed.
	Lock(ctx context.Context, t Table) error
	// MaxKey returns the largest key in t; ok is false when t is empty.
	MaxKey(ctx context.Context, t Table) (key int64, ok bool, err error)
}

// Next returns the next free key of t. It persists nothing: the caller must
// insert the row before its unit of work ends.
func Next(ctx context.Context, src Source, t Table) (int64, error) {
	if err := src.Lock(ctx, t); err != nil {
		return 0, errors.Wrapf(err, "lock %s", t)
	}
	top, ok, err := src.MaxKey(ctx, t)
	if err != nil {
		return 0, errors.Wrapf(err, "max %s", t)
	}
	if !ok {
		return 1, nil
	}
	return top + 1, nil
}
