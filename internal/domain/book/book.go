package book

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested book does not exist.
var ErrNotFound = errors.New("book not found")

// Book is a catalog entry. The catalog is owned by an external collaborator;
// the order-entry core only reads it.
type Book struct {
	ID        int64
	Name      string
	Publisher string
	Price     decimal.Decimal
}

// Repository defines read operations for the book catalog.
type Repository interface {
	List(ctx context.Context) ([]Book, error)
	GetByID(ctx context.Context, id int64) (*Book, error)
}
