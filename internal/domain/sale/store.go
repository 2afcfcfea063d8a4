package sale

import (
	"context"

	"github.com/madangbooks/madang/internal/domain/book"
	"github.com/madangbooks/madang/internal/domain/customer"
	"github.com/madangbooks/madang/internal/domain/history"
	"github.com/madangbooks/madang/internal/domain/ident"
	"github.com/madangbooks/madang/internal/domain/order"
)

// Repos bundles the repositories of one unit of work.
type Repos struct {
	Customers customer.Repository
	Books     book.Repository
	Orders    order.Repository
	History   history.Repository
	IDs       ident.Source
}

func (r Repos) recorder() order.Repos {
	return order.Repos{
		Customers: r.Customers,
		Books:     r.Books,
		Orders:    r.Orders,
		IDs:       r.IDs,
	}
}

// Store is the storage collaborator of the workflow.
type Store interface {
	// WithinTx runs fn in a single unit of work. The unit commits when fn
	// returns nil and rolls back otherwise; fn's error is returned as is.
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
	// Repos returns repositories outside any unit of work, for reads.
	Repos() Repos
}
