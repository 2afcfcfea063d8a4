// Package history reports the purchase history of customers by name.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/madangbooks/madang/internal/domain/customer"
)

// Entry is one purchased book in a customer's history.
type Entry struct {
	OrderID    int64
	BookID     int64
	CustomerID int64
	BookName   string
	SalePrice  decimal.Decimal
	OrderDate  time.Time
	Phone      string
}

// Repository defines the history query.
type Repository interface {
	// ByCustomerName joins customer, orders and book for every customer named
	// name, most recent order first (orderdate DESC, orderid DESC).
	ByCustomerName(ctx context.Context, name string) ([]Entry, error)
}

// DefaultConcurrency bounds the number of reports ReportMany runs at once.
const DefaultConcurrency = 4

// Reporter answers purchase history queries. It only reads and may run
// alongside writers.
type Reporter struct {
	repo  Repository
	limit int
}

// NewReporter creates a Reporter. A non-positive limit selects
// DefaultConcurrency.
func NewReporter(repo Repository, limit int) *Reporter {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Reporter{repo: repo, limit: limit}
}

// Report returns the purchases of the customers named name. An unknown or
// blank name yields an empty slice, never an error.
func (r *Reporter) Report(ctx context.Context, name string) ([]Entry, error) {
	name = customer.CanonicalName(name)
	if name == "" {
		return []Entry{}, nil
	}

	entries, err := r.repo.ByCustomerName(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "history of %q", name)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// ReportMany runs Report for every name concurrently. The result is keyed by
// the names as given. The first failure cancels the remaining reports.
func (r *Reporter) ReportMany(ctx context.Context, names []string) (map[string][]Entry, error) {
	var (
		mu  sync.Mutex
		out = make(map[string][]Entry, len(names))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for _, name := range names {
		g.Go(func() error {
			entries, err := r.Report(ctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			out[name] = entries
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
