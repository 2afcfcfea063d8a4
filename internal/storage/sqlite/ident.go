package sqlite

import (
	"context"
	"database/sql"

	"github.com/madangbooks/madang/internal/domain/ident"
)

var maxKeySQL = map[ident.Table]string{
	ident.Customers: `SELECT MAX(custid) FROM customer`,
	ident.Orders:    `SELECT MAX(orderid) FROM orders`,
}

var _ ident.Source = (*IDSource)(nil)

// IDSource implements ident.Source. Transactions already hold the database
// write lock from BEGIN IMMEDIATE, so Lock only checks the table.
type IDSource struct {
	q querier
}

func (s *IDSource) Lock(_ context.Context, t ident.Table) error {
	if _, ok := maxKeySQL[t]; !ok {
		return ident.ErrUnknownTable
	}
	return nil
}

func (s *IDSource) MaxKey(ctx context.Context, t ident.Table) (int64, bool, error) {
	query, ok := maxKeySQL[t]
	if !ok {
		return 0, false, ident.ErrUnknownTable
	}
	var top sql.NullInt64
	if err := s.q.QueryRowContext(ctx, query).Scan(&top); err != nil {
		return 0, false, classify("max "+t.String(), err)
	}
	return top.Int64, top.Valid, nil
}
