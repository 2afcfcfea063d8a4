package postgres

import (
	"context"

	"github.com/madangbooks/madang/internal/domain/ident"
)

const lockSQL = `SELECT pg_advisory_xact_lock($1)`

type tableSQL struct {
	lockKey int64
	maxSQL  string
}

// Advisory lock keys live in the application's own key space; they only need
// to be distinct from each other and from other users of the database.
var tables = map[ident.Table]tableSQL{
	ident.Customers: {lockKey: 0x6d6164616e6701, maxSQL: `SELECT MAX(custid) FROM customer`},
	ident.Orders:    {lockKey: 0x6d6164616e6702, maxSQL: `SELECT MAX(orderid) FROM orders`},
}

var _ ident.Source = (*IDSource)(nil)

// IDSource implements ident.Source. Lock takes a transaction-scoped advisory
// lock, so it only serializes when the source is bound to a transaction.
type IDSource struct {
	q querier
}

func lookup(t ident.Table) (tableSQL, error) {
	sql, ok := tables[t]
	if !ok {
		return tableSQL{}, ident.ErrUnknownTable
	}
	return sql, nil
}

func (s *IDSource) Lock(ctx context.Context, t ident.Table) error {
	sql, err := lookup(t)
	if err != nil {
		return err
	}
	if _, err := s.q.Exec(ctx, lockSQL, sql.lockKey); err != nil {
		return classify("lock "+t.String(), err)
	}
	return nil
}

func (s *IDSource) MaxKey(ctx context.Context, t ident.Table) (int64, bool, error) {
	sql, err := lookup(t)
	if err != nil {
		return 0, false, err
	}
	var top *int64
	if err := s.q.QueryRow(ctx, sql.maxSQL).Scan(&top); err != nil {
		return 0, false, classify("max "+t.String(), err)
	}
	if top == nil {
		return 0, false, nil
	}
	return *top, true, nil
}
