package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/madangbooks/madang/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (orderid, custid, bookid, saleprice, orderdate)
		VALUES ($1, $2, $3, $4, $5)`

	listOrdersSQL = `SELECT orderid, custid, bookid, saleprice, orderdate FROM orders ORDER BY orderid`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	q querier
}

// Insert persists a new order. orderdate is a DATE column; only the
// calendar day of o.OrderDate is stored.
func (r *OrderRepository) Insert(ctx context.Context, o order.Order) error {
	_, err := r.q.Exec(ctx, insertOrderSQL,
		o.ID, o.CustomerID, o.BookID, o.SalePrice, order.Day(o.OrderDate),
	)
	if err != nil {
		return classify("insert order", err)
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.q.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, classify("list orders", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.CustomerID, &o.BookID, &o.SalePrice, &o.OrderDate)
		return o, err
	})
	if err != nil {
		return nil, classify("list orders", err)
	}
	return out, nil
}
