package sqlite

import (
	"context"
	"time"

	"github.com/madangbooks/madang/internal/domain/order"
)

// Dates are stored as YYYY-MM-DD text, which sorts chronologically and is
// read back as time.Time through the DATE column type.
const (
	insertOrderSQL = `INSERT INTO orders (orderid, custid, bookid, saleprice, orderdate) VALUES (?, ?, ?, ?, ?)`
	listOrdersSQL  = `SELECT orderid, custid, bookid, saleprice, orderdate FROM orders ORDER BY orderid`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by SQLite.
type OrderRepository struct {
	q querier
}

func (r *OrderRepository) Insert(ctx context.Context, o order.Order) error {
	_, err := r.q.ExecContext(ctx, insertOrderSQL,
		o.ID, o.CustomerID, o.BookID, o.SalePrice, formatDate(o.OrderDate),
	)
	if err != nil {
		return classify("insert order", err)
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	out, err := collect(ctx, r.q, func(row scanner) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.CustomerID, &o.BookID, &o.SalePrice, &o.OrderDate)
		return o, err
	}, listOrdersSQL)
	if err != nil {
		return nil, classify("list orders", err)
	}
	return out, nil
}

func formatDate(t time.Time) string {
	return order.Day(t).Format(time.DateOnly)
}
