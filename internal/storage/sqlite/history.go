package sqlite

import (
	"context"

	"github.com/madangbooks/madang/internal/domain/history"
)

const historyByCustomerNameSQL = `SELECT o.orderid, o.bookid, c.custid, b.bookname, o.saleprice, o.orderdate, c.phone
	FROM customer c
	JOIN orders o ON o.custid = c.custid
	JOIN book b ON b.bookid = o.bookid
	WHERE c.name = ?
	ORDER BY o.orderdate DESC, o.orderid DESC`

var _ history.Repository = (*HistoryRepository)(nil)

// HistoryRepository implements history.Repository backed by SQLite.
type HistoryRepository struct {
	q querier
}

func (r *HistoryRepository) ByCustomerName(ctx context.Context, name string) ([]history.Entry, error) {
	out, err := collect(ctx, r.q, func(row scanner) (history.Entry, error) {
		var e history.Entry
		err := row.Scan(&e.OrderID, &e.BookID, &e.CustomerID, &e.BookName, &e.SalePrice, &e.OrderDate, &e.Phone)
		return e, err
	}, historyByCustomerNameSQL, name)
	if err != nil {
		return nil, classify("history by customer name", err)
	}
	return out, nil
}
