package sqlite

import (
	"context"

	"github.com/madangbooks/madang/internal/domain/order"
	"github.com/madangbooks/madang/internal/seed"
)

const (
	upsertBookSQL = `INSERT INTO book (bookid, bookname, publisher, price) VALUES (?, ?, ?, ?)
		ON CONFLICT (bookid) DO UPDATE SET bookname = excluded.bookname, publisher = excluded.publisher, price = excluded.price`

	seedCustomerSQL = `INSERT INTO customer (custid, name, address, phone) VALUES (?, ?, ?, ?)
		ON CONFLICT (custid) DO NOTHING`

	seedOrderSQL = `INSERT INTO orders (orderid, custid, bookid, saleprice, orderdate) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (orderid) DO NOTHING`

	getOrderByIDSQL = `SELECT orderid, custid, bookid, saleprice, orderdate FROM orders WHERE orderid = ?`
)

var _ seed.Target = (*Store)(nil)

// Upsert writes d in one transaction, parents first. Catalog rows are
// overwritten; a customer or order whose id is taken must match the stored
// row or the import fails with seed.Conflict.
func (s *Store) Upsert(ctx context.Context, d seed.Data) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, b := range d.Books {
		if _, err := tx.ExecContext(ctx, upsertBookSQL, b.ID, b.Name, b.Publisher, b.Price); err != nil {
			return classify("upsert book", err)
		}
	}

	customers := &CustomerRepository{q: tx}
	for _, c := range d.Customers {
		inserted, err := insertNew(ctx, tx, seedCustomerSQL, c.ID, c.Name, c.Address, c.Phone)
		if err != nil {
			return classify("seed customer", err)
		}
		if inserted {
			continue
		}
		stored, err := customers.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		if *stored != c {
			return seed.Conflict("customer", c.ID)
		}
	}

	for _, o := range d.Orders {
		inserted, err := insertNew(ctx, tx, seedOrderSQL, o.ID, o.CustomerID, o.BookID, o.SalePrice, formatDate(o.OrderDate))
		if err != nil {
			return classify("seed order", err)
		}
		if inserted {
			continue
		}
		stored, err := getOrder(ctx, tx, o.ID)
		if err != nil {
			return classify("get order", err)
		}
		if !seed.SameOrder(stored, o) {
			return seed.Conflict("orders", o.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return classify("commit", err)
	}
	return nil
}

func insertNew(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func getOrder(ctx context.Context, q querier, id int64) (order.Order, error) {
	var o order.Order
	err := q.QueryRowContext(ctx, getOrderByIDSQL, id).
		Scan(&o.ID, &o.CustomerID, &o.BookID, &o.SalePrice, &o.OrderDate)
	return o, err
}
