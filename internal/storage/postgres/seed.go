package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/madangbooks/madang/internal/domain/order"
	"github.com/madangbooks/madang/internal/seed"
)

const (
	upsertBookSQL = `INSERT INTO book (bookid, bookname, publisher, price) VALUES ($1, $2, $3, $4)
		ON CONFLICT (bookid) DO UPDATE SET bookname = EXCLUDED.bookname, publisher = EXCLUDED.publisher, price = EXCLUDED.price`

	seedCustomerSQL = `INSERT INTO customer (custid, name, address, phone) VALUES ($1, $2, $3, $4)
		ON CONFLICT (custid) DO NOTHING`

	seedOrderSQL = `INSERT INTO orders (orderid, custid, bookid, saleprice, orderdate) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (orderid) DO NOTHING`

	getOrderByIDSQL = `SELECT orderid, custid, bookid, saleprice, orderdate FROM orders WHERE orderid = $1`
)

var _ seed.Target = (*Store)(nil)

// Upsert writes d in one transaction, parents first. The catalog goes out as
// a single batch and is overwritten; a customer or order whose id is taken
// must match the stored row or the import fails with seed.Conflict.
func (s *Store) Upsert(ctx context.Context, d seed.Data) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return classify("begin", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	b := &pgx.Batch{}
	for _, bk := range d.Books {
		b.Queue(upsertBookSQL, bk.ID, bk.Name, bk.Publisher, bk.Price)
	}
	if b.Len() > 0 {
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return classify("upsert books", err)
		}
	}

	customers := &CustomerRepository{q: tx}
	for _, c := range d.Customers {
		tag, err := tx.Exec(ctx, seedCustomerSQL, c.ID, c.Name, c.Address, c.Phone)
		if err != nil {
			return classify("seed customer", err)
		}
		if tag.RowsAffected() > 0 {
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
		tag, err := tx.Exec(ctx, seedOrderSQL, o.ID, o.CustomerID, o.BookID, o.SalePrice, order.Day(o.OrderDate))
		if err != nil {
			return classify("seed order", err)
		}
		if tag.RowsAffected() > 0 {
			continue
		}
		var stored order.Order
		err = tx.QueryRow(ctx, getOrderByIDSQL, o.ID).
			Scan(&stored.ID, &stored.CustomerID, &stored.BookID, &stored.SalePrice, &stored.OrderDate)
		if err != nil {
			return classify("get order", err)
		}
		if !seed.SameOrder(stored, o) {
			return seed.Conflict("orders", o.ID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("commit", err)
	}
	return nil
}
