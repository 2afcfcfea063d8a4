package sqlite

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"

	"github.com/madangbooks/madang/internal/domain/customer"
)

const (
	findCustomersByNameSQL = `SELECT custid, name, address, phone FROM customer WHERE name = ? ORDER BY custid`
	getCustomerByIDSQL     = `SELECT custid, name, address, phone FROM customer WHERE custid = ?`
	listCustomersSQL       = `SELECT custid, name, address, phone FROM customer ORDER BY custid`
	insertCustomerSQL      = `INSERT INTO customer (custid, name, address, phone) VALUES (?, ?, ?, ?)`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by SQLite.
type CustomerRepository struct {
	q querier
}

func (r *CustomerRepository) FindByName(ctx context.Context, name string) ([]customer.Customer, error) {
	out, err := collect(ctx, r.q, scanCustomer, findCustomersByNameSQL, name)
	if err != nil {
		return nil, classify("find customers by name", err)
	}
	return out, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	c, err := scanCustomer(r.q.QueryRowContext(ctx, getCustomerByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, classify("get customer", err)
	}
	return &c, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, c customer.Customer) error {
	if _, err := r.q.ExecContext(ctx, insertCustomerSQL, c.ID, c.Name, c.Address, c.Phone); err != nil {
		return classify("insert customer", err)
	}
	return nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	out, err := collect(ctx, r.q, scanCustomer, listCustomersSQL)
	if err != nil {
		return nil, classify("list customers", err)
	}
	return out, nil
}

func scanCustomer(row scanner) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone)
	return c, err
}
