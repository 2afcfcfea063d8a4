package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/madangbooks/madang/internal/domain/customer"
)

const (
	findCustomersByNameSQL = `SELECT custid, name, address, phone FROM customer WHERE name = $1 ORDER BY custid`
	getCustomerByIDSQL     = `SELECT custid, name, address, phone FROM customer WHERE custid = $1`
	listCustomersSQL       = `SELECT custid, name, address, phone FROM customer ORDER BY custid`
	insertCustomerSQL      = `INSERT INTO customer (custid, name, address, phone) VALUES ($1, $2, $3, $4)`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	q querier
}

// FindByName returns customers with exactly this name, ordered by id.
func (r *CustomerRepository) FindByName(ctx context.Context, name string) ([]customer.Customer, error) {
	rows, err := r.q.Query(ctx, findCustomersByNameSQL, name)
	if err != nil {
		return nil, classify("find customers by name", err)
	}
	out, err := pgx.CollectRows(rows, scanCustomer)
	if err != nil {
		return nil, classify("find customers by name", err)
	}
	return out, nil
}

// GetByID returns a single customer or customer.ErrNotFound.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	rows, err := r.q.Query(ctx, getCustomerByIDSQL, id)
	if err != nil {
		return nil, classify("get customer", err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, classify("get customer", err)
	}
	return &c, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, c customer.Customer) error {
	if _, err := r.q.Exec(ctx, insertCustomerSQL, c.ID, c.Name, c.Address, c.Phone); err != nil {
		return classify("insert customer", err)
	}
	return nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.q.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, classify("list customers", err)
	}
	out, err := pgx.CollectRows(rows, scanCustomer)
	if err != nil {
		return nil, classify("list customers", err)
	}
	return out, nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone)
	return c, err
}
