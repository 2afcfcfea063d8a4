package sale

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/madangbooks/madang/internal/domain/book"
	"github.com/madangbooks/madang/internal/domain/customer"
	"github.com/madangbooks/madang/internal/domain/history"
	"github.com/madangbooks/madang/internal/domain/ident"
	"github.com/madangbooks/madang/internal/domain/order"
)

// memStore is a single-writer in-memory Store. A unit of work that fails is
// rolled back to a snapshot taken at its start.
type memStore struct {
	mu sync.Mutex

	customers []customer.Customer
	books     []book.Book
	orders    []order.Order

	// insertOrderErr, when set, fails every order insert.
	insertOrderErr error
	commitErr      error
	txCount        int
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	customers := slices.Clone(m.customers)
	orders := slices.Clone(m.orders)

	err := fn(ctx, m.repos())
	if err == nil {
		err = m.commitErr
	}
	if err != nil {
		m.customers = customers
		m.orders = orders
		return err
	}
	return nil
}

func (m *memStore) Repos() Repos { return m.repos() }

func (m *memStore) repos() Repos {
	return Repos{
		Customers: memCustomers{m},
		Books:     memBooks{m},
		Orders:    memOrders{m},
		History:   memHistory{m},
		IDs:       memIDs{m},
	}
}

type memCustomers struct{ m *memStore }

func (r memCustomers) FindByName(_ context.Context, name string) ([]customer.Customer, error) {
	var out []customer.Customer
	for _, c := range r.m.customers {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memCustomers) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	for _, c := range r.m.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, customer.ErrNotFound
}

func (r memCustomers) Insert(_ context.Context, c customer.Customer) error {
	r.m.customers = append(r.m.customers, c)
	return nil
}

func (r memCustomers) List(_ context.Context) ([]customer.Customer, error) {
	return slices.Clone(r.m.customers), nil
}

type memBooks struct{ m *memStore }

func (r memBooks) List(_ context.Context) ([]book.Book, error) {
	return slices.Clone(r.m.books), nil
}

func (r memBooks) GetByID(_ context.Context, id int64) (*book.Book, error) {
	for _, b := range r.m.books {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, book.ErrNotFound
}

type memOrders struct{ m *memStore }

func (r memOrders) Insert(_ context.Context, o order.Order) error {
	if r.m.insertOrderErr != nil {
		return r.m.insertOrderErr
	}
	r.m.orders = append(r.m.orders, o)
	return nil
}

func (r memOrders) List(_ context.Context) ([]order.Order, error) {
	return slices.Clone(r.m.orders), nil
}

type memHistory struct{ m *memStore }

func (r memHistory) ByCustomerName(_ context.Context, name string) ([]history.Entry, error) {
	var out []history.Entry
	for _, c := range r.m.customers {
		if c.Name != name {
			continue
		}
		for _, o := range r.m.orders {
			if o.CustomerID != c.ID {
				continue
			}
			b, err := memBooks(r).GetByID(context.Background(), o.BookID)
			if err != nil {
				return nil, err
			}
			out = append(out, history.Entry{
				OrderID:    o.ID,
				BookID:     o.BookID,
				CustomerID: c.ID,
				BookName:   b.Name,
				SalePrice:  o.SalePrice,
				OrderDate:  o.OrderDate,
				Phone:      c.Phone,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].OrderID > out[j].OrderID
	})
	return out, nil
}

type memIDs struct{ m *memStore }

func (memIDs) Lock(context.Context, ident.Table) error { return nil }

func (r memIDs) MaxKey(_ context.Context, t ident.Table) (int64, bool, error) {
	var keys []int64
	switch t {
	case ident.Customers:
		for _, c := range r.m.customers {
			keys = append(keys, c.ID)
		}
	case ident.Orders:
		for _, o := range r.m.orders {
			keys = append(keys, o.ID)
		}
	default:
		return 0, false, ident.ErrUnknownTable
	}
	if len(keys) == 0 {
		return 0, false, nil
	}
	return slices.Max(keys), true, nil
}
