// Package seed loads the catalog, customer and order data set used to
// initialise a store.
//
// The format is YAML with three lists (books, customers, orders). Files ending
// in .gz are gunzipped first. Import is idempotent: books are upserted by
// primary key, customers and orders are inserted when their key is free and
// must otherwise match the stored row.
package seed

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/madangbooks/madang/db"
	"github.com/madangbooks/madang/internal/domain/apperr"
	"github.com/madangbooks/madang/internal/domain/book"
	"github.com/madangbooks/madang/internal/domain/customer"
	"github.com/madangbooks/madang/internal/domain/order"
)

// Data is a parsed data set.
type Data struct {
	Books     []book.Book
	Customers []customer.Customer
	Orders    []order.Order
}

// Target is a store that can import a data set in one unit of work.
type Target interface {
	Upsert(ctx context.Context, d Data) error
}

// Conflict returns the error a Target reports when a seeded customer or order
// key is already taken by a different row. Stored sales are never rewritten.
func Conflict(table string, id int64) error {
	return &apperr.IntegrityError{
		Op:  "seed " + table,
		Err: errors.Errorf("%s %d differs from the stored row", table, id),
	}
}

// SameOrder reports whether a and b describe the same sale.
func SameOrder(a, b order.Order) bool {
	return a.ID == b.ID &&
		a.CustomerID == b.CustomerID &&
		a.BookID == b.BookID &&
		a.SalePrice.Equal(b.SalePrice) &&
		order.Day(a.OrderDate).Equal(order.Day(b.OrderDate))
}

type file struct {
	Books []struct {
		ID        int64  `yaml:"id"`
		Name      string `yaml:"name"`
		Publisher string `yaml:"publisher"`
		Price     string `yaml:"price"`
	} `yaml:"books"`
	Customers []struct {
		ID      int64  `yaml:"id"`
		Name    string `yaml:"name"`
		Address string `yaml:"address"`
		Phone   string `yaml:"phone"`
	} `yaml:"customers"`
	Orders []struct {
		ID       int64  `yaml:"id"`
		Customer int64  `yaml:"customer"`
		Book     int64  `yaml:"book"`
		Price    string `yaml:"price"`
		Date     string `yaml:"date"`
	} `yaml:"orders"`
}

// Parse decodes a data set. Customers without an address or phone get them
// from defaults.
func Parse(r io.Reader, defaults customer.Defaults) (Data, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Data{}, errors.Wrap(err, "decode yaml")
	}

	var d Data
	books := make(map[int64]bool, len(f.Books))
	for i, b := range f.Books {
		if b.ID <= 0 {
			return Data{}, errors.Errorf("books[%d]: id must be positive", i)
		}
		if books[b.ID] {
			return Data{}, errors.Errorf("books[%d]: duplicate id %d", i, b.ID)
		}
		price, err := parsePrice(b.Price)
		if err != nil {
			return Data{}, errors.Wrapf(err, "books[%d]", i)
		}
		books[b.ID] = true
		d.Books = append(d.Books, book.Book{
			ID:        b.ID,
			Name:      strings.TrimSpace(b.Name),
			Publisher: strings.TrimSpace(b.Publisher),
			Price:     price,
		})
	}

	customers := make(map[int64]bool, len(f.Customers))
	for i, c := range f.Customers {
		if c.ID <= 0 {
			return Data{}, errors.Errorf("customers[%d]: id must be positive", i)
		}
		if customers[c.ID] {
			return Data{}, errors.Errorf("customers[%d]: duplicate id %d", i, c.ID)
		}
		name := customer.CanonicalName(c.Name)
		if name == "" {
			return Data{}, errors.Errorf("customers[%d]: name is required", i)
		}
		customers[c.ID] = true
		address, phone := defaults.Apply(c.Address, c.Phone)
		d.Customers = append(d.Customers, customer.Customer{
			ID:      c.ID,
			Name:    name,
			Address: address,
			Phone:   phone,
		})
	}

	orders := make(map[int64]bool, len(f.Orders))
	for i, o := range f.Orders {
		if o.ID <= 0 {
			return Data{}, errors.Errorf("orders[%d]: id must be positive", i)
		}
		if orders[o.ID] {
			return Data{}, errors.Errorf("orders[%d]: duplicate id %d", i, o.ID)
		}
		price, err := parsePrice(o.Price)
		if err != nil {
			return Data{}, errors.Wrapf(err, "orders[%d]", i)
		}
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(o.Date))
		if err != nil {
			return Data{}, errors.Wrapf(err, "orders[%d]: date", i)
		}
		orders[o.ID] = true
		d.Orders = append(d.Orders, order.Order{
			ID:         o.ID,
			CustomerID: o.Customer,
			BookID:     o.Book,
			SalePrice:  price,
			OrderDate:  order.Day(date),
		})
	}

	return d, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "price %q", s)
	}
	if err := order.CheckAmount(p); err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "price %s", p)
	}
	return p, nil
}

// Load reads and parses the data set at path.
func Load(path string, defaults customer.Defaults) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, errors.Wrap(err, "open seed file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return Data{}, errors.Wrap(err, "open gzip")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	return Parse(r, defaults)
}

// Sample returns the bundled Madang sample data set.
func Sample(defaults customer.Defaults) (Data, error) {
	return Parse(bytes.NewReader(db.Seed), defaults)
}

// Import writes d into t.
func Import(ctx context.Context, t Target, d Data) error {
	if err := t.Upsert(ctx, d); err != nil {
		return errors.Wrap(err, "import seed")
	}
	return nil
}
