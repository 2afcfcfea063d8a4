package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madangbooks/madang/internal/domain/apperr"
	"github.com/madangbooks/madang/internal/domain/customer"
	"github.com/madangbooks/madang/internal/domain/order"
)

var defaults = customer.Defaults{Address: "Seoul", Phone: customer.PlaceholderPhone}

const small = `
books:
  - {id: 1, name: History of Football, publisher: Good Sports, price: 7000}
  - {id: 2, name: Golf Bible, publisher: Daehan Media, price: "35000.50"}
customers:
  - {id: 1, name: " Minseok Lee ", address: Seoul, phone: 010-1234-5678}
  - {id: 2, name: Seri Park}
orders:
  - {id: 1, customer: 1, book: 1, price: 7000, date: 2024-05-01}
`

func TestParse(t *testing.T) {
	d, err := Parse(strings.NewReader(small), defaults)
	require.NoError(t, err)

	require.Len(t, d.Books, 2)
	assert.True(t, decimal.RequireFromString("35000.50").Equal(d.Books[1].Price))

	require.Len(t, d.Customers, 2)
	assert.Equal(t, "Minseok Lee", d.Customers[0].Name)
	assert.Equal(t, customer.Customer{ID: 2, Name: "Seri Park", Address: "Seoul", Phone: customer.PlaceholderPhone}, d.Customers[1])

	require.Len(t, d.Orders, 1)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), d.Orders[0].OrderDate)
	assert.True(t, decimal.NewFromInt(7000).Equal(d.Orders[0].SalePrice))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "duplicate book", input: "books: [{id: 1, name: a, price: 1}, {id: 1, name: b, price: 2}]", want: "duplicate id 1"},
		{name: "negative price", input: "books: [{id: 1, name: a, price: -1}]", want: "must not be negative"},
		{name: "sub-cent price", input: "books: [{id: 1, name: a, price: '1.005'}]", want: "at most 2 decimal places"},
		{name: "bad price", input: "books: [{id: 1, name: a, price: cheap}]", want: `price "cheap"`},
		{name: "blank customer", input: "customers: [{id: 1, name: '  '}]", want: "name is required"},
		{name: "zero id", input: "customers: [{id: 0, name: a}]", want: "id must be positive"},
		{name: "bad date", input: "orders: [{id: 1, customer: 1, book: 1, price: 1, date: 07/01/2014}]", want: "date"},
		{name: "unknown field", input: "books: [{id: 1, name: a, price: 1, isbn: x}]", want: "isbn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), defaults)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	d, err := Parse(strings.NewReader(""), defaults)
	require.NoError(t, err)
	assert.Empty(t, d.Books)
}

func TestSample(t *testing.T) {
	d, err := Sample(defaults)
	require.NoError(t, err)

	assert.Len(t, d.Books, 10)
	assert.Len(t, d.Customers, 6)
	assert.Len(t, d.Orders, 10)

	// 박세리 has no phone in the data set.
	assert.Equal(t, customer.PlaceholderPhone, d.Customers[4].Phone)
	assert.Equal(t, "이민석", d.Customers[5].Name)
}

func TestLoad_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := pgzip.NewWriter(f)
	_, err = zw.Write([]byte(small))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	d, err := Load(path, defaults)
	require.NoError(t, err)
	assert.Len(t, d.Books, 2)
	assert.Len(t, d.Orders, 1)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), defaults)
	require.Error(t, err)
}

type recordingTarget struct {
	got Data
	err error
}

func (r *recordingTarget) Upsert(_ context.Context, d Data) error {
	r.got = d
	return r.err
}

func TestSameOrder(t *testing.T) {
	o := order.Order{ID: 1, CustomerID: 2, BookID: 3, SalePrice: decimal.RequireFromString("7000.50"), OrderDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}

	same := o
	same.SalePrice = decimal.RequireFromString("7000.5")
	same.OrderDate = o.OrderDate.Add(9 * time.Hour)
	assert.True(t, SameOrder(o, same))

	repriced := o
	repriced.SalePrice = decimal.NewFromInt(6000)
	assert.False(t, SameOrder(o, repriced))

	moved := o
	moved.CustomerID = 9
	assert.False(t, SameOrder(o, moved))
}

func TestConflict(t *testing.T) {
	err := Conflict("orders", 4)
	require.ErrorIs(t, err, apperr.ErrIntegrity)
	assert.EqualError(t, err, "seed orders: integrity violation: orders 4 differs from the stored row")
}

func TestImport(t *testing.T) {
	d, err := Parse(strings.NewReader(small), defaults)
	require.NoError(t, err)

	target := &recordingTarget{}
	require.NoError(t, Import(context.Background(), target, d))
	assert.Equal(t, d, target.got)

	target.err = errors.New("db down")
	require.ErrorContains(t, Import(context.Background(), target, d), "import seed")
}
