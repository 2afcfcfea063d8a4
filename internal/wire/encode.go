// Package wire encodes and decodes the JSON bodies of the HTTP API and the
// CLI's JSON output.
//
// Monetary values are written as JSON numbers taken from the decimal string,
// so no float rounding happens. Dates are YYYY-MM-DD.
package wire

import (
	"sort"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/madangbooks/madang/internal/domain/book"
	"github.com/madangbooks/madang/internal/domain/customer"
	"github.com/madangbooks/madang/internal/domain/history"
	"github.com/madangbooks/madang/internal/domain/order"
	"github.com/madangbooks/madang/internal/domain/sale"
)

func money(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

func date(e *jx.Encoder, t time.Time) {
	e.Str(t.Format(time.DateOnly))
}

// Book writes a catalog entry.
func Book(e *jx.Encoder, b book.Book) {
	e.ObjStart()
	e.FieldStart("bookId")
	e.Int64(b.ID)
	e.FieldStart("bookName")
	e.Str(b.Name)
	e.FieldStart("publisher")
	e.Str(b.Publisher)
	e.FieldStart("price")
	money(e, b.Price)
	e.ObjEnd()
}

// Books writes a catalog listing.
func Books(e *jx.Encoder, books []book.Book) {
	e.ArrStart()
	for _, b := range books {
		Book(e, b)
	}
	e.ArrEnd()
}

// Customer writes a customer row.
func Customer(e *jx.Encoder, c customer.Customer) {
	e.ObjStart()
	e.FieldStart("customerId")
	e.Int64(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("address")
	e.Str(c.Address)
	e.FieldStart("phone")
	e.Str(c.Phone)
	e.ObjEnd()
}

// Customers writes a customer listing.
func Customers(e *jx.Encoder, customers []customer.Customer) {
	e.ArrStart()
	for _, c := range customers {
		Customer(e, c)
	}
	e.ArrEnd()
}

// Orders writes an order listing.
func Orders(e *jx.Encoder, orders []order.Order) {
	e.ArrStart()
	for _, o := range orders {
		e.ObjStart()
		e.FieldStart("orderId")
		e.Int64(o.ID)
		e.FieldStart("customerId")
		e.Int64(o.CustomerID)
		e.FieldStart("bookId")
		e.Int64(o.BookID)
		e.FieldStart("salePrice")
		money(e, o.SalePrice)
		e.FieldStart("orderDate")
		date(e, o.OrderDate)
		e.ObjEnd()
	}
	e.ArrEnd()
}

// History writes a purchase history, most recent first.
func History(e *jx.Encoder, entries []history.Entry) {
	e.ArrStart()
	for _, h := range entries {
		e.ObjStart()
		e.FieldStart("orderId")
		e.Int64(h.OrderID)
		e.FieldStart("bookId")
		e.Int64(h.BookID)
		e.FieldStart("bookName")
		e.Str(h.BookName)
		e.FieldStart("salePrice")
		money(e, h.SalePrice)
		e.FieldStart("orderDate")
		date(e, h.OrderDate)
		e.FieldStart("phone")
		e.Str(h.Phone)
		e.ObjEnd()
	}
	e.ArrEnd()
}

// Histories writes several histories as an object keyed by name, names sorted.
func Histories(e *jx.Encoder, byName map[string][]history.Entry) {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	e.ObjStart()
	for _, name := range names {
		e.FieldStart(name)
		History(e, byName[name])
	}
	e.ObjEnd()
}

// Result writes the outcome of a committed sale.
func Result(e *jx.Encoder, r sale.Result) {
	e.ObjStart()
	e.FieldStart("state")
	e.Str(r.State.String())
	e.FieldStart("orderId")
	e.Int64(r.OrderID)
	e.FieldStart("customerId")
	e.Int64(r.CustomerID)
	e.FieldStart("customerCreated")
	e.Bool(r.CustomerCreated)
	e.ObjEnd()
}

// Resolution writes the outcome of a customer resolution.
func Resolution(e *jx.Encoder, r customer.Resolution) {
	e.ObjStart()
	e.FieldStart("customerId")
	e.Int64(r.Customer.ID)
	e.FieldStart("created")
	e.Bool(r.Created)
	e.ObjEnd()
}

// OrderID writes a receipt for a recorded order.
func OrderID(e *jx.Encoder, id int64) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Int64(id)
	e.ObjEnd()
}

// NextID writes the next key of a table.
func NextID(e *jx.Encoder, table string, next int64) {
	e.ObjStart()
	e.FieldStart("table")
	e.Str(table)
	e.FieldStart("next")
	e.Int64(next)
	e.ObjEnd()
}
