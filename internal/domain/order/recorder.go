package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/madangbooks/madang/internal/domain/apperr"
	"github.com/madangbooks/madang/internal/domain/book"
	"github.com/madangbooks/madang/internal/domain/customer"
	"github.com/madangbooks/madang/internal/domain/ident"
)

// RecordRequest holds the input for recording an order line.
type RecordRequest struct {
	CustomerID int64
	BookID     int64
	SalePrice  decimal.Decimal
	OrderDate  time.Time
}

// Repos are the repositories a Recorder needs, all bound to one unit of work.
type Repos struct {
	Customers customer.Repository
	Books     book.Repository
	Orders    Repository
	IDs       ident.Source
}

// Recorder validates and persists order lines.
type Recorder struct {
	allowZeroPrice bool
}

// NewRecorder creates a Recorder. allowZeroPrice keeps free sales legal.
func NewRecorder(allowZeroPrice bool) *Recorder {
	return &Recorder{allowZeroPrice: allowZeroPrice}
}

// CheckPrice validates a sale price without touching storage.
func (r *Recorder) CheckPrice(price decimal.Decimal) error {
	if err := CheckAmount(price); err != nil {
		return apperr.Validation("salePrice", err.Error())
	}
	if price.IsZero() && !r.allowZeroPrice {
		return apperr.Validation("salePrice", "zero-priced sales are not allowed")
	}
	return nil
}

// Record validates req against the catalog and customers, allocates an order
// id and inserts the order. It returns the new order id.
func (r *Recorder) Record(ctx context.Context, repos Repos, req RecordRequest) (int64, error) {
	if err := r.CheckPrice(req.SalePrice); err != nil {
		return 0, err
	}
	if req.OrderDate.IsZero() {
		return 0, apperr.Validation("orderDate", "order date is required")
	}
	if req.BookID <= 0 {
		return 0, apperr.Validation("bookid", "a book must be selected")
	}

	if _, err := repos.Customers.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return 0, apperr.Validation("custid", "no such customer")
		}
		return 0, errors.Wrap(err, "get customer")
	}
	if _, err := repos.Books.GetByID(ctx, req.BookID); err != nil {
		if errors.Is(err, book.ErrNotFound) {
			return 0, apperr.Validation("bookid", "no such book")
		}
		return 0, errors.Wrap(err, "get book")
	}

	id, err := ident.Next(ctx, repos.IDs, ident.Orders)
	if err != nil {
		return 0, errors.Wrap(err, "allocate order id")
	}

	o := Order{
		ID:         id,
		CustomerID: req.CustomerID,
		BookID:     req.BookID,
		SalePrice:  req.SalePrice,
		OrderDate:  Day(req.OrderDate),
	}
	if err := repos.Orders.Insert(ctx, o); err != nil {
		return 0, errors.Wrap(err, "insert order")
	}

	return id, nil
}
