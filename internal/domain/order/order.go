package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Money columns are NUMERIC(12, 2).
const PriceScale = 2

// MaxPrice is the smallest amount a money column cannot hold.
var MaxPrice = decimal.New(1, 10)

// CheckAmount reports whether d fits a money column unchanged: non-negative,
// below MaxPrice and with at most PriceScale fractional digits.
func CheckAmount(d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return errors.New("must not be negative")
	case d.GreaterThanOrEqual(MaxPrice):
		return errors.Errorf("must be less than %s", MaxPrice)
	case !d.Equal(d.Truncate(PriceScale)):
		return errors.Errorf("must have at most %d decimal places", PriceScale)
	}
	return nil
}

// Order is a single recorded sale. Orders are immutable once inserted.
type Order struct {
	ID         int64
	CustomerID int64
	BookID     int64
	SalePrice  decimal.Decimal
	OrderDate  time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Insert(ctx context.Context, o Order) error
	// List returns all orders ordered by id.
	List(ctx context.Context) ([]Order, error)
}

// Day truncates t to its calendar day in UTC, the precision of orderdate.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
