package customer

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned when a customer id does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer is a store customer. Rows are created by the resolver and never
// changed afterwards.
type Customer struct {
	ID      int64
	Name    string
	Address string
	Phone   string
}

// Repository defines persistence operations for customers.
type Repository interface {
	// FindByName returns customers whose name equals name, ordered by id.
	FindByName(ctx context.Context, name string) ([]Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	Insert(ctx context.Context, c Customer) error
	List(ctx context.Context) ([]Customer, error)
}

// CanonicalName trims surrounding whitespace and applies Unicode NFC, so a
// Hangul name typed as decomposed jamo matches the precomposed stored form.
func CanonicalName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Defaults are the attributes given to a customer created without them.
type Defaults struct {
	Address string
	Phone   string
}

// Default attribute variants.
const (
	VariantMinimal  = "minimal"
	VariantExtended = "extended"
)

// PlaceholderPhone is stored when no phone number was supplied.
const PlaceholderPhone = "000-0000-0000"

// DefaultsFor returns the defaults of the named variant.
func DefaultsFor(variant string) (Defaults, error) {
	switch variant {
	case VariantMinimal, "":
		return Defaults{Address: "Seoul", Phone: PlaceholderPhone}, nil
	case VariantExtended:
		return Defaults{Address: "입력없음", Phone: PlaceholderPhone}, nil
	default:
		return Defaults{}, errors.Errorf("unknown customer defaults variant %q", variant)
	}
}

// Apply fills blank address and phone from d.
func (d Defaults) Apply(address, phone string) (string, string) {
	address = strings.TrimSpace(address)
	phone = strings.TrimSpace(phone)
	if address == "" {
		address = d.Address
	}
	if phone == "" {
		phone = d.Phone
	}
	return address, phone
}
