package customer

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/madangbooks/madang/internal/domain/apperr"
	"github.com/madangbooks/madang/internal/domain/ident"
)

// Policy decides what a resolution does when a name matches several customers.
type Policy string

const (
	// PolicyFirst picks the match with the lowest id.
	PolicyFirst Policy = "first"
	// PolicyReject returns an *apperr.AmbiguousMatchError listing every match.
	PolicyReject Policy = "reject"
)

// ParsePolicy parses a policy name; the empty string means PolicyFirst.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyFirst, "":
		return PolicyFirst, nil
	case PolicyReject:
		return PolicyReject, nil
	default:
		return "", errors.Errorf("unknown ambiguous name policy %q", s)
	}
}

// ResolveRequest holds the input for resolving a customer by name.
type ResolveRequest struct {
	Name string
	// Address and Phone are used only when a new customer is created.
	Address string
	Phone   string
	// CustomerID optionally picks one of several customers sharing Name.
	CustomerID int64
}

// Resolution is the outcome of a successful resolution.
type Resolution struct {
	Customer Customer
	Created  bool
}

// Resolver turns a display name into a customer id, creating the customer
// when the name is unknown.
type Resolver struct {
	defaults Defaults
	policy   Policy
}

// NewResolver creates a Resolver that fills new customers from defaults.
func NewResolver(defaults Defaults, policy Policy) *Resolver {
	if policy == "" {
		policy = PolicyFirst
	}
	return &Resolver{defaults: defaults, policy: policy}
}

// Resolve finds or creates the customer named req.Name. repo and ids must be
// bound to the unit of work the caller commits.
func (r *Resolver) Resolve(ctx context.Context, repo Repository, ids ident.Source, req ResolveRequest) (Resolution, error) {
	name := CanonicalName(req.Name)
	if name == "" {
		return Resolution{}, apperr.Validation("name", "customer name is required")
	}

	// Hold the allocation lock across lookup and insert, otherwise two
	// resolutions of the same new name both miss and both insert.
	if err := ids.Lock(ctx, ident.Customers); err != nil {
		return Resolution{}, errors.Wrap(err, "lock customers")
	}

	matches, err := repo.FindByName(ctx, name)
	if err != nil {
		return Resolution{}, errors.Wrap(err, "find customers by name")
	}

	if len(matches) > 0 {
		c, err := r.pick(name, matches, req.CustomerID)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Customer: c}, nil
	}

	if req.CustomerID != 0 {
		return Resolution{}, apperr.Validation("customerId", "no customer with that id has this name")
	}

	id, err := ident.Next(ctx, ids, ident.Customers)
	if err != nil {
		return Resolution{}, errors.Wrap(err, "allocate customer id")
	}

	address, phone := r.defaults.Apply(req.Address, req.Phone)
	c := Customer{ID: id, Name: name, Address: address, Phone: phone}
	if err := repo.Insert(ctx, c); err != nil {
		return Resolution{}, errors.Wrap(err, "insert customer")
	}

	return Resolution{Customer: c, Created: true}, nil
}

func (r *Resolver) pick(name string, matches []Customer, hint int64) (Customer, error) {
	if hint != 0 {
		for _, c := range matches {
			if c.ID == hint {
				return c, nil
			}
		}
		return Customer{}, apperr.Validation("customerId", "no customer with that id has this name")
	}

	if len(matches) > 1 && r.policy == PolicyReject {
		ids := make([]int64, len(matches))
		for i, c := range matches {
			ids[i] = c.ID
		}
		return Customer{}, &apperr.AmbiguousMatchError{Name: name, CustomerIDs: ids}
	}

	return matches[0], nil
}
