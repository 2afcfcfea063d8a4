package cli

import (
	"github.com/go-faster/jx"
	"github.com/spf13/cobra"

	"github.com/madangbooks/madang/internal/domain/customer"
	"github.com/madangbooks/madang/internal/domain/ident"
	"github.com/madangbooks/madang/internal/wire"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Address    string
	Phone      string
	CustomerID int64
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve NAME",
		Short: "Find or create a customer by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session) error {
				res, err := s.sales.ResolveCustomer(s.ctx, customer.ResolveRequest{
					Name:       args[0],
					Address:    opts.Address,
					Phone:      opts.Phone,
					CustomerID: opts.CustomerID,
				})
				if err != nil {
					return failure(s, "resolve customer", err)
				}
				if s.out.isJSON() {
					return s.out.json(func(e *jx.Encoder) { wire.Resolution(e, res) })
				}
				if res.Created {
					return s.out.line("Customer %d created.", res.Customer.ID)
				}
				return s.out.line("Customer %d.", res.Customer.ID)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Address, "address", "", "address of a new customer")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "phone of a new customer")
	cmd.Flags().Int64Var(&opts.CustomerID, "customer-id", 0, "pick one of several customers sharing the name")

	return cmd
}

// NewNextIDCommand creates the next-id command.
func NewNextIDCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "next-id customer|orders",
		Short:     "Show the key the next insert would get",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{ident.Customers.Name, ident.Orders.Name},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := ident.Lookup(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "next-id", err)
			}
			return opts.run(cmd, func(s *session) error {
				next, err := s.sales.NextID(s.ctx, t)
				if err != nil {
					return failure(s, "next id", err)
				}
				if s.out.isJSON() {
					return s.out.json(func(e *jx.Encoder) { wire.NextID(e, t.Name, next) })
				}
				return s.out.line("%s %d", t.Name, next)
			})
		},
	}
}

// failure reports a failed operation, as an error body in JSON mode.
func failure(s *session, message string, err error) error {
	if s.out.isJSON() {
		_ = s.out.json(wire.ProblemOf(err).Encode)
	}
	return WrapExitError(ExitFailure, message, err)
}
