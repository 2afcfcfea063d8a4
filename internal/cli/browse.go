package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/go-faster/jx"
	"github.com/spf13/cobra"

	"github.com/madangbooks/madang/internal/domain/history"
	"github.com/madangbooks/madang/internal/wire"
)

// NewBooksCommand creates the books command.
func NewBooksCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session) error {
				books, err := s.sales.Books(s.ctx)
				if err != nil {
					return failure(s, "list books", err)
				}
				if s.out.isJSON() {
					return s.out.json(func(e *jx.Encoder) { wire.Books(e, books) })
				}
				return s.out.table("ID\tTITLE\tPUBLISHER\tPRICE", func(w io.Writer) {
					for _, b := range books {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", b.ID, b.Name, b.Publisher, b.Price)
					}
				})
			})
		},
	}
}

// NewCustomersCommand creates the customers command.
func NewCustomersCommand(opts *RootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "List customers, or those with a name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session) error {
				customers, err := s.sales.Customers(s.ctx, name)
				if err != nil {
					return failure(s, "list customers", err)
				}
				if s.out.isJSON() {
					return s.out.json(func(e *jx.Encoder) { wire.Customers(e, customers) })
				}
				return s.out.table("ID\tNAME\tADDRESS\tPHONE", func(w io.Writer) {
					for _, c := range customers {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Address, c.Phone)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "only customers with this name")
	return cmd
}

// NewOrdersCommand creates the orders command.
func NewOrdersCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List order lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session) error {
				orders, err := s.sales.Orders(s.ctx)
				if err != nil {
					return failure(s, "list orders", err)
				}
				if s.out.isJSON() {
					return s.out.json(func(e *jx.Encoder) { wire.Orders(e, orders) })
				}
				return s.out.table("ID\tCUSTOMER\tBOOK\tPRICE\tDATE", func(w io.Writer) {
					for _, o := range orders {
						fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\n",
							o.ID, o.CustomerID, o.BookID, o.SalePrice, o.OrderDate.Format(time.DateOnly))
					}
				})
			})
		},
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history NAME...",
		Short: "Show purchase histories, most recent first",
		Long: `Show the purchase history of each named customer, most recent first.

Examples:
  madang history 김연아
  madang history 김연아 박지성 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session) error {
				if len(args) == 1 {
					entries, err := s.sales.History(s.ctx, args[0])
					if err != nil {
						return failure(s, "history", err)
					}
					if s.out.isJSON() {
						return s.out.json(func(e *jx.Encoder) { wire.History(e, entries) })
					}
					return printHistory(s.out, args[0], entries)
				}

				byName, err := s.sales.Histories(s.ctx, args)
				if err != nil {
					return failure(s, "history", err)
				}
				if s.out.isJSON() {
					return s.out.json(func(e *jx.Encoder) { wire.Histories(e, byName) })
				}
				for i, name := range args {
					if i > 0 {
						if err := s.out.line(""); err != nil {
							return err
						}
					}
					if err := s.out.line("== %s ==", name); err != nil {
						return err
					}
					if err := printHistory(s.out, name, byName[name]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func printHistory(out printer, name string, entries []history.Entry) error {
	if len(entries) == 0 {
		return out.line("No purchases for %s.", name)
	}
	return out.table("ORDER\tDATE\tBOOK\tPRICE\tPHONE", func(w io.Writer) {
		for _, h := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				h.OrderID, h.OrderDate.Format(time.DateOnly), h.BookName, h.SalePrice, h.Phone)
		}
	})
}
