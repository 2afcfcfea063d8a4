package cli

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/madangbooks/madang/internal/domain/sale"
	"github.com/madangbooks/madang/internal/wire"
)

// SellOptions holds flags for the sell command.
type SellOptions struct {
	*RootOptions
	Name       string
	CustomerID int64
	BookID     int64
	Price      string
	Date       string
	Address    string
	Phone      string
}

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Record a sale",
		Long: `Record a sale of one book to a customer given by name.

An unknown name creates the customer. Customer and order are recorded
together or not at all.

Examples:
  madang sell --name 이민석 --book 1 --price 7000
  madang sell --name 손흥민 --book 2 --price 13000 --date 2024-05-01 --phone 010-0000-0007`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSell(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "customer name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().Int64Var(&opts.BookID, "book", 0, "book id (required)")
	_ = cmd.MarkFlagRequired("book")
	cmd.Flags().StringVar(&opts.Price, "price", "", "sale price (default 0)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "order date YYYY-MM-DD (default today)")
	cmd.Flags().Int64Var(&opts.CustomerID, "customer-id", 0, "pick one of several customers sharing the name")
	cmd.Flags().StringVar(&opts.Address, "address", "", "address of a new customer")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "phone of a new customer")

	return cmd
}

func (o *SellOptions) request() (sale.Request, error) {
	req := sale.Request{
		CustomerName: o.Name,
		CustomerID:   o.CustomerID,
		BookID:       o.BookID,
		Address:      o.Address,
		Phone:        o.Phone,
	}
	if o.Price != "" {
		p, err := decimal.NewFromString(o.Price)
		if err != nil {
			return req, WrapExitError(ExitCommandError, "invalid --price", err)
		}
		req.SalePrice = &p
	}
	if o.Date != "" {
		d, err := time.Parse(time.DateOnly, o.Date)
		if err != nil {
			return req, WrapExitError(ExitCommandError, "invalid --date", err)
		}
		req.OrderDate = d
	}
	return req, nil
}

func runSell(opts *SellOptions, cmd *cobra.Command) error {
	req, err := opts.request()
	if err != nil {
		return err
	}
	return opts.run(cmd, func(s *session) error {
		res, err := s.sales.Submit(s.ctx, req)
		if err != nil {
			if s.out.isJSON() {
				_ = s.out.json(wire.SaleProblem(res).Encode)
			}
			return WrapExitError(ExitFailure, "sale "+res.State.String()+" at "+res.FailedAt.String(), err)
		}

		if s.out.isJSON() {
			return s.out.json(func(e *jx.Encoder) { wire.Result(e, res) })
		}
		if res.CustomerCreated {
			if err := s.out.line("New customer %d created.", res.CustomerID); err != nil {
				return err
			}
		}
		return s.out.line("Order %d recorded for customer %d.", res.OrderID, res.CustomerID)
	})
}
