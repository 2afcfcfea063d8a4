package cli

import (
	"github.com/go-faster/jx"
	"github.com/spf13/cobra"

	"github.com/madangbooks/madang/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [FILE]",
		Short: "Import books, customers and orders",
		Long: `Import a seed file (.yaml, or .yaml.gz) into the database, replacing rows
with the same keys. Without FILE the bundled Madang sample is imported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session) error {
				defaults, err := s.cfg.CustomerDefaults()
				if err != nil {
					return WrapExitError(ExitCommandError, "load config", err)
				}

				var d seed.Data
				if len(args) == 0 {
					d, err = seed.Sample(defaults)
				} else {
					d, err = seed.Load(args[0], defaults)
				}
				if err != nil {
					return WrapExitError(ExitCommandError, "read seed", err)
				}
				if err := seed.Import(s.ctx, s.store, d); err != nil {
					return failure(s, "import", err)
				}

				if s.out.isJSON() {
					return s.out.json(func(e *jx.Encoder) {
						e.ObjStart()
						e.FieldStart("books")
						e.Int(len(d.Books))
						e.FieldStart("customers")
						e.Int(len(d.Customers))
						e.FieldStart("orders")
						e.Int(len(d.Orders))
						e.ObjEnd()
					})
				}
				return s.out.line("Imported %d books, %d customers, %d orders.", len(d.Books), len(d.Customers), len(d.Orders))
			})
		},
	}
}
