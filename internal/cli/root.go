// Package cli implements the madang staff command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/madangbooks/madang/internal/app"
	"github.com/madangbooks/madang/internal/domain/sale"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string
	DB          string
	DatabaseURL string

	// LoadConfig supplies sales policy and customer defaults.
	LoadConfig func() (*app.Config, error)
}

// NewRootCommand creates the madang command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{LoadConfig: app.LoadEnvConfig})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "madang",
		Short: "Madang bookstore order entry",
		Long: `Record sales and look up purchase histories in the Madang bookstore database.

The database is a SQLite file (--db) unless a PostgreSQL URL is given with
--database-url. Sales policy and customer defaults are read from MADANG_*
environment variables and config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "madang.db", "SQLite database file")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "PostgreSQL connection URL; wins over --db")

	cmd.AddCommand(
		NewSellCommand(opts),
		NewHistoryCommand(opts),
		NewResolveCommand(opts),
		NewNextIDCommand(opts),
		NewCustomersCommand(opts),
		NewBooksCommand(opts),
		NewOrdersCommand(opts),
		NewSeedCommand(opts),
	)
	return cmd
}

func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if verbose {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel))
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.WarnLevel))
}

// session is an open database with the sale service over it.
type session struct {
	ctx   context.Context
	cfg   *app.Config
	store app.Store
	sales *sale.Service
	out   printer
	close func()
}

func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	lg := newLogger(o.Verbose, cmd.ErrOrStderr())
	ctx := zctx.Base(cmd.Context(), lg)

	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if o.DatabaseURL != "" {
		cfg.Driver, cfg.DatabaseURL = app.DriverPostgres, o.DatabaseURL
	} else {
		cfg.Driver, cfg.SQLitePath = app.DriverSQLite, o.DB
	}

	saleOpts, err := cfg.SaleOptions()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	store, closeStore, err := app.OpenStore(ctx, lg, cfg.Storage())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	sales, err := sale.NewService(store, saleOpts...)
	if err != nil {
		closeStore()
		return nil, WrapExitError(ExitCommandError, "create sale service", errors.Wrap(err, "sale"))
	}

	return &session{
		ctx:   ctx,
		cfg:   cfg,
		store: store,
		sales: sales,
		out:   printer{format: o.Format, w: cmd.OutOrStdout()},
		close: func() {
			closeStore()
			_ = lg.Sync()
		},
	}, nil
}

// run opens a session, calls fn and closes the session.
func (o *RootOptions) run(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}
