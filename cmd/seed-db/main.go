// Command seed-db applies the schema and imports a seed data set, the bundled
// Madang sample by default.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	appkg "github.com/madangbooks/madang/internal/app"
	"github.com/madangbooks/madang/internal/seed"
)

func main() {
	var (
		databaseURL string
		sqlitePath  string
		seedFile    string
		verbose     bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or MADANG_DATABASE_URL, DATABASE_URL env)")
	flag.StringVar(&sqlitePath, "sqlite-path", "", "SQLite database file, used when no database URL is set")
	flag.StringVar(&seedFile, "file", "", "seed file (.yaml or .yaml.gz); the bundled sample when empty")
	flag.BoolVar(&verbose, "verbose", false, "debug logging")
	flag.Parse()

	lg, err := newLogger(verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = lg.Sync() }()

	cfg, err := appkg.LoadEnvConfig()
	if err != nil {
		lg.Error("Load config", zap.Error(err))
		os.Exit(2)
	}
	if databaseURL != "" {
		cfg.Driver, cfg.DatabaseURL = appkg.DriverPostgres, databaseURL
	} else if sqlitePath != "" {
		cfg.Driver, cfg.SQLitePath = appkg.DriverSQLite, sqlitePath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg, cfg, seedFile); err != nil {
		lg.Error("Seed failed", zap.Error(err))
		os.Exit(1)
	}
	lg.Info("Seed completed")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, lg *zap.Logger, cfg *appkg.Config, seedFile string) error {
	defaults, err := cfg.CustomerDefaults()
	if err != nil {
		return err
	}

	var d seed.Data
	if seedFile == "" {
		lg.Info("Using bundled sample data")
		d, err = seed.Sample(defaults)
	} else {
		lg.Info("Reading seed file", zap.String("path", seedFile))
		d, err = seed.Load(seedFile, defaults)
	}
	if err != nil {
		return errors.Wrap(err, "read seed")
	}

	store, closeStore, err := appkg.OpenStore(ctx, lg, cfg.Storage())
	if err != nil {
		return err
	}
	defer closeStore()

	lg.Info("Importing",
		zap.String("driver", cfg.Storage().Driver),
		zap.Int("books", len(d.Books)),
		zap.Int("customers", len(d.Customers)),
		zap.Int("orders", len(d.Orders)),
	)
	return seed.Import(ctx, store, d)
}
