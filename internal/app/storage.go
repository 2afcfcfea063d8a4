package app

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/madangbooks/madang/internal/domain/sale"
	"github.com/madangbooks/madang/internal/seed"
	"github.com/madangbooks/madang/internal/storage/postgres"
	"github.com/madangbooks/madang/internal/storage/sqlite"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StorageConfig selects and locates the database.
type StorageConfig struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
}

// Store is the database the binaries run on.
type Store interface {
	sale.Store
	seed.Target
	Ping(ctx context.Context) error
}

// OpenStore opens the selected database and applies the schema. The returned
// function releases it.
func OpenStore(ctx context.Context, lg *zap.Logger, cfg StorageConfig) (Store, func(), error) {
	switch cfg.Driver {
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		lg.Debug("Opened PostgreSQL store")
		return postgres.NewStore(pool), pool.Close, nil
	case DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open sqlite")
		}
		lg.Debug("Opened SQLite store", zap.String("path", cfg.SQLitePath))
		return s, func() {
			if err := s.Close(); err != nil {
				lg.Warn("Close sqlite", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
