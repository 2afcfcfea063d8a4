// Package sqlite implements the order entry storage on an embedded SQLite
// database, for single-site use without a database server.
//
// The store admits a single writer: every unit of work begins with
// BEGIN IMMEDIATE and the pool holds one connection, so key allocation needs
// no further locking.
package sqlite

import (
	"context"
	"database/sql"
	"net/url"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/madangbooks/madang/db"
	"github.com/madangbooks/madang/internal/domain/sale"
)

// Memory opens a private in-memory database.
const Memory = ":memory:"

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ sale.Store = (*Store)(nil)

// Store implements sale.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

func dsn(path string) string {
	q := url.Values{}
	q.Set("_txlock", "immediate")
	q.Set("_foreign_keys", "1")
	q.Set("_busy_timeout", "5000")
	if path == Memory {
		q.Set("mode", "memory")
		q.Set("cache", "shared")
		return "file:memdb-" + uuid.NewString() + "?" + q.Encode()
	}
	q.Set("_journal_mode", "WAL")
	q.Set("_synchronous", "NORMAL")
	return "file:" + path + "?" + q.Encode()
}

// Open creates or opens the database at path (or Memory) and applies the
// schema.
func Open(ctx context.Context, path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, classify("connect", err)
	}
	if _, err := conn.ExecContext(ctx, db.Schema); err != nil {
		_ = conn.Close()
		return nil, classify("apply schema", err)
	}

	return &Store{db: conn}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}

// WithinTx implements sale.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r sale.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin", err)
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, repos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify("commit", err)
	}
	return nil
}

// Repos implements sale.Store.
func (s *Store) Repos() sale.Repos {
	return repos(s.db)
}

func repos(q querier) sale.Repos {
	return sale.Repos{
		Customers: &CustomerRepository{q: q},
		Books:     &BookRepository{q: q},
		Orders:    &OrderRepository{q: q},
		History:   &HistoryRepository{q: q},
		IDs:       &IDSource{q: q},
	}
}
