package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/madangbooks/madang/internal/domain/book"
)

const (
	listBooksSQL   = `SELECT bookid, bookname, publisher, price FROM book ORDER BY bookid`
	getBookByIDSQL = `SELECT bookid, bookname, publisher, price FROM book WHERE bookid = $1`
)

var _ book.Repository = (*BookRepository)(nil)

// BookRepository implements book.Repository backed by PostgreSQL.
type BookRepository struct {
	q querier
}

// List returns the catalog ordered by id.
func (r *BookRepository) List(ctx context.Context) ([]book.Book, error) {
	rows, err := r.q.Query(ctx, listBooksSQL)
	if err != nil {
		return nil, classify("list books", err)
	}
	out, err := pgx.CollectRows(rows, scanBook)
	if err != nil {
		return nil, classify("list books", err)
	}
	return out, nil
}

// GetByID returns a single book or book.ErrNotFound.
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*book.Book, error) {
	rows, err := r.q.Query(ctx, getBookByIDSQL, id)
	if err != nil {
		return nil, classify("get book", err)
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanBook)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, book.ErrNotFound
		}
		return nil, classify("get book", err)
	}
	return &b, nil
}

func scanBook(row pgx.CollectableRow) (book.Book, error) {
	var b book.Book
	err := row.Scan(&b.ID, &b.Name, &b.Publisher, &b.Price)
	return b, err
}
