package sqlite

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"

	"github.com/madangbooks/madang/internal/domain/book"
)

const (
	listBooksSQL   = `SELECT bookid, bookname, publisher, price FROM book ORDER BY bookid`
	getBookByIDSQL = `SELECT bookid, bookname, publisher, price FROM book WHERE bookid = ?`
)

var _ book.Repository = (*BookRepository)(nil)

// BookRepository implements book.Repository backed by SQLite.
type BookRepository struct {
	q querier
}

func (r *BookRepository) List(ctx context.Context) ([]book.Book, error) {
	out, err := collect(ctx, r.q, scanBook, listBooksSQL)
	if err != nil {
		return nil, classify("list books", err)
	}
	return out, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*book.Book, error) {
	b, err := scanBook(r.q.QueryRowContext(ctx, getBookByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, book.ErrNotFound
		}
		return nil, classify("get book", err)
	}
	return &b, nil
}

func scanBook(row scanner) (book.Book, error) {
	var b book.Book
	err := row.Scan(&b.ID, &b.Name, &b.Publisher, &b.Price)
	return b, err
}
