package sqlite

import "context"

type scanner interface {
	Scan(dest ...any) error
}

// collect runs query and scans every row with fn. The result is never nil.
func collect[T any](ctx context.Context, q querier, fn func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []T{}
	for rows.Next() {
		v, err := fn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
