package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookstore.org/internal/catalog"
)

const bookColumns = `id, isbn, title, author, genre, publication_year, price, description, created_at, updated_at`

// bookFilter translates a parsed list query into the store-native filter
// expression: the AND of every supplied constraint. An empty query yields
// an empty WHERE clause.
func bookFilter(q catalog.ListQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if q.Keywords != "" {
		n := next(q.Keywords)
		conds = append(conds, fmt.Sprintf(
			"to_tsvector('english', title || ' ' || author || ' ' || description) @@ plainto_tsquery('english', $%d)", n))
	}
	if q.Genre != "" {
		n := next(q.Genre)
		conds = append(conds, fmt.Sprintf("genre = $%d", n))
	}
	switch {
	case q.MinPrice != nil && q.MaxPrice != nil:
		lo := next(*q.MinPrice)
		hi := next(*q.MaxPrice)
		conds = append(conds, fmt.Sprintf("price between $%d and $%d", lo, hi))
	case q.MinPrice != nil:
		n := next(*q.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", n))
	case q.MaxPrice != nil:
		n := next(*q.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " where " + strings.Join(conds, " and "), args
}

// bookOrder maps the sort key to an ORDER BY clause with the identifier as
// a deterministic tie-break, keeping pagination stable under equal primary
// sort values.
func bookOrder(sortBy string) string {
	col := "author"
	switch sortBy {
	case catalog.SortPrice:
		col = "price"
	case catalog.SortYear:
		col = "publication_year"
	case catalog.SortTitle:
		col = "title"
	}
	return fmt.Sprintf(" order by %s asc, id asc", col)
}

func (s *Store) ListBooks(ctx context.Context, q catalog.ListQuery) ([]catalog.Book, error) {
	where, args := bookFilter(q)
	limitArg := len(args) + 1
	offsetArg := len(args) + 2
	args = append(args, q.PageSize, q.Offset())

	query := fmt.Sprintf(`select %s from books%s%s limit $%d offset $%d`,
		bookColumns, where, bookOrder(q.SortBy), limitArg, offsetArg)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []catalog.Book
	for rows.Next() {
		var b catalog.Book
		if err := rows.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Genre,
			&b.PublicationYear, &b.Price, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (s *Store) GetBook(ctx context.Context, id string) (*catalog.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+bookColumns+` from books where id = $1`, id)
	var b catalog.Book
	if err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Genre,
		&b.PublicationYear, &b.Price, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) AddBook(ctx context.Context, b *catalog.Book) error {
	_, err := s.db.ExecContext(ctx, `
		insert into books(id, isbn, title, author, genre, publication_year, price, description, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		b.ID, b.ISBN, b.Title, b.Author, b.Genre, b.PublicationYear, b.Price, b.Description, b.CreatedAt, b.UpdatedAt)
	return err
}

// UpdateBook applies the supplied fields. The IS DISTINCT FROM guard keeps
// the modified count at zero when the payload changes nothing, matching
// the business-level "not updated" response for no-op updates.
func (s *Store) UpdateBook(ctx context.Context, id string, upd catalog.BookUpdate) (int64, error) {
	var (
		set      []string
		distinct []string
		args     = []any{id}
	)
	add := func(col string, v any) {
		args = append(args, v)
		n := len(args)
		set = append(set, fmt.Sprintf("%s = $%d", col, n))
		distinct = append(distinct, fmt.Sprintf("%s is distinct from $%d", col, n))
	}
	if upd.ISBN != nil {
		add("isbn", *upd.ISBN)
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Author != nil {
		add("author", *upd.Author)
	}
	if upd.Genre != nil {
		add("genre", *upd.Genre)
	}
	if upd.PublicationYear != nil {
		add("publication_year", *upd.PublicationYear)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if len(set) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`update books set %s, updated_at = now() where id = $1 and (%s)`,
		strings.Join(set, ", "), strings.Join(distinct, " or "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) DeleteBook(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `delete from books where id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
