package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"bookstore.org/internal/catalog"
)

const bookID = "01HQZX3Y4V5W6X7Y8Z9A0B1C2D"

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func bookRows() *sqlmock.Rows {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "isbn", "title", "author", "genre", "publication_year",
		"price", "description", "created_at", "updated_at",
	}).AddRow(bookID, "978-0-00-000000", "Glass Harbor", "Avery", "Mystery",
		2005, 12.0, "A mystery novel.", now, now)
}

func TestListBooksFilterSQL(t *testing.T) {
	store, mock := newMock(t)

	min, max := 5.0, 20.0
	q := catalog.ListQuery{
		Genre:      "Mystery",
		MinPrice:   &min,
		MaxPrice:   &max,
		SortBy:     catalog.SortPrice,
		PageSize:   2,
		PageNumber: 2,
	}

	mock.ExpectQuery(`select (.+) from books where genre = \$1 and price between \$2 and \$3 order by price asc, id asc limit \$4 offset \$5`).
		WithArgs("Mystery", 5.0, 20.0, 2, 2).
		WillReturnRows(bookRows())

	books, err := store.ListBooks(context.Background(), q)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Glass Harbor" {
		t.Fatalf("unexpected result: %+v", books)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListBooksKeywordSearch(t *testing.T) {
	store, mock := newMock(t)

	q := catalog.ListQuery{
		Keywords:   "harbor",
		SortBy:     catalog.SortAuthor,
		PageSize:   100,
		PageNumber: 1,
	}

	mock.ExpectQuery(`to_tsvector\('english', title (.+) plainto_tsquery\('english', \$1\)(.+)order by author asc, id asc`).
		WithArgs("harbor", 100, 0).
		WillReturnRows(bookRows())

	books, err := store.ListBooks(context.Background(), q)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("expected one row, got %d", len(books))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetBookNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(`select (.+) from books where id = \$1`).
		WithArgs(bookID).
		WillReturnError(sql.ErrNoRows)

	if _, err := store.GetBook(context.Background(), bookID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateBookModifiedCount(t *testing.T) {
	store, mock := newMock(t)
	price := 14.5
	upd := catalog.BookUpdate{Price: &price}

	// The IS DISTINCT FROM guard keeps the row out of the update when the
	// payload matches the stored value.
	mock.ExpectExec(`update books set price = \$2, updated_at = now\(\) where id = \$1 and \(price is distinct from \$2\)`).
		WithArgs(bookID, 14.5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	modified, err := store.UpdateBook(context.Background(), bookID, upd)
	if err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	if modified != 1 {
		t.Fatalf("modified = %d, want 1", modified)
	}

	mock.ExpectExec(`update books set price = \$2`).
		WithArgs(bookID, 14.5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	modified, err = store.UpdateBook(context.Background(), bookID, upd)
	if err != nil {
		t.Fatalf("repeat UpdateBook: %v", err)
	}
	if modified != 0 {
		t.Fatalf("no-op update should report 0, got %d", modified)
	}

	// No fields at all: nothing touches the database.
	modified, err = store.UpdateBook(context.Background(), bookID, catalog.BookUpdate{})
	if err != nil || modified != 0 {
		t.Fatalf("empty update: modified=%d err=%v", modified, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteBookRowsAffected(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(`delete from books where id = \$1`).
		WithArgs(bookID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`delete from books where id = \$1`).
		WithArgs(bookID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := store.DeleteBook(context.Background(), bookID)
	if err != nil || deleted != 1 {
		t.Fatalf("first delete: deleted=%d err=%v", deleted, err)
	}
	deleted, err = store.DeleteBook(context.Background(), bookID)
	if err != nil || deleted != 0 {
		t.Fatalf("second delete: deleted=%d err=%v", deleted, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
