package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"bookstore.org/internal/auth"
)

const userID = "01HQZX3Y4V5W6X7Y8Z9A0B1C2E"

func TestCreateUserDuplicateEmail(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(`insert into users`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err := store.CreateUser(context.Background(), &auth.User{
		ID:    userID,
		Email: "dup@example.com",
	})
	if !errors.Is(err, auth.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestFindUserByEmail(t *testing.T) {
	store, mock := newMock(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "full_name", "email", "password_hash", "role", "permissions", "created_date",
	}).AddRow(userID, "Pat Reader", "pat@example.com", "$2a$10$hash", "customer",
		[]byte(`["canListBooks","canAddBooks"]`), created)

	mock.ExpectQuery(`select (.+) from users where email = \$1`).
		WithArgs("pat@example.com").
		WillReturnRows(rows)

	u, err := store.FindUserByEmail(context.Background(), "pat@example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if u.ID != userID || u.Role != "customer" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if len(u.Permissions) != 2 || u.Permissions[0] != "canListBooks" {
		t.Fatalf("permissions not decoded: %v", u.Permissions)
	}

	mock.ExpectQuery(`select (.+) from users where email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := store.FindUserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateUserModifiedCount(t *testing.T) {
	store, mock := newMock(t)
	name := "Pat Q. Reader"

	mock.ExpectExec(`update users set full_name = \$2 where id = \$1 and \(full_name is distinct from \$2\)`).
		WithArgs(userID, name).
		WillReturnResult(sqlmock.NewResult(0, 1))

	modified, err := store.UpdateUser(context.Background(), userID, auth.UserUpdate{FullName: &name})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if modified != 1 {
		t.Fatalf("modified = %d, want 1", modified)
	}

	// No fields: nothing touches the database.
	modified, err = store.UpdateUser(context.Background(), userID, auth.UserUpdate{})
	if err != nil || modified != 0 {
		t.Fatalf("empty update: modified=%d err=%v", modified, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindRole(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(`select name, permissions from roles where name = \$1`).
		WithArgs("customer").
		WillReturnRows(sqlmock.NewRows([]string{"name", "permissions"}).
			AddRow("customer", []byte(`["canListBooks"]`)))

	role, err := store.FindRole(context.Background(), "customer")
	if err != nil {
		t.Fatalf("FindRole: %v", err)
	}
	if role.Name != "customer" || len(role.Permissions) != 1 {
		t.Fatalf("unexpected role: %+v", role)
	}

	mock.ExpectQuery(`select name, permissions from roles where name = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := store.FindRole(context.Background(), "ghost"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAppendEdit(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(`insert into edits`).
		WithArgs("edit-1", sqlmock.AnyArg(), "Update Book", "Book", bookID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &auth.EditRecord{
		ID:         "edit-1",
		Timestamp:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Op:         "Update Book",
		Collection: "Book",
		Target:     bookID,
	}
	if err := store.AppendEdit(context.Background(), rec); err != nil {
		t.Fatalf("AppendEdit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
