package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"bookstore.org/internal/auth"
)

const uniqueViolation = "23505"

const userColumns = `id, full_name, email, password_hash, role, permissions, created_date`

func scanUser(row interface{ Scan(...any) error }) (*auth.User, error) {
	var (
		u     auth.User
		perms []byte
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &perms, &u.CreatedDate); err != nil {
		return nil, err
	}
	if len(perms) > 0 {
		_ = json.Unmarshal(perms, &u.Permissions)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	perms, _ := json.Marshal(u.Permissions)
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, full_name, email, password_hash, role, permissions, created_date)
		values ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.Role, perms, u.CreatedDate)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return auth.ErrAlreadyExists
	}
	return err
}

func (s *Store) FindUser(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	return u, err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	return u, err
}

func (s *Store) ListUsers(ctx context.Context) ([]auth.User, error) {
	rows, err := s.db.QueryContext(ctx, `select `+userColumns+` from users order by id asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser applies the supplied fields with the same IS DISTINCT FROM
// guard the catalog store uses, so a no-op update reports zero rows.
func (s *Store) UpdateUser(ctx context.Context, id string, upd auth.UserUpdate) (int64, error) {
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
	if upd.FullName != nil {
		add("full_name", *upd.FullName)
	}
	if upd.PasswordHash != nil {
		add("password_hash", *upd.PasswordHash)
	}
	if len(set) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`update users set %s where id = $1 and (%s)`,
		strings.Join(set, ", "), strings.Join(distinct, " or "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) FindRole(ctx context.Context, name string) (*auth.Role, error) {
	row := s.db.QueryRowContext(ctx, `select name, permissions from roles where name = $1`, name)
	var (
		role  auth.Role
		perms []byte
	)
	if err := row.Scan(&role.Name, &perms); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	if len(perms) > 0 {
		_ = json.Unmarshal(perms, &role.Permissions)
	}
	return &role, nil
}

func (s *Store) AppendEdit(ctx context.Context, rec *auth.EditRecord) error {
	actor, err := json.Marshal(rec.Actor)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into edits(id, occurred_at, op, collection, target, actor)
		values ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.Timestamp, rec.Op, rec.Collection, rec.Target, actor)
	return err
}
