package auth

import "context"

// Store describes persistence operations required by the auth subsystem.
// UpdateUser reports the number of rows actually modified so callers can
// tell a no-op apart from a change.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	FindUser(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (int64, error)

	FindRole(ctx context.Context, name string) (*Role, error)

	AppendEdit(ctx context.Context, rec *EditRecord) error
}
