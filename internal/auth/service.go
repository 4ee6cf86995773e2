package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookstore.org/internal/ids"
)

const (
	defaultTokenTTL = time.Hour
	defaultIssuer   = "bookstore-api"

	minPasswordLength = 8
	maxPasswordLength = 50
	maxFullNameLength = 50
)

// Service is the credential manager: it hashes and verifies passwords,
// issues and validates session tokens, and records audit edits for
// mutating user operations.
type Service struct {
	store    Store
	secret   []byte
	now      func() time.Time
	tokenTTL time.Duration
	issuer   string
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithTokenTTL overrides the session token lifetime. The HTTP layer keeps
// the auth cookie lifetime in lockstep via TokenTTL.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) ServiceOption {
	return func(s *Service) {
		issuer = strings.TrimSpace(issuer)
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// NewService constructs the credential manager. The signing secret comes
// from the environment, never from source.
func NewService(store Store, secret string, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is not configured")
	}
	s := &Service{
		store:    store,
		secret:   []byte(secret),
		now:      time.Now,
		tokenTTL: defaultTokenTTL,
		issuer:   defaultIssuer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TokenTTL returns the configured session token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// IssueToken builds and signs a session token for the user. The embedded
// permission set is the union of the user's role permissions and their own
// overrides, frozen at issuance time: later role edits do not invalidate
// tokens already in the wild.
func (s *Service) IssueToken(ctx context.Context, user *User) (string, time.Time, error) {
	role, err := s.store.FindRole(ctx, user.Role)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", time.Time{}, err
	}
	return s.signToken(user, MergePermissions(user, role))
}

// RegisterInput is the payload accepted for user registration.
type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user with the default role and issues a session
// token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, string, time.Time, error) {
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" || len(fullName) > maxFullNameLength {
		return nil, "", time.Time{}, fmt.Errorf("%w: fullName must be 1..%d characters", ErrInvalidInput, maxFullNameLength)
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, "", time.Time{}, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &User{
		ID:           ids.New(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         DefaultRole,
		CreatedDate:  s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Login authenticates email+password and issues a session token. Any
// mismatch — unknown email or wrong password — reports ErrUnauthorized
// without distinguishing the two.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", time.Time{}, ErrUnauthorized
	}
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", time.Time{}, ErrUnauthorized
		}
		return nil, "", time.Time{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrUnauthorized
	}
	token, expiresAt, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// ListUsers returns every account. Password hashes never serialize.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// ProfileUpdate is the self-service/admin update payload; only the full
// name and password are updatable.
type ProfileUpdate struct {
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

// UpdateSelf applies a profile update to the authenticated user and writes
// an audit edit when something changed. Returns the number of rows
// modified.
func (s *Service) UpdateSelf(ctx context.Context, upd ProfileUpdate) (int64, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, ErrUnauthorized
	}
	return s.updateUser(ctx, claims.Subject, upd, "Self-Edit Update User")
}

// UpdateUser applies a profile update to an arbitrary user (admin route)
// and writes an audit edit when something changed.
func (s *Service) UpdateUser(ctx context.Context, userID string, upd ProfileUpdate) (int64, error) {
	if !ids.Valid(userID) {
		return 0, fmt.Errorf("%w: malformed user id", ErrInvalidInput)
	}
	return s.updateUser(ctx, userID, upd, "Admin Update User")
}

func (s *Service) updateUser(ctx context.Context, userID string, upd ProfileUpdate, op string) (int64, error) {
	var stored UserUpdate
	fullName := strings.TrimSpace(upd.FullName)
	if fullName != "" {
		if len(fullName) > maxFullNameLength {
			return 0, fmt.Errorf("%w: fullName must be 1..%d characters", ErrInvalidInput, maxFullNameLength)
		}
		stored.FullName = &fullName
	}
	if upd.Password != "" {
		if err := validatePassword(upd.Password); err != nil {
			return 0, err
		}
		hash, err := HashPassword(upd.Password)
		if err != nil {
			return 0, err
		}
		stored.PasswordHash = &hash
	}
	if stored.FullName == nil && stored.PasswordHash == nil {
		return 0, fmt.Errorf("%w: update supplies no fields", ErrInvalidInput)
	}

	modified, err := s.store.UpdateUser(ctx, userID, stored)
	if err != nil {
		return 0, err
	}
	if modified > 0 {
		if err := s.RecordEdit(ctx, op, "User", userID); err != nil {
			return modified, err
		}
	}
	return modified, nil
}

// RecordEdit appends an audit edit record attributing the operation to the
// acting principal from the context.
func (s *Service) RecordEdit(ctx context.Context, op, collection, target string) error {
	rec := &EditRecord{
		ID:         ids.New(),
		Timestamp:  s.now().UTC(),
		Op:         op,
		Collection: collection,
		Target:     target,
	}
	if claims, ok := ClaimsFromContext(ctx); ok {
		rec.Actor = *claims
	}
	return s.store.AppendEdit(ctx, rec)
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return "", fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be %d..%d characters", ErrInvalidInput, minPasswordLength, maxPasswordLength)
	}
	return nil
}
