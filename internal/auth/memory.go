package auth

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety, mirroring
// the Postgres store's semantics for tests and local runs.
type InMemory struct {
	mu    sync.RWMutex
	users map[string]*User
	roles map[string]*Role
	edits []EditRecord
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty auth store.
func NewInMemory() *InMemory {
	return &InMemory{
		users: make(map[string]*User),
		roles: make(map[string]*Role),
	}
}

// SeedRole registers a role; used by tests and local bootstrap in place of
// the SQL seed files.
func (s *InMemory) SeedRole(role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := role
	s.roles[role.Name] = &stored
}

// Edits returns a copy of the append-only edit log.
func (s *InMemory) Edits() []EditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]EditRecord, len(s.edits))
	copy(out, s.edits)
	return out
}

func (s *InMemory) CreateUser(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrAlreadyExists
		}
	}
	stored := *u
	s.users[u.ID] = &stored
	return nil
}

func (s *InMemory) FindUser(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *InMemory) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemory) ListUsers(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) UpdateUser(ctx context.Context, id string, upd UserUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return 0, nil
	}
	changed := false
	if upd.FullName != nil && u.FullName != *upd.FullName {
		u.FullName = *upd.FullName
		changed = true
	}
	if upd.PasswordHash != nil && u.PasswordHash != *upd.PasswordHash {
		u.PasswordHash = *upd.PasswordHash
		changed = true
	}
	if !changed {
		return 0, nil
	}
	return 1, nil
}

func (s *InMemory) FindRole(ctx context.Context, name string) (*Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[name]
	if !ok {
		return nil, ErrNotFound
	}
	out := *role
	return &out, nil
}

func (s *InMemory) AppendEdit(ctx context.Context, rec *EditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, *rec)
	return nil
}
