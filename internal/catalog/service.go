package catalog

import (
	"context"
	"fmt"
	"time"

	"bookstore.org/internal/ids"
)

// Store describes the persistence operations the catalog needs. Update and
// Delete report the number of rows actually modified so callers can tell a
// no-op apart from a change.
type Store interface {
	ListBooks(ctx context.Context, q ListQuery) ([]Book, error)
	GetBook(ctx context.Context, id string) (*Book, error)
	AddBook(ctx context.Context, b *Book) error
	UpdateBook(ctx context.Context, id string, upd BookUpdate) (int64, error)
	DeleteBook(ctx context.Context, id string) (int64, error)
}

// Service validates catalog operations and delegates persistence to the
// injected store.
type Service struct {
	store Store
	now   func() time.Time
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

// NewService constructs the catalog service.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidInput)
	}
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List runs the filter/sort/paginate pipeline and returns at most
// q.PageSize books. Store failures propagate with no partial results.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Book, error) {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.PageNumber < 1 {
		q.PageNumber = 1
	}
	if q.SortBy == "" {
		q.SortBy = SortAuthor
	}
	return s.store.ListBooks(ctx, q)
}

// Get fetches one book by id.
func (s *Service) Get(ctx context.Context, id string) (*Book, error) {
	if !ids.Valid(id) {
		return nil, fmt.Errorf("%w: malformed book id", ErrInvalidInput)
	}
	return s.store.GetBook(ctx, id)
}

// Add validates and stores a new book, assigning its identifier.
func (s *Service) Add(ctx context.Context, b *Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.ID = ids.New()
	now := s.now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	return s.store.AddBook(ctx, b)
}

// Update applies a partial update and reports the number of rows modified.
// Zero means the book is absent or the payload changed nothing; the caller
// surfaces that as a business-level "not updated".
func (s *Service) Update(ctx context.Context, id string, upd BookUpdate) (int64, error) {
	if !ids.Valid(id) {
		return 0, fmt.Errorf("%w: malformed book id", ErrInvalidInput)
	}
	if err := upd.Validate(); err != nil {
		return 0, err
	}
	return s.store.UpdateBook(ctx, id, upd)
}

// Delete removes a book and reports the number of rows deleted.
func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	if !ids.Valid(id) {
		return 0, fmt.Errorf("%w: malformed book id", ErrInvalidInput)
	}
	return s.store.DeleteBook(ctx, id)
}
