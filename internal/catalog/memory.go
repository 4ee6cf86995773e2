package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. It mirrors
// the Postgres store's filter, ordering and modified-count semantics and
// backs the HTTP tests.
type InMemory struct {
	mu    sync.RWMutex
	books map[string]*Book
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty catalog store.
func NewInMemory() *InMemory {
	return &InMemory{books: make(map[string]*Book)}
}

func (s *InMemory) ListBooks(ctx context.Context, q ListQuery) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Book
	for _, b := range s.books {
		if matchesQuery(b, q) {
			matched = append(matched, *b)
		}
	}
	sortBooks(matched, q.SortBy)

	offset := q.Offset()
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (s *InMemory) GetBook(ctx context.Context, id string) (*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	return &out, nil
}

func (s *InMemory) AddBook(ctx context.Context, b *Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *b
	s.books[b.ID] = &stored
	return nil
}

func (s *InMemory) UpdateBook(ctx context.Context, id string, upd BookUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return 0, nil
	}
	changed := false
	apply := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	apply(&b.ISBN, upd.ISBN)
	apply(&b.Title, upd.Title)
	apply(&b.Author, upd.Author)
	apply(&b.Genre, upd.Genre)
	apply(&b.Description, upd.Description)
	if upd.PublicationYear != nil && b.PublicationYear != *upd.PublicationYear {
		b.PublicationYear = *upd.PublicationYear
		changed = true
	}
	if upd.Price != nil && b.Price != *upd.Price {
		b.Price = *upd.Price
		changed = true
	}
	if !changed {
		return 0, nil
	}
	return 1, nil
}

func (s *InMemory) DeleteBook(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		return 0, nil
	}
	delete(s.books, id)
	return 1, nil
}

func matchesQuery(b *Book, q ListQuery) bool {
	if q.Keywords != "" {
		needle := strings.ToLower(q.Keywords)
		haystack := strings.ToLower(b.Title + " " + b.Author + " " + b.Description)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	if q.Genre != "" && b.Genre != q.Genre {
		return false
	}
	if q.MinPrice != nil && b.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && b.Price > *q.MaxPrice {
		return false
	}
	return true
}

// sortBooks orders by the requested key ascending, with the identifier as
// a deterministic tie-break so pagination stays stable.
func sortBooks(books []Book, sortBy string) {
	sort.Slice(books, func(i, j int) bool {
		a, b := books[i], books[j]
		switch sortBy {
		case SortPrice:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case SortYear:
			if a.PublicationYear != b.PublicationYear {
				return a.PublicationYear < b.PublicationYear
			}
		case SortTitle:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		default:
			if a.Author != b.Author {
				return a.Author < b.Author
			}
		}
		return a.ID < b.ID
	})
}
