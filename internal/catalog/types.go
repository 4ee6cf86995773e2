package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("catalog: invalid input")
	ErrNotFound     = errors.New("catalog: not found")
)

// Genres is the fixed value set accepted for Book.Genre.
var Genres = []string{
	"Fiction",
	"Magical Realism",
	"Dystopian",
	"Mystery",
	"Young Adult",
	"Non-Fiction",
}

const (
	minPublicationYear = 1900
	maxPublicationYear = 2023
	minISBNLength      = 14
)

// Book is a catalog entry. IDs are store-assigned and opaque to clients.
type Book struct {
	ID              string    `json:"id"`
	ISBN            string    `json:"isbn"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Genre           string    `json:"genre"`
	PublicationYear int       `json:"publication_year"`
	Price           float64   `json:"price"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BookUpdate carries a partial update; nil fields are left untouched.
type BookUpdate struct {
	ISBN            *string  `json:"isbn"`
	Title           *string  `json:"title"`
	Author          *string  `json:"author"`
	Genre           *string  `json:"genre"`
	PublicationYear *int     `json:"publication_year"`
	Price           *float64 `json:"price"`
	Description     *string  `json:"description"`
}

// IsEmpty reports whether the update supplies no fields at all.
func (u BookUpdate) IsEmpty() bool {
	return u.ISBN == nil && u.Title == nil && u.Author == nil && u.Genre == nil &&
		u.PublicationYear == nil && u.Price == nil && u.Description == nil
}

func validGenre(g string) bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// Validate checks a fully populated book payload before insertion.
func (b *Book) Validate() error {
	b.ISBN = strings.TrimSpace(b.ISBN)
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Description = strings.TrimSpace(b.Description)

	if len(b.ISBN) < minISBNLength {
		return fmt.Errorf("%w: isbn must be at least %d characters", ErrInvalidInput, minISBNLength)
	}
	if b.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if b.Author == "" {
		return fmt.Errorf("%w: author is required", ErrInvalidInput)
	}
	if !validGenre(b.Genre) {
		return fmt.Errorf("%w: genre must be one of %s", ErrInvalidInput, strings.Join(Genres, ", "))
	}
	if b.PublicationYear < minPublicationYear || b.PublicationYear > maxPublicationYear {
		return fmt.Errorf("%w: publication_year must be between %d and %d", ErrInvalidInput, minPublicationYear, maxPublicationYear)
	}
	if b.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidInput)
	}
	if b.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	return nil
}

// Validate checks the supplied fields of a partial update.
func (u *BookUpdate) Validate() error {
	if u.IsEmpty() {
		return fmt.Errorf("%w: update supplies no fields", ErrInvalidInput)
	}
	if u.ISBN != nil {
		trimmed := strings.TrimSpace(*u.ISBN)
		if len(trimmed) < minISBNLength {
			return fmt.Errorf("%w: isbn must be at least %d characters", ErrInvalidInput, minISBNLength)
		}
		u.ISBN = &trimmed
	}
	if u.Title != nil {
		trimmed := strings.TrimSpace(*u.Title)
		if trimmed == "" {
			return fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		u.Title = &trimmed
	}
	if u.Author != nil {
		trimmed := strings.TrimSpace(*u.Author)
		if trimmed == "" {
			return fmt.Errorf("%w: author is required", ErrInvalidInput)
		}
		u.Author = &trimmed
	}
	if u.Genre != nil && !validGenre(*u.Genre) {
		return fmt.Errorf("%w: genre must be one of %s", ErrInvalidInput, strings.Join(Genres, ", "))
	}
	if u.PublicationYear != nil && (*u.PublicationYear < minPublicationYear || *u.PublicationYear > maxPublicationYear) {
		return fmt.Errorf("%w: publication_year must be between %d and %d", ErrInvalidInput, minPublicationYear, maxPublicationYear)
	}
	if u.Price != nil && *u.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidInput)
	}
	if u.Description != nil {
		trimmed := strings.TrimSpace(*u.Description)
		if trimmed == "" {
			return fmt.Errorf("%w: description is required", ErrInvalidInput)
		}
		u.Description = &trimmed
	}
	return nil
}
