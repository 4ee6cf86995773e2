package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

const absentID = "01HQZX3Y4V5W6X7Y8Z9A0B1C2D"

func newTestService(t *testing.T) (*Service, *InMemory) {
	t.Helper()
	store := NewInMemory()
	svc, err := NewService(store, WithClock(func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func addBook(t *testing.T, svc *Service, title, author, genre string, year int, price float64) Book {
	t.Helper()
	b := Book{
		ISBN:            "978-0-00-000000",
		Title:           title,
		Author:          author,
		Genre:           genre,
		PublicationYear: year,
		Price:           price,
		Description:     "A " + genre + " novel.",
	}
	if err := svc.Add(context.Background(), &b); err != nil {
		t.Fatalf("Add %s: %v", title, err)
	}
	if b.ID == "" {
		t.Fatalf("Add did not assign an id")
	}
	return b
}

func TestListFilterSortPaginate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	addBook(t, svc, "The Hollow Door", "Carter", "Mystery", 1999, 8.50)
	addBook(t, svc, "Glass Harbor", "Avery", "Mystery", 2005, 12.00)
	addBook(t, svc, "Red Letters", "Brooks", "Mystery", 2010, 18.75)
	addBook(t, svc, "Cheap Thrills", "Dunn", "Mystery", 2001, 3.99)   // below minPrice
	addBook(t, svc, "Gilded Cage", "Ellis", "Mystery", 2015, 24.00)   // above maxPrice
	addBook(t, svc, "Quiet Orchard", "Finch", "Fiction", 2008, 10.00) // wrong genre

	min, max := 5.0, 20.0
	q := ListQuery{
		Genre:      "Mystery",
		MinPrice:   &min,
		MaxPrice:   &max,
		SortBy:     SortPrice,
		PageSize:   2,
		PageNumber: 1,
	}

	page1, err := svc.List(ctx, q)
	if err != nil {
		t.Fatalf("List page 1: %v", err)
	}
	if len(page1) != 2 || page1[0].Title != "The Hollow Door" || page1[1].Title != "Glass Harbor" {
		t.Fatalf("unexpected page 1: %+v", page1)
	}

	q.PageNumber = 2
	page2, err := svc.List(ctx, q)
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if len(page2) != 1 || page2[0].Title != "Red Letters" {
		t.Fatalf("unexpected page 2: %+v", page2)
	}

	q.PageNumber = 3
	page3, err := svc.List(ctx, q)
	if err != nil {
		t.Fatalf("List page 3: %v", err)
	}
	if len(page3) != 0 {
		t.Fatalf("expected empty page past the end, got %+v", page3)
	}
}

func TestListKeywords(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	addBook(t, svc, "Winter Station", "Hale", "Dystopian", 2012, 11.00)
	addBook(t, svc, "Summer House", "Hale", "Fiction", 2013, 9.00)

	got, err := svc.List(ctx, ListQuery{Keywords: "winter", PageSize: 10, PageNumber: 1, SortBy: SortAuthor})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Winter Station" {
		t.Fatalf("keyword filter mismatch: %+v", got)
	}
}

func TestAddValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bad := Book{
		ISBN:            "short",
		Title:           "X",
		Author:          "Y",
		Genre:           "Mystery",
		PublicationYear: 2000,
		Price:           1,
		Description:     "d",
	}
	if err := svc.Add(ctx, &bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("short isbn should be rejected, got %v", err)
	}

	bad.ISBN = "978-0-00-000000"
	bad.Genre = "Poetry"
	if err := svc.Add(ctx, &bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown genre should be rejected, got %v", err)
	}

	bad.Genre = "Mystery"
	bad.PublicationYear = 1850
	if err := svc.Add(ctx, &bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("out-of-range year should be rejected, got %v", err)
	}
}

func TestGetMalformedAndAbsent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "not-a-ulid"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("malformed id should be invalid input, got %v", err)
	}
	if _, err := svc.Get(ctx, absentID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("absent id should be not found, got %v", err)
	}
}

func TestUpdateReportsModifiedCount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := addBook(t, svc, "Glass Harbor", "Avery", "Mystery", 2005, 12.00)

	price := 14.50
	modified, err := svc.Update(ctx, b.ID, BookUpdate{Price: &price})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if modified != 1 {
		t.Fatalf("expected 1 modified, got %d", modified)
	}

	// Identical payload changes nothing the second time.
	modified, err = svc.Update(ctx, b.ID, BookUpdate{Price: &price})
	if err != nil {
		t.Fatalf("repeat Update: %v", err)
	}
	if modified != 0 {
		t.Fatalf("no-op update should report 0 modified, got %d", modified)
	}

	modified, err = svc.Update(ctx, absentID, BookUpdate{Price: &price})
	if err != nil {
		t.Fatalf("Update absent: %v", err)
	}
	if modified != 0 {
		t.Fatalf("absent id should report 0 modified, got %d", modified)
	}

	if _, err := svc.Update(ctx, b.ID, BookUpdate{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty update should be invalid input, got %v", err)
	}
}

func TestDeleteTwice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := addBook(t, svc, "Red Letters", "Brooks", "Mystery", 2010, 18.75)

	deleted, err := svc.Delete(ctx, b.ID)
	if err != nil || deleted != 1 {
		t.Fatalf("first delete: deleted=%d err=%v", deleted, err)
	}
	deleted, err = svc.Delete(ctx, b.ID)
	if err != nil || deleted != 0 {
		t.Fatalf("second delete should report 0, got deleted=%d err=%v", deleted, err)
	}
}
