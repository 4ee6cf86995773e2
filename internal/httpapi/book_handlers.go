package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bookstore.org/internal/audit"
	"bookstore.org/internal/auth"
	"bookstore.org/internal/catalog"
)

type newBookRequest struct {
	ISBN            string  `json:"isbn"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Genre           string  `json:"genre"`
	PublicationYear int     `json:"publication_year"`
	Price           float64 `json:"price"`
	Description     string  `json:"description"`
}

// handleBookList serves the paginated, filtered listing. It is the only
// book route behind a named permission; the rest only require
// authentication.
func (a *API) handleBookList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.requirePermission(w, r, auth.PermListBooks) {
		return
	}

	q := catalog.ParseListQuery(r.URL.Query())
	books, err := a.catalog.List(r.Context(), q)
	if err != nil {
		a.handleCatalogError(w, r, err)
		return
	}
	if books == nil {
		books = []catalog.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

func (a *API) handleBookResource(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/books/")
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	book, err := a.catalog.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("Book %s not found", id))
			return
		}
		a.handleCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (a *API) handleBookAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req newBookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	book := catalog.Book{
		ISBN:            req.ISBN,
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		Price:           req.Price,
		Description:     req.Description,
	}
	if err := a.catalog.Add(r.Context(), &book); err != nil {
		a.handleCatalogError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "catalog.book.add", map[string]any{
		"book_id": book.ID,
		"title":   book.Title,
	})
	writeMessage(w, http.StatusOK, fmt.Sprintf("Book %s added with an id of %s", book.Title, book.ID))
}

func (a *API) handleBookUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/books/update/")
	if !ok {
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}

	var upd catalog.BookUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	modified, err := a.catalog.Update(r.Context(), id, upd)
	if err != nil {
		a.handleCatalogError(w, r, err)
		return
	}
	if modified == 0 {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Book %s not updated", id))
		return
	}

	if err := a.auth.RecordEdit(r.Context(), "Update Book", "Book", id); err != nil {
		a.handleCatalogError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.book.update", map[string]any{"book_id": id})
	writeMessage(w, http.StatusOK, fmt.Sprintf("Book %s updated", id))
}

func (a *API) handleBookDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r, "/books/delete/")
	if !ok {
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}

	deleted, err := a.catalog.Delete(r.Context(), id)
	if err != nil {
		a.handleCatalogError(w, r, err)
		return
	}
	if deleted == 0 {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("Book %s not deleted", id))
		return
	}

	_ = audit.LogEvent(r.Context(), "catalog.book.delete", map[string]any{"book_id": id})
	writeMessage(w, http.StatusOK, fmt.Sprintf("Book %s deleted", id))
}

// resourceID extracts the trailing identifier segment of the path.
func resourceID(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return "", false
	}
	return id, true
}

// handleCatalogError maps catalog failures onto the response taxonomy.
// Internal details go to the server log, never to the client.
func (a *API) handleCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput), errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	default:
		logInternalError(r, err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
