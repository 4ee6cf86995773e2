package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize bounds unpaginated listings.
	DefaultPageSize = 100
	// MaxPageSize caps client-requested page sizes.
	MaxPageSize = 1000
)

// Sort keys accepted by ListQuery. Anything else falls back to SortAuthor.
const (
	SortAuthor = "author"
	SortPrice  = "price"
	SortYear   = "year"
	SortTitle  = "title"
)

// ListQuery is the parsed form of the listing query string. Absent
// parameters impose no constraint; the filter is the AND of everything
// supplied.
type ListQuery struct {
	Keywords   string
	Genre      string
	MinPrice   *float64
	MaxPrice   *float64
	SortBy     string
	PageSize   int
	PageNumber int
}

// Offset returns the number of records skipped before the requested page.
func (q ListQuery) Offset() int {
	return (q.PageNumber - 1) * q.PageSize
}

// ParseListQuery translates raw query parameters into a ListQuery. It is a
// pure transformation: numeric parameters that fail to parse are treated
// as absent rather than rejected, and unknown sortBy values fall back to
// ascending author order.
func ParseListQuery(values url.Values) ListQuery {
	q := ListQuery{
		Keywords:   strings.TrimSpace(values.Get("keywords")),
		Genre:      strings.TrimSpace(values.Get("genre")),
		SortBy:     SortAuthor,
		PageSize:   DefaultPageSize,
		PageNumber: 1,
	}

	if v, err := strconv.ParseFloat(strings.TrimSpace(values.Get("minPrice")), 64); err == nil {
		q.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(values.Get("maxPrice")), 64); err == nil {
		q.MaxPrice = &v
	}

	switch strings.TrimSpace(values.Get("sortBy")) {
	case SortPrice:
		q.SortBy = SortPrice
	case SortYear:
		q.SortBy = SortYear
	case SortTitle:
		q.SortBy = SortTitle
	}

	if v, err := strconv.Atoi(strings.TrimSpace(values.Get("pageSize"))); err == nil && v > 0 {
		q.PageSize = v
		if q.PageSize > MaxPageSize {
			q.PageSize = MaxPageSize
		}
	}
	if v, err := strconv.Atoi(strings.TrimSpace(values.Get("pageNumber"))); err == nil && v > 0 {
		q.PageNumber = v
	}
	return q
}
