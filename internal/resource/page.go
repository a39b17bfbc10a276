package resource

import (
	"strconv"
)

const (
	// DefaultPageSize is used when pageSize is missing.
	DefaultPageSize = 25
	// MaxPageSize caps pageSize.
	MaxPageSize = 100
)

// Page is the paging request of a list or search call.
type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// ParsePage reads page and pageSize. Out of range values are clamped, non-numeric ones rejected.
func ParsePage(page, pageSize string) (Page, error) {
	p := Page{Page: 1, PageSize: DefaultPageSize}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			return p, ErrInvalidPaging
		}

		p.Page = max(n, 1)
	}

	if pageSize != "" {
		n, err := strconv.Atoi(pageSize)
		if err != nil {
			return p, ErrInvalidPaging
		}

		p.PageSize = min(max(n, 1), MaxPageSize)
	}

	return p, nil
}

// Offset of the first record of the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Slice returns the records of the page.
func Slice[E any](items []E, p Page) []E {
	start := p.Offset()
	if start >= len(items) {
		return []E{}
	}

	end := min(start+p.PageSize, len(items))

	return items[start:end]
}
