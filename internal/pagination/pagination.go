// Package pagination provides the list envelope shared by all paged
// endpoints.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Params is a clamped page request.
type Params struct {
	Page    int
	PerPage int
}

// FromRequest reads page/per_page query parameters, clamping them to sane
// bounds.
func FromRequest(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

// Offset returns the row offset for the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Paged is the response envelope for one page of items.
type Paged[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

// NewPaged wraps a page of items, normalizing a nil slice to empty.
func NewPaged[T any](items []T, total int64, p Params) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{Items: items, Total: total, Page: p.Page, PerPage: p.PerPage}
}
