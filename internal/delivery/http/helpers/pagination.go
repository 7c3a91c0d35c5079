package helpers

import (
	"net/http"
	"strconv"

	"eventledger/internal/domain"
)

// ParsePagination reads limit and offset from the request query string.
// Invalid or missing values fall back to defaults; the query service clamps
// the rest.
func ParsePagination(r *http.Request) domain.PaginationParams {
	p := domain.PaginationParams{Limit: domain.DefaultLimit}
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			p.Limit = v
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			p.Offset = v
		}
	}
	return p.Normalize()
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// NewPaginationMeta builds PaginationMeta for one page.
func NewPaginationMeta(p domain.PaginationParams, total int) PaginationMeta {
	return PaginationMeta{
		Limit:  p.Limit,
		Offset: p.Offset,
		Total:  total,
	}
}
