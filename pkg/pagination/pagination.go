package pagination

import (
	"math"
	"net/url"
	"strconv"
)

// Query parameter names recognised by PageRequestFromQuery.
const (
	ParamPage     = "page"
	ParamPageSize = "pageSize"
)

// PageRequest identifies one page of a list result.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Normalize applies the malformed-input policy: a non-positive page becomes 1,
// a non-positive page size becomes the configured default, and page sizes above
// a configured maximum are capped.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	if cfg.MaxPageSize > 0 && r.PageSize > cfg.MaxPageSize {
		r.PageSize = cfg.MaxPageSize
	}
}

// Offset returns the number of records to skip before the page begins.
// It saturates at math.MaxInt instead of overflowing.
func (r *PageRequest) Offset() int {
	if r.Page <= 1 || r.PageSize <= 0 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.PageSize {
		return math.MaxInt
	}
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery returns a normalized PageRequest when the page parameter is
// present and non-empty, or nil when the caller asked for an unpaginated result.
//
// Malformed pagination inputs default rather than error: a non-numeric page or
// pageSize is treated exactly like a missing one.
func PageRequestFromQuery(values url.Values, cfg Config) *PageRequest {
	raw := values.Get(ParamPage)
	if raw == "" {
		return nil
	}

	page, _ := strconv.Atoi(raw)
	pageSize, _ := strconv.Atoi(values.Get(ParamPageSize))

	req := &PageRequest{
		Page:     page,
		PageSize: pageSize,
	}

	req.Normalize(cfg)
	return req
}

// PageResult holds a page of data along with pagination metadata.
type PageResult[T any] struct {
	Data         []T `json:"data"`
	Page         int `json:"page"`
	TotalPages   int `json:"totalPages"`
	TotalRecords int `json:"totalRecords"`
}

// NewPageResult creates a PageResult with totalPages = ceil(total / pageSize).
// An empty collection has zero pages; pages past the end carry empty data.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:         data,
		Page:         page,
		TotalPages:   TotalPages(total, pageSize),
		TotalRecords: total,
	}
}

// TotalPages returns ceil(total / pageSize) for a positive pageSize.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total < 1 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}
