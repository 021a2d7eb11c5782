package catalog

import (
	"math"
	"net/url"
	"strconv"
)

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page int
	Size int
}

// ParsePageRequest reads `page` and `limit`. Bad or missing values fall back to
// page 1 and defaultSize; limit is capped at maxSize.
func ParsePageRequest(q url.Values, defaultSize, maxSize int) PageRequest {
	req := PageRequest{Page: 1, Size: defaultSize}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		req.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		req.Size = l
	}
	if maxSize > 0 && req.Size > maxSize {
		req.Size = maxSize
	}
	if req.Size <= 0 {
		req.Size = 1
	}
	return req
}

// Offset is the number of rows before the page. It saturates at math.MaxInt
// instead of overflowing for huge page numbers.
func (r PageRequest) Offset() int {
	if r.Page <= 1 || r.Size <= 0 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.Size {
		return math.MaxInt
	}
	return (r.Page - 1) * r.Size
}

// Page is the paginated listing envelope.
type Page[T any] struct {
	Count       int  `json:"count"`
	TotalPages  int  `json:"total_pages"`
	CurrentPage int  `json:"current_page"`
	Results     []T  `json:"results"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewPage builds the envelope for one page of results out of count total rows.
func NewPage[T any](results []T, count int, req PageRequest) Page[T] {
	if results == nil {
		results = []T{}
	}
	totalPages := 1
	if count > 0 {
		totalPages = (count + req.Size - 1) / req.Size
	}
	return Page[T]{
		Count:       count,
		TotalPages:  totalPages,
		CurrentPage: req.Page,
		Results:     results,
		HasNext:     req.Page < totalPages,
		HasPrevious: req.Page > 1,
	}
}

// Slice returns the window of items selected by req.
func Slice[T any](items []T, req PageRequest) []T {
	start := req.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + req.Size
	if end > len(items) || end < start {
		end = len(items)
	}
	return items[start:end]
}
