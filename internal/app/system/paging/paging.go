// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in paged lists.
// Keep this as an int because most call sites add/subtract and then
// cast to int64 for Mongo Find().SetLimit().
const PageSize = 50

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Offset returns the number of rows before page.
func Offset(page, size int) int64 {
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * size)
}

// Window holds the computed navigation values for one page of a list.
type Window struct {
	Page       int
	TotalPages int
	Total      int64
	RangeStart int // 1-based index of the first row shown (0 if none)
	RangeEnd   int // 1-based index of the last row shown (0 if none)
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

// Compute builds the Window for page given the total row count and the
// number of rows actually shown. A page past the end is clamped.
func Compute(page, size int, total int64, shown int) Window {
	if size < 1 {
		size = PageSize
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	w := Window{
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
	if w.PrevPage < 1 {
		w.PrevPage = 1
	}
	if w.NextPage > totalPages {
		w.NextPage = totalPages
	}
	if shown > 0 {
		w.RangeStart = (page-1)*size + 1
		w.RangeEnd = w.RangeStart + shown - 1
	}
	return w
}

// Slice returns page's rows out of an in-memory list together with its
// Window. Lists fetched whole from the backend are paged this way.
func Slice[T any](rows []T, page, size int) ([]T, Window) {
	if size < 1 {
		size = PageSize
	}
	w := Compute(page, size, int64(len(rows)), 0)
	start := (w.Page - 1) * size
	if start > len(rows) {
		start = len(rows)
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	out := rows[start:end]
	if len(out) > 0 {
		w.RangeStart = start + 1
		w.RangeEnd = end
	}
	return out, w
}
