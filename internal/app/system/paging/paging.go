// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the number of rows requested per page from the backend.
const PageSize = 20

// windowWidth is how many numbered page links are shown around the current one.
const windowWidth = 5

// ParsePage extracts the 1-based "page" query parameter.
// Returns 0 when the parameter is absent so callers can tell "not asked"
// from "page 1"; invalid or negative values also return 1.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// LastPage returns ceil(total/perPage), never less than 1.
func LastPage(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// Clamp bounds page to [1, last].
func Clamp(page, last int) int {
	if last < 1 {
		last = 1
	}
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// Range holds computed display values for a page-numbered list.
type Range struct {
	Start    int // 1-based index of the first row shown (0 if no results)
	End      int // 1-based index of the last row shown (0 if no results)
	PrevPage int
	NextPage int
	HasPrev  bool
	HasNext  bool
	Pages    []int // numbered links around the current page
}

// ComputeRange calculates "Showing Start–End" values and prev/next links for
// the given page, page size, rows actually shown, and last page.
func ComputeRange(page, perPage, shown, lastPage int) Range {
	page = Clamp(page, lastPage)
	r := Range{
		PrevPage: page - 1,
		NextPage: page + 1,
		HasPrev:  page > 1,
		HasNext:  page < lastPage,
		Pages:    Window(page, lastPage),
	}
	if !r.HasPrev {
		r.PrevPage = 1
	}
	if !r.HasNext {
		r.NextPage = page
	}
	if shown == 0 {
		return r
	}
	r.Start = (page-1)*perPage + 1
	r.End = r.Start + shown - 1
	return r
}

// Window returns up to windowWidth page numbers centred on current.
func Window(current, last int) []int {
	if last < 1 {
		last = 1
	}
	current = Clamp(current, last)
	from := current - windowWidth/2
	if from < 1 {
		from = 1
	}
	to := from + windowWidth - 1
	if to > last {
		to = last
		from = to - windowWidth + 1
		if from < 1 {
			from = 1
		}
	}
	out := make([]int, 0, to-from+1)
	for p := from; p <= to; p++ {
		out = append(out, p)
	}
	return out
}
