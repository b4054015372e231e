// internal/app/system/listing/normalize.go
package listing

import "github.com/dalemusser/modconsole/internal/app/system/paging"

// Meta is the pagination metadata of an enveloped list response
// ({data, current_page, last_page, per_page, total}). Zero values mean the
// backend omitted the field.
type Meta struct {
	CurrentPage int
	LastPage    int
	PerPage     int
	Total       int
}

// Page is one decoded list response. Meta is nil when the backend returned a
// bare array, in which case the whole collection is in Items and paging
// happens locally.
type Page[T any] struct {
	Items []T
	Meta  *Meta
}

// Result is a normalized page ready for rendering.
//
// Invariants: 0 <= len(Items) <= PerPage, LastPage >= 1, and
// 1 <= CurrentPage <= LastPage.
type Result[T any] struct {
	Items       []T
	CurrentPage int
	LastPage    int
	PerPage     int
	Total       int
}

// Normalize turns a decoded response into a Result for the requested page
// and page size.
//
// Bare arrays are sliced locally. Envelopes are trusted for their page but
// clamped: items beyond per_page are dropped, total is never below the
// number of items, a missing last_page is derived from total, and the
// current page is bounded by [1, last_page].
func Normalize[T any](p Page[T], page, perPage int) Result[T] {
	if perPage <= 0 {
		perPage = paging.PageSize
	}
	if page < 1 {
		page = 1
	}

	if p.Meta == nil {
		total := len(p.Items)
		last := paging.LastPage(total, perPage)
		cur := paging.Clamp(page, last)
		from := (cur - 1) * perPage
		to := min(from+perPage, total)
		items := make([]T, 0, to-from)
		items = append(items, p.Items[from:to]...)
		return Result[T]{Items: items, CurrentPage: cur, LastPage: last, PerPage: perPage, Total: total}
	}

	m := *p.Meta
	pp := m.PerPage
	if pp <= 0 {
		pp = perPage
	}
	items := p.Items
	if len(items) > pp {
		items = items[:pp]
	}
	items = append(make([]T, 0, len(items)), items...)

	total := max(m.Total, len(items))
	last := m.LastPage
	if last < 1 {
		last = paging.LastPage(total, pp)
	}
	cur := m.CurrentPage
	if cur < 1 {
		cur = page
	}
	cur = paging.Clamp(cur, last)

	return Result[T]{Items: items, CurrentPage: cur, LastPage: last, PerPage: pp, Total: total}
}
