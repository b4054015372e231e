// internal/app/system/search/search.go
package search

import "strings"

// All is the filter value that means "apply no constraint".
const All = "All"

// maxQueryLen caps free-text search sent to the backend.
const maxQueryLen = 200

// Unconstrained reports whether a filter value places no constraint on the
// list: the All sentinel (any case) or blank.
//
//	if search.Unconstrained(status) {
//	    // omit status from the outbound params
//	}
func Unconstrained(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || equalsAnyFold(v, All)
}

// NormalizeQuery trims the free-text query, collapses inner whitespace,
// and caps its length.
func NormalizeQuery(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	if len(q) > maxQueryLen {
		q = q[:maxQueryLen]
	}
	return q
}

// SortOrder returns "asc" or "desc"; anything else becomes "".
func SortOrder(order string) string {
	switch {
	case equalsAnyFold(order, "asc", "ascending"):
		return "asc"
	case equalsAnyFold(order, "desc", "descending"):
		return "desc"
	}
	return ""
}

// OneOf returns value when it matches one of allowed (case-insensitive),
// using the allowed spelling; otherwise All. Values arriving from URLs pass
// through here so an unknown status cannot reach the backend.
func OneOf(value string, allowed ...string) string {
	v := strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	return All
}

func equalsAnyFold(s string, vals ...string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, v := range vals {
		if s == strings.ToLower(v) {
			return true
		}
	}
	return false
}
