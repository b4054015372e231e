// internal/domain/models/raw.go
package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Missing is the display value for a field the backend did not send.
const Missing = "N/A"

// Raw is one decoded JSON object as returned by the backend API.
//
// The backend does not share a schema across resources, so every typed
// record in this package is built from a Raw through a FromRaw mapping.
// Accessors take several candidate keys and return the first present,
// non-empty value; the bool result reports whether anything was found.
type Raw map[string]any

// timeLayouts are the timestamp formats seen in backend payloads.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// String returns the first non-empty value among keys, formatted as a string.
// Keys may be dotted paths into nested objects ("venue.name").
func (r Raw) String(keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := r.lookup(k)
		if !ok {
			continue
		}
		if s, ok := scalarString(v); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// Int returns the first value among keys that can be read as an integer.
func (r Raw) Int(keys ...string) (int, bool) {
	for _, k := range keys {
		v, ok := r.lookup(k)
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n), true
		case int:
			return n, true
		case int64:
			return int(n), true
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return int(i), true
			}
			if f, err := n.Float64(); err == nil {
				return int(f), true
			}
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

// Bool returns the first value among keys that can be read as a boolean.
// Numbers are true when non-zero; strings accept true/false/1/0/yes/no.
func (r Raw) Bool(keys ...string) (bool, bool) {
	for _, k := range keys {
		v, ok := r.lookup(k)
		if !ok {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b, true
		case float64:
			return b != 0, true
		case json.Number:
			f, err := b.Float64()
			if err == nil {
				return f != 0, true
			}
		case string:
			switch strings.ToLower(strings.TrimSpace(b)) {
			case "true", "1", "yes":
				return true, true
			case "false", "0", "no":
				return false, true
			}
		}
	}
	return false, false
}

// Time returns the first value among keys that parses as a timestamp.
func (r Raw) Time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		s, ok := r.String(k)
		if !ok {
			continue
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// Object returns the nested object stored under key.
func (r Raw) Object(key string) (Raw, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return Raw(m), true
}

// Objects returns the nested array of objects stored under key, skipping
// any element that is not an object.
func (r Raw) Objects(key string) []Raw {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Raw, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			out = append(out, Raw(m))
		}
	}
	return out
}

// ID returns the record identifier. Numeric ids are formatted without an
// exponent so 1e+06 comes back as "1000000".
func (r Raw) ID() string {
	s, _ := r.String("id", "_id", "uuid")
	return s
}

func (r Raw) lookup(key string) (any, bool) {
	if v, ok := r[key]; ok {
		return v, v != nil
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}
	parts := strings.Split(key, ".")
	cur := map[string]any(r)
	for i, p := range parts {
		v, ok := cur[p]
		if !ok || v == nil {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case json.Number:
		return s.String(), true
	case bool:
		return strconv.FormatBool(s), true
	}
	return "", false
}

/*─────────────────────────────────────────────────────────────────────────────*
| optional-field helpers                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func optString(r Raw, keys ...string) *string {
	if s, ok := r.String(keys...); ok {
		return &s
	}
	return nil
}

func optInt(r Raw, keys ...string) *int {
	if n, ok := r.Int(keys...); ok {
		return &n
	}
	return nil
}

func optBool(r Raw, keys ...string) *bool {
	if b, ok := r.Bool(keys...); ok {
		return &b
	}
	return nil
}

func optTime(r Raw, keys ...string) *time.Time {
	if t, ok := r.Time(keys...); ok {
		return &t
	}
	return nil
}

// personName reads a display name from the usual name keys, falling back to
// first_name + last_name.
func personName(r Raw) *string {
	if s, ok := r.String("name", "full_name", "display_name"); ok {
		return &s
	}
	first, _ := r.String("first_name")
	last, _ := r.String("last_name")
	if full := strings.TrimSpace(first + " " + last); full != "" {
		return &full
	}
	return nil
}

// Display returns *s or Missing.
func Display(s *string) string {
	if s == nil || *s == "" {
		return Missing
	}
	return *s
}

// DisplayInt returns the formatted *n or Missing.
func DisplayInt(n *int) string {
	if n == nil {
		return Missing
	}
	return strconv.Itoa(*n)
}

// DisplayTime formats *t as a date-time in UTC or returns Missing.
func DisplayTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Missing
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// DisplayBool renders *b as Yes/No or Missing.
func DisplayBool(b *bool) string {
	if b == nil {
		return Missing
	}
	if *b {
		return "Yes"
	}
	return "No"
}
