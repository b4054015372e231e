// internal/app/system/backend/page.go
package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

// DecodePage decodes a list response into a listing.Page.
//
// Accepted shapes:
//
//	[ {...}, {...} ]                                         bare array
//	{ "data": [...], "current_page": 1, "last_page": 3, ... }  envelope
//	{ "data": [...], "meta": { "current_page": 1, ... } }      envelope, nested meta
//	{ "data": { "data": [...], "current_page": 1, ... } }      wrapped envelope
//
// Anything else (null, a scalar, an object without data) decodes to an
// empty page. Array elements that are not objects are skipped.
func DecodePage[T any](raw json.RawMessage, mapFn func(models.Raw) T) listing.Page[T] {
	v, err := decodeAny(raw)
	if err != nil {
		return listing.Page[T]{}
	}
	return pageFrom(v, mapFn, 0)
}

func pageFrom[T any](v any, mapFn func(models.Raw) T, depth int) listing.Page[T] {
	switch x := v.(type) {
	case []any:
		return listing.Page[T]{Items: mapRows(x, mapFn)}
	case map[string]any:
		data, ok := x["data"]
		if !ok {
			return listing.Page[T]{}
		}
		if inner, ok := data.(map[string]any); ok && depth == 0 {
			return pageFrom(inner, mapFn, depth+1)
		}
		rows, ok := data.([]any)
		if !ok {
			return listing.Page[T]{}
		}
		metaSrc := models.Raw(x)
		if m, ok := metaSrc.Object("meta"); ok {
			metaSrc = m
		}
		meta := &listing.Meta{}
		meta.CurrentPage, _ = metaSrc.Int("current_page", "page")
		meta.LastPage, _ = metaSrc.Int("last_page", "total_pages")
		meta.PerPage, _ = metaSrc.Int("per_page", "page_size")
		meta.Total, _ = metaSrc.Int("total", "total_count")
		return listing.Page[T]{Items: mapRows(rows, mapFn), Meta: meta}
	}
	return listing.Page[T]{}
}

func mapRows[T any](rows []any, mapFn func(models.Raw) T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if m, ok := r.(map[string]any); ok {
			out = append(out, mapFn(models.Raw(m)))
		}
	}
	return out
}

func decodeAny(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("backend: decode: %w", err)
	}
	return v, nil
}

var errNotObject = errors.New("backend: response is not an object")

// decodeObject decodes a JSON object response. A top-level "data" object is
// unwrapped.
func decodeObject(raw json.RawMessage) (models.Raw, error) {
	v, err := decodeAny(raw)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	r := models.Raw(m)
	if inner, ok := r.Object("data"); ok {
		return inner, nil
	}
	return r, nil
}
