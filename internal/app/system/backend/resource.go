// internal/app/system/backend/resource.go
package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

// postActions are the row actions the admin API exposes as
// POST /admin/{resource}/{id}/{action}.
var postActions = map[string]bool{
	"approve": true,
	"reject":  true,
	"ban":     true,
	"unban":   true,
	"verify":  true,
	"reset":   true,
	"close":   true,
}

// Resource addresses one admin collection, /admin/{name}.
type Resource struct {
	c    *Client
	name string
}

// Resource returns the admin collection called name ("users", "venues").
func (c *Client) Resource(name string) Resource {
	return Resource{c: c, name: name}
}

// Name returns the collection name.
func (r Resource) Name() string { return r.name }

func (r Resource) path(parts ...string) string {
	p := "/admin/" + url.PathEscape(r.name)
	for _, s := range parts {
		p += "/" + url.PathEscape(s)
	}
	return p
}

// List fetches GET /admin/{name} with the given query parameters.
func (r Resource) List(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return r.c.Get(ctx, r.path(), params)
}

// Act applies action to record id.
//
//	approve, reject, ban, unban, verify, reset, close  POST   /admin/{r}/{id}/{action}
//	update                                             PATCH  /admin/{r}/{id}
//	delete                                             DELETE /admin/{r}/{id}
func (r Resource) Act(ctx context.Context, id, action string, payload map[string]any) error {
	var body any
	if len(payload) > 0 {
		body = payload
	}
	var err error
	switch {
	case postActions[action]:
		if body == nil {
			body = map[string]any{}
		}
		_, err = r.c.Post(ctx, r.path(id, action), body)
	case action == "update":
		_, err = r.c.Patch(ctx, r.path(id), body)
	case action == "delete":
		_, err = r.c.Delete(ctx, r.path(id), body)
	default:
		return ErrUnsupportedAction
	}
	return err
}

// Stats fetches GET /admin/{name}/stats.
func (r Resource) Stats(ctx context.Context) (models.Raw, error) {
	raw, err := r.c.Get(ctx, r.path("stats"), nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(raw)
}

// Mutator adapts Act to listing.Mutator.
func (r Resource) Mutator() listing.Mutator {
	return listing.MutatorFunc(func(ctx context.Context, action, id string, payload map[string]any) error {
		return r.Act(ctx, id, action, payload)
	})
}

// Source adapts r.List to a listing.Source that maps each row with mapFn.
func Source[T any](r Resource, mapFn func(models.Raw) T) listing.Source[T] {
	return listing.SourceFunc[T](func(ctx context.Context, params url.Values) (listing.Page[T], error) {
		raw, err := r.List(ctx, params)
		if err != nil {
			return listing.Page[T]{}, err
		}
		return DecodePage(raw, mapFn), nil
	})
}
