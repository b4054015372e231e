// internal/app/features/shared/screen/definition.go
package screen

import (
	"strings"

	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

// Column is one table column.
type Column[T any] struct {
	Label string
	Value func(T) string
	// Sort is the backend sort key; empty means the column cannot be sorted.
	Sort string
}

// Definition describes one moderation screen: what it lists, how rows map
// to cells, and which actions it offers.
type Definition[T any] struct {
	Name     string // plural noun, "venues"; also the audit resource name
	Title    string // page heading, "Venues"
	Path     string // mount path, "/venues"
	Resource string // backend collection; defaults to Name

	Filters []listing.Filter
	Columns []Column[T]
	Actions []listing.ActionRule

	ID  func(T) string
	Map func(models.Raw) T

	// Label names a record in dialogs ("Blue Hall"). Defaults to the ID.
	Label func(T) string

	// Available reports whether action applies to a record in its current
	// state. Nil offers every action on every row.
	Available func(item T, action string) bool

	// Stats shows verification counts above the table.
	Stats bool
	// Download offers GET /{id}/download for attachments.
	Download bool
}

func (d Definition[T]) resource() string {
	if d.Resource != "" {
		return d.Resource
	}
	return d.Name
}

func (d Definition[T]) label(item T) string {
	if d.Label != nil {
		if s := d.Label(item); s != "" && s != models.Missing {
			return s
		}
	}
	return d.ID(item)
}

func (d Definition[T]) available(item T, action string) bool {
	return d.Available == nil || d.Available(item, action)
}

func (d Definition[T]) sortable(key string) bool {
	for _, c := range d.Columns {
		if c.Sort != "" && c.Sort == key {
			return true
		}
	}
	return false
}

// StatusIs returns an Available func offering each action only while the
// record's status (read by status) is one of the listed values. Actions
// missing from allowed are always offered.
func StatusIs[T any](status func(T) *string, allowed map[string][]string) func(T, string) bool {
	return func(item T, action string) bool {
		want, ok := allowed[action]
		if !ok {
			return true
		}
		s := models.Display(status(item))
		for _, w := range want {
			if strings.EqualFold(s, w) {
				return true
			}
		}
		return false
	}
}
