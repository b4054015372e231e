// internal/app/features/shared/screen/templates.go
package screen

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "screen",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
