// internal/app/features/documents/documents.go
package documents

import (
	"github.com/dalemusser/modconsole/internal/app/features/shared/screen"
	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

// Definition describes the documents screen. Rejection always needs notes;
// verification counts are shown above the table.
func Definition() screen.Definition[models.Document] {
	return screen.Definition[models.Document]{
		Name:  "documents",
		Title: "Documents",
		Path:  "/documents",
		Filters: []listing.Filter{
			{Key: "verification_status", Label: "Verification", Options: []string{"pending", "verified", "rejected"}},
		},
		Columns: []screen.Column[models.Document]{
			{Label: "Type", Value: func(d models.Document) string { return models.Display(d.Type) }, Sort: "type"},
			{Label: "File", Value: func(d models.Document) string { return models.Display(d.FileName) }},
			{Label: "Owner", Value: func(d models.Document) string { return models.Display(d.OwnerName) }},
			{Label: "Email", Value: func(d models.Document) string { return models.Display(d.OwnerEmail) }},
			{Label: "Status", Value: func(d models.Document) string { return models.Display(d.VerificationStatus) }},
			{Label: "Notes", Value: func(d models.Document) string { return models.Display(d.Notes) }},
			{Label: "Uploaded", Value: func(d models.Document) string { return models.DisplayTime(d.UploadedAt) }, Sort: "created_at"},
		},
		Actions: []listing.ActionRule{
			{Action: "verify", Label: "Verify", Color: "success", Dialog: true, NotesField: "verification_notes",
				Success: "Document verified.", Bulk: true},
			{Action: "reject", Label: "Reject", Color: "error", RequiresNotes: true, NotesField: "verification_notes",
				Success: "Document rejected."},
		},
		ID:    func(d models.Document) string { return d.ID },
		Map:   models.DocumentFromRaw,
		Label: func(d models.Document) string { return models.Display(d.FileName) },
		Available: screen.StatusIs(func(d models.Document) *string { return d.VerificationStatus }, map[string][]string{
			"verify": {"pending", "rejected"},
			"reject": {"pending", "verified"},
		}),
		Stats:    true,
		Download: true,
	}
}
