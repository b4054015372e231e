// internal/app/features/coaches/coaches.go
package coaches

import (
	"github.com/dalemusser/modconsole/internal/app/features/shared/screen"
	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

// Definition describes the coaches screen. Approval takes optional notes,
// rejection requires them.
func Definition() screen.Definition[models.Coach] {
	return screen.Definition[models.Coach]{
		Name:  "coaches",
		Title: "Coaches",
		Path:  "/coaches",
		Filters: []listing.Filter{
			{Key: "verification_status", Label: "Verification", Options: []string{"pending", "verified", "rejected"}},
		},
		Columns: []screen.Column[models.Coach]{
			{Label: "Name", Value: func(c models.Coach) string { return models.Display(c.Name) }, Sort: "name"},
			{Label: "Email", Value: func(c models.Coach) string { return models.Display(c.Email) }},
			{Label: "Specialty", Value: func(c models.Coach) string { return models.Display(c.Specialty) }},
			{Label: "Experience (years)", Value: func(c models.Coach) string { return models.DisplayInt(c.ExperienceYears) }},
			{Label: "Status", Value: func(c models.Coach) string { return models.Display(c.VerificationStatus) }},
			{Label: "Notes", Value: func(c models.Coach) string { return models.Display(c.Notes) }},
			{Label: "Applied", Value: func(c models.Coach) string { return models.DisplayTime(c.CreatedAt) }, Sort: "created_at"},
		},
		Actions: []listing.ActionRule{
			{Action: "approve", Label: "Approve", Color: "success", Dialog: true, NotesField: "verification_notes",
				Success: "Coach approved."},
			{Action: "reject", Label: "Reject", Color: "error", RequiresNotes: true, NotesField: "verification_notes",
				Success: "Coach rejected."},
		},
		ID:    func(c models.Coach) string { return c.ID },
		Map:   models.CoachFromRaw,
		Label: func(c models.Coach) string { return models.Display(c.Name) },
		Available: screen.StatusIs(func(c models.Coach) *string { return c.VerificationStatus }, map[string][]string{
			"approve": {"pending", "rejected"},
			"reject":  {"pending", "verified"},
		}),
		Stats: true,
	}
}
