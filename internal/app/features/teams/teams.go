// internal/app/features/teams/teams.go
package teams

import (
	"github.com/dalemusser/modconsole/internal/app/features/shared/screen"
	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

// Definition describes the teams screen.
func Definition() screen.Definition[models.Team] {
	return screen.Definition[models.Team]{
		Name:  "teams",
		Title: "Teams",
		Path:  "/teams",
		Filters: []listing.Filter{
			{Key: "verification_status", Label: "Verification", Options: []string{"pending", "verified", "rejected"}},
		},
		Columns: []screen.Column[models.Team]{
			{Label: "Name", Value: func(t models.Team) string { return models.Display(t.Name) }, Sort: "name"},
			{Label: "Sport", Value: func(t models.Team) string { return models.Display(t.Sport) }},
			{Label: "Captain", Value: func(t models.Team) string { return models.Display(t.CaptainName) }},
			{Label: "Members", Value: func(t models.Team) string { return models.DisplayInt(t.Members) }},
			{Label: "Status", Value: func(t models.Team) string { return models.Display(t.VerificationStatus) }},
			{Label: "Created", Value: func(t models.Team) string { return models.DisplayTime(t.CreatedAt) }, Sort: "created_at"},
		},
		Actions: []listing.ActionRule{
			{Action: "approve", Label: "Approve", Color: "success", Dialog: true, NotesField: "verification_notes",
				Success: "Team approved.", Bulk: true},
			{Action: "reject", Label: "Reject", Color: "error", RequiresNotes: true, NotesField: "verification_notes",
				Success: "Team rejected."},
			{Action: "delete", Label: "Delete", Color: "error",
				Confirm: "Delete this team? Its members are not removed.", Success: "Team deleted."},
		},
		ID:    func(t models.Team) string { return t.ID },
		Map:   models.TeamFromRaw,
		Label: func(t models.Team) string { return models.Display(t.Name) },
		Available: screen.StatusIs(func(t models.Team) *string { return t.VerificationStatus }, map[string][]string{
			"approve": {"pending", "rejected"},
			"reject":  {"pending", "verified"},
		}),
		Stats: true,
	}
}
