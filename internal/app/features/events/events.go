// internal/app/features/events/events.go
package events

import (
	"github.com/dalemusser/modconsole/internal/app/features/shared/screen"
	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

// Definition describes the events screen.
func Definition() screen.Definition[models.Event] {
	return screen.Definition[models.Event]{
		Name:  "events",
		Title: "Events",
		Path:  "/events",
		Filters: []listing.Filter{
			{Key: "status", Label: "Status", Options: []string{"draft", "published", "cancelled", "pending"}},
		},
		Columns: []screen.Column[models.Event]{
			{Label: "Title", Value: func(e models.Event) string { return models.Display(e.Title) }, Sort: "title"},
			{Label: "Venue", Value: func(e models.Event) string { return models.Display(e.VenueName) }},
			{Label: "Organizer", Value: func(e models.Event) string { return models.Display(e.Organizer) }},
			{Label: "Starts", Value: func(e models.Event) string { return models.DisplayTime(e.StartsAt) }, Sort: "starts_at"},
			{Label: "Ends", Value: func(e models.Event) string { return models.DisplayTime(e.EndsAt) }},
			{Label: "Attendees", Value: func(e models.Event) string { return models.DisplayInt(e.Attendees) }},
			{Label: "Status", Value: func(e models.Event) string { return models.Display(e.Status) }},
		},
		Actions: []listing.ActionRule{
			{Action: "approve", Label: "Approve", Color: "success", Success: "Event approved.", Bulk: true},
			{Action: "reject", Label: "Reject", Color: "error", RequiresNotes: true, NotesField: "reason",
				Success: "Event rejected."},
			{Action: "close", Label: "Close", Color: "warning",
				Confirm: "Close this event to new registrations?", Success: "Event closed."},
			{Action: "delete", Label: "Delete", Color: "error",
				Confirm: "Delete this event permanently?", Success: "Event deleted."},
		},
		ID:    func(e models.Event) string { return e.ID },
		Map:   models.EventFromRaw,
		Label: func(e models.Event) string { return models.Display(e.Title) },
		Available: screen.StatusIs(func(e models.Event) *string { return e.Status }, map[string][]string{
			"approve": {"pending", "draft"},
			"reject":  {"pending", "draft"},
			"close":   {"published"},
		}),
	}
}
