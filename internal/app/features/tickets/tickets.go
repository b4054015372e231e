// internal/app/features/tickets/tickets.go
package tickets

import (
	"github.com/dalemusser/modconsole/internal/app/features/shared/screen"
	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

// Definition describes the support tickets screen.
func Definition() screen.Definition[models.Ticket] {
	return screen.Definition[models.Ticket]{
		Name:  "tickets",
		Title: "Support tickets",
		Path:  "/tickets",
		Filters: []listing.Filter{
			{Key: "status", Label: "Status", Options: []string{"open", "pending", "resolved", "closed"}},
			{Key: "priority", Label: "Priority", Options: []string{"low", "medium", "high", "urgent"}},
		},
		Columns: []screen.Column[models.Ticket]{
			{Label: "Subject", Value: func(t models.Ticket) string { return models.Display(t.Subject) }, Sort: "subject"},
			{Label: "Requester", Value: func(t models.Ticket) string { return models.Display(t.RequesterName) }},
			{Label: "Email", Value: func(t models.Ticket) string { return models.Display(t.Email) }},
			{Label: "Priority", Value: func(t models.Ticket) string { return models.Display(t.Priority) }, Sort: "priority"},
			{Label: "Status", Value: func(t models.Ticket) string { return models.Display(t.Status) }},
			{Label: "Opened", Value: func(t models.Ticket) string { return models.DisplayTime(t.CreatedAt) }, Sort: "created_at"},
			{Label: "Updated", Value: func(t models.Ticket) string { return models.DisplayTime(t.UpdatedAt) }, Sort: "updated_at"},
		},
		Actions: []listing.ActionRule{
			{Action: "close", Label: "Close", Color: "success", Dialog: true, Success: "Ticket closed.", Bulk: true},
			{Action: "reset", Label: "Reopen", Color: "warning", Success: "Ticket reopened."},
			{Action: "delete", Label: "Delete", Color: "error",
				Confirm: "Delete this ticket and its attachment?", Success: "Ticket deleted."},
		},
		ID:    func(t models.Ticket) string { return t.ID },
		Map:   models.TicketFromRaw,
		Label: func(t models.Ticket) string { return models.Display(t.Subject) },
		Available: func(t models.Ticket, action string) bool {
			status := models.Display(t.Status)
			switch action {
			case "close":
				return status != "closed"
			case "reset":
				return status == "closed" || status == "resolved"
			}
			return true
		},
		Download: true,
	}
}
