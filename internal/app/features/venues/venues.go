// internal/app/features/venues/venues.go
package venues

import (
	"strconv"

	"github.com/dalemusser/modconsole/internal/app/features/shared/screen"
	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

// Definition describes the venues screen.
func Definition() screen.Definition[models.Venue] {
	return screen.Definition[models.Venue]{
		Name:  "venues",
		Title: "Venues",
		Path:  "/venues",
		Filters: []listing.Filter{
			{Key: "status", Label: "Status", Options: []string{"pending", "approved", "rejected"}},
		},
		Columns: []screen.Column[models.Venue]{
			{Label: "Name", Value: func(v models.Venue) string { return models.Display(v.Name) }, Sort: "name"},
			{Label: "City", Value: func(v models.Venue) string { return models.Display(v.City) }, Sort: "city"},
			{Label: "Address", Value: func(v models.Venue) string { return models.Display(v.Address) }},
			{Label: "Capacity", Value: capacity},
			{Label: "Owner", Value: owner},
			{Label: "Status", Value: func(v models.Venue) string { return models.Display(v.Status) }},
			{Label: "Created", Value: func(v models.Venue) string { return models.DisplayTime(v.CreatedAt) }, Sort: "created_at"},
		},
		Actions: []listing.ActionRule{
			{Action: "approve", Label: "Approve", Color: "success", Success: "Venue approved.", Bulk: true},
			{Action: "reject", Label: "Reject", Color: "error", RequiresNotes: true, NotesField: "reason",
				Success: "Venue rejected."},
			{Action: "delete", Label: "Delete", Color: "error",
				Confirm: "Delete this venue? Events held there keep their history.", Success: "Venue deleted."},
		},
		ID:    func(v models.Venue) string { return v.ID },
		Map:   models.VenueFromRaw,
		Label: func(v models.Venue) string { return models.Display(v.Name) },
		Available: screen.StatusIs(func(v models.Venue) *string { return v.Status }, map[string][]string{
			"approve": {"pending", "rejected"},
			"reject":  {"pending", "approved"},
		}),
	}
}

func capacity(v models.Venue) string {
	if v.Capacity == nil {
		return models.Missing
	}
	return strconv.Itoa(*v.Capacity)
}

// owner shows "Name <email>", or whichever part is present.
func owner(v models.Venue) string {
	name, email := models.Display(v.OwnerName), models.Display(v.OwnerEmail)
	switch {
	case name != models.Missing && email != models.Missing:
		return name + " <" + email + ">"
	case name != models.Missing:
		return name
	}
	return email
}
