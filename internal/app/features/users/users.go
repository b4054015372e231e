// internal/app/features/users/users.go
package users

import (
	"github.com/dalemusser/modconsole/internal/app/features/shared/screen"
	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

// Definition describes the users screen: account moderation (ban, unban,
// reset, delete).
func Definition() screen.Definition[models.User] {
	return screen.Definition[models.User]{
		Name:  "users",
		Title: "Users",
		Path:  "/users",
		Filters: []listing.Filter{
			{Key: "status", Label: "Status", Options: []string{"active", "banned", "pending"}},
			// Roles are defined by the backend, so any value is passed through.
			{Key: "role", Label: "Role"},
		},
		Columns: []screen.Column[models.User]{
			{Label: "Name", Value: models.User.DisplayName, Sort: "name"},
			{Label: "Email", Value: func(u models.User) string { return models.Display(u.Email) }, Sort: "email"},
			{Label: "Phone", Value: func(u models.User) string { return models.Display(u.Phone) }},
			{Label: "Role", Value: func(u models.User) string { return models.Display(u.RoleName) }},
			{Label: "Status", Value: func(u models.User) string { return models.Display(u.Status) }},
			{Label: "Verified", Value: func(u models.User) string { return models.DisplayBool(u.Verified) }},
			{Label: "Joined", Value: func(u models.User) string { return models.DisplayTime(u.CreatedAt) }, Sort: "created_at"},
			{Label: "Last login", Value: func(u models.User) string { return models.DisplayTime(u.LastLoginAt) }},
		},
		Actions: []listing.ActionRule{
			{Action: "ban", Label: "Ban", Color: "error", RequiresNotes: true, NotesField: "reason",
				Success: "User banned.", Bulk: true},
			{Action: "unban", Label: "Unban", Color: "success", Success: "User unbanned.", Bulk: true},
			{Action: "reset", Label: "Reset password", Color: "warning",
				Confirm: "Send this user a password reset?", Success: "Password reset sent."},
			{Action: "delete", Label: "Delete", Color: "error",
				Confirm: "Delete this user permanently? This cannot be undone.", Success: "User deleted."},
		},
		ID:    func(u models.User) string { return u.ID },
		Map:   models.UserFromRaw,
		Label: models.User.DisplayName,
		Available: screen.StatusIs(func(u models.User) *string { return u.Status }, map[string][]string{
			"ban":   {"active", "pending"},
			"unban": {"banned"},
		}),
	}
}
