// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/modconsole/internal/app/store/audit"
	"github.com/dalemusser/modconsole/internal/app/system/viewdata"
)

// listItem represents a single audit event row for display.
type listItem struct {
	Timestamp time.Time
	Category  string
	EventType string
	ActorID   string
	UserID    string
	Target    string // resource/id for admin actions
	IP        string
	Success   bool
	Reason    string
	Details   map[string]string
}

// listData is the view model for the audit log list page.
type listData struct {
	viewdata.BaseVM

	Enabled bool
	Items   []listItem

	// Filters
	Category  string
	EventType string
	Resource  string
	StartDate string
	EndDate   string

	// Filter options
	Categories []categoryOption
	EventTypes []string
	Resources  []string

	// Pagination
	Page       int
	TotalPages int
	Total      int64
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
}

// categoryOption represents a category for the filter dropdown.
type categoryOption struct {
	Value string
	Label string
}

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
	}
}

// resources lists the screens whose actions are audited.
var resources = []string{"users", "venues", "events", "documents", "teams", "coaches", "tickets"}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventCodeRequested,
		audit.EventCodeRequestFailed,
		audit.EventLoginSuccess,
		audit.EventLoginFailedCode,
		audit.EventLoginDeniedNotAdmin,
		audit.EventLoginRateLimited,
		audit.EventLogout,
		audit.EventSessionRevoked,
	}

	adminEvents := []string{
		audit.EventActionPerformed,
		audit.EventActionFailed,
		audit.EventBulkAction,
		audit.EventExport,
		audit.EventDownload,
		audit.EventPreferencesChanged,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		return all
	default:
		return nil
	}
}
