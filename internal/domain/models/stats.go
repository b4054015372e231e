// internal/domain/models/stats.go
package models

// VerificationStats are the per-status counts shown above the documents,
// teams, and coaches screens.
type VerificationStats struct {
	Total    *int
	Pending  *int
	Verified *int
	Rejected *int
}

// VerificationStatsFromRaw accepts both flat counts and a nested
// {"stats": {...}} or {"data": {...}} wrapper.
func VerificationStatsFromRaw(r Raw) VerificationStats {
	for _, k := range []string{"stats", "data"} {
		if inner, ok := r.Object(k); ok {
			r = inner
			break
		}
	}
	return VerificationStats{
		Total:    optInt(r, "total", "total_count"),
		Pending:  optInt(r, "pending", "pending_count"),
		Verified: optInt(r, "verified", "verified_count", "approved"),
		Rejected: optInt(r, "rejected", "rejected_count"),
	}
}

// DashboardStats are the totals from GET /admin/stats.
type DashboardStats struct {
	Users         *int
	ActiveUsers   *int
	Venues        *int
	PendingVenues *int
	Events        *int
	Documents     *int
	PendingDocs   *int
	OpenTickets   *int
	Teams         *int
	Coaches       *int
}

// DashboardStatsFromRaw maps the stats payload; totals may be nested under
// "data".
func DashboardStatsFromRaw(r Raw) DashboardStats {
	if inner, ok := r.Object("data"); ok {
		r = inner
	}
	return DashboardStats{
		Users:         optInt(r, "total_users", "users", "users.total"),
		ActiveUsers:   optInt(r, "active_users", "users.active"),
		Venues:        optInt(r, "total_venues", "venues", "venues.total"),
		PendingVenues: optInt(r, "pending_venues", "venues.pending"),
		Events:        optInt(r, "total_events", "events", "events.total"),
		Documents:     optInt(r, "total_documents", "documents", "documents.total"),
		PendingDocs:   optInt(r, "pending_documents", "documents.pending"),
		OpenTickets:   optInt(r, "open_tickets", "tickets.open"),
		Teams:         optInt(r, "total_teams", "teams", "teams.total"),
		Coaches:       optInt(r, "total_coaches", "coaches", "coaches.total"),
	}
}
