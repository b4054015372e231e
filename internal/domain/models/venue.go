// internal/domain/models/venue.go
package models

import "time"

// Venue is a place listed by an organizer and moderated by admins.
type Venue struct {
	ID         string
	Name       *string
	City       *string
	Address    *string
	Capacity   *int
	OwnerName  *string
	OwnerEmail *string
	Status     *string // pending | approved | rejected
	Notes      *string
	CreatedAt  *time.Time
}

// VenueFromRaw maps a backend payload to a Venue.
func VenueFromRaw(r Raw) Venue {
	v := Venue{
		ID:        r.ID(),
		Name:      optString(r, "name", "title"),
		City:      optString(r, "city", "location.city"),
		Address:   optString(r, "address", "location.address"),
		Capacity:  optInt(r, "capacity", "max_capacity"),
		Status:    optString(r, "status", "approval_status"),
		Notes:     optString(r, "notes", "rejection_reason"),
		CreatedAt: optTime(r, "created_at"),
	}
	if owner, ok := r.Object("owner"); ok {
		v.OwnerName = personName(owner)
		v.OwnerEmail = optString(owner, "email")
	} else {
		v.OwnerName = optString(r, "owner_name")
		v.OwnerEmail = optString(r, "owner_email")
	}
	return v
}
