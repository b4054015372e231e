// internal/domain/models/event.go
package models

import "time"

// Event is a scheduled event, possibly held at a Venue.
type Event struct {
	ID        string
	Title     *string
	VenueName *string
	Organizer *string
	StartsAt  *time.Time
	EndsAt    *time.Time
	Status    *string // draft | published | cancelled | pending
	Attendees *int
	CreatedAt *time.Time
}

// EventFromRaw maps a backend payload to an Event.
func EventFromRaw(r Raw) Event {
	e := Event{
		ID:        r.ID(),
		Title:     optString(r, "title", "name"),
		StartsAt:  optTime(r, "starts_at", "start_date", "start_time", "date"),
		EndsAt:    optTime(r, "ends_at", "end_date", "end_time"),
		Status:    optString(r, "status"),
		Attendees: optInt(r, "attendees_count", "attendees", "registrations_count"),
		CreatedAt: optTime(r, "created_at"),
	}
	if venue, ok := r.Object("venue"); ok {
		e.VenueName = optString(venue, "name", "title")
	} else {
		e.VenueName = optString(r, "venue_name", "location")
	}
	if org, ok := r.Object("organizer"); ok {
		e.Organizer = personName(org)
	} else {
		e.Organizer = optString(r, "organizer_name", "organizer")
	}
	return e
}
