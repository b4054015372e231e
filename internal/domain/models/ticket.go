// internal/domain/models/ticket.go
package models

import "time"

// Ticket is a support ticket raised by a user.
type Ticket struct {
	ID            string
	Subject       *string
	RequesterName *string
	Email         *string
	Status        *string // open | pending | resolved | closed
	Priority      *string // low | medium | high | urgent
	Attachment    *string
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
}

// TicketFromRaw maps a backend payload to a Ticket.
func TicketFromRaw(r Raw) Ticket {
	t := Ticket{
		ID:         r.ID(),
		Subject:    optString(r, "subject", "title"),
		Status:     optString(r, "status"),
		Priority:   optString(r, "priority"),
		Attachment: optString(r, "attachment", "attachment_name", "file_name"),
		CreatedAt:  optTime(r, "created_at"),
		UpdatedAt:  optTime(r, "updated_at"),
	}
	if user, ok := r.Object("user"); ok {
		t.RequesterName = personName(user)
		t.Email = optString(user, "email")
	} else {
		t.RequesterName = optString(r, "requester_name", "name")
		t.Email = optString(r, "email", "requester_email")
	}
	return t
}
