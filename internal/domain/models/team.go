// internal/domain/models/team.go
package models

import "time"

// Team is a registered team awaiting or holding verification.
type Team struct {
	ID                 string
	Name               *string
	Sport              *string
	CaptainName        *string
	Members            *int
	VerificationStatus *string // pending | verified | rejected
	Notes              *string
	CreatedAt          *time.Time
}

// TeamFromRaw maps a backend payload to a Team.
func TeamFromRaw(r Raw) Team {
	t := Team{
		ID:                 r.ID(),
		Name:               optString(r, "name", "team_name"),
		Sport:              optString(r, "sport", "sport.name", "category"),
		Members:            optInt(r, "members_count", "member_count"),
		VerificationStatus: optString(r, "verification_status", "status"),
		Notes:              optString(r, "verification_notes", "notes"),
		CreatedAt:          optTime(r, "created_at"),
	}
	if captain, ok := r.Object("captain"); ok {
		t.CaptainName = personName(captain)
	} else {
		t.CaptainName = optString(r, "captain_name")
	}
	if t.Members == nil {
		if ms := r.Objects("members"); ms != nil {
			n := len(ms)
			t.Members = &n
		}
	}
	return t
}
