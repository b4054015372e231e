// internal/domain/models/coach.go
package models

import "time"

// Coach is a coach profile awaiting or holding verification.
type Coach struct {
	ID                 string
	Name               *string
	Email              *string
	Specialty          *string
	ExperienceYears    *int
	VerificationStatus *string // pending | verified | rejected
	Notes              *string
	CreatedAt          *time.Time
}

// CoachFromRaw maps a backend payload to a Coach. Coach rows often wrap the
// account in a nested user object, so name and email fall back to it.
func CoachFromRaw(r Raw) Coach {
	c := Coach{
		ID:                 r.ID(),
		Name:               personName(r),
		Email:              optString(r, "email"),
		Specialty:          optString(r, "specialty", "specialization", "sport"),
		ExperienceYears:    optInt(r, "experience_years", "years_of_experience"),
		VerificationStatus: optString(r, "verification_status", "status"),
		Notes:              optString(r, "verification_notes", "notes"),
		CreatedAt:          optTime(r, "created_at"),
	}
	if user, ok := r.Object("user"); ok {
		if c.Name == nil {
			c.Name = personName(user)
		}
		if c.Email == nil {
			c.Email = optString(user, "email")
		}
	}
	return c
}
