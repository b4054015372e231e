// internal/domain/models/user.go
package models

import (
	"strings"
	"time"
)

// User is an account as returned by GET /admin/users and by the OTP
// verification endpoint.
//
// Role is reported in several shapes depending on the endpoint: a plain
// string ("role": "admin"), a nested object ("role": {"id": 1, "name": "admin"}),
// or a separate role_id. RoleID and RoleName are filled from whichever is present.
type User struct {
	ID          string
	Name        *string
	Email       *string
	Phone       *string
	RoleID      *string
	RoleName    *string
	Status      *string // active | banned | pending
	Verified    *bool
	CreatedAt   *time.Time
	LastLoginAt *time.Time
}

// UserFromRaw maps a backend payload to a User.
func UserFromRaw(r Raw) User {
	u := User{
		ID:          r.ID(),
		Name:        personName(r),
		Email:       optString(r, "email"),
		Phone:       optString(r, "phone", "phone_number"),
		RoleID:      optString(r, "role_id", "role.id"),
		Status:      optString(r, "status", "account_status"),
		Verified:    optBool(r, "is_verified", "verified", "email_verified"),
		CreatedAt:   optTime(r, "created_at", "createdAt"),
		LastLoginAt: optTime(r, "last_login_at", "last_login"),
	}
	if role, ok := r.Object("role"); ok {
		u.RoleName = optString(role, "name", "slug")
	} else {
		u.RoleName = optString(r, "role", "role_name")
	}
	return u
}

// DisplayName prefers the name, then the email, then Missing.
func (u User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return Display(u.Email)
}

// Role returns the lowercased role name, or "" when the backend sent none.
func (u User) Role() string {
	if u.RoleName == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*u.RoleName))
}
