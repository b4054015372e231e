// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/modconsole/internal/app/system/auth"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

// Policy decides who may use the console.
type Policy struct {
	roleIDs map[string]struct{}
	names   map[string]struct{}
}

// NewPolicy returns a policy admitting users whose role id is one of
// adminRoleIDs or whose role name is one of AdminRoleNames.
func NewPolicy(adminRoleIDs []string) Policy {
	p := Policy{
		roleIDs: make(map[string]struct{}, len(adminRoleIDs)),
		names:   make(map[string]struct{}, len(AdminRoleNames)),
	}
	for _, id := range adminRoleIDs {
		if id = normalizeRole(id); id != "" {
			p.roleIDs[id] = struct{}{}
		}
	}
	for _, n := range AdminRoleNames {
		p.names[n] = struct{}{}
	}
	return p
}

// IsAdmin reports whether the role id or name grants admin access.
// Names compare case-insensitively.
func (p Policy) IsAdmin(roleID, roleName string) bool {
	if id := normalizeRole(roleID); id != "" {
		if _, ok := p.roleIDs[id]; ok {
			return true
		}
	}
	_, ok := p.names[normalizeRole(roleName)]
	return ok
}

// IsAdminUser classifies a user returned by the backend.
func (p Policy) IsAdminUser(u models.User) bool {
	var id string
	if u.RoleID != nil {
		id = *u.RoleID
	}
	return p.IsAdmin(id, u.Role())
}

// IsAdminSession classifies the signed-in user.
func (p Policy) IsAdminSession(u *auth.SessionUser) bool {
	return u != nil && p.IsAdmin(u.RoleID, u.Role)
}

// IsAdminRequest reports whether the current request's user is an admin.
func (p Policy) IsAdminRequest(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && p.IsAdminSession(u)
}

// RequireAdmin gates every console route: not signed in goes to /login,
// signed in without an admin role gets the forbidden page.
func RequireAdmin(sm *auth.SessionManager, p Policy) func(http.Handler) http.Handler {
	return sm.Require(p.IsAdminSession)
}
