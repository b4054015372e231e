// internal/app/system/authz/roles.go
package authz

import "strings"

// AdminRoleNames are the role names that grant console access regardless of
// the configured role ids.
var AdminRoleNames = []string{"admin", "superadmin", "super_admin", "administrator"}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// ParseRoleIDs splits a comma-separated list of role ids, dropping blanks.
func ParseRoleIDs(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
