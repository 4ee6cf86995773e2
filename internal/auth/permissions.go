package auth

import (
	"sort"
	"strings"
)

// Permission keys checked on protected routes and seeded into roles.
const (
	PermListBooks   = "canListBooks"
	PermAddBooks    = "canAddBooks"
	PermUpdateBooks = "canUpdateBooks"
	PermDeleteBooks = "canDeleteBooks"
	PermListUsers   = "canListUsers"
	PermEditUsers   = "canEditAnyUser"
)

// DefaultRole is assigned to users created through registration.
const DefaultRole = "customer"

// MergePermissions returns the union of the role's permissions and the
// user's own overrides, deduplicated and sorted. Overrides can only add
// capabilities; revocation stays a role-level concern.
func MergePermissions(user *User, role *Role) []string {
	seen := make(map[string]struct{})
	add := func(perms []string) {
		for _, p := range perms {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			seen[p] = struct{}{}
		}
	}
	if role != nil {
		add(role.Permissions)
	}
	if user != nil {
		add(user.Permissions)
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
