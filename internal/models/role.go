package models

import "strings"

// Role is the closed set of identity roles.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleNGO       Role = "ngo"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleDonor, RoleNGO, RoleVolunteer, RoleAdmin}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

func (r Role) IsValid() bool {
	switch r {
	case RoleDonor, RoleNGO, RoleVolunteer, RoleAdmin:
		return true
	default:
		return false
	}
}

// SelfRegistrable reports whether the role can be chosen at public registration.
// Admin identities are created out of band.
func (r Role) SelfRegistrable() bool {
	return r.IsValid() && r != RoleAdmin
}
