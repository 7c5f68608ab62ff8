package enums

import "strings"

// Role is a system authority grant, independent of content capabilities.
type Role string

const (
	RoleSuperAdmin       Role = "SUPER_ADMIN"
	RoleAdmin            Role = "ADMIN"
	RoleAreaModerator    Role = "AREA_MODERATOR"
	RoleContentVolunteer Role = "CONTENT_VOLUNTEER"
)

var roles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleAreaModerator,
	RoleContentVolunteer,
}

func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	return r, r.Valid()
}
