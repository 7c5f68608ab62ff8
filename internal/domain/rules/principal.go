package rules

import "github.com/zilaportal/portal/internal/domain/enums"

// Principal is the identity an authorization decision is made for. The zero
// value is an anonymous caller.
type Principal struct {
	UserID    string
	UserTypes []enums.UserType
	Roles     []enums.Role
	Status    enums.ApprovalStatus
}

func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

func (p Principal) HasType(t enums.UserType) bool {
	for _, held := range p.UserTypes {
		if held == t {
			return true
		}
	}
	return false
}

func (p Principal) HasRole(roles ...enums.Role) bool {
	for _, held := range p.Roles {
		for _, want := range roles {
			if held == want {
				return true
			}
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(enums.RoleAdmin, enums.RoleSuperAdmin)
}

func (p Principal) IsModerator() bool {
	return p.HasRole(enums.RoleAdmin, enums.RoleSuperAdmin, enums.RoleAreaModerator)
}

// Active reports whether the account may act. Suspended and rejected accounts
// keep read access to their own profile only.
func (p Principal) Active() bool {
	return p.Status != enums.ApprovalStatusSuspended && p.Status != enums.ApprovalStatusRejected
}

// Capabilities returns the union of user types and roles.
func (p Principal) Capabilities() []Capability {
	seen := make(map[Capability]struct{}, len(p.UserTypes)+len(p.Roles))
	out := make([]Capability, 0, len(p.UserTypes)+len(p.Roles))
	add := func(c Capability) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, t := range p.UserTypes {
		add(Capability(t))
	}
	for _, r := range p.Roles {
		add(Capability(r))
	}
	return out
}

func (p Principal) holds(c Capability) bool {
	for _, held := range p.Capabilities() {
		if held == c {
			return true
		}
	}
	return false
}
