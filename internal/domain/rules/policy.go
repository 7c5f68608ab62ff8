package rules

import "github.com/zilaportal/portal/internal/domain/enums"

// Capability is either a user type or a role name; both live in one namespace
// so CONTENT_VOLUNTEER matches whether it was granted as a type or a role.
type Capability string

type Verb string

const (
	VerbViewPublic    Verb = "view_public"
	VerbViewProfile   Verb = "view_profile"
	VerbListOwn       Verb = "list_own"
	VerbRequestAccess Verb = "request_access"
	VerbCreate        Verb = "create"
	VerbUpdate        Verb = "update"
	VerbDelete        Verb = "delete"
	VerbApprove       Verb = "approve"
	VerbReject        Verb = "reject"
	VerbViewPending   Verb = "view_pending"
	VerbManage        Verb = "manage"
)

type Resource string

const (
	ResourceAccessRequests Resource = "access-requests"
	ResourceUsers          Resource = "users"
	ResourceUpazilas       Resource = "upazilas"
	ResourceSliders        Resource = "sliders"
	ResourceSettings       Resource = "settings"
	ResourceProfile        Resource = "profile"
	ResourceAudit          Resource = "audit"
)

func KindResource(kind enums.SubmittableKind) Resource {
	return Resource(kind)
}

type Action struct {
	Verb     Verb
	Resource Resource
	// OwnerID is the owner of the targeted item, used by update.
	OwnerID string
}

var adminCapabilities = []Capability{
	Capability(enums.RoleAdmin),
	Capability(enums.RoleSuperAdmin),
}

var createCapabilities = map[enums.SubmittableKind][]Capability{
	enums.KindHospital:     nil,
	enums.KindHomeTutor:    {Capability(enums.UserTypeHomeTutor)},
	enums.KindToLet:        {Capability(enums.UserTypeToLetOwner)},
	enums.KindBusiness:     {Capability(enums.UserTypeBusinessOwner)},
	enums.KindTouristPlace: {Capability(enums.UserTypeContentVolunteer)},
	enums.KindBlog:         {Capability(enums.UserTypeContentVolunteer)},
}

// RequiredCapabilities lists the capabilities, any one of which allows creating
// content of the given kind. Admin roles are always included.
func RequiredCapabilities(kind enums.SubmittableKind) []Capability {
	specific, ok := createCapabilities[kind]
	if !ok {
		return nil
	}
	out := make([]Capability, 0, len(specific)+len(adminCapabilities))
	out = append(out, specific...)
	return append(out, adminCapabilities...)
}

// Authorize decides whether p may perform a. A nil result allows the action.
func Authorize(p Principal, a Action) error {
	if a.Verb == VerbViewPublic {
		return nil
	}
	if !p.Authenticated() {
		return ErrAuthenticationRequired
	}
	if a.Verb == VerbViewProfile {
		return nil
	}
	if !p.Active() {
		return ErrAccountInactive
	}

	switch a.Verb {
	case VerbListOwn, VerbRequestAccess:
		return nil
	case VerbCreate:
		return authorizeCreate(p, enums.SubmittableKind(a.Resource))
	case VerbUpdate:
		if p.IsAdmin() || (a.OwnerID != "" && a.OwnerID == p.UserID) {
			return nil
		}
	case VerbDelete, VerbManage:
		if p.IsAdmin() {
			return nil
		}
	case VerbApprove, VerbReject, VerbViewPending:
		if p.IsModerator() {
			return nil
		}
	}

	return ErrAuthorizationDenied
}

func authorizeCreate(p Principal, kind enums.SubmittableKind) error {
	required := RequiredCapabilities(kind)
	if len(required) == 0 {
		return ErrAuthorizationDenied
	}
	if len(p.UserTypes) == 0 && len(p.Roles) == 0 {
		return ErrNoCapability
	}
	for _, c := range required {
		if p.holds(c) {
			return nil
		}
	}
	return ErrAuthorizationDenied
}

// CanGrantRoles reports whether granter may assign every role in roles.
// Admin tier roles are reserved to super admins.
func CanGrantRoles(granter Principal, roles []enums.Role) error {
	if !granter.Authenticated() {
		return ErrAuthenticationRequired
	}
	if !granter.IsAdmin() || !granter.Active() {
		return ErrAuthorizationDenied
	}
	for _, r := range roles {
		if !r.Valid() {
			return NewValidationError("roles", "contains an unknown role")
		}
		if (r == enums.RoleAdmin || r == enums.RoleSuperAdmin) && !granter.HasRole(enums.RoleSuperAdmin) {
			return ErrAuthorizationDenied
		}
	}
	return nil
}

// CanManageAccount reports whether actor may change the status of an account
// holding roles. Admin tier accounts are managed by super admins only.
func CanManageAccount(actor Principal, roles []enums.Role) error {
	if err := Authorize(actor, Action{Verb: VerbManage, Resource: ResourceUsers}); err != nil {
		return err
	}
	for _, r := range roles {
		if (r == enums.RoleAdmin || r == enums.RoleSuperAdmin) && !actor.HasRole(enums.RoleSuperAdmin) {
			return ErrAuthorizationDenied
		}
	}
	return nil
}
