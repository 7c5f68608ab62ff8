package users_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/rules"
	"github.com/zilaportal/portal/internal/repo/memory"
	"github.com/zilaportal/portal/internal/services/accessrequests"
	authsvc "github.com/zilaportal/portal/internal/services/auth"
	"github.com/zilaportal/portal/internal/services/users"
)

type fixture struct {
	svc      *users.Service
	requests *memory.AccessRequestRepo
	admin    rules.Principal
	super    rules.Principal
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db := memory.New()
	userRepo := memory.NewUserRepo(db)
	requestRepo := memory.NewAccessRequestRepo(db)
	access := accessrequests.NewService(accessrequests.Dependencies{Store: requestRepo, Users: userRepo})
	svc := users.NewService(users.Dependencies{Store: userRepo, Access: access})

	return fixture{
		svc:      svc,
		requests: requestRepo,
		admin:    rules.Principal{UserID: "admin", Roles: []enums.Role{enums.RoleAdmin}, Status: enums.ApprovalStatusApproved},
		super:    rules.Principal{UserID: "super", Roles: []enums.Role{enums.RoleSuperAdmin}, Status: enums.ApprovalStatusApproved},
	}
}

func register(t *testing.T, f fixture, email string, types ...enums.UserType) users.Registration {
	t.Helper()
	reg, err := f.svc.Register(context.Background(), users.RegisterInput{
		Email:     email,
		Password:  "correct-horse",
		FullName:  "Test User",
		UserTypes: types,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return reg
}

func TestRegisterWithoutTypes(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f, "Rahim@Example.com")

	if reg.User.ApprovalStatus != enums.ApprovalStatusPending {
		t.Fatalf("unexpected status: %s", reg.User.ApprovalStatus)
	}
	if len(reg.User.UserTypes) != 0 || len(reg.User.Roles) != 0 {
		t.Fatalf("new account must hold nothing: types=%v roles=%v", reg.User.UserTypes, reg.User.Roles)
	}
	if reg.User.Email != "rahim@example.com" {
		t.Fatalf("email should be normalized, got %s", reg.User.Email)
	}
	if reg.Request != nil {
		t.Fatalf("no access request expected")
	}
	if reg.User.PasswordHash == "" || reg.User.PasswordHash == "correct-horse" {
		t.Fatalf("password must be hashed")
	}
}

func TestRegisterSplitsGrantedAndRequestedTypes(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f, "tutor@example.com", enums.UserTypeGeneralUser, enums.UserTypeHomeTutor)

	if len(reg.User.UserTypes) != 1 || reg.User.UserTypes[0] != enums.UserTypeGeneralUser {
		t.Fatalf("only GENERAL_USER should be granted, got %v", reg.User.UserTypes)
	}
	if reg.Request == nil {
		t.Fatalf("expected an initial access request")
	}
	if len(reg.Request.RequestedUserTypes) != 1 || reg.Request.RequestedUserTypes[0] != enums.UserTypeHomeTutor {
		t.Fatalf("unexpected requested types: %v", reg.Request.RequestedUserTypes)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    users.RegisterInput
		field string
	}{
		{name: "missing email", in: users.RegisterInput{Password: "long-enough", FullName: "A"}, field: "email"},
		{name: "bad email", in: users.RegisterInput{Email: "nope", Password: "long-enough", FullName: "A"}, field: "email"},
		{name: "missing name", in: users.RegisterInput{Email: "a@b.co", Password: "long-enough"}, field: "fullName"},
		{name: "short password", in: users.RegisterInput{Email: "a@b.co", Password: "short", FullName: "A"}, field: "password"},
		{name: "unknown type", in: users.RegisterInput{Email: "a@b.co", Password: "long-enough", FullName: "A", UserTypes: []enums.UserType{"PILOT"}}, field: "userTypes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tc.in)
			var verr *rules.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("unexpected field: got %s want %s", verr.Field, tc.field)
			}
		})
	}

	register(t, f, "dup@example.com")
	if _, err := f.svc.Register(ctx, users.RegisterInput{Email: "DUP@example.com", Password: "long-enough", FullName: "B"}); !errors.Is(err, rules.ErrConflict) {
		t.Fatalf("duplicate email: got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := register(t, f, "login@example.com")

	user, err := f.svc.Authenticate(ctx, " LOGIN@example.com ", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != reg.User.ID {
		t.Fatalf("unexpected user: got %s want %s", user.ID, reg.User.ID)
	}
	if _, err := f.svc.Authenticate(ctx, "login@example.com", "wrong-horse"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := f.svc.Authenticate(ctx, "ghost@example.com", "correct-horse"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", err)
	}
}

func TestUserStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := register(t, f, "flow@example.com").User.ID

	if _, err := f.svc.SuspendUser(ctx, f.admin, id); !errors.Is(err, rules.ErrInvalidTransition) {
		t.Fatalf("suspend pending: got %v", err)
	}

	approved, err := f.svc.ApproveUser(ctx, f.admin, id)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ApprovalStatus != enums.ApprovalStatusApproved {
		t.Fatalf("unexpected status: %s", approved.ApprovalStatus)
	}
	if _, err := f.svc.ApproveUser(ctx, f.admin, id); !errors.Is(err, rules.ErrInvalidTransition) {
		t.Fatalf("re-approve: got %v", err)
	}

	suspended, err := f.svc.SuspendUser(ctx, f.admin, id)
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if suspended.ApprovalStatus != enums.ApprovalStatusSuspended {
		t.Fatalf("unexpected status: %s", suspended.ApprovalStatus)
	}
	if _, err := f.svc.ApproveUser(ctx, f.admin, id); !errors.Is(err, rules.ErrInvalidTransition) {
		t.Fatalf("reactivation must be refused, got %v", err)
	}

	if err := rules.Authorize(suspended.Principal(), rules.Action{Verb: rules.VerbCreate, Resource: rules.KindResource(enums.KindBlog)}); err == nil {
		t.Fatalf("suspended user must not create content")
	}
}

func TestRejectPendingUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := register(t, f, "reject@example.com").User.ID

	rejected, err := f.svc.RejectUser(ctx, f.admin, id)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.ApprovalStatus != enums.ApprovalStatusRejected {
		t.Fatalf("unexpected status: %s", rejected.ApprovalStatus)
	}
	if _, err := f.svc.ApproveUser(ctx, f.admin, id); !errors.Is(err, rules.ErrInvalidTransition) {
		t.Fatalf("approve after reject: got %v", err)
	}
}

func TestModeratorCannotManageAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := register(t, f, "queued@example.com").User.ID
	moderator := rules.Principal{UserID: "mod", Roles: []enums.Role{enums.RoleAreaModerator}, Status: enums.ApprovalStatusApproved}

	if _, err := f.svc.ApproveUser(ctx, moderator, id); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("moderator approve: got %v", err)
	}
	if _, err := f.svc.RejectUser(ctx, moderator, id); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("moderator reject: got %v", err)
	}
	if _, err := f.svc.SuspendUser(ctx, moderator, id); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("moderator suspend: got %v", err)
	}
	if _, err := f.svc.Pending(ctx, moderator, 0, 0); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("moderator pending: got %v", err)
	}
	if _, err := f.svc.CountByStatus(ctx, moderator); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("moderator count: got %v", err)
	}

	me, err := f.svc.Me(ctx, rules.Principal{UserID: id, Status: enums.ApprovalStatusPending})
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.ApprovalStatus != enums.ApprovalStatusPending {
		t.Fatalf("account must stay pending, got %s", me.ApprovalStatus)
	}
}

func TestAdminTierAccountsNeedSuperAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.svc.CreateUser(ctx, f.super, users.CreateInput{
		Email:    "second-admin@example.com",
		Password: "long-enough",
		FullName: "Second Admin",
		Roles:    []enums.Role{enums.RoleAdmin},
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	if _, err := f.svc.SuspendUser(ctx, f.admin, other.ID); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("admin suspending admin: got %v", err)
	}
	if _, err := f.svc.RejectUser(ctx, f.admin, other.ID); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("admin rejecting admin: got %v", err)
	}

	suspended, err := f.svc.SuspendUser(ctx, f.super, other.ID)
	if err != nil {
		t.Fatalf("super admin suspend: %v", err)
	}
	if suspended.ApprovalStatus != enums.ApprovalStatusSuspended {
		t.Fatalf("unexpected status: %s", suspended.ApprovalStatus)
	}
}

func TestStatusChangesRequireAuthority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := register(t, f, "self@example.com")

	if _, err := f.svc.ApproveUser(ctx, reg.User.Principal(), reg.User.ID); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("self approve: got %v", err)
	}
	if _, err := f.svc.ApproveUser(ctx, rules.Principal{}, reg.User.ID); !errors.Is(err, rules.ErrAuthenticationRequired) {
		t.Fatalf("anonymous approve: got %v", err)
	}
	if _, err := f.svc.SuspendUser(ctx, f.admin, f.admin.UserID); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("admin self suspend: got %v", err)
	}
	if _, err := f.svc.ApproveUser(ctx, f.admin, "missing"); !errors.Is(err, rules.ErrNotFound) {
		t.Fatalf("missing user: got %v", err)
	}
}

func TestCreateUserRoleGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := users.CreateInput{
		Email:    "mod@example.com",
		Password: "long-enough",
		FullName: "Moderator",
		Roles:    []enums.Role{enums.RoleAreaModerator},
	}
	created, err := f.svc.CreateUser(ctx, f.admin, in)
	if err != nil {
		t.Fatalf("create moderator: %v", err)
	}
	if created.ApprovalStatus != enums.ApprovalStatusApproved {
		t.Fatalf("admin created accounts start approved, got %s", created.ApprovalStatus)
	}

	in.Email = "admin2@example.com"
	in.Roles = []enums.Role{enums.RoleAdmin}
	if _, err := f.svc.CreateUser(ctx, f.admin, in); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("admin granting admin: got %v", err)
	}
	if _, err := f.svc.CreateUser(ctx, f.super, in); err != nil {
		t.Fatalf("super admin granting admin: %v", err)
	}

	plain := rules.Principal{UserID: "u", UserTypes: []enums.UserType{enums.UserTypeGeneralUser}}
	in.Email = "other@example.com"
	in.Roles = nil
	if _, err := f.svc.CreateUser(ctx, plain, in); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("non admin create: got %v", err)
	}
}

func TestListingAndBootstrap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	register(t, f, "one@example.com")
	register(t, f, "two@example.com")

	created, err := f.svc.EnsureBootstrapAdmin(ctx, "root@example.com", "bootstrap-pass", "")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !created {
		t.Fatalf("expected bootstrap admin to be created")
	}
	again, err := f.svc.EnsureBootstrapAdmin(ctx, "root@example.com", "bootstrap-pass", "")
	if err != nil || again {
		t.Fatalf("bootstrap must be idempotent: created=%v err=%v", again, err)
	}

	pending, err := f.svc.Pending(ctx, f.admin, 0, 0)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("unexpected pending count: got %d want 2", len(pending))
	}

	all, err := f.svc.List(ctx, f.admin, nil, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unexpected user count: got %d want 3", len(all))
	}

	counts, err := f.svc.CountByStatus(ctx, f.admin)
	if err != nil {
		t.Fatalf("count by status: %v", err)
	}
	if counts[enums.ApprovalStatusPending] != 2 || counts[enums.ApprovalStatusApproved] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	me, err := f.svc.Me(ctx, pending[0].Principal())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.ID != pending[0].ID {
		t.Fatalf("unexpected me: %s", me.ID)
	}
}
