package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
	"github.com/zilaportal/portal/internal/infra/metrics"
	"github.com/zilaportal/portal/internal/pkg/validate"
	"github.com/zilaportal/portal/internal/services/audit"
	authsvc "github.com/zilaportal/portal/internal/services/auth"
)

type Store interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context, filter model.UserFilter) ([]model.User, error)
	// UpdateStatus moves the user to `to` only when the current status is one
	// of from, and reports a *rules.TransitionError otherwise.
	UpdateStatus(ctx context.Context, id string, from []enums.ApprovalStatus, to enums.ApprovalStatus, at time.Time) (model.User, error)
	CountByStatus(ctx context.Context) (map[enums.ApprovalStatus]int, error)
}

// AccessRequester files the access request for types asked for at sign up.
type AccessRequester interface {
	OpenInitial(ctx context.Context, user model.User, requested []enums.UserType, note string) (model.AccessRequest, error)
}

type Notifier interface {
	AccountStatusChanged(ctx context.Context, user model.User)
}

type Dependencies struct {
	Store    Store
	Access   AccessRequester
	Notifier Notifier
	Audit    *audit.Service
	Logger   *zap.Logger
}

type Service struct {
	store    Store
	access   AccessRequester
	notifier Notifier
	audit    *audit.Service
	log      *zap.Logger
	now      func() time.Time
}

type RegisterInput struct {
	Email     string
	Password  string
	FullName  string
	Phone     string
	UserTypes []enums.UserType
	Note      string
}

type CreateInput struct {
	Email     string
	Password  string
	FullName  string
	Phone     string
	UserTypes []enums.UserType
	Roles     []enums.Role
}

// Registration reports the new account and, when types beyond GENERAL_USER
// were asked for, the access request filed for them.
type Registration struct {
	User    model.User
	Request *model.AccessRequest
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    deps.Store,
		access:   deps.Access,
		notifier: deps.Notifier,
		audit:    deps.Audit,
		log:      log,
		now:      time.Now,
	}
}

// Register creates a PENDING account. GENERAL_USER is granted immediately;
// every other requested type goes through an access request.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Registration, error) {
	if err := s.ready(); err != nil {
		return Registration{}, err
	}

	requested, err := rules.NormalizeUserTypes(in.UserTypes)
	if err != nil {
		return Registration{}, err
	}
	granted := make([]enums.UserType, 0, 1)
	pending := make([]enums.UserType, 0, len(requested))
	for _, t := range requested {
		if t == enums.UserTypeGeneralUser {
			granted = append(granted, t)
			continue
		}
		pending = append(pending, t)
	}

	user, err := s.newUser(in.Email, in.Password, in.FullName, in.Phone)
	if err != nil {
		return Registration{}, err
	}
	user.UserTypes = granted
	user.Roles = []enums.Role{}
	user.ApprovalStatus = enums.ApprovalStatusPending

	created, err := s.store.Create(ctx, user)
	if err != nil {
		return Registration{}, s.wrapCreate(err)
	}

	s.audit.Record(ctx, created.ID, audit.ActionUserRegistered, string(rules.ResourceUsers), created.ID, map[string]any{
		"user_types": created.UserTypes,
	})
	s.log.Info("user registered", zap.String("user_id", created.ID))

	out := Registration{User: created}
	if len(pending) > 0 && s.access != nil {
		req, err := s.access.OpenInitial(ctx, created, pending, in.Note)
		if err != nil {
			s.log.Error("open initial access request", zap.String("user_id", created.ID), zap.Error(err))
		} else {
			out.Request = &req
		}
	}
	return out, nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// both report authsvc.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	if err := s.ready(); err != nil {
		return model.User{}, err
	}

	user, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, rules.ErrNotFound) {
			return model.User{}, authsvc.ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("load user by email: %w", err)
	}
	if err := authsvc.CheckPassword(user.PasswordHash, password); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// CreateUser lets an admin open an already approved account with the given
// types and roles.
func (s *Service) CreateUser(ctx context.Context, p rules.Principal, in CreateInput) (model.User, error) {
	if err := s.ready(); err != nil {
		return model.User{}, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbManage, Resource: rules.ResourceUsers}); err != nil {
		return model.User{}, err
	}
	roles := dedupeRoles(in.Roles)
	if err := rules.CanGrantRoles(p, roles); err != nil {
		return model.User{}, err
	}
	types, err := rules.NormalizeUserTypes(in.UserTypes)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.newUser(in.Email, in.Password, in.FullName, in.Phone)
	if err != nil {
		return model.User{}, err
	}
	user.UserTypes = types
	user.Roles = roles
	user.ApprovalStatus = enums.ApprovalStatusApproved

	created, err := s.store.Create(ctx, user)
	if err != nil {
		return model.User{}, s.wrapCreate(err)
	}

	s.audit.Record(ctx, p.UserID, audit.ActionUserCreated, string(rules.ResourceUsers), created.ID, map[string]any{
		"user_types": created.UserTypes,
		"roles":      created.Roles,
	})
	return created, nil
}

// EnsureBootstrapAdmin creates the first SUPER_ADMIN when no account uses
// email yet. It reports whether an account was created.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, email, password, fullName string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return false, nil
	}

	if _, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email))); err == nil {
		return false, nil
	} else if !errors.Is(err, rules.ErrNotFound) {
		return false, fmt.Errorf("check bootstrap admin: %w", err)
	}

	if strings.TrimSpace(fullName) == "" {
		fullName = "Super Admin"
	}
	user, err := s.newUser(email, password, fullName, "")
	if err != nil {
		return false, err
	}
	user.UserTypes = []enums.UserType{}
	user.Roles = []enums.Role{enums.RoleSuperAdmin}
	user.ApprovalStatus = enums.ApprovalStatusApproved

	if _, err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, rules.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	s.log.Info("bootstrap admin created", zap.String("email", user.Email))
	return true, nil
}

func (s *Service) Me(ctx context.Context, p rules.Principal) (model.User, error) {
	if err := s.ready(); err != nil {
		return model.User{}, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbViewProfile, Resource: rules.ResourceProfile}); err != nil {
		return model.User{}, err
	}
	return s.store.GetByID(ctx, p.UserID)
}

func (s *Service) List(ctx context.Context, p rules.Principal, status *enums.ApprovalStatus, limit, offset int) ([]model.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbManage, Resource: rules.ResourceUsers}); err != nil {
		return nil, err
	}
	limit, offset = model.NormalizePage(limit, offset)
	return s.store.List(ctx, model.UserFilter{Status: status, Limit: limit, Offset: offset})
}

func (s *Service) Pending(ctx context.Context, p rules.Principal, limit, offset int) ([]model.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbManage, Resource: rules.ResourceUsers}); err != nil {
		return nil, err
	}
	status := enums.ApprovalStatusPending
	limit, offset = model.NormalizePage(limit, offset)
	return s.store.List(ctx, model.UserFilter{Status: &status, Limit: limit, Offset: offset})
}

func (s *Service) CountByStatus(ctx context.Context, p rules.Principal) (map[enums.ApprovalStatus]int, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbManage, Resource: rules.ResourceUsers}); err != nil {
		return nil, err
	}
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users by status: %w", err)
	}
	out := map[enums.ApprovalStatus]int{
		enums.ApprovalStatusPending:   0,
		enums.ApprovalStatusApproved:  0,
		enums.ApprovalStatusRejected:  0,
		enums.ApprovalStatusSuspended: 0,
	}
	for status, n := range counts {
		out[status] += n
	}
	return out, nil
}

// Account status changes are admin only; area moderators review content,
// not accounts.
func (s *Service) ApproveUser(ctx context.Context, p rules.Principal, id string) (model.User, error) {
	return s.transition(ctx, p, id, enums.ApprovalStatusApproved)
}

func (s *Service) RejectUser(ctx context.Context, p rules.Principal, id string) (model.User, error) {
	return s.transition(ctx, p, id, enums.ApprovalStatusRejected)
}

// SuspendUser moves an APPROVED account to SUSPENDED.
func (s *Service) SuspendUser(ctx context.Context, p rules.Principal, id string) (model.User, error) {
	return s.transition(ctx, p, id, enums.ApprovalStatusSuspended)
}

func (s *Service) transition(ctx context.Context, p rules.Principal, id string, to enums.ApprovalStatus) (model.User, error) {
	if err := s.ready(); err != nil {
		return model.User{}, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbManage, Resource: rules.ResourceUsers}); err != nil {
		return model.User{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return model.User{}, rules.NewValidationError("id", "is required")
	}
	if id == p.UserID {
		return model.User{}, fmt.Errorf("cannot change own account status: %w", rules.ErrAuthorizationDenied)
	}

	target, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if err := rules.CanManageAccount(p, target.Roles); err != nil {
		return model.User{}, fmt.Errorf("change status of %s: %w", target.ID, err)
	}

	user, err := s.store.UpdateStatus(ctx, id, rules.UserTransitionSources(to), to, s.now().UTC())
	if err != nil {
		return model.User{}, err
	}

	metrics.LifecycleTransitions.WithLabelValues(string(rules.ResourceUsers), string(to)).Inc()
	s.audit.Record(ctx, p.UserID, audit.ActionUserStatusChanged, string(rules.ResourceUsers), user.ID, map[string]any{
		"status": user.ApprovalStatus,
	})
	s.log.Info("user status changed",
		zap.String("user_id", user.ID),
		zap.String("status", string(user.ApprovalStatus)),
		zap.String("actor_id", p.UserID),
	)
	if s.notifier != nil {
		s.notifier.AccountStatusChanged(ctx, user)
	}
	return user, nil
}

func (s *Service) newUser(email, password, fullName, phone string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return model.User{}, rules.NewValidationError("email", "is required")
	}
	if !validate.Email(email) {
		return model.User{}, rules.NewValidationError("email", "must be a valid email address")
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return model.User{}, rules.NewValidationError("fullName", "is required")
	}
	hash, err := authsvc.HashPassword(password)
	if err != nil {
		return model.User{}, err
	}

	now := s.now().UTC()
	return model.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		Phone:        strings.TrimSpace(phone),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *Service) wrapCreate(err error) error {
	if errors.Is(err, rules.ErrConflict) {
		return fmt.Errorf("email is already registered: %w", rules.ErrConflict)
	}
	return fmt.Errorf("create user: %w", err)
}

func (s *Service) ready() error {
	if s.store == nil {
		return fmt.Errorf("user store is nil")
	}
	return nil
}

func dedupeRoles(roles []enums.Role) []enums.Role {
	seen := make(map[enums.Role]struct{}, len(roles))
	out := make([]enums.Role, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
