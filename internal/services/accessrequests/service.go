package accessrequests

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
	"github.com/zilaportal/portal/internal/services/audit"
)

const maxNoteLength = 1000

type Store interface {
	// Create stores a pending request and reports rules.ErrPendingRequest
	// when the user already has one.
	Create(ctx context.Context, req model.AccessRequest) (model.AccessRequest, error)
	Get(ctx context.Context, id string) (model.AccessRequest, error)
	List(ctx context.Context, filter model.AccessRequestFilter) ([]model.AccessRequest, error)
	// Decide applies a decision to a pending request. Approval merges the
	// requested types into the user in the same atomic step.
	Decide(ctx context.Context, id string, d model.AccessDecision) (model.AccessRequest, model.User, error)
	CountPending(ctx context.Context) (int, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (model.User, error)
}

type Notifier interface {
	AccessRequestDecided(ctx context.Context, req model.AccessRequest)
}

type Dependencies struct {
	Store    Store
	Users    UserReader
	Notifier Notifier
	Audit    *audit.Service
	Logger   *zap.Logger
}

type Service struct {
	store    Store
	users    UserReader
	notifier Notifier
	audit    *audit.Service
	log      *zap.Logger
	now      func() time.Time
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    deps.Store,
		users:    deps.Users,
		notifier: deps.Notifier,
		audit:    deps.Audit,
		log:      log,
		now:      time.Now,
	}
}

// RequestAccess files a request for additional user types. Requests that add
// nothing to the caller's current set are refused with rules.ErrAlreadyGranted.
func (s *Service) RequestAccess(ctx context.Context, p rules.Principal, requested []enums.UserType, note string) (model.AccessRequest, error) {
	if err := s.ready(); err != nil {
		return model.AccessRequest{}, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbRequestAccess, Resource: rules.ResourceAccessRequests}); err != nil {
		return model.AccessRequest{}, err
	}

	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return model.AccessRequest{}, fmt.Errorf("load requester: %w", err)
	}
	return s.open(ctx, user, requested, note)
}

// OpenInitial files the request made at registration time on behalf of a
// freshly created user.
func (s *Service) OpenInitial(ctx context.Context, user model.User, requested []enums.UserType, note string) (model.AccessRequest, error) {
	if err := s.ready(); err != nil {
		return model.AccessRequest{}, err
	}
	return s.open(ctx, user, requested, note)
}

func (s *Service) Mine(ctx context.Context, p rules.Principal) ([]model.AccessRequest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if !p.Authenticated() {
		return nil, rules.ErrAuthenticationRequired
	}
	return s.store.List(ctx, model.AccessRequestFilter{UserID: p.UserID, Limit: model.MaxPageLimit})
}

func (s *Service) List(ctx context.Context, p rules.Principal, status *enums.ContentStatus, limit, offset int) ([]model.AccessRequest, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbViewPending, Resource: rules.ResourceAccessRequests}); err != nil {
		return nil, err
	}
	limit, offset = model.NormalizePage(limit, offset)
	return s.store.List(ctx, model.AccessRequestFilter{Status: status, Limit: limit, Offset: offset})
}

func (s *Service) Pending(ctx context.Context, p rules.Principal, limit, offset int) ([]model.AccessRequest, error) {
	status := enums.ContentStatusPending
	return s.List(ctx, p, &status, limit, offset)
}

func (s *Service) CountPending(ctx context.Context, p rules.Principal) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbViewPending, Resource: rules.ResourceAccessRequests}); err != nil {
		return 0, err
	}
	return s.store.CountPending(ctx)
}

func (s *Service) Approve(ctx context.Context, p rules.Principal, id, adminNote string) (model.AccessRequest, error) {
	return s.decide(ctx, p, id, adminNote, rules.VerbApprove, enums.ContentStatusApproved)
}

func (s *Service) Reject(ctx context.Context, p rules.Principal, id, adminNote string) (model.AccessRequest, error) {
	return s.decide(ctx, p, id, adminNote, rules.VerbReject, enums.ContentStatusRejected)
}

func (s *Service) decide(ctx context.Context, p rules.Principal, id, adminNote string, verb rules.Verb, to enums.ContentStatus) (model.AccessRequest, error) {
	if err := s.ready(); err != nil {
		return model.AccessRequest{}, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: verb, Resource: rules.ResourceAccessRequests}); err != nil {
		return model.AccessRequest{}, err
	}
	adminNote = strings.TrimSpace(adminNote)
	if len(adminNote) > maxNoteLength {
		return model.AccessRequest{}, rules.NewValidationError("adminNote", "is too long")
	}

	req, user, err := s.store.Decide(ctx, strings.TrimSpace(id), model.AccessDecision{
		To:         to,
		AdminNote:  adminNote,
		ReviewerID: p.UserID,
		At:         s.now().UTC(),
	})
	if err != nil {
		return model.AccessRequest{}, err
	}

	metrics.LifecycleTransitions.WithLabelValues(string(rules.ResourceAccessRequests), string(to)).Inc()
	action := audit.ActionAccessApproved
	if to == enums.ContentStatusRejected {
		action = audit.ActionAccessRejected
	}
	s.audit.Record(ctx, p.UserID, action, string(rules.ResourceAccessRequests), req.ID, map[string]any{
		"user_id":    req.UserID,
		"user_types": user.UserTypes,
	})
	s.log.Info("access request decided",
		zap.String("request_id", req.ID),
		zap.String("user_id", req.UserID),
		zap.String("status", string(req.Status)),
	)
	if s.notifier != nil {
		s.notifier.AccessRequestDecided(ctx, req)
	}

	return req, nil
}

func (s *Service) open(ctx context.Context, user model.User, requested []enums.UserType, note string) (model.AccessRequest, error) {
	types, err := rules.CheckAccessRequest(user.UserTypes, requested)
	if err != nil {
		return model.AccessRequest{}, err
	}
	note = strings.TrimSpace(note)
	if len(note) > maxNoteLength {
		return model.AccessRequest{}, rules.NewValidationError("note", "is too long")
	}

	now := s.now().UTC()
	req, err := s.store.Create(ctx, model.AccessRequest{
		ID:                 uuid.NewString(),
		UserID:             user.ID,
		RequestedUserTypes: types,
		Note:               note,
		Status:             enums.ContentStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		if errors.Is(err, rules.ErrConflict) {
			return model.AccessRequest{}, err
		}
		return model.AccessRequest{}, fmt.Errorf("create access request: %w", err)
	}

	s.audit.Record(ctx, user.ID, audit.ActionAccessRequested, string(rules.ResourceAccessRequests), req.ID, map[string]any{
		"requested": types,
	})
	return req, nil
}

func (s *Service) ready() error {
	if s.store == nil || s.users == nil {
		return fmt.Errorf("access request service dependencies are not configured")
	}
	return nil
}
