package content

import (
	"context"
	"encoding/json"
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

type Store interface {
	Create(ctx context.Context, sub model.Submission) (model.Submission, error)
	Get(ctx context.Context, kind enums.SubmittableKind, id string) (model.Submission, error)
	GetBySlug(ctx context.Context, kind enums.SubmittableKind, slug string) (model.Submission, error)
	List(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error)
	Update(ctx context.Context, sub model.Submission) (model.Submission, error)
	// Review moves a PENDING item to review.To. It reports rules.ErrNotFound
	// for a missing item and a *rules.TransitionError when the item is no
	// longer pending.
	Review(ctx context.Context, kind enums.SubmittableKind, id string, review model.Review) (model.Submission, error)
	Delete(ctx context.Context, kind enums.SubmittableKind, id string) error
	CountByStatus(ctx context.Context, status enums.ContentStatus) (map[enums.SubmittableKind]int, error)
	CountApprovedByUpazila(ctx context.Context, upazilaID string) (map[enums.SubmittableKind]int, error)
}

type UpazilaLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Notifier interface {
	ContentReviewed(ctx context.Context, sub model.Submission)
}

type Dependencies struct {
	Store    Store
	Upazilas UpazilaLookup
	Notifier Notifier
	Audit    *audit.Service
	Logger   *zap.Logger
}

type Service struct {
	store    Store
	upazilas UpazilaLookup
	notifier Notifier
	audit    *audit.Service
	log      *zap.Logger
	now      func() time.Time
}

// Input carries a create or update body. Payload must come from the kind's
// KindSpec.
type Input struct {
	UpazilaID *string
	Payload   model.Payload
}

type ListQuery struct {
	UpazilaID string
	Category  string
	Status    *enums.ContentStatus
	Limit     int
	Offset    int
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    deps.Store,
		upazilas: deps.Upazilas,
		notifier: deps.Notifier,
		audit:    deps.Audit,
		log:      log,
		now:      time.Now,
	}
}

// CanSubmit reports whether p may create content of kind, without a payload.
func (s *Service) CanSubmit(p rules.Principal, kind enums.SubmittableKind) error {
	if err := s.ready(kind); err != nil {
		return err
	}
	return rules.Authorize(p, rules.Action{Verb: rules.VerbCreate, Resource: rules.KindResource(kind)})
}

func (s *Service) Submit(ctx context.Context, p rules.Principal, kind enums.SubmittableKind, in Input) (model.Submission, error) {
	if err := s.CanSubmit(p, kind); err != nil {
		return model.Submission{}, err
	}

	data, upazilaID, err := s.prepare(ctx, in)
	if err != nil {
		return model.Submission{}, err
	}

	now := s.now().UTC()
	sub := model.Submission{
		ID:        uuid.NewString(),
		Kind:      kind,
		OwnerID:   p.UserID,
		UpazilaID: upazilaID,
		Category:  in.Payload.Category(),
		Status:    enums.ContentStatusPending,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if sluggable, ok := in.Payload.(model.Sluggable); ok {
		sub.Slug = uniqueSlug(sluggable.SlugSource())
	}

	created, err := s.store.Create(ctx, sub)
	if err != nil {
		return model.Submission{}, fmt.Errorf("create submission: %w", err)
	}

	metrics.Submissions.WithLabelValues(string(kind)).Inc()
	s.audit.Record(ctx, p.UserID, audit.ActionContentSubmitted, string(kind), created.ID, nil)
	return created, nil
}

func (s *Service) Get(ctx context.Context, p rules.Principal, kind enums.SubmittableKind, id string) (model.Submission, error) {
	if err := s.ready(kind); err != nil {
		return model.Submission{}, err
	}
	sub, err := s.store.Get(ctx, kind, strings.TrimSpace(id))
	if err != nil {
		return model.Submission{}, err
	}
	return s.visible(p, sub)
}

func (s *Service) GetBySlug(ctx context.Context, p rules.Principal, kind enums.SubmittableKind, slug string) (model.Submission, error) {
	if err := s.ready(kind); err != nil {
		return model.Submission{}, err
	}
	sub, err := s.store.GetBySlug(ctx, kind, strings.TrimSpace(slug))
	if err != nil {
		return model.Submission{}, err
	}
	return s.visible(p, sub)
}

// List returns APPROVED items for the public. Moderators see every status
// unless they filter by one.
func (s *Service) List(ctx context.Context, p rules.Principal, kind enums.SubmittableKind, q ListQuery) ([]model.Submission, error) {
	if err := s.ready(kind); err != nil {
		return nil, err
	}

	filter := s.filter(kind, q)
	switch {
	case !p.IsModerator():
		filter.Statuses = []enums.ContentStatus{enums.ContentStatusApproved}
	case q.Status != nil:
		filter.Statuses = []enums.ContentStatus{*q.Status}
	}

	return s.store.List(ctx, filter)
}

func (s *Service) Pending(ctx context.Context, p rules.Principal, kind enums.SubmittableKind, q ListQuery) ([]model.Submission, error) {
	if err := s.ready(kind); err != nil {
		return nil, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbViewPending, Resource: rules.KindResource(kind)}); err != nil {
		return nil, err
	}

	filter := s.filter(kind, q)
	filter.Statuses = []enums.ContentStatus{enums.ContentStatusPending}
	return s.store.List(ctx, filter)
}

// Mine lists the caller's own submissions in every status.
func (s *Service) Mine(ctx context.Context, p rules.Principal, kind enums.SubmittableKind, q ListQuery) ([]model.Submission, error) {
	if err := s.ready(kind); err != nil {
		return nil, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbListOwn, Resource: rules.KindResource(kind)}); err != nil {
		return nil, err
	}

	filter := s.filter(kind, q)
	filter.OwnerID = p.UserID
	if q.Status != nil {
		filter.Statuses = []enums.ContentStatus{*q.Status}
	}
	return s.store.List(ctx, filter)
}

// Update replaces the payload of an item in any state. The status is kept
// as is, so edits to an approved item stay live.
func (s *Service) Update(ctx context.Context, p rules.Principal, kind enums.SubmittableKind, id string, in Input) (model.Submission, error) {
	if err := s.ready(kind); err != nil {
		return model.Submission{}, err
	}
	if !p.Authenticated() {
		return model.Submission{}, rules.ErrAuthenticationRequired
	}

	current, err := s.store.Get(ctx, kind, strings.TrimSpace(id))
	if err != nil {
		return model.Submission{}, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbUpdate, Resource: rules.KindResource(kind), OwnerID: current.OwnerID}); err != nil {
		return model.Submission{}, err
	}

	data, upazilaID, err := s.prepare(ctx, in)
	if err != nil {
		return model.Submission{}, err
	}

	current.Data = data
	current.UpazilaID = upazilaID
	current.Category = in.Payload.Category()
	current.UpdatedAt = s.now().UTC()

	updated, err := s.store.Update(ctx, current)
	if err != nil {
		return model.Submission{}, fmt.Errorf("update submission: %w", err)
	}

	s.audit.Record(ctx, p.UserID, audit.ActionContentUpdated, string(kind), updated.ID, map[string]any{"status": string(updated.Status)})
	return updated, nil
}

func (s *Service) Approve(ctx context.Context, p rules.Principal, kind enums.SubmittableKind, id string) (model.Submission, error) {
	return s.review(ctx, p, kind, id, rules.VerbApprove, enums.ContentStatusApproved)
}

func (s *Service) Reject(ctx context.Context, p rules.Principal, kind enums.SubmittableKind, id string) (model.Submission, error) {
	return s.review(ctx, p, kind, id, rules.VerbReject, enums.ContentStatusRejected)
}

func (s *Service) Delete(ctx context.Context, p rules.Principal, kind enums.SubmittableKind, id string) error {
	if err := s.ready(kind); err != nil {
		return err
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbDelete, Resource: rules.KindResource(kind)}); err != nil {
		return err
	}

	id = strings.TrimSpace(id)
	if err := s.store.Delete(ctx, kind, id); err != nil {
		return err
	}

	s.audit.Record(ctx, p.UserID, audit.ActionContentDeleted, string(kind), id, nil)
	return nil
}

// PendingCounts reports the moderation backlog per kind.
func (s *Service) PendingCounts(ctx context.Context, p rules.Principal) (map[enums.SubmittableKind]int, error) {
	if s.store == nil {
		return nil, fmt.Errorf("content store is not configured")
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbViewPending, Resource: rules.KindResource(enums.KindHospital)}); err != nil {
		return nil, err
	}
	return s.store.CountByStatus(ctx, enums.ContentStatusPending)
}

func (s *Service) ApprovedCountsByUpazila(ctx context.Context, upazilaID string) (map[enums.SubmittableKind]int, error) {
	if s.store == nil {
		return nil, fmt.Errorf("content store is not configured")
	}
	return s.store.CountApprovedByUpazila(ctx, upazilaID)
}

func (s *Service) review(ctx context.Context, p rules.Principal, kind enums.SubmittableKind, id string, verb rules.Verb, to enums.ContentStatus) (model.Submission, error) {
	if err := s.ready(kind); err != nil {
		return model.Submission{}, err
	}
	if err := rules.Authorize(p, rules.Action{Verb: verb, Resource: rules.KindResource(kind)}); err != nil {
		return model.Submission{}, err
	}

	reviewed, err := s.store.Review(ctx, kind, strings.TrimSpace(id), model.Review{
		To:             to,
		ReviewerID:     p.UserID,
		At:             s.now().UTC(),
		StampPublished: kind == enums.KindBlog && to == enums.ContentStatusApproved,
	})
	if err != nil {
		if errors.Is(err, rules.ErrInvalidTransition) {
			s.log.Info("content review refused",
				zap.String("kind", string(kind)),
				zap.String("id", id),
				zap.String("to", string(to)),
				zap.Error(err),
			)
		}
		return model.Submission{}, err
	}

	metrics.LifecycleTransitions.WithLabelValues(string(kind), string(to)).Inc()
	action := audit.ActionContentApproved
	if to == enums.ContentStatusRejected {
		action = audit.ActionContentRejected
	}
	s.audit.Record(ctx, p.UserID, action, string(kind), reviewed.ID, map[string]any{"from": string(enums.ContentStatusPending)})
	if s.notifier != nil {
		s.notifier.ContentReviewed(ctx, reviewed)
	}

	return reviewed, nil
}

func (s *Service) ready(kind enums.SubmittableKind) error {
	if s.store == nil {
		return fmt.Errorf("content store is not configured")
	}
	if !kind.Valid() {
		return fmt.Errorf("content kind %q: %w", kind, rules.ErrNotFound)
	}
	return nil
}

func (s *Service) prepare(ctx context.Context, in Input) (json.RawMessage, *string, error) {
	if in.Payload == nil {
		return nil, nil, rules.NewValidationError("body", "is required")
	}
	if err := in.Payload.Validate(); err != nil {
		return nil, nil, err
	}

	var upazilaID *string
	if in.UpazilaID != nil && strings.TrimSpace(*in.UpazilaID) != "" {
		id := strings.TrimSpace(*in.UpazilaID)
		if s.upazilas != nil {
			ok, err := s.upazilas.Exists(ctx, id)
			if err != nil {
				return nil, nil, fmt.Errorf("lookup upazila: %w", err)
			}
			if !ok {
				return nil, nil, rules.NewValidationError("upazilaId", "does not reference a known upazila")
			}
		}
		upazilaID = &id
	}

	data, err := json.Marshal(in.Payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, upazilaID, nil
}

func (s *Service) filter(kind enums.SubmittableKind, q ListQuery) model.SubmissionFilter {
	limit, offset := model.NormalizePage(q.Limit, q.Offset)
	return model.SubmissionFilter{
		Kind:      kind,
		UpazilaID: strings.TrimSpace(q.UpazilaID),
		Category:  strings.ToUpper(strings.TrimSpace(q.Category)),
		Limit:     limit,
		Offset:    offset,
	}
}

// visible hides unapproved items from everyone except moderators and the
// owner. Hidden items look missing.
func (s *Service) visible(p rules.Principal, sub model.Submission) (model.Submission, error) {
	if sub.Status == enums.ContentStatusApproved || p.IsModerator() {
		return sub, nil
	}
	if p.Authenticated() && sub.OwnerID == p.UserID {
		return sub, nil
	}
	return model.Submission{}, fmt.Errorf("submission %s: %w", sub.ID, rules.ErrNotFound)
}
