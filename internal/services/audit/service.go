package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
)

const (
	ActionContentSubmitted  = "content.submitted"
	ActionContentUpdated    = "content.updated"
	ActionContentApproved   = "content.approved"
	ActionContentRejected   = "content.rejected"
	ActionContentDeleted    = "content.deleted"
	ActionAccessRequested   = "access.requested"
	ActionAccessApproved    = "access.approved"
	ActionAccessRejected    = "access.rejected"
	ActionUserRegistered    = "user.registered"
	ActionUserCreated       = "user.created"
	ActionUserStatusChanged = "user.status_changed"
	ActionSettingChanged    = "setting.changed"
)

type Store interface {
	Append(ctx context.Context, event model.AuditEvent) error
	List(ctx context.Context, limit, offset int) ([]model.AuditEvent, error)
}

// Service writes an audit trail of lifecycle transitions. A failing store
// never fails the transition that produced the event.
type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

func (s *Service) Record(ctx context.Context, actorID, action, targetType, targetID string, props map[string]any) {
	if s == nil {
		return
	}
	event := model.AuditEvent{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Props:      props,
		CreatedAt:  s.now().UTC(),
	}

	s.log.Info("audit",
		zap.String("action", action),
		zap.String("actor_id", actorID),
		zap.String("target_type", targetType),
		zap.String("target_id", targetID),
	)

	if s.store == nil {
		return
	}
	if err := s.store.Append(ctx, event); err != nil {
		s.log.Warn("append audit event failed", zap.String("action", action), zap.Error(err))
	}
}

// Recent pages the trail newest first. Only admins may read it.
func (s *Service) Recent(ctx context.Context, p rules.Principal, limit, offset int) ([]model.AuditEvent, error) {
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbManage, Resource: rules.ResourceAudit}); err != nil {
		return nil, err
	}
	if s == nil || s.store == nil {
		return nil, nil
	}
	limit, offset = model.NormalizePage(limit, offset)
	return s.store.List(ctx, limit, offset)
}
