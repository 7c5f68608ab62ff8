package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/domain/model"
)

// LogNotifier delivers owner notifications to the structured log. It stands
// in for an email or SMS channel.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) ContentReviewed(_ context.Context, sub model.Submission) {
	n.log.Info("notify owner: content reviewed",
		zap.String("owner_id", sub.OwnerID),
		zap.String("kind", string(sub.Kind)),
		zap.String("submission_id", sub.ID),
		zap.String("status", string(sub.Status)),
	)
}

func (n *LogNotifier) AccessRequestDecided(_ context.Context, req model.AccessRequest) {
	n.log.Info("notify user: access request decided",
		zap.String("user_id", req.UserID),
		zap.String("request_id", req.ID),
		zap.String("status", string(req.Status)),
		zap.String("admin_note", req.AdminNote),
	)
}

func (n *LogNotifier) AccountStatusChanged(_ context.Context, user model.User) {
	n.log.Info("notify user: account status changed",
		zap.String("user_id", user.ID),
		zap.String("status", string(user.ApprovalStatus)),
	)
}
