package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/domain/enums"
	accesssvc "github.com/zilaportal/portal/internal/services/accessrequests"
	contentsvc "github.com/zilaportal/portal/internal/services/content"
	userssvc "github.com/zilaportal/portal/internal/services/users"
	"github.com/zilaportal/portal/internal/transport/http/dto"
	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

// StatsHandler serves the moderation dashboard counters.
type StatsHandler struct {
	content *contentsvc.Service
	access  *accesssvc.Service
	users   *userssvc.Service
	log     *zap.Logger
}

func NewStatsHandler(content *contentsvc.Service, access *accesssvc.Service, users *userssvc.Service, log *zap.Logger) *StatsHandler {
	return &StatsHandler{content: content, access: access, users: users, log: log}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.content == nil || h.access == nil || h.users == nil {
		writeInternal(w, "STATS_UNAVAILABLE", "stats are unavailable")
		return
	}

	p := principal(r)
	pending, err := h.content.PendingCounts(r.Context(), p)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	requests, err := h.access.CountPending(r.Context(), p)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	// Account counts are part of user management.
	var users map[enums.ApprovalStatus]int
	if p.IsAdmin() {
		users, err = h.users.CountByStatus(r.Context(), p)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}

	total := 0
	for _, n := range pending {
		total += n
	}
	httperrors.Write(w, http.StatusOK, dto.StatsResponse{
		PendingContent:        pending,
		PendingContentTotal:   total,
		PendingAccessRequests: requests,
		UsersByStatus:         users,
	})
}
