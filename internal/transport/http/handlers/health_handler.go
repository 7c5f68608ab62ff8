package handlers

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

// Pinger is satisfied by the postgres pool and an adapter over the redis
// client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{checks: make(map[string]Pinger)}
}

// AttachCheck registers a dependency probed by /healthz. A nil pinger is
// reported as disabled.
func (h *HealthHandler) AttachCheck(name string, p Pinger) {
	h.checks[name] = p
}

func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	results := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if p == nil {
			results[name] = "disabled"
			continue
		}
		if err := p.Ping(ctx); err != nil {
			results[name] = "down"
			status = "degraded"
			continue
		}
		results[name] = "up"
	}

	httperrors.Write(w, http.StatusOK, map[string]any{
		"status": status,
		"checks": results,
	})
}
