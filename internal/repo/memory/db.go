// Package memory is a process-local store used for single node development
// runs and tests. Every repo shares one DB so multi-entity operations can be
// applied under a single lock.
package memory

import (
	"sync"

	"github.com/zilaportal/portal/internal/domain/model"
)

type DB struct {
	mu             sync.RWMutex
	users          map[string]model.User
	usersByEmail   map[string]string
	submissions    map[string]model.Submission
	accessRequests map[string]model.AccessRequest
	upazilas       map[string]model.Upazila
	sliders        map[string]model.Slider
	settings       map[string]model.SiteSetting
	audit          []model.AuditEvent
}

func New() *DB {
	return &DB{
		users:          make(map[string]model.User),
		usersByEmail:   make(map[string]string),
		submissions:    make(map[string]model.Submission),
		accessRequests: make(map[string]model.AccessRequest),
		upazilas:       make(map[string]model.Upazila),
		sliders:        make(map[string]model.Slider),
		settings:       make(map[string]model.SiteSetting),
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
