package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
)

type AccessRequestRepo struct {
	db *DB
}

func NewAccessRequestRepo(db *DB) *AccessRequestRepo {
	return &AccessRequestRepo{db: db}
}

// Create stores a pending request. A user holds at most one pending request.
func (r *AccessRequestRepo) Create(_ context.Context, req model.AccessRequest) (model.AccessRequest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[req.UserID]; !ok {
		return model.AccessRequest{}, fmt.Errorf("user %s: %w", req.UserID, rules.ErrNotFound)
	}
	for _, existing := range r.db.accessRequests {
		if existing.UserID == req.UserID && existing.IsPending() {
			return model.AccessRequest{}, rules.ErrPendingRequest
		}
	}
	req = cloneRequest(req)
	r.db.accessRequests[req.ID] = req
	return cloneRequest(req), nil
}

func (r *AccessRequestRepo) Get(_ context.Context, id string) (model.AccessRequest, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	req, ok := r.db.accessRequests[id]
	if !ok {
		return model.AccessRequest{}, fmt.Errorf("access request %s: %w", id, rules.ErrNotFound)
	}
	return cloneRequest(req), nil
}

func (r *AccessRequestRepo) List(_ context.Context, filter model.AccessRequestFilter) ([]model.AccessRequest, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]model.AccessRequest, 0)
	for _, req := range r.db.accessRequests {
		if filter.UserID != "" && req.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && req.Status != *filter.Status {
			continue
		}
		out = append(out, cloneRequest(req))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

// Decide applies d to a pending request and, on approval, merges the
// requested types into the owner's set, all under the store lock.
func (r *AccessRequestRepo) Decide(_ context.Context, id string, d model.AccessDecision) (model.AccessRequest, model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	req, ok := r.db.accessRequests[id]
	if !ok {
		return model.AccessRequest{}, model.User{}, fmt.Errorf("access request %s: %w", id, rules.ErrNotFound)
	}
	if err := rules.ContentTransition(req.Status, d.To); err != nil {
		return model.AccessRequest{}, model.User{}, err
	}
	user, ok := r.db.users[req.UserID]
	if !ok {
		return model.AccessRequest{}, model.User{}, fmt.Errorf("user %s: %w", req.UserID, rules.ErrNotFound)
	}

	at := d.At
	reviewer := d.ReviewerID
	req.Status = d.To
	req.AdminNote = d.AdminNote
	req.ReviewedBy = &reviewer
	req.ReviewedAt = &at
	req.UpdatedAt = at
	r.db.accessRequests[id] = req

	if d.To == enums.ContentStatusApproved {
		user.UserTypes = rules.MergeUserTypes(user.UserTypes, req.RequestedUserTypes)
		user.UpdatedAt = at
		r.db.users[user.ID] = user
	}

	return cloneRequest(req), cloneUser(user), nil
}

func (r *AccessRequestRepo) CountPending(_ context.Context) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	count := 0
	for _, req := range r.db.accessRequests {
		if req.IsPending() {
			count++
		}
	}
	return count, nil
}

func cloneRequest(req model.AccessRequest) model.AccessRequest {
	req.RequestedUserTypes = append([]enums.UserType{}, req.RequestedUserTypes...)
	if req.ReviewedAt != nil {
		at := *req.ReviewedAt
		req.ReviewedAt = &at
	}
	if req.ReviewedBy != nil {
		by := *req.ReviewedBy
		req.ReviewedBy = &by
	}
	return req
}
