package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(_ context.Context, u model.User) (model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := r.db.usersByEmail[email]; ok {
		return model.User{}, fmt.Errorf("email %s: %w", email, rules.ErrConflict)
	}
	u.Email = email
	u = cloneUser(u)
	r.db.users[u.ID] = u
	r.db.usersByEmail[email] = u.ID
	return cloneUser(u), nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("user %s: %w", id, rules.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	id, ok := r.db.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.User{}, fmt.Errorf("user %s: %w", email, rules.ErrNotFound)
	}
	return cloneUser(r.db.users[id]), nil
}

func (r *UserRepo) List(_ context.Context, filter model.UserFilter) ([]model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]model.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		if filter.Status != nil && u.ApprovalStatus != *filter.Status {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *UserRepo) UpdateStatus(_ context.Context, id string, from []enums.ApprovalStatus, to enums.ApprovalStatus, at time.Time) (model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("user %s: %w", id, rules.ErrNotFound)
	}
	allowed := false
	for _, s := range from {
		if u.ApprovalStatus == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return model.User{}, &rules.TransitionError{From: string(u.ApprovalStatus), To: string(to)}
	}

	u.ApprovalStatus = to
	u.UpdatedAt = at
	r.db.users[id] = u
	return cloneUser(u), nil
}

func (r *UserRepo) CountByStatus(_ context.Context) (map[enums.ApprovalStatus]int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make(map[enums.ApprovalStatus]int)
	for _, u := range r.db.users {
		out[u.ApprovalStatus]++
	}
	return out, nil
}

func cloneUser(u model.User) model.User {
	u.UserTypes = append([]enums.UserType{}, u.UserTypes...)
	u.Roles = append([]enums.Role{}, u.Roles...)
	return u
}
