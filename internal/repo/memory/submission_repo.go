package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
)

type SubmissionRepo struct {
	db *DB
}

func NewSubmissionRepo(db *DB) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

func (r *SubmissionRepo) Create(_ context.Context, sub model.Submission) (model.Submission, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.submissions[sub.ID]; ok {
		return model.Submission{}, fmt.Errorf("submission %s: %w", sub.ID, rules.ErrConflict)
	}
	if sub.Slug != "" {
		for _, existing := range r.db.submissions {
			if existing.Kind == sub.Kind && existing.Slug == sub.Slug {
				return model.Submission{}, fmt.Errorf("slug %s: %w", sub.Slug, rules.ErrConflict)
			}
		}
	}
	sub = cloneSubmission(sub)
	r.db.submissions[sub.ID] = sub
	return cloneSubmission(sub), nil
}

func (r *SubmissionRepo) Get(_ context.Context, kind enums.SubmittableKind, id string) (model.Submission, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	sub, ok := r.db.submissions[id]
	if !ok || sub.Kind != kind {
		return model.Submission{}, fmt.Errorf("submission %s: %w", id, rules.ErrNotFound)
	}
	return cloneSubmission(sub), nil
}

func (r *SubmissionRepo) GetBySlug(_ context.Context, kind enums.SubmittableKind, slug string) (model.Submission, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, sub := range r.db.submissions {
		if sub.Kind == kind && sub.Slug != "" && sub.Slug == slug {
			return cloneSubmission(sub), nil
		}
	}
	return model.Submission{}, fmt.Errorf("submission slug %s: %w", slug, rules.ErrNotFound)
}

func (r *SubmissionRepo) List(_ context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]model.Submission, 0)
	for _, sub := range r.db.submissions {
		if !matches(sub, filter) {
			continue
		}
		out = append(out, cloneSubmission(sub))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *SubmissionRepo) Update(_ context.Context, sub model.Submission) (model.Submission, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.submissions[sub.ID]
	if !ok || current.Kind != sub.Kind {
		return model.Submission{}, fmt.Errorf("submission %s: %w", sub.ID, rules.ErrNotFound)
	}
	current.UpazilaID = sub.UpazilaID
	current.Category = sub.Category
	current.Data = append([]byte(nil), sub.Data...)
	current.UpdatedAt = sub.UpdatedAt
	r.db.submissions[sub.ID] = current
	return cloneSubmission(current), nil
}

func (r *SubmissionRepo) Review(_ context.Context, kind enums.SubmittableKind, id string, review model.Review) (model.Submission, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	sub, ok := r.db.submissions[id]
	if !ok || sub.Kind != kind {
		return model.Submission{}, fmt.Errorf("submission %s: %w", id, rules.ErrNotFound)
	}
	if err := rules.ContentTransition(sub.Status, review.To); err != nil {
		return model.Submission{}, err
	}

	at := review.At
	reviewer := review.ReviewerID
	sub.Status = review.To
	sub.ReviewedBy = &reviewer
	sub.ReviewedAt = &at
	sub.UpdatedAt = at
	if review.StampPublished && sub.PublishedAt == nil {
		sub.PublishedAt = &at
	}
	r.db.submissions[id] = sub
	return cloneSubmission(sub), nil
}

func (r *SubmissionRepo) Delete(_ context.Context, kind enums.SubmittableKind, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	sub, ok := r.db.submissions[id]
	if !ok || sub.Kind != kind {
		return fmt.Errorf("submission %s: %w", id, rules.ErrNotFound)
	}
	delete(r.db.submissions, id)
	return nil
}

func (r *SubmissionRepo) CountByStatus(_ context.Context, status enums.ContentStatus) (map[enums.SubmittableKind]int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make(map[enums.SubmittableKind]int)
	for _, kind := range enums.AllKinds() {
		out[kind] = 0
	}
	for _, sub := range r.db.submissions {
		if sub.Status == status {
			out[sub.Kind]++
		}
	}
	return out, nil
}

func (r *SubmissionRepo) CountApprovedByUpazila(_ context.Context, upazilaID string) (map[enums.SubmittableKind]int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make(map[enums.SubmittableKind]int)
	for _, kind := range enums.AllKinds() {
		out[kind] = 0
	}
	for _, sub := range r.db.submissions {
		if sub.Status == enums.ContentStatusApproved && sub.UpazilaID != nil && *sub.UpazilaID == upazilaID {
			out[sub.Kind]++
		}
	}
	return out, nil
}

func matches(sub model.Submission, filter model.SubmissionFilter) bool {
	if filter.Kind != "" && sub.Kind != filter.Kind {
		return false
	}
	if filter.OwnerID != "" && sub.OwnerID != filter.OwnerID {
		return false
	}
	if filter.UpazilaID != "" && (sub.UpazilaID == nil || *sub.UpazilaID != filter.UpazilaID) {
		return false
	}
	if filter.Category != "" && sub.Category != filter.Category {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if sub.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func cloneSubmission(sub model.Submission) model.Submission {
	sub.Data = append([]byte(nil), sub.Data...)
	if sub.UpazilaID != nil {
		id := *sub.UpazilaID
		sub.UpazilaID = &id
	}
	if sub.PublishedAt != nil {
		at := *sub.PublishedAt
		sub.PublishedAt = &at
	}
	if sub.ReviewedAt != nil {
		at := *sub.ReviewedAt
		sub.ReviewedAt = &at
	}
	if sub.ReviewedBy != nil {
		by := *sub.ReviewedBy
		sub.ReviewedBy = &by
	}
	return sub
}
