package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
)

type UpazilaRepo struct {
	db *DB
}

func NewUpazilaRepo(db *DB) *UpazilaRepo {
	return &UpazilaRepo{db: db}
}

func (r *UpazilaRepo) List(_ context.Context, activeOnly bool) ([]model.Upazila, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]model.Upazila, 0, len(r.db.upazilas))
	for _, u := range r.db.upazilas {
		if activeOnly && !u.IsActive {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder == out[j].DisplayOrder {
			return out[i].Name < out[j].Name
		}
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out, nil
}

func (r *UpazilaRepo) GetByID(_ context.Context, id string) (model.Upazila, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.upazilas[id]
	if !ok {
		return model.Upazila{}, fmt.Errorf("upazila %s: %w", id, rules.ErrNotFound)
	}
	return u, nil
}

func (r *UpazilaRepo) GetBySlug(_ context.Context, slug string) (model.Upazila, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.upazilas {
		if u.Slug == slug {
			return u, nil
		}
	}
	return model.Upazila{}, fmt.Errorf("upazila %s: %w", slug, rules.ErrNotFound)
}

func (r *UpazilaRepo) Exists(_ context.Context, id string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	_, ok := r.db.upazilas[id]
	return ok, nil
}

func (r *UpazilaRepo) Create(_ context.Context, u model.Upazila) (model.Upazila, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.slugTaken(u.Slug, u.ID) {
		return model.Upazila{}, fmt.Errorf("upazila slug %s: %w", u.Slug, rules.ErrConflict)
	}
	r.db.upazilas[u.ID] = u
	return u, nil
}

func (r *UpazilaRepo) Update(_ context.Context, u model.Upazila) (model.Upazila, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.upazilas[u.ID]
	if !ok {
		return model.Upazila{}, fmt.Errorf("upazila %s: %w", u.ID, rules.ErrNotFound)
	}
	if r.slugTaken(u.Slug, u.ID) {
		return model.Upazila{}, fmt.Errorf("upazila slug %s: %w", u.Slug, rules.ErrConflict)
	}
	u.CreatedAt = current.CreatedAt
	r.db.upazilas[u.ID] = u
	return u, nil
}

func (r *UpazilaRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.upazilas[id]; !ok {
		return fmt.Errorf("upazila %s: %w", id, rules.ErrNotFound)
	}
	delete(r.db.upazilas, id)
	return nil
}

// EnsureBySlug inserts u unless an upazila with the same slug exists and
// reports whether it inserted.
func (r *UpazilaRepo) EnsureBySlug(_ context.Context, u model.Upazila) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.slugTaken(u.Slug, "") {
		return false, nil
	}
	r.db.upazilas[u.ID] = u
	return true, nil
}

func (r *UpazilaRepo) slugTaken(slug, exceptID string) bool {
	for id, existing := range r.db.upazilas {
		if id != exceptID && existing.Slug == slug {
			return true
		}
	}
	return false
}

type SliderRepo struct {
	db *DB
}

func NewSliderRepo(db *DB) *SliderRepo {
	return &SliderRepo{db: db}
}

func (r *SliderRepo) List(_ context.Context, activeOnly bool) ([]model.Slider, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]model.Slider, 0, len(r.db.sliders))
	for _, s := range r.db.sliders {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder == out[j].DisplayOrder {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out, nil
}

func (r *SliderRepo) Get(_ context.Context, id string) (model.Slider, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	s, ok := r.db.sliders[id]
	if !ok {
		return model.Slider{}, fmt.Errorf("slider %s: %w", id, rules.ErrNotFound)
	}
	return s, nil
}

func (r *SliderRepo) Create(_ context.Context, s model.Slider) (model.Slider, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sliders[s.ID] = s
	return s, nil
}

func (r *SliderRepo) Update(_ context.Context, s model.Slider) (model.Slider, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.sliders[s.ID]
	if !ok {
		return model.Slider{}, fmt.Errorf("slider %s: %w", s.ID, rules.ErrNotFound)
	}
	s.CreatedAt = current.CreatedAt
	r.db.sliders[s.ID] = s
	return s, nil
}

func (r *SliderRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.sliders[id]; !ok {
		return fmt.Errorf("slider %s: %w", id, rules.ErrNotFound)
	}
	delete(r.db.sliders, id)
	return nil
}

type SettingRepo struct {
	db *DB
}

func NewSettingRepo(db *DB) *SettingRepo {
	return &SettingRepo{db: db}
}

func (r *SettingRepo) List(_ context.Context) ([]model.SiteSetting, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]model.SiteSetting, 0, len(r.db.settings))
	for _, s := range r.db.settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *SettingRepo) Get(_ context.Context, key string) (model.SiteSetting, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	s, ok := r.db.settings[key]
	if !ok {
		return model.SiteSetting{}, fmt.Errorf("setting %s: %w", key, rules.ErrNotFound)
	}
	return s, nil
}

// PutMany upserts every setting in one step. Descriptions are kept when
// the incoming one is empty.
func (r *SettingRepo) PutMany(_ context.Context, settings []model.SiteSetting) ([]model.SiteSetting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]model.SiteSetting, 0, len(settings))
	for _, s := range settings {
		if current, ok := r.db.settings[s.Key]; ok && s.Description == "" {
			s.Description = current.Description
		}
		r.db.settings[s.Key] = s
		out = append(out, s)
	}
	return out, nil
}

func (r *SettingRepo) EnsureDefaults(_ context.Context, defaults []model.SiteSetting, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, s := range defaults {
		if _, ok := r.db.settings[s.Key]; ok {
			continue
		}
		s.UpdatedAt = at
		r.db.settings[s.Key] = s
	}
	return nil
}

type AuditRepo struct {
	db *DB
}

func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Append(_ context.Context, event model.AuditEvent) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.audit = append(r.db.audit, event)
	return nil
}

// List returns the newest events first.
func (r *AuditRepo) List(_ context.Context, limit, offset int) ([]model.AuditEvent, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]model.AuditEvent, len(r.db.audit))
	for i, event := range r.db.audit {
		out[len(out)-1-i] = event
	}
	return page(out, limit, offset), nil
}
