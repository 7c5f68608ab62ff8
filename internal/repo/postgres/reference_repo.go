package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
)

const (
	upazilaColumns = `id, name, name_bn, slug, description, description_bn, is_active, display_order, created_at, updated_at`
	sliderColumns  = `id, title, title_bn, description, description_bn, image_url, link_url, button_text, display_order, is_active, created_at, updated_at`
)

type UpazilaRepo struct {
	pool *pgxpool.Pool
}

func NewUpazilaRepo(pool *pgxpool.Pool) *UpazilaRepo {
	return &UpazilaRepo{pool: pool}
}

func (r *UpazilaRepo) List(ctx context.Context, activeOnly bool) ([]model.Upazila, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+upazilaColumns+`
FROM upazilas
WHERE (NOT $1 OR is_active)
ORDER BY display_order, name
`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list upazilas: %w", err)
	}
	defer rows.Close()

	out := make([]model.Upazila, 0)
	for rows.Next() {
		u, err := scanUpazila(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upazila: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UpazilaRepo) GetByID(ctx context.Context, id string) (model.Upazila, error) {
	return r.queryOne(ctx, "upazila "+id, `SELECT `+upazilaColumns+` FROM upazilas WHERE id = $1`, id)
}

func (r *UpazilaRepo) GetBySlug(ctx context.Context, slug string) (model.Upazila, error) {
	return r.queryOne(ctx, "upazila "+slug, `SELECT `+upazilaColumns+` FROM upazilas WHERE slug = $1`, slug)
}

func (r *UpazilaRepo) Exists(ctx context.Context, id string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM upazilas WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check upazila: %w", err)
	}
	return exists, nil
}

func (r *UpazilaRepo) Create(ctx context.Context, u model.Upazila) (model.Upazila, error) {
	return r.queryOne(ctx, "upazila slug "+u.Slug, `
INSERT INTO upazilas (
	id,
	name,
	name_bn,
	slug,
	description,
	description_bn,
	is_active,
	display_order,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING `+upazilaColumns,
		u.ID, u.Name, u.NameBn, u.Slug, u.Description, u.DescriptionBn, u.IsActive, u.DisplayOrder, u.CreatedAt, u.UpdatedAt,
	)
}

func (r *UpazilaRepo) Update(ctx context.Context, u model.Upazila) (model.Upazila, error) {
	return r.queryOne(ctx, "upazila "+u.ID, `
UPDATE upazilas
SET name = $2,
	name_bn = $3,
	slug = $4,
	description = $5,
	description_bn = $6,
	is_active = $7,
	display_order = $8,
	updated_at = $9
WHERE id = $1
RETURNING `+upazilaColumns,
		u.ID, u.Name, u.NameBn, u.Slug, u.Description, u.DescriptionBn, u.IsActive, u.DisplayOrder, u.UpdatedAt,
	)
}

func (r *UpazilaRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.pool, "upazilas", "upazila", id)
}

// EnsureBySlug inserts u unless the slug is taken and reports whether it did.
func (r *UpazilaRepo) EnsureBySlug(ctx context.Context, u model.Upazila) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
INSERT INTO upazilas (
	id,
	name,
	name_bn,
	slug,
	description,
	description_bn,
	is_active,
	display_order,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (slug) DO NOTHING
`, u.ID, u.Name, u.NameBn, u.Slug, u.Description, u.DescriptionBn, u.IsActive, u.DisplayOrder, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("ensure upazila %s: %w", u.Slug, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UpazilaRepo) queryOne(ctx context.Context, what, query string, args ...any) (model.Upazila, error) {
	if r.pool == nil {
		return model.Upazila{}, fmt.Errorf("postgres pool is nil")
	}
	u, err := scanUpazila(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Upazila{}, mapError(err, what)
	}
	return u, nil
}

func scanUpazila(row pgx.Row) (model.Upazila, error) {
	var u model.Upazila
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.NameBn,
		&u.Slug,
		&u.Description,
		&u.DescriptionBn,
		&u.IsActive,
		&u.DisplayOrder,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

type SliderRepo struct {
	pool *pgxpool.Pool
}

func NewSliderRepo(pool *pgxpool.Pool) *SliderRepo {
	return &SliderRepo{pool: pool}
}

func (r *SliderRepo) List(ctx context.Context, activeOnly bool) ([]model.Slider, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+sliderColumns+`
FROM sliders
WHERE (NOT $1 OR is_active)
ORDER BY display_order, created_at
`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list sliders: %w", err)
	}
	defer rows.Close()

	out := make([]model.Slider, 0)
	for rows.Next() {
		s, err := scanSlider(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slider: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SliderRepo) Get(ctx context.Context, id string) (model.Slider, error) {
	return r.queryOne(ctx, "slider "+id, `SELECT `+sliderColumns+` FROM sliders WHERE id = $1`, id)
}

func (r *SliderRepo) Create(ctx context.Context, s model.Slider) (model.Slider, error) {
	return r.queryOne(ctx, "create slider", `
INSERT INTO sliders (
	id,
	title,
	title_bn,
	description,
	description_bn,
	image_url,
	link_url,
	button_text,
	display_order,
	is_active,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING `+sliderColumns,
		s.ID, s.Title, s.TitleBn, s.Description, s.DescriptionBn, s.ImageURL, s.LinkURL, s.ButtonText,
		s.DisplayOrder, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
}

func (r *SliderRepo) Update(ctx context.Context, s model.Slider) (model.Slider, error) {
	return r.queryOne(ctx, "slider "+s.ID, `
UPDATE sliders
SET title = $2,
	title_bn = $3,
	description = $4,
	description_bn = $5,
	image_url = $6,
	link_url = $7,
	button_text = $8,
	display_order = $9,
	is_active = $10,
	updated_at = $11
WHERE id = $1
RETURNING `+sliderColumns,
		s.ID, s.Title, s.TitleBn, s.Description, s.DescriptionBn, s.ImageURL, s.LinkURL, s.ButtonText,
		s.DisplayOrder, s.IsActive, s.UpdatedAt,
	)
}

func (r *SliderRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.pool, "sliders", "slider", id)
}

func (r *SliderRepo) queryOne(ctx context.Context, what, query string, args ...any) (model.Slider, error) {
	if r.pool == nil {
		return model.Slider{}, fmt.Errorf("postgres pool is nil")
	}
	s, err := scanSlider(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Slider{}, mapError(err, what)
	}
	return s, nil
}

func scanSlider(row pgx.Row) (model.Slider, error) {
	var s model.Slider
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.TitleBn,
		&s.Description,
		&s.DescriptionBn,
		&s.ImageURL,
		&s.LinkURL,
		&s.ButtonText,
		&s.DisplayOrder,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

type SettingRepo struct {
	pool *pgxpool.Pool
}

func NewSettingRepo(pool *pgxpool.Pool) *SettingRepo {
	return &SettingRepo{pool: pool}
}

func (r *SettingRepo) List(ctx context.Context) ([]model.SiteSetting, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `SELECT key, value, description, updated_at FROM site_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	out := make([]model.SiteSetting, 0)
	for rows.Next() {
		var s model.SiteSetting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SettingRepo) Get(ctx context.Context, key string) (model.SiteSetting, error) {
	if r.pool == nil {
		return model.SiteSetting{}, fmt.Errorf("postgres pool is nil")
	}

	var s model.SiteSetting
	err := r.pool.QueryRow(ctx, `SELECT key, value, description, updated_at FROM site_settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
	if err != nil {
		return model.SiteSetting{}, mapError(err, "setting "+key)
	}
	return s, nil
}

// PutMany upserts all settings in one transaction. An empty description
// keeps the stored one.
func (r *SettingRepo) PutMany(ctx context.Context, settings []model.SiteSetting) ([]model.SiteSetting, error) {
	out := make([]model.SiteSetting, 0, len(settings))
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		for _, s := range settings {
			var saved model.SiteSetting
			if err := tx.QueryRow(ctx, `
INSERT INTO site_settings (key, value, description, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value,
	description = CASE WHEN EXCLUDED.description = '' THEN site_settings.description ELSE EXCLUDED.description END,
	updated_at = EXCLUDED.updated_at
RETURNING key, value, description, updated_at
`, s.Key, s.Value, s.Description, s.UpdatedAt).Scan(&saved.Key, &saved.Value, &saved.Description, &saved.UpdatedAt); err != nil {
				return fmt.Errorf("upsert setting %s: %w", s.Key, err)
			}
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SettingRepo) EnsureDefaults(ctx context.Context, defaults []model.SiteSetting, at time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	batch := &pgx.Batch{}
	for _, s := range defaults {
		batch.Queue(`
INSERT INTO site_settings (key, value, description, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO NOTHING
`, s.Key, s.Value, s.Description, at)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ensure default settings: %w", err)
	}
	return nil
}

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Append(ctx context.Context, event model.AuditEvent) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	var props []byte
	if len(event.Props) > 0 {
		raw, err := json.Marshal(event.Props)
		if err != nil {
			return fmt.Errorf("marshal audit props: %w", err)
		}
		props = raw
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO audit_events (id, actor_id, action, target_type, target_id, props, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, event.ID, event.ActorID, event.Action, event.TargetType, event.TargetID, props, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]model.AuditEvent, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	limit, offset = model.NormalizePage(limit, offset)
	rows, err := r.pool.Query(ctx, `
SELECT id, actor_id, action, target_type, target_id, props, created_at
FROM audit_events
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	out := make([]model.AuditEvent, 0)
	for rows.Next() {
		var (
			event model.AuditEvent
			props []byte
		)
		if err := rows.Scan(&event.ID, &event.ActorID, &event.Action, &event.TargetType, &event.TargetID, &props, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if len(props) > 0 {
			if err := json.Unmarshal(props, &event.Props); err != nil {
				return nil, fmt.Errorf("decode audit props: %w", err)
			}
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func deleteByID(ctx context.Context, pool *pgxpool.Pool, table, what, id string) error {
	if pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", what, id, rules.ErrNotFound)
	}
	return nil
}
