package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
)

const submissionColumns = `id, kind, owner_id, upazila_id, category, status, slug, published_at, reviewed_by, reviewed_at, data, created_at, updated_at`

type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) Create(ctx context.Context, sub model.Submission) (model.Submission, error) {
	if r.pool == nil {
		return model.Submission{}, fmt.Errorf("postgres pool is nil")
	}

	data := sub.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	created, err := scanSubmission(r.pool.QueryRow(ctx, `
INSERT INTO submissions (
	id,
	kind,
	owner_id,
	upazila_id,
	category,
	status,
	slug,
	data,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING `+submissionColumns,
		sub.ID,
		string(sub.Kind),
		sub.OwnerID,
		sub.UpazilaID,
		sub.Category,
		string(sub.Status),
		sub.Slug,
		[]byte(data),
		sub.CreatedAt,
		sub.UpdatedAt,
	))
	if err != nil {
		return model.Submission{}, mapError(err, "create submission")
	}
	return created, nil
}

func (r *SubmissionRepo) Get(ctx context.Context, kind enums.SubmittableKind, id string) (model.Submission, error) {
	return r.queryOne(ctx, r.pool, "submission "+id, `
SELECT `+submissionColumns+`
FROM submissions
WHERE kind = $1 AND id = $2
`, string(kind), id)
}

func (r *SubmissionRepo) GetBySlug(ctx context.Context, kind enums.SubmittableKind, slug string) (model.Submission, error) {
	if slug == "" {
		return model.Submission{}, fmt.Errorf("submission slug: %w", rules.ErrNotFound)
	}
	return r.queryOne(ctx, r.pool, "submission slug "+slug, `
SELECT `+submissionColumns+`
FROM submissions
WHERE kind = $1 AND slug = $2
`, string(kind), slug)
}

func (r *SubmissionRepo) List(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	where, args := submissionWhere(filter)
	limit, offset := model.NormalizePage(filter.Limit, filter.Offset)
	args = append(args, limit, offset)

	query := `SELECT ` + submissionColumns + ` FROM submissions` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]model.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

// Update replaces the editable fields. Status and review stamps are left
// to Review.
func (r *SubmissionRepo) Update(ctx context.Context, sub model.Submission) (model.Submission, error) {
	return r.queryOne(ctx, r.pool, "submission "+sub.ID, `
UPDATE submissions
SET upazila_id = $3, category = $4, data = $5, updated_at = $6
WHERE kind = $1 AND id = $2
RETURNING `+submissionColumns,
		string(sub.Kind), sub.ID, sub.UpazilaID, sub.Category, []byte(sub.Data), sub.UpdatedAt,
	)
}

// Review moves a PENDING item in a single conditional statement. When no row
// matches, the current status decides between not found and a rejected
// transition.
func (r *SubmissionRepo) Review(ctx context.Context, kind enums.SubmittableKind, id string, review model.Review) (model.Submission, error) {
	if r.pool == nil {
		return model.Submission{}, fmt.Errorf("postgres pool is nil")
	}

	sub, err := scanSubmission(r.pool.QueryRow(ctx, `
UPDATE submissions
SET status = $3,
	reviewed_by = $4,
	reviewed_at = $5,
	updated_at = $5,
	published_at = CASE WHEN $6 THEN COALESCE(published_at, $5) ELSE published_at END
WHERE kind = $1 AND id = $2 AND status = 'PENDING'
RETURNING `+submissionColumns,
		string(kind), id, string(review.To), review.ReviewerID, review.At, review.StampPublished,
	))
	if err == nil {
		return sub, nil
	}
	if !isNoRows(err) {
		return model.Submission{}, fmt.Errorf("review submission: %w", err)
	}

	status, err := currentStatus(ctx, r.pool, kind, id)
	if err != nil {
		return model.Submission{}, err
	}
	if err := rules.ContentTransition(status, review.To); err != nil {
		return model.Submission{}, err
	}
	return model.Submission{}, &rules.TransitionError{From: string(status), To: string(review.To)}
}

func (r *SubmissionRepo) Delete(ctx context.Context, kind enums.SubmittableKind, id string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("submission %s: %w", id, rules.ErrNotFound)
	}
	return nil
}

func (r *SubmissionRepo) CountByStatus(ctx context.Context, status enums.ContentStatus) (map[enums.SubmittableKind]int, error) {
	return r.countByKind(ctx, `
SELECT kind, COUNT(*)
FROM submissions
WHERE status = $1
GROUP BY kind
`, string(status))
}

func (r *SubmissionRepo) CountApprovedByUpazila(ctx context.Context, upazilaID string) (map[enums.SubmittableKind]int, error) {
	return r.countByKind(ctx, `
SELECT kind, COUNT(*)
FROM submissions
WHERE status = 'APPROVED' AND upazila_id = $1
GROUP BY kind
`, upazilaID)
}

func (r *SubmissionRepo) countByKind(ctx context.Context, query string, args ...any) (map[enums.SubmittableKind]int, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	defer rows.Close()

	out := make(map[enums.SubmittableKind]int)
	for _, kind := range enums.AllKinds() {
		out[kind] = 0
	}
	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan submission count: %w", err)
		}
		out[enums.SubmittableKind(kind)] = count
	}
	return out, rows.Err()
}

func (r *SubmissionRepo) queryOne(ctx context.Context, q querier, what, query string, args ...any) (model.Submission, error) {
	if r.pool == nil {
		return model.Submission{}, fmt.Errorf("postgres pool is nil")
	}
	sub, err := scanSubmission(q.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Submission{}, mapError(err, what)
	}
	return sub, nil
}

func currentStatus(ctx context.Context, q querier, kind enums.SubmittableKind, id string) (enums.ContentStatus, error) {
	var status string
	err := q.QueryRow(ctx, `SELECT status FROM submissions WHERE kind = $1 AND id = $2`, string(kind), id).Scan(&status)
	if err != nil {
		return "", mapError(err, "submission "+id)
	}
	return enums.ContentStatus(status), nil
}

func submissionWhere(filter model.SubmissionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Kind != "" {
		add("kind = $%d", string(filter.Kind))
	}
	if len(filter.Statuses) > 0 {
		add("status = ANY($%d)", statusesToText(filter.Statuses))
	}
	if filter.OwnerID != "" {
		add("owner_id = $%d", filter.OwnerID)
	}
	if filter.UpazilaID != "" {
		add("upazila_id = $%d", filter.UpazilaID)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanSubmission(row pgx.Row) (model.Submission, error) {
	var (
		sub    model.Submission
		kind   string
		status string
		data   []byte
	)
	if err := row.Scan(
		&sub.ID,
		&kind,
		&sub.OwnerID,
		&sub.UpazilaID,
		&sub.Category,
		&status,
		&sub.Slug,
		&sub.PublishedAt,
		&sub.ReviewedBy,
		&sub.ReviewedAt,
		&data,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return model.Submission{}, err
	}
	sub.Kind = enums.SubmittableKind(kind)
	sub.Status = enums.ContentStatus(status)
	sub.Data = json.RawMessage(data)
	return sub, nil
}
