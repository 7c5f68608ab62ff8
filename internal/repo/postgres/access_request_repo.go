package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
)

const (
	accessRequestColumns = `id, user_id, requested_user_types, note, status, admin_note, reviewed_by, reviewed_at, created_at, updated_at`
	onePendingConstraint = "access_requests_one_pending_key"
)

type AccessRequestRepo struct {
	pool *pgxpool.Pool
}

func NewAccessRequestRepo(pool *pgxpool.Pool) *AccessRequestRepo {
	return &AccessRequestRepo{pool: pool}
}

func (r *AccessRequestRepo) Create(ctx context.Context, req model.AccessRequest) (model.AccessRequest, error) {
	if r.pool == nil {
		return model.AccessRequest{}, fmt.Errorf("postgres pool is nil")
	}

	created, err := scanAccessRequest(r.pool.QueryRow(ctx, `
INSERT INTO access_requests (
	id,
	user_id,
	requested_user_types,
	note,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+accessRequestColumns,
		req.ID,
		req.UserID,
		typesToText(req.RequestedUserTypes),
		req.Note,
		string(req.Status),
		req.CreatedAt,
		req.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err, onePendingConstraint) {
			return model.AccessRequest{}, rules.ErrPendingRequest
		}
		return model.AccessRequest{}, mapError(err, "create access request")
	}
	return created, nil
}

func (r *AccessRequestRepo) Get(ctx context.Context, id string) (model.AccessRequest, error) {
	if r.pool == nil {
		return model.AccessRequest{}, fmt.Errorf("postgres pool is nil")
	}
	req, err := scanAccessRequest(r.pool.QueryRow(ctx, `SELECT `+accessRequestColumns+` FROM access_requests WHERE id = $1`, id))
	if err != nil {
		return model.AccessRequest{}, mapError(err, "access request "+id)
	}
	return req, nil
}

func (r *AccessRequestRepo) List(ctx context.Context, filter model.AccessRequestFilter) ([]model.AccessRequest, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	limit, offset := model.NormalizePage(filter.Limit, filter.Offset)
	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+accessRequestColumns+`
FROM access_requests
WHERE ($1 = '' OR user_id = $1)
  AND ($2::text IS NULL OR status = $2)
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4
`, filter.UserID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	defer rows.Close()

	out := make([]model.AccessRequest, 0)
	for rows.Next() {
		req, err := scanAccessRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan access request: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access requests: %w", err)
	}
	return out, nil
}

// Decide locks the request and its user, applies d and, on approval, writes
// the union of held and requested types in the same transaction.
func (r *AccessRequestRepo) Decide(ctx context.Context, id string, d model.AccessDecision) (model.AccessRequest, model.User, error) {
	var (
		decided model.AccessRequest
		user    model.User
	)

	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		req, err := scanAccessRequest(tx.QueryRow(ctx, `SELECT `+accessRequestColumns+` FROM access_requests WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return mapError(err, "access request "+id)
		}
		if err := rules.ContentTransition(req.Status, d.To); err != nil {
			return err
		}

		user, err = scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, req.UserID))
		if err != nil {
			return mapError(err, "user "+req.UserID)
		}

		decided, err = scanAccessRequest(tx.QueryRow(ctx, `
UPDATE access_requests
SET status = $2, admin_note = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $5
WHERE id = $1
RETURNING `+accessRequestColumns,
			id, string(d.To), d.AdminNote, d.ReviewerID, d.At,
		))
		if err != nil {
			return fmt.Errorf("update access request: %w", err)
		}

		if d.To != enums.ContentStatusApproved {
			return nil
		}
		merged := rules.MergeUserTypes(user.UserTypes, req.RequestedUserTypes)
		user, err = scanUser(tx.QueryRow(ctx, `
UPDATE users
SET user_types = $2, updated_at = $3
WHERE id = $1
RETURNING `+userColumns,
			user.ID, typesToText(merged), d.At,
		))
		if err != nil {
			return fmt.Errorf("merge user types: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.AccessRequest{}, model.User{}, err
	}
	return decided, user, nil
}

func (r *AccessRequestRepo) CountPending(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM access_requests
WHERE status = 'PENDING'
`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending access requests: %w", err)
	}
	return count, nil
}

func scanAccessRequest(row pgx.Row) (model.AccessRequest, error) {
	var (
		req    model.AccessRequest
		types  []string
		status string
	)
	if err := row.Scan(
		&req.ID,
		&req.UserID,
		&types,
		&req.Note,
		&status,
		&req.AdminNote,
		&req.ReviewedBy,
		&req.ReviewedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return model.AccessRequest{}, err
	}
	req.RequestedUserTypes = textToTypes(types)
	req.Status = enums.ContentStatus(status)
	return req, nil
}
