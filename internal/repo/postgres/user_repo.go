package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
)

const userColumns = `id, email, full_name, phone, password_hash, user_types, roles, approval_status, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	created, err := scanUser(r.pool.QueryRow(ctx, `
INSERT INTO users (
	id,
	email,
	full_name,
	phone,
	password_hash,
	user_types,
	roles,
	approval_status,
	created_at,
	updated_at
) VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING `+userColumns,
		u.ID,
		u.Email,
		u.FullName,
		u.Phone,
		u.PasswordHash,
		typesToText(u.UserTypes),
		rolesToText(u.Roles),
		string(u.ApprovalStatus),
		u.CreatedAt,
		u.UpdatedAt,
	))
	if err != nil {
		return model.User{}, mapError(err, "create user "+u.Email)
	}
	return created, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.queryOne(ctx, "user "+id, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.queryOne(ctx, "user "+email, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) List(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
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
SELECT `+userColumns+`
FROM users
WHERE ($1::text IS NULL OR approval_status = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// UpdateStatus performs a conditional update so concurrent moderators cannot
// apply the same transition twice.
func (r *UserRepo) UpdateStatus(ctx context.Context, id string, from []enums.ApprovalStatus, to enums.ApprovalStatus, at time.Time) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	sources := make([]string, 0, len(from))
	for _, s := range from {
		sources = append(sources, string(s))
	}

	updated, err := scanUser(r.pool.QueryRow(ctx, `
UPDATE users
SET approval_status = $2, updated_at = $3
WHERE id = $1 AND approval_status = ANY($4)
RETURNING `+userColumns,
		id, string(to), at, sources,
	))
	if err == nil {
		return updated, nil
	}
	if !isNoRows(err) {
		return model.User{}, fmt.Errorf("update user status: %w", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	return model.User{}, &rules.TransitionError{From: string(current.ApprovalStatus), To: string(to)}
}

func (r *UserRepo) CountByStatus(ctx context.Context) (map[enums.ApprovalStatus]int, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `SELECT approval_status, COUNT(*) FROM users GROUP BY approval_status`)
	if err != nil {
		return nil, fmt.Errorf("count users by status: %w", err)
	}
	defer rows.Close()

	out := make(map[enums.ApprovalStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan user count: %w", err)
		}
		out[enums.ApprovalStatus(status)] = count
	}
	return out, rows.Err()
}

func (r *UserRepo) queryOne(ctx context.Context, what, query string, args ...any) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return model.User{}, mapError(err, what)
	}
	return u, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		u      model.User
		types  []string
		roles  []string
		status string
	)
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.Phone,
		&u.PasswordHash,
		&types,
		&roles,
		&status,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return model.User{}, err
	}
	u.UserTypes = textToTypes(types)
	u.Roles = textToRoles(roles)
	u.ApprovalStatus = enums.ApprovalStatus(status)
	return u, nil
}
