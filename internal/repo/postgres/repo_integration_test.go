//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
	"github.com/zilaportal/portal/internal/repo/postgres"
)

// newTestPool connects to POSTGRES_TEST_DSN when set, otherwise starts a
// throwaway container. The schema is migrated either way.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("portal_test"),
			tcpostgres.WithUsername("portal"),
			tcpostgres.WithPassword("portal"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			t.Fatalf("start postgres container: %v", err)
		}
		t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

		dsn, err = ctr.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			t.Fatalf("connection string: %v", err)
		}
	}

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := postgres.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func createUser(t *testing.T, repo *postgres.UserRepo, types ...enums.UserType) model.User {
	t.Helper()
	now := time.Now().UTC()
	id := uuid.NewString()
	u, err := repo.Create(context.Background(), model.User{
		ID:             id,
		Email:          id + "@example.com",
		FullName:       "Test User",
		PasswordHash:   "x",
		UserTypes:      append([]enums.UserType{}, types...),
		Roles:          []enums.Role{},
		ApprovalStatus: enums.ApprovalStatusApproved,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestSubmissionReviewIsSingleWinner(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	users := postgres.NewUserRepo(pool)
	subs := postgres.NewSubmissionRepo(pool)

	owner := createUser(t, users, enums.UserTypeHomeTutor)
	now := time.Now().UTC()
	sub, err := subs.Create(ctx, model.Submission{
		ID:        uuid.NewString(),
		Kind:      enums.KindHomeTutor,
		OwnerID:   owner.ID,
		Status:    enums.ContentStatusPending,
		Data:      json.RawMessage(`{"tutorName":"Rahim"}`),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create submission: %v", err)
	}

	const reviewers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		won      int
		rejected int
	)
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := subs.Review(ctx, enums.KindHomeTutor, sub.ID, model.Review{
				To:         enums.ContentStatusApproved,
				ReviewerID: "admin-1",
				At:         time.Now().UTC(),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, rules.ErrInvalidTransition):
				rejected++
			default:
				t.Errorf("unexpected review error: %v", err)
			}
		}()
	}
	wg.Wait()

	if won != 1 || rejected != reviewers-1 {
		t.Fatalf("want one winner, got won=%d rejected=%d", won, rejected)
	}

	got, err := subs.Get(ctx, enums.KindHomeTutor, sub.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != enums.ContentStatusApproved || got.ReviewedBy == nil || got.PublishedAt != nil {
		t.Fatalf("unexpected reviewed row: status=%s reviewedBy=%v publishedAt=%v", got.Status, got.ReviewedBy, got.PublishedAt)
	}

	if _, err := subs.Review(ctx, enums.KindHomeTutor, sub.ID, model.Review{To: enums.ContentStatusRejected, ReviewerID: "admin-1", At: time.Now().UTC()}); !errors.Is(err, rules.ErrInvalidTransition) {
		t.Fatalf("reject after approve: got %v", err)
	}
	if _, err := subs.Review(ctx, enums.KindHomeTutor, uuid.NewString(), model.Review{To: enums.ContentStatusApproved, At: time.Now().UTC()}); !errors.Is(err, rules.ErrNotFound) {
		t.Fatalf("missing submission: got %v", err)
	}
}

func TestBlogReviewStampsPublishedAt(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	owner := createUser(t, postgres.NewUserRepo(pool), enums.UserTypeContentVolunteer)
	subs := postgres.NewSubmissionRepo(pool)

	now := time.Now().UTC()
	sub, err := subs.Create(ctx, model.Submission{
		ID:        uuid.NewString(),
		Kind:      enums.KindBlog,
		OwnerID:   owner.ID,
		Status:    enums.ContentStatusPending,
		Slug:      "hello-" + uuid.NewString()[:8],
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create blog: %v", err)
	}

	approved, err := subs.Review(ctx, enums.KindBlog, sub.ID, model.Review{
		To:             enums.ContentStatusApproved,
		ReviewerID:     "admin-1",
		At:             time.Now().UTC(),
		StampPublished: true,
	})
	if err != nil {
		t.Fatalf("approve blog: %v", err)
	}
	if approved.PublishedAt == nil {
		t.Fatalf("approved blog must carry publishedAt")
	}
}

func TestAccessRequestDecideMergesOnce(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	users := postgres.NewUserRepo(pool)
	requests := postgres.NewAccessRequestRepo(pool)

	user := createUser(t, users, enums.UserTypeGeneralUser, enums.UserTypeHomeTutor)
	now := time.Now().UTC()
	req, err := requests.Create(ctx, model.AccessRequest{
		ID:                 uuid.NewString(),
		UserID:             user.ID,
		RequestedUserTypes: []enums.UserType{enums.UserTypeHomeTutor, enums.UserTypeBusinessOwner},
		Status:             enums.ContentStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	_, err = requests.Create(ctx, model.AccessRequest{
		ID:                 uuid.NewString(),
		UserID:             user.ID,
		RequestedUserTypes: []enums.UserType{enums.UserTypeToLetOwner},
		Status:             enums.ContentStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if !errors.Is(err, rules.ErrPendingRequest) {
		t.Fatalf("second pending request: got %v", err)
	}

	const admins = 6
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		won     int
		results []error
	)
	for i := 0; i < admins; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := requests.Decide(ctx, req.ID, model.AccessDecision{
				To:         enums.ContentStatusApproved,
				AdminNote:  "ok",
				ReviewerID: "admin-1",
				At:         time.Now().UTC(),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				won++
				return
			}
			results = append(results, err)
		}()
	}
	wg.Wait()

	if won != 1 {
		t.Fatalf("want one winning decision, got %d", won)
	}
	for _, err := range results {
		if !errors.Is(err, rules.ErrInvalidTransition) {
			t.Fatalf("losing decision: got %v", err)
		}
	}

	got, err := users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	want := []enums.UserType{enums.UserTypeGeneralUser, enums.UserTypeHomeTutor, enums.UserTypeBusinessOwner}
	if len(got.UserTypes) != len(want) {
		t.Fatalf("unexpected user types: got %v want %v", got.UserTypes, want)
	}
	for i := range want {
		if got.UserTypes[i] != want[i] {
			t.Fatalf("unexpected user types: got %v want %v", got.UserTypes, want)
		}
	}

	decided, err := requests.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if decided.Status != enums.ContentStatusApproved || decided.AdminNote != "ok" {
		t.Fatalf("unexpected decided request: %+v", decided)
	}
}

func TestAccessRequestRejectLeavesTypes(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	users := postgres.NewUserRepo(pool)
	requests := postgres.NewAccessRequestRepo(pool)

	user := createUser(t, users)
	now := time.Now().UTC()
	req, err := requests.Create(ctx, model.AccessRequest{
		ID:                 uuid.NewString(),
		UserID:             user.ID,
		RequestedUserTypes: []enums.UserType{enums.UserTypeToLetOwner},
		Status:             enums.ContentStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	if _, _, err := requests.Decide(ctx, req.ID, model.AccessDecision{To: enums.ContentStatusRejected, ReviewerID: "admin-1", At: time.Now().UTC()}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	got, err := users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(got.UserTypes) != 0 {
		t.Fatalf("rejection must not grant types, got %v", got.UserTypes)
	}
	if _, _, err := requests.Decide(ctx, req.ID, model.AccessDecision{To: enums.ContentStatusApproved, At: time.Now().UTC()}); !errors.Is(err, rules.ErrInvalidTransition) {
		t.Fatalf("approve after reject: got %v", err)
	}
}
