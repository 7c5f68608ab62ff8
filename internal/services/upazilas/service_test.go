package upazilas_test

import (
	"context"
	"errors"
	"testing"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/rules"
	"github.com/zilaportal/portal/internal/repo/memory"
	"github.com/zilaportal/portal/internal/services/upazilas"
)

type fixedCounter map[enums.SubmittableKind]int

func (c fixedCounter) ApprovedCountsByUpazila(context.Context, string) (map[enums.SubmittableKind]int, error) {
	return c, nil
}

var admin = rules.Principal{UserID: "admin", Roles: []enums.Role{enums.RoleAdmin}}

func TestSeedIsIdempotent(t *testing.T) {
	svc := upazilas.NewService(memory.NewUpazilaRepo(memory.New()), nil, nil)
	ctx := context.Background()

	added, err := svc.Seed(ctx, admin)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if added != 7 {
		t.Fatalf("unexpected seeded count: got %d want 7", added)
	}
	added, err = svc.Seed(ctx, admin)
	if err != nil {
		t.Fatalf("seed again: %v", err)
	}
	if added != 0 {
		t.Fatalf("second seed must add nothing, got %d", added)
	}

	list, err := svc.List(ctx, rules.Principal{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 7 || list[0].Slug != "satkhira-sadar" {
		t.Fatalf("unexpected list: %+v", list)
	}

	if _, err := svc.Seed(ctx, rules.Principal{UserID: "u"}); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("non admin seed: got %v", err)
	}
}

func TestGetBySlugIncludesCounts(t *testing.T) {
	svc := upazilas.NewService(memory.NewUpazilaRepo(memory.New()), fixedCounter{enums.KindHospital: 3}, nil)
	ctx := context.Background()

	if _, err := svc.SeedDefaults(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	detail, err := svc.GetBySlug(ctx, rules.Principal{}, "tala")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if detail.Upazila.Name != "Tala" {
		t.Fatalf("unexpected upazila: %+v", detail.Upazila)
	}
	if detail.Counts[enums.KindHospital] != 3 || detail.Counts[enums.KindBlog] != 0 {
		t.Fatalf("unexpected counts: %v", detail.Counts)
	}
	if len(detail.Counts) != len(enums.AllKinds()) {
		t.Fatalf("every kind should be counted, got %v", detail.Counts)
	}
	if _, err := svc.GetBySlug(ctx, rules.Principal{}, "nowhere"); !errors.Is(err, rules.ErrNotFound) {
		t.Fatalf("unknown slug: got %v", err)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	svc := upazilas.NewService(memory.NewUpazilaRepo(memory.New()), nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, admin, upazilas.Input{Name: "New Town"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Slug != "new-town" || !created.IsActive {
		t.Fatalf("unexpected upazila: %+v", created)
	}
	if _, err := svc.Create(ctx, admin, upazilas.Input{Name: "New Town"}); !errors.Is(err, rules.ErrConflict) {
		t.Fatalf("duplicate slug: got %v", err)
	}
	if _, err := svc.Create(ctx, admin, upazilas.Input{Name: "Bad", Slug: "Bad Slug"}); !errors.Is(err, rules.ErrValidation) {
		t.Fatalf("bad slug: got %v", err)
	}

	inactive := false
	updated, err := svc.Update(ctx, admin, created.ID, upazilas.Input{NameBn: "নতুন", IsActive: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "New Town" || updated.NameBn != "নতুন" || updated.IsActive {
		t.Fatalf("unexpected update: %+v", updated)
	}

	public, _ := svc.List(ctx, rules.Principal{})
	if len(public) != 0 {
		t.Fatalf("inactive upazilas must be hidden from the public, got %d", len(public))
	}
	all, _ := svc.List(ctx, admin)
	if len(all) != 1 {
		t.Fatalf("admins see inactive upazilas, got %d", len(all))
	}
	if _, err := svc.GetBySlug(ctx, rules.Principal{}, "new-town"); !errors.Is(err, rules.ErrNotFound) {
		t.Fatalf("inactive slug for public: got %v", err)
	}

	if err := svc.Delete(ctx, admin, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := svc.Exists(ctx, created.ID); ok {
		t.Fatalf("upazila should be gone")
	}
}
