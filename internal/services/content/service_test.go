package content_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
	"github.com/zilaportal/portal/internal/repo/memory"
	"github.com/zilaportal/portal/internal/services/content"
)

type recordingNotifier struct {
	reviewed []model.Submission
}

func (n *recordingNotifier) ContentReviewed(_ context.Context, sub model.Submission) {
	n.reviewed = append(n.reviewed, sub)
}

var (
	admin     = rules.Principal{UserID: "admin-1", Roles: []enums.Role{enums.RoleAdmin}, Status: enums.ApprovalStatusApproved}
	moderator = rules.Principal{UserID: "mod-1", Roles: []enums.Role{enums.RoleAreaModerator}, Status: enums.ApprovalStatusApproved}
	tutor     = rules.Principal{UserID: "tutor-1", UserTypes: []enums.UserType{enums.UserTypeHomeTutor}, Status: enums.ApprovalStatusApproved}
	anonymous = rules.Principal{}
)

func newService(t *testing.T) (*content.Service, *recordingNotifier, *memory.DB) {
	t.Helper()
	db := memory.New()
	notifier := &recordingNotifier{}
	svc := content.NewService(content.Dependencies{
		Store:    memory.NewSubmissionRepo(db),
		Upazilas: memory.NewUpazilaRepo(db),
		Notifier: notifier,
	})
	return svc, notifier, db
}

func tutorInput() content.Input {
	return content.Input{Payload: &model.Tutor{
		TutorName: "Rahim Uddin",
		Phone:     "01711000000",
		Subjects:  "Math, Physics",
		Classes:   "9-10",
	}}
}

func TestSubmitAlwaysCreatesPending(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	for _, p := range []rules.Principal{tutor, admin} {
		sub, err := svc.Submit(ctx, p, enums.KindHomeTutor, tutorInput())
		if err != nil {
			t.Fatalf("submit as %s: %v", p.UserID, err)
		}
		if sub.Status != enums.ContentStatusPending {
			t.Fatalf("unexpected status for %s: got %s want PENDING", p.UserID, sub.Status)
		}
		if sub.OwnerID != p.UserID {
			t.Fatalf("unexpected owner: %s", sub.OwnerID)
		}
	}
}

func TestSubmitWithoutCapabilityIsDenied(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	owner := rules.Principal{UserID: "biz-1", UserTypes: []enums.UserType{enums.UserTypeBusinessOwner}}
	if _, err := svc.Submit(ctx, owner, enums.KindHomeTutor, tutorInput()); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("expected authorization denied, got %v", err)
	}

	blank := rules.Principal{UserID: "blank-1"}
	if _, err := svc.Submit(ctx, blank, enums.KindHomeTutor, tutorInput()); !errors.Is(err, rules.ErrNoCapability) {
		t.Fatalf("expected no capability, got %v", err)
	}

	if _, err := svc.Submit(ctx, anonymous, enums.KindHomeTutor, tutorInput()); !errors.Is(err, rules.ErrAuthenticationRequired) {
		t.Fatalf("expected authentication required, got %v", err)
	}

	list, err := svc.List(ctx, admin, enums.KindHomeTutor, content.ListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("denied submissions must not be stored, found %d", len(list))
	}
}

func TestSubmitValidatesPayloadAndUpazila(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, tutor, enums.KindHomeTutor, content.Input{Payload: &model.Tutor{TutorName: "No phone", Subjects: "Math", Classes: "5"}})
	var verr *rules.ValidationError
	if !errors.As(err, &verr) || verr.Field != "phone" {
		t.Fatalf("expected phone validation error, got %v", err)
	}

	unknown := "missing-upazila"
	in := tutorInput()
	in.UpazilaID = &unknown
	if _, err := svc.Submit(ctx, tutor, enums.KindHomeTutor, in); !errors.As(err, &verr) || verr.Field != "upazilaId" {
		t.Fatalf("expected upazilaId validation error, got %v", err)
	}
}

func TestApproveTwiceFailsSecondTime(t *testing.T) {
	svc, notifier, _ := newService(t)
	ctx := context.Background()

	sub, err := svc.Submit(ctx, tutor, enums.KindHomeTutor, tutorInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	approved, err := svc.Approve(ctx, moderator, enums.KindHomeTutor, sub.ID)
	if err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if approved.Status != enums.ContentStatusApproved {
		t.Fatalf("unexpected status: %s", approved.Status)
	}
	if approved.ReviewedBy == nil || *approved.ReviewedBy != moderator.UserID {
		t.Fatalf("reviewer not recorded: %v", approved.ReviewedBy)
	}

	if _, err := svc.Approve(ctx, moderator, enums.KindHomeTutor, sub.ID); !errors.Is(err, rules.ErrInvalidTransition) {
		t.Fatalf("second approve: expected invalid transition, got %v", err)
	}
	if _, err := svc.Reject(ctx, admin, enums.KindHomeTutor, sub.ID); !errors.Is(err, rules.ErrInvalidTransition) {
		t.Fatalf("reject approved: expected invalid transition, got %v", err)
	}
	if len(notifier.reviewed) != 1 {
		t.Fatalf("unexpected notification count: %d", len(notifier.reviewed))
	}
}

func TestReviewRequiresModerator(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	sub, err := svc.Submit(ctx, tutor, enums.KindHomeTutor, tutorInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Approve(ctx, tutor, enums.KindHomeTutor, sub.ID); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("owner approve: got %v", err)
	}
	if _, err := svc.Pending(ctx, tutor, enums.KindHomeTutor, content.ListQuery{}); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("owner pending: got %v", err)
	}
	if _, err := svc.Approve(ctx, moderator, enums.KindHomeTutor, "missing"); !errors.Is(err, rules.ErrNotFound) {
		t.Fatalf("missing approve: got %v", err)
	}
}

func TestPublicListingShowsApprovedOnly(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	pending, _ := svc.Submit(ctx, tutor, enums.KindHomeTutor, tutorInput())
	approved, _ := svc.Submit(ctx, tutor, enums.KindHomeTutor, tutorInput())
	rejected, _ := svc.Submit(ctx, tutor, enums.KindHomeTutor, tutorInput())
	if _, err := svc.Approve(ctx, admin, enums.KindHomeTutor, approved.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Reject(ctx, admin, enums.KindHomeTutor, rejected.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	public, err := svc.List(ctx, anonymous, enums.KindHomeTutor, content.ListQuery{})
	if err != nil {
		t.Fatalf("public list: %v", err)
	}
	if len(public) != 1 || public[0].ID != approved.ID {
		t.Fatalf("unexpected public list: %+v", public)
	}

	// Owners get the public view from the list endpoint too.
	ownerList, _ := svc.List(ctx, tutor, enums.KindHomeTutor, content.ListQuery{})
	if len(ownerList) != 1 {
		t.Fatalf("unexpected owner list size: %d", len(ownerList))
	}

	all, _ := svc.List(ctx, admin, enums.KindHomeTutor, content.ListQuery{})
	if len(all) != 3 {
		t.Fatalf("admin list must include every status, got %d", len(all))
	}

	status := enums.ContentStatusRejected
	filtered, _ := svc.List(ctx, admin, enums.KindHomeTutor, content.ListQuery{Status: &status})
	if len(filtered) != 1 || filtered[0].ID != rejected.ID {
		t.Fatalf("unexpected status filter result: %+v", filtered)
	}

	queue, _ := svc.Pending(ctx, moderator, enums.KindHomeTutor, content.ListQuery{})
	if len(queue) != 1 || queue[0].ID != pending.ID {
		t.Fatalf("unexpected pending queue: %+v", queue)
	}

	mine, _ := svc.Mine(ctx, tutor, enums.KindHomeTutor, content.ListQuery{})
	if len(mine) != 3 {
		t.Fatalf("owner must see every own submission, got %d", len(mine))
	}

	if _, err := svc.Get(ctx, anonymous, enums.KindHomeTutor, pending.ID); !errors.Is(err, rules.ErrNotFound) {
		t.Fatalf("public get of pending item: got %v", err)
	}
	if _, err := svc.Get(ctx, tutor, enums.KindHomeTutor, pending.ID); err != nil {
		t.Fatalf("owner get of pending item: %v", err)
	}
}

func TestListFiltersByCategoryAndUpazila(t *testing.T) {
	svc, _, db := newService(t)
	ctx := context.Background()

	upazilas := memory.NewUpazilaRepo(db)
	if _, err := upazilas.Create(ctx, model.Upazila{ID: "up-tala", Name: "Tala", Slug: "tala", IsActive: true}); err != nil {
		t.Fatalf("create upazila: %v", err)
	}
	tala := "up-tala"

	place := func(name string, kind enums.PlaceType, upazila *string) {
		sub, err := svc.Submit(ctx, admin, enums.KindTouristPlace, content.Input{
			UpazilaID: upazila,
			Payload:   &model.TouristPlace{Name: name, Description: "...", PlaceType: kind},
		})
		if err != nil {
			t.Fatalf("submit %s: %v", name, err)
		}
		if _, err := svc.Approve(ctx, admin, enums.KindTouristPlace, sub.ID); err != nil {
			t.Fatalf("approve %s: %v", name, err)
		}
	}
	place("Tala Zamindar Bari", enums.PlaceTypeHistorical, &tala)
	place("Kopotakkho River", enums.PlaceTypeNatural, &tala)
	place("Mandarbaria Beach", enums.PlaceTypeNatural, nil)

	natural, _ := svc.List(ctx, anonymous, enums.KindTouristPlace, content.ListQuery{Category: "natural"})
	if len(natural) != 2 {
		t.Fatalf("unexpected natural count: %d", len(natural))
	}
	inTala, _ := svc.List(ctx, anonymous, enums.KindTouristPlace, content.ListQuery{UpazilaID: tala, Category: "NATURAL"})
	if len(inTala) != 1 {
		t.Fatalf("unexpected tala natural count: %d", len(inTala))
	}

	counts, err := svc.ApprovedCountsByUpazila(ctx, tala)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[enums.KindTouristPlace] != 2 {
		t.Fatalf("unexpected approved count: %d", counts[enums.KindTouristPlace])
	}
}

func TestUpdateKeepsStatusAndChecksOwner(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	sub, _ := svc.Submit(ctx, tutor, enums.KindHomeTutor, tutorInput())
	if _, err := svc.Approve(ctx, admin, enums.KindHomeTutor, sub.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	in := tutorInput()
	in.Payload.(*model.Tutor).ExpectedFee = 4000
	updated, err := svc.Update(ctx, tutor, enums.KindHomeTutor, sub.ID, in)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Status != enums.ContentStatusApproved {
		t.Fatalf("update must keep status, got %s", updated.Status)
	}
	var data model.Tutor
	if err := json.Unmarshal(updated.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.ExpectedFee != 4000 {
		t.Fatalf("payload not updated: %+v", data)
	}

	other := rules.Principal{UserID: "tutor-2", UserTypes: []enums.UserType{enums.UserTypeHomeTutor}}
	if _, err := svc.Update(ctx, other, enums.KindHomeTutor, sub.ID, tutorInput()); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("non-owner update: got %v", err)
	}

	suspended := tutor
	suspended.Status = enums.ApprovalStatusSuspended
	if _, err := svc.Update(ctx, suspended, enums.KindHomeTutor, sub.ID, tutorInput()); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("suspended update: got %v", err)
	}
}

func TestDeleteIsAdminOnly(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	sub, _ := svc.Submit(ctx, tutor, enums.KindHomeTutor, tutorInput())
	if err := svc.Delete(ctx, tutor, enums.KindHomeTutor, sub.ID); !errors.Is(err, rules.ErrAuthorizationDenied) {
		t.Fatalf("owner delete: got %v", err)
	}
	if err := svc.Delete(ctx, admin, enums.KindHomeTutor, sub.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := svc.Get(ctx, admin, enums.KindHomeTutor, sub.ID); !errors.Is(err, rules.ErrNotFound) {
		t.Fatalf("deleted item still visible: %v", err)
	}
}

func TestBlogApprovalStampsPublishTimeAndSlug(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	volunteer := rules.Principal{UserID: "vol-1", Roles: []enums.Role{enums.RoleContentVolunteer}}
	sub, err := svc.Submit(ctx, volunteer, enums.KindBlog, content.Input{Payload: &model.Blog{Title: "Mangrove Walk in Shyamnagar", Content: "..."}})
	if err != nil {
		t.Fatalf("submit blog: %v", err)
	}
	if sub.Slug == "" || sub.PublishedAt != nil {
		t.Fatalf("unexpected fresh blog: slug=%q publishedAt=%v", sub.Slug, sub.PublishedAt)
	}

	approved, err := svc.Approve(ctx, admin, enums.KindBlog, sub.ID)
	if err != nil {
		t.Fatalf("approve blog: %v", err)
	}
	if approved.PublishedAt == nil {
		t.Fatalf("approval must stamp publish time")
	}

	bySlug, err := svc.GetBySlug(ctx, anonymous, enums.KindBlog, sub.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if bySlug.ID != sub.ID {
		t.Fatalf("unexpected slug match: %s", bySlug.ID)
	}
}

func TestUnknownKindIsNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	if _, err := svc.List(context.Background(), anonymous, "spaceships", content.ListQuery{}); !errors.Is(err, rules.ErrNotFound) {
		t.Fatalf("unknown kind: got %v", err)
	}
}
