package upazilas

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
	"github.com/zilaportal/portal/internal/services/content"
)

type Store interface {
	List(ctx context.Context, activeOnly bool) ([]model.Upazila, error)
	GetByID(ctx context.Context, id string) (model.Upazila, error)
	GetBySlug(ctx context.Context, slug string) (model.Upazila, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, u model.Upazila) (model.Upazila, error)
	Update(ctx context.Context, u model.Upazila) (model.Upazila, error)
	Delete(ctx context.Context, id string) error
	EnsureBySlug(ctx context.Context, u model.Upazila) (bool, error)
}

type ContentCounter interface {
	ApprovedCountsByUpazila(ctx context.Context, upazilaID string) (map[enums.SubmittableKind]int, error)
}

type Service struct {
	store   Store
	counter ContentCounter
	log     *zap.Logger
	now     func() time.Time
}

// Input is a create or update body. Nil pointers keep the current value on update.
type Input struct {
	Name          string
	NameBn        string
	Slug          string
	Description   string
	DescriptionBn string
	IsActive      *bool
	DisplayOrder  *int
}

type Detail struct {
	Upazila model.Upazila
	Counts  map[enums.SubmittableKind]int
}

var district = []model.Upazila{
	{Name: "Satkhira Sadar", NameBn: "সাতক্ষীরা সদর", Slug: "satkhira-sadar", DisplayOrder: 1},
	{Name: "Assasuni", NameBn: "আশাশুনি", Slug: "assasuni", DisplayOrder: 2},
	{Name: "Debhata", NameBn: "দেবহাটা", Slug: "debhata", DisplayOrder: 3},
	{Name: "Kalaroa", NameBn: "কলারোয়া", Slug: "kalaroa", DisplayOrder: 4},
	{Name: "Kaliganj", NameBn: "কালিগঞ্জ", Slug: "kaliganj", DisplayOrder: 5},
	{Name: "Shyamnagar", NameBn: "শ্যামনগর", Slug: "shyamnagar", DisplayOrder: 6},
	{Name: "Tala", NameBn: "তালা", Slug: "tala", DisplayOrder: 7},
}

func NewService(store Store, counter ContentCounter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   store,
		counter: counter,
		log:     log,
		now:     time.Now,
	}
}

// List returns active upazilas ordered for display. Admins also see inactive ones.
func (s *Service) List(ctx context.Context, p rules.Principal) ([]model.Upazila, error) {
	if s.store == nil {
		return nil, fmt.Errorf("upazila store is nil")
	}
	return s.store.List(ctx, !p.IsAdmin())
}

// GetBySlug returns the upazila with the number of approved items per kind.
func (s *Service) GetBySlug(ctx context.Context, p rules.Principal, slug string) (Detail, error) {
	if s.store == nil {
		return Detail{}, fmt.Errorf("upazila store is nil")
	}
	u, err := s.store.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return Detail{}, err
	}
	if !u.IsActive && !p.IsAdmin() {
		return Detail{}, fmt.Errorf("upazila %s: %w", slug, rules.ErrNotFound)
	}

	counts := make(map[enums.SubmittableKind]int, len(enums.AllKinds()))
	for _, kind := range enums.AllKinds() {
		counts[kind] = 0
	}
	if s.counter != nil {
		approved, err := s.counter.ApprovedCountsByUpazila(ctx, u.ID)
		if err != nil {
			return Detail{}, fmt.Errorf("count upazila content: %w", err)
		}
		for kind, n := range approved {
			counts[kind] = n
		}
	}
	return Detail{Upazila: u, Counts: counts}, nil
}

// Exists is used by content validation to check upazila references.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if s.store == nil {
		return false, fmt.Errorf("upazila store is nil")
	}
	return s.store.Exists(ctx, id)
}

func (s *Service) Create(ctx context.Context, p rules.Principal, in Input) (model.Upazila, error) {
	if err := s.authorize(p); err != nil {
		return model.Upazila{}, err
	}

	now := s.now().UTC()
	u := model.Upazila{
		ID:        uuid.NewString(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := apply(&u, in); err != nil {
		return model.Upazila{}, err
	}
	return s.store.Create(ctx, u)
}

func (s *Service) Update(ctx context.Context, p rules.Principal, id string, in Input) (model.Upazila, error) {
	if err := s.authorize(p); err != nil {
		return model.Upazila{}, err
	}

	u, err := s.store.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return model.Upazila{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		in.Name = u.Name
	}
	if err := apply(&u, in); err != nil {
		return model.Upazila{}, err
	}
	u.UpdatedAt = s.now().UTC()
	return s.store.Update(ctx, u)
}

func (s *Service) Delete(ctx context.Context, p rules.Principal, id string) error {
	if err := s.authorize(p); err != nil {
		return err
	}
	return s.store.Delete(ctx, strings.TrimSpace(id))
}

// Seed inserts the district's upazilas that are missing and reports how many
// were added. Existing slugs are left untouched.
func (s *Service) Seed(ctx context.Context, p rules.Principal) (int, error) {
	if err := s.authorize(p); err != nil {
		return 0, err
	}
	return s.seed(ctx)
}

// SeedDefaults runs the seed without a caller, at startup.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, fmt.Errorf("upazila store is nil")
	}
	return s.seed(ctx)
}

func (s *Service) seed(ctx context.Context) (int, error) {
	now := s.now().UTC()
	added := 0
	for _, u := range district {
		u.ID = uuid.NewString()
		u.IsActive = true
		u.CreatedAt = now
		u.UpdatedAt = now
		inserted, err := s.store.EnsureBySlug(ctx, u)
		if err != nil {
			return added, fmt.Errorf("seed upazila %s: %w", u.Slug, err)
		}
		if inserted {
			added++
		}
	}
	if added > 0 {
		s.log.Info("upazilas seeded", zap.Int("added", added))
	}
	return added, nil
}

func (s *Service) authorize(p rules.Principal) error {
	if s.store == nil {
		return fmt.Errorf("upazila store is nil")
	}
	return rules.Authorize(p, rules.Action{Verb: rules.VerbManage, Resource: rules.ResourceUpazilas})
}

func apply(u *model.Upazila, in Input) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return rules.NewValidationError("name", "is required")
	}
	slug := strings.TrimSpace(in.Slug)
	switch {
	case slug == "" && u.Slug == "":
		slug = content.Slugify(name)
	case slug == "":
		slug = u.Slug
	default:
		if content.Slugify(slug) != slug {
			return rules.NewValidationError("slug", "must contain only lowercase letters, digits and dashes")
		}
	}

	u.Name = name
	u.Slug = slug
	if v := strings.TrimSpace(in.NameBn); v != "" {
		u.NameBn = v
	}
	if v := strings.TrimSpace(in.Description); v != "" {
		u.Description = v
	}
	if v := strings.TrimSpace(in.DescriptionBn); v != "" {
		u.DescriptionBn = v
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.DisplayOrder != nil {
		u.DisplayOrder = *in.DisplayOrder
	}
	return nil
}
