package sliders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
	"github.com/zilaportal/portal/internal/pkg/validate"
)

type Store interface {
	List(ctx context.Context, activeOnly bool) ([]model.Slider, error)
	Get(ctx context.Context, id string) (model.Slider, error)
	Create(ctx context.Context, s model.Slider) (model.Slider, error)
	Update(ctx context.Context, s model.Slider) (model.Slider, error)
	Delete(ctx context.Context, id string) error
}

type Input struct {
	Title         string `json:"title"`
	TitleBn       string `json:"titleBn"`
	Description   string `json:"description"`
	DescriptionBn string `json:"descriptionBn"`
	ImageURL      string `json:"imageUrl"`
	LinkURL       string `json:"linkUrl"`
	ButtonText    string `json:"buttonText"`
	DisplayOrder  int    `json:"displayOrder"`
	IsActive      *bool  `json:"isActive"`
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns sliders by display order. Only admins see inactive entries.
func (s *Service) List(ctx context.Context, p rules.Principal) ([]model.Slider, error) {
	if s.store == nil {
		return nil, fmt.Errorf("slider store is nil")
	}
	return s.store.List(ctx, !p.IsAdmin())
}

func (s *Service) Get(ctx context.Context, p rules.Principal, id string) (model.Slider, error) {
	if s.store == nil {
		return model.Slider{}, fmt.Errorf("slider store is nil")
	}
	slider, err := s.store.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return model.Slider{}, err
	}
	if !slider.IsActive && !p.IsAdmin() {
		return model.Slider{}, fmt.Errorf("slider %s: %w", id, rules.ErrNotFound)
	}
	return slider, nil
}

func (s *Service) Create(ctx context.Context, p rules.Principal, in Input) (model.Slider, error) {
	if err := s.authorize(p); err != nil {
		return model.Slider{}, err
	}
	if err := in.validate(); err != nil {
		return model.Slider{}, err
	}

	now := s.now().UTC()
	slider := model.Slider{ID: uuid.NewString(), IsActive: true, CreatedAt: now}
	in.applyTo(&slider)
	slider.UpdatedAt = now
	return s.store.Create(ctx, slider)
}

// Update replaces every field of the slider with in.
func (s *Service) Update(ctx context.Context, p rules.Principal, id string, in Input) (model.Slider, error) {
	if err := s.authorize(p); err != nil {
		return model.Slider{}, err
	}
	if err := in.validate(); err != nil {
		return model.Slider{}, err
	}

	slider, err := s.store.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return model.Slider{}, err
	}
	in.applyTo(&slider)
	slider.UpdatedAt = s.now().UTC()
	return s.store.Update(ctx, slider)
}

func (s *Service) Delete(ctx context.Context, p rules.Principal, id string) error {
	if err := s.authorize(p); err != nil {
		return err
	}
	return s.store.Delete(ctx, strings.TrimSpace(id))
}

func (s *Service) authorize(p rules.Principal) error {
	if s.store == nil {
		return fmt.Errorf("slider store is nil")
	}
	return rules.Authorize(p, rules.Action{Verb: rules.VerbManage, Resource: rules.ResourceSliders})
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return rules.NewValidationError("title", "is required")
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return rules.NewValidationError("imageUrl", "is required")
	}
	if !validate.URL(strings.TrimSpace(in.ImageURL)) {
		return rules.NewValidationError("imageUrl", "must be an http or https URL")
	}
	link := strings.TrimSpace(in.LinkURL)
	if link != "" && !strings.HasPrefix(link, "/") && !validate.URL(link) {
		return rules.NewValidationError("linkUrl", "must be a site path or an http or https URL")
	}
	if in.DisplayOrder < 0 {
		return rules.NewValidationError("displayOrder", "must not be negative")
	}
	return nil
}

func (in Input) applyTo(slider *model.Slider) {
	slider.Title = strings.TrimSpace(in.Title)
	slider.TitleBn = strings.TrimSpace(in.TitleBn)
	slider.Description = strings.TrimSpace(in.Description)
	slider.DescriptionBn = strings.TrimSpace(in.DescriptionBn)
	slider.ImageURL = strings.TrimSpace(in.ImageURL)
	slider.LinkURL = strings.TrimSpace(in.LinkURL)
	slider.ButtonText = strings.TrimSpace(in.ButtonText)
	slider.DisplayOrder = in.DisplayOrder
	if in.IsActive != nil {
		slider.IsActive = *in.IsActive
	}
}
