package settings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
	redrepo "github.com/zilaportal/portal/internal/repo/redis"
	"github.com/zilaportal/portal/internal/services/audit"
)

const (
	cacheKey       = "settings:all"
	maxValueLength = 4000
)

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

type Store interface {
	List(ctx context.Context) ([]model.SiteSetting, error)
	Get(ctx context.Context, key string) (model.SiteSetting, error)
	PutMany(ctx context.Context, settings []model.SiteSetting) ([]model.SiteSetting, error)
	EnsureDefaults(ctx context.Context, defaults []model.SiteSetting, at time.Time) error
}

// Cache holds the public settings list between writes.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Dependencies struct {
	Store    Store
	Cache    Cache
	CacheTTL time.Duration
	Audit    *audit.Service
	Logger   *zap.Logger
}

type Service struct {
	store    Store
	cache    Cache
	cacheTTL time.Duration
	audit    *audit.Service
	log      *zap.Logger
	now      func() time.Time
}

// Update is one entry of a bulk write.
type Update struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

var defaults = []model.SiteSetting{
	{Key: "site_name", Value: "সাতক্ষীরা", Description: "Site name shown in the header"},
	{Key: "site_name_en", Value: "Satkhira", Description: "Site name in English"},
	{Key: "site_tagline", Value: "Satkhira Community Platform", Description: "Tagline under the site name"},
	{Key: "footer_about", Value: "Satkhira Community Platform", Description: "Footer about text"},
	{Key: "footer_about_bn", Value: "সাতক্ষীরা কমিউনিটি প্ল্যাটফর্ম", Description: "Footer about text in Bangla"},
	{Key: "footer_address", Value: "Satkhira, Bangladesh", Description: "Contact address"},
	{Key: "footer_email", Value: "info@satkhira.com", Description: "Contact email"},
	{Key: "footer_phone", Value: "+880 1234-567890", Description: "Contact phone"},
	{Key: "footer_copyright", Value: "© 2024 Satkhira Community. All rights reserved.", Description: "Footer copyright line"},
}

func DefaultSettings() []model.SiteSetting {
	return append([]model.SiteSetting(nil), defaults...)
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		store:    deps.Store,
		cache:    deps.Cache,
		cacheTTL: ttl,
		audit:    deps.Audit,
		log:      log,
		now:      time.Now,
	}
}

// EnsureDefaults adds the default keys that are missing. Existing values are kept.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("settings store is nil")
	}
	if err := s.store.EnsureDefaults(ctx, DefaultSettings(), s.now().UTC()); err != nil {
		return fmt.Errorf("ensure default settings: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) List(ctx context.Context) ([]model.SiteSetting, error) {
	if s.store == nil {
		return nil, fmt.Errorf("settings store is nil")
	}

	if s.cache != nil {
		var cached []model.SiteSetting
		err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redrepo.ErrCacheMiss) {
			s.log.Warn("settings cache read failed", zap.Error(err))
		}
	}

	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, list, s.cacheTTL); err != nil {
			s.log.Warn("settings cache write failed", zap.Error(err))
		}
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, key string) (model.SiteSetting, error) {
	if s.store == nil {
		return model.SiteSetting{}, fmt.Errorf("settings store is nil")
	}
	return s.store.Get(ctx, strings.TrimSpace(key))
}

func (s *Service) Put(ctx context.Context, p rules.Principal, key, value, description string) (model.SiteSetting, error) {
	out, err := s.PutMany(ctx, p, []Update{{Key: key, Value: value, Description: description}})
	if err != nil {
		return model.SiteSetting{}, err
	}
	return out[0], nil
}

// PutMany writes every update in one store call. A bad entry rejects the batch.
func (s *Service) PutMany(ctx context.Context, p rules.Principal, updates []Update) ([]model.SiteSetting, error) {
	if s.store == nil {
		return nil, fmt.Errorf("settings store is nil")
	}
	if err := rules.Authorize(p, rules.Action{Verb: rules.VerbManage, Resource: rules.ResourceSettings}); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, rules.NewValidationError("settings", "must not be empty")
	}

	now := s.now().UTC()
	batch := make([]model.SiteSetting, 0, len(updates))
	seen := make(map[string]struct{}, len(updates))
	for _, u := range updates {
		key := strings.TrimSpace(u.Key)
		if !keyPattern.MatchString(key) {
			return nil, rules.NewValidationError("key", fmt.Sprintf("%q must be lowercase snake case", key))
		}
		if _, ok := seen[key]; ok {
			return nil, rules.NewValidationError("key", fmt.Sprintf("%q is repeated", key))
		}
		seen[key] = struct{}{}
		if len(u.Value) > maxValueLength {
			return nil, rules.NewValidationError("value", fmt.Sprintf("%q is too long", key))
		}
		batch = append(batch, model.SiteSetting{
			Key:         key,
			Value:       u.Value,
			Description: strings.TrimSpace(u.Description),
			UpdatedAt:   now,
		})
	}

	saved, err := s.store.PutMany(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("put settings: %w", err)
	}
	s.invalidate(ctx)

	for _, setting := range saved {
		s.audit.Record(ctx, p.UserID, audit.ActionSettingChanged, string(rules.ResourceSettings), setting.Key, nil)
	}
	return saved, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		s.log.Warn("settings cache invalidation failed", zap.Error(err))
	}
}
