package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/config"
	"github.com/zilaportal/portal/internal/repo/memory"
	pgrepo "github.com/zilaportal/portal/internal/repo/postgres"
	redrepo "github.com/zilaportal/portal/internal/repo/redis"
	accesssvc "github.com/zilaportal/portal/internal/services/accessrequests"
	"github.com/zilaportal/portal/internal/services/audit"
	authsvc "github.com/zilaportal/portal/internal/services/auth"
	contentsvc "github.com/zilaportal/portal/internal/services/content"
	"github.com/zilaportal/portal/internal/services/notify"
	ratesvc "github.com/zilaportal/portal/internal/services/rate"
	settingssvc "github.com/zilaportal/portal/internal/services/settings"
	slidersvc "github.com/zilaportal/portal/internal/services/sliders"
	upazilasvc "github.com/zilaportal/portal/internal/services/upazilas"
	userssvc "github.com/zilaportal/portal/internal/services/users"
	"github.com/zilaportal/portal/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
}

// stores holds one repository per aggregate for the configured driver.
type stores struct {
	users       userssvc.Store
	access      accesssvc.Store
	submissions contentsvc.Store
	upazilas    upazilasvc.Store
	sliders     slidersvc.Store
	settings    settingssvc.Store
	audit       audit.Store
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	st, pool, err := openStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis ping failed, continuing in degraded mode", zap.Error(err))
	}
	cancel()

	notifier := notify.NewLogNotifier(log.Named("notify"))
	trail := audit.NewService(st.audit, log.Named("audit"))

	accessService := accesssvc.NewService(accesssvc.Dependencies{
		Store:    st.access,
		Users:    st.users,
		Notifier: notifier,
		Audit:    trail,
		Logger:   log,
	})
	userService := userssvc.NewService(userssvc.Dependencies{
		Store:    st.users,
		Access:   accessService,
		Notifier: notifier,
		Audit:    trail,
		Logger:   log,
	})
	authService := authsvc.NewService(authsvc.Dependencies{
		JWT:         authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL),
		Sessions:    redrepo.NewSessionRepo(redisClient),
		Credentials: userService,
		Users:       st.users,
		Limiter:     ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), cfg.Rate.LoginPerMinute, cfg.Rate.LoginPerHour),
		RefreshTTL:  cfg.Auth.RefreshTTL,
		Logger:      log,
	})
	contentService := contentsvc.NewService(contentsvc.Dependencies{
		Store:    st.submissions,
		Upazilas: st.upazilas,
		Notifier: notifier,
		Audit:    trail,
		Logger:   log,
	})
	upazilaService := upazilasvc.NewService(st.upazilas, contentService, log)
	sliderService := slidersvc.NewService(st.sliders)
	settingsService := settingssvc.NewService(settingssvc.Dependencies{
		Store:    st.settings,
		Cache:    redrepo.NewCacheRepo(redisClient),
		CacheTTL: cfg.Settings.CacheTTL,
		Audit:    trail,
		Logger:   log,
	})

	if err := bootstrap(ctx, cfg, log, settingsService, upazilaService, userService); err != nil {
		if pool != nil {
			pool.Close()
		}
		_ = redisClient.Close()
		return nil, err
	}

	checks := map[string]handlers.Pinger{
		"postgres": nil,
		"redis":    redisPinger{client: redisClient},
	}
	if pool != nil {
		checks["postgres"] = pool
	}

	RegisterRoutes(r, Dependencies{
		AuthService:     authService,
		UserService:     userService,
		AccessService:   accessService,
		ContentService:  contentService,
		UpazilaService:  upazilaService,
		SliderService:   sliderService,
		SettingsService: settingsService,
		AuditService:    trail,
		HealthChecks:    checks,
		Logger:          log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
	}, nil
}

func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (stores, *pgxpool.Pool, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		db := memory.New()
		return stores{
			users:       memory.NewUserRepo(db),
			access:      memory.NewAccessRequestRepo(db),
			submissions: memory.NewSubmissionRepo(db),
			upazilas:    memory.NewUpazilaRepo(db),
			sliders:     memory.NewSliderRepo(db),
			settings:    memory.NewSettingRepo(db),
			audit:       memory.NewAuditRepo(db),
		}, nil, nil
	case config.DriverPostgres:
		pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return stores{}, nil, fmt.Errorf("init postgres: %w", err)
		}
		if cfg.Postgres.MigrateOnStart {
			if err := pgrepo.Migrate(ctx, pool); err != nil {
				pool.Close()
				return stores{}, nil, fmt.Errorf("migrate postgres: %w", err)
			}
			log.Info("postgres migrations applied")
		}
		return stores{
			users:       pgrepo.NewUserRepo(pool),
			access:      pgrepo.NewAccessRequestRepo(pool),
			submissions: pgrepo.NewSubmissionRepo(pool),
			upazilas:    pgrepo.NewUpazilaRepo(pool),
			sliders:     pgrepo.NewSliderRepo(pool),
			settings:    pgrepo.NewSettingRepo(pool),
			audit:       pgrepo.NewAuditRepo(pool),
		}, pool, nil
	default:
		return stores{}, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// bootstrap fills reference data and the first admin. Every step is idempotent.
func bootstrap(ctx context.Context, cfg config.Config, log *zap.Logger, settings *settingssvc.Service, upazilas *upazilasvc.Service, users *userssvc.Service) error {
	if err := settings.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("bootstrap settings: %w", err)
	}
	if cfg.Bootstrap.SeedUpazilas {
		added, err := upazilas.SeedDefaults(ctx)
		if err != nil {
			return fmt.Errorf("bootstrap upazilas: %w", err)
		}
		if added > 0 {
			log.Info("seeded upazilas", zap.Int("added", added))
		}
	}
	if _, err := users.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	return nil
}

func (a *App) Run() error {
	a.logger.Info("api server started",
		zap.String("addr", a.cfg.HTTP.Addr),
		zap.String("storage", a.cfg.Storage.Driver),
	)
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
