package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/infra/metrics"
	accesssvc "github.com/zilaportal/portal/internal/services/accessrequests"
	"github.com/zilaportal/portal/internal/services/audit"
	authsvc "github.com/zilaportal/portal/internal/services/auth"
	contentsvc "github.com/zilaportal/portal/internal/services/content"
	settingssvc "github.com/zilaportal/portal/internal/services/settings"
	slidersvc "github.com/zilaportal/portal/internal/services/sliders"
	upazilasvc "github.com/zilaportal/portal/internal/services/upazilas"
	userssvc "github.com/zilaportal/portal/internal/services/users"
	"github.com/zilaportal/portal/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService     *authsvc.Service
	UserService     *userssvc.Service
	AccessService   *accesssvc.Service
	ContentService  *contentsvc.Service
	UpazilaService  *upazilasvc.Service
	SliderService   *slidersvc.Service
	SettingsService *settingssvc.Service
	AuditService    *audit.Service
	HealthChecks    map[string]handlers.Pinger
	Logger          *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.UserService, deps.Logger)
	usersHandler := handlers.NewUsersHandler(deps.UserService, deps.AccessService, deps.Logger)
	accessHandler := handlers.NewAccessRequestsHandler(deps.AccessService, deps.Logger)
	upazilasHandler := handlers.NewUpazilasHandler(deps.UpazilaService, deps.Logger)
	slidersHandler := handlers.NewSlidersHandler(deps.SliderService, deps.Logger)
	settingsHandler := handlers.NewSettingsHandler(deps.SettingsService, deps.Logger)
	statsHandler := handlers.NewStatsHandler(deps.ContentService, deps.AccessService, deps.UserService, deps.Logger)
	auditHandler := handlers.NewAuditHandler(deps.AuditService, deps.Logger)
	healthHandler := handlers.NewHealthHandler()
	for name, p := range deps.HealthChecks {
		healthHandler.AttachCheck(name, p)
	}
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	optionalMW := OptionalAuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.With(authMW).Post("/logout", authHandler.Logout)
			r.With(authMW).Post("/logout-all", authHandler.LogoutAll)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authMW)
			r.Get("/", usersHandler.List)
			r.Post("/", usersHandler.Create)
			r.Get("/pending", usersHandler.Pending)
			r.Get("/me", usersHandler.Me)
			r.Post("/request-access", usersHandler.RequestAccess)
			r.Patch("/{id}/approve", usersHandler.Approve)
			r.Patch("/{id}/suspend", usersHandler.Suspend)
			r.Patch("/{id}/reject", usersHandler.Reject)
		})

		r.Route("/access-requests", func(r chi.Router) {
			r.Use(authMW)
			r.Post("/", accessHandler.Create)
			r.Get("/", accessHandler.List)
			r.Get("/pending", accessHandler.Pending)
			r.Get("/my-requests", accessHandler.Mine)
			r.Patch("/{id}/approve", accessHandler.Approve)
			r.Patch("/{id}/reject", accessHandler.Reject)
		})

		for _, spec := range contentsvc.Specs() {
			h := handlers.NewContentHandler(deps.ContentService, spec, deps.Logger)
			r.Route("/"+string(spec.Kind), func(r chi.Router) {
				r.With(optionalMW).Get("/", h.List)
				r.With(authMW).Post("/", h.Create)
				r.With(authMW).Get("/pending", h.Pending)
				r.With(authMW).Get("/mine", h.Mine)
				if spec.Kind == enums.KindBlog {
					r.With(optionalMW).Get("/slug/{slug}", h.GetBySlug)
				}
				r.With(optionalMW).Get("/{id}", h.Get)
				r.With(authMW).Put("/{id}", h.Update)
				r.With(authMW).Delete("/{id}", h.Delete)
				r.With(authMW).Patch("/{id}/approve", h.Approve)
				r.With(authMW).Patch("/{id}/reject", h.Reject)
			})
		}

		r.Route("/upazilas", func(r chi.Router) {
			r.With(optionalMW).Get("/", upazilasHandler.List)
			r.With(authMW).Post("/", upazilasHandler.Create)
			r.With(authMW).Post("/seed", upazilasHandler.Seed)
			r.With(optionalMW).Get("/{slug}", upazilasHandler.GetBySlug)
			r.With(authMW).Put("/{id}", upazilasHandler.Update)
			r.With(authMW).Delete("/{id}", upazilasHandler.Delete)
		})

		r.Route("/sliders", func(r chi.Router) {
			r.With(optionalMW).Get("/", slidersHandler.List)
			r.With(authMW).Post("/", slidersHandler.Create)
			r.With(optionalMW).Get("/{id}", slidersHandler.Get)
			r.With(authMW).Put("/{id}", slidersHandler.Update)
			r.With(authMW).Delete("/{id}", slidersHandler.Delete)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.List)
			r.With(authMW).Put("/", settingsHandler.PutMany)
			r.Get("/{key}", settingsHandler.Get)
			r.With(authMW).Put("/{key}", settingsHandler.Put)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW)
			r.Get("/stats", statsHandler.Get)
			r.Get("/audit", auditHandler.List)
		})
	})
}
