package apiapp

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/infra/metrics"
	authsvc "github.com/zilaportal/portal/internal/services/auth"
	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

func ApplyMiddlewares(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(requestLogger(log))
	r.Use(metrics.Middleware)
}

// AuthMiddleware requires a valid bearer token and stores the caller's
// principal and session identity on the request context.
func AuthMiddleware(authService *authsvc.Service, log *zap.Logger) func(http.Handler) http.Handler {
	return authMiddleware(authService, log, true)
}

// OptionalAuthMiddleware resolves a bearer token when present. Requests
// without one, or with a token that no longer validates, continue as anonymous.
func OptionalAuthMiddleware(authService *authsvc.Service, log *zap.Logger) func(http.Handler) http.Handler {
	return authMiddleware(authService, log, false)
}

func authMiddleware(authService *authsvc.Service, log *zap.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authService == nil {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "AUTH_SERVICE_UNAVAILABLE",
					Message: "auth service is unavailable",
				})
				return
			}

			accessToken, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    httperrors.CodeUnauthorized,
					Message: "missing bearer token",
				})
				return
			}

			p, identity, err := authService.Resolve(r.Context(), accessToken)
			if err != nil {
				if errors.Is(err, authsvc.ErrUnauthorized) {
					if log != nil {
						log.Debug("auth middleware validation failed", zap.Error(err))
					}
					if !required {
						next.ServeHTTP(w, r)
						return
					}
					httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
						Code:    httperrors.CodeUnauthorized,
						Message: "invalid access token",
					})
					return
				}
				if log != nil {
					log.Error("resolve access token", zap.Error(err))
				}
				httperrors.WriteError(w, err)
				return
			}

			ctx := authsvc.WithIdentity(r.Context(), identity)
			ctx = authsvc.WithPrincipal(ctx, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
