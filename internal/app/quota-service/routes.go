package quotaservice

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/kazemlin/vpn-quota-service/internal/http/handlers/configs/list"
	entitlementget "github.com/kazemlin/vpn-quota-service/internal/http/handlers/entitlement/get"
	"github.com/kazemlin/vpn-quota-service/internal/http/handlers/health"
	quotacheck "github.com/kazemlin/vpn-quota-service/internal/http/handlers/quota/check"
	quotaremaining "github.com/kazemlin/vpn-quota-service/internal/http/handlers/quota/remaining"
	"github.com/kazemlin/vpn-quota-service/internal/http/middlewarectx"
	"github.com/kazemlin/vpn-quota-service/internal/lib/jwt"
	entitlementservice "github.com/kazemlin/vpn-quota-service/internal/services/entitlement"
)

// RegisterRoutes регистрирует все маршруты квота-сервиса.
func RegisterRoutes(r chi.Router, logger *slog.Logger, entitlementService *entitlementservice.EntitlementService,
	jwtMaker jwt.Maker, existsCache middlewarectx.ExistsCache, userTTL time.Duration) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с сервисной JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/quota/check", quotacheck.New(logger, entitlementService).ServeHTTP)

			// Маршруты с параметром user_id проверяют регистрацию пользователя
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.CheckUserMiddleware(logger, entitlementService, existsCache, userTTL))
				r.Get("/users/{user_id}/entitlement", entitlementget.New(logger, entitlementService).ServeHTTP)
				r.Get("/users/{user_id}/quota", quotaremaining.New(logger, entitlementService).ServeHTTP)
				r.Get("/users/{user_id}/configs", list.New(logger, entitlementService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
