// Package middlewarectx содержит HTTP middleware квота-сервиса: проверку
// сервисного JWT, проверку существования пользователя и ограничение
// частоты запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kazemlin/vpn-quota-service/internal/http/response"
	"github.com/kazemlin/vpn-quota-service/internal/lib/jwt"
	"github.com/kazemlin/vpn-quota-service/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// ServiceName — ключ для имени сервиса-клиента в контексте.
const ServiceName Key = "service_name"

// JWTMiddleware возвращает HTTP middleware, который проверяет сервисный JWT
// в заголовке Authorization.
//
// Если токен валиден, добавляет имя сервиса-клиента в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(maker jwt.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			authHeader := r.Header.Get("Authorization")

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), ServiceName, claims.ServiceName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
