package middlewarectx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/kazemlin/vpn-quota-service/internal/http/response"
	"github.com/kazemlin/vpn-quota-service/internal/lib/sl"
)

// UserChecker проверяет, что пользователь зарегистрирован.
type UserChecker interface {
	IsRegistered(ctx context.Context, userID int64) (bool, error)
}

// ExistsCache кеширует положительные ответы проверки регистрации.
type ExistsCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// CheckUserMiddleware создает middleware, который для маршрутов с параметром
// user_id проверяет, что такой пользователь зарегистрирован. Положительный
// результат кешируется: регистрация монотонна, запись не может устареть
// в ложную сторону. Отрицательный результат не кешируется.
func CheckUserMiddleware(log *slog.Logger, checker UserChecker, cache ExistsCache, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.CheckUserMiddleware"

			userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
			if err != nil {
				log.Error("failed to decode user_id from url", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("failed to decode user_id from url"))
				return
			}

			cacheKey := fmt.Sprintf("user_exists:%d", userID)
			var cached bool
			if found, err := cache.Get(cacheKey, &cached); err == nil && found && cached {
				next.ServeHTTP(w, r)
				return
			}

			exists, err := checker.IsRegistered(r.Context(), userID)
			if err != nil {
				log.Error("failed to check user registration", sl.UID(userID), sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			if !exists {
				log.Info("unknown user requested", sl.UID(userID))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("user not found"))
				return
			}

			if err := cache.Set(cacheKey, true, ttl); err != nil {
				log.Warn("failed to cache user existence", sl.UID(userID), sl.Err(err))
			}
			next.ServeHTTP(w, r)
		})
	}
}
