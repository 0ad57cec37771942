// Package remaining реализует HTTP-обработчик быстрой проверки остатка
// квоты: сколько еще конфигов пользователь может создать. Дата окончания
// подписки при этом не запрашивается.
package remaining

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kazemlin/vpn-quota-service/internal/http/response"
	"github.com/kazemlin/vpn-quota-service/internal/lib/sl"
)

// Handler обрабатывает запросы на получение остатка квоты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подсчета остатка квоты.
type Service interface {
	RemainingQuota(ctx context.Context, userID int64) (int, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить остаток квоты на конфиги
// @Description Возвращает remaining = default_max + bonus - created. Может быть отрицательным.
// @Tags Quota
// @Produce json
// @Param user_id path int true "Идентификатор пользователя"
// @Success 200 {object} map[string]any "Остаток квоты"
// @Failure 400 {object} response.ErrorResponse "Некорректный user_id"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{user_id}/quota [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quota.remaining"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		log.Error("failed to decode user_id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode user_id from url"))
		return
	}

	remaining, err := h.service.RemainingQuota(r.Context(), userID)
	if err != nil {
		log.Error("failed to count remaining quota", sl.UID(userID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not count remaining quota"))
		return
	}

	log.Info("success to count remaining quota", sl.UID(userID), slog.Int("remaining", remaining))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"remaining_configs": remaining,
	}))
}
