// Package get реализует HTTP-обработчик для получения снимка Entitlement
// пользователя: активность подписки, количество выданных конфигов,
// бонус и остаток квоты.
//
// В случае ошибок формирует соответствующие HTTP-ответы с описанием проблемы.
// Незарегистрированный пользователь и исчерпанная квота — разные ответы:
// первый — 404, второй — успешный ответ с неположительным остатком.
package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kazemlin/vpn-quota-service/internal/http/response"
	"github.com/kazemlin/vpn-quota-service/internal/lib/sl"
	"github.com/kazemlin/vpn-quota-service/internal/models"
	"github.com/kazemlin/vpn-quota-service/internal/storage"
)

// Handler обрабатывает запросы на получение снимка Entitlement.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики читающего слоя
}

// Service описывает интерфейс бизнес-логики вычисления снимка.
type Service interface {
	Resolve(ctx context.Context, userID int64) (*models.Entitlement, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить снимок состояния пользователя
// @Description Возвращает активность подписки и остаток квоты на конфиги. Остаток может быть отрицательным.
// @Tags Entitlements
// @Produce json
// @Param user_id path int true "Идентификатор пользователя"
// @Success 200 {object} map[string]any "Снимок состояния"
// @Failure 400 {object} response.ErrorResponse "Некорректный user_id"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{user_id}/entitlement [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.get"

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

	ent, err := h.service.Resolve(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found", sl.UID(userID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to resolve entitlement", sl.UID(userID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve entitlement"))
		return
	}

	log.Info("success to resolve entitlement", sl.UID(userID),
		slog.Bool("is_active", ent.IsActiveSubscription), slog.Int("remaining", ent.ConfigsRemaining))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entitlement": ent,
	}))
}
