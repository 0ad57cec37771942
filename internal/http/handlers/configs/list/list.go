// Package list реализует HTTP-обработчик получения списка конфигов
// пользователя с их именами и uuid.
package list

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
	"github.com/kazemlin/vpn-quota-service/internal/models"
)

// Handler обрабатывает запросы на получение конфигов пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения конфигов.
type Service interface {
	ListConfigs(ctx context.Context, userID int64) ([]*models.VpnConfig, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить конфиги пользователя
// @Tags Configs
// @Produce json
// @Param user_id path int true "Идентификатор пользователя"
// @Success 200 {object} map[string]any "Список конфигов, возможно пустой"
// @Failure 400 {object} response.ErrorResponse "Некорректный user_id"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{user_id}/configs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.configs.list"

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

	configs, err := h.service.ListConfigs(r.Context(), userID)
	if err != nil {
		log.Error("failed to list configs", sl.UID(userID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list configs"))
		return
	}
	if configs == nil {
		configs = []*models.VpnConfig{}
	}

	log.Info("success to list configs", sl.UID(userID), slog.Int("count", len(configs)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"configs": configs,
	}))
}
