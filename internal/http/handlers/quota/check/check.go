// Package check реализует HTTP-обработчик предварительной проверки квоты:
// хватит ли пользователю остатка на запрошенное количество новых конфигов.
// Используется фронтендом перед запуском процедуры выдачи конфига.
package check

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/kazemlin/vpn-quota-service/internal/http/response"
	"github.com/kazemlin/vpn-quota-service/internal/lib/sl"
	"github.com/kazemlin/vpn-quota-service/internal/models"
)

// Handler обрабатывает запросы предварительной проверки квоты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики проверки квоты.
type Service interface {
	CanCreateConfig(ctx context.Context, userID int64, requested int) (bool, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Проверить, хватает ли квоты на новые конфиги
// @Description Сравнивает остаток квоты с запрошенным количеством. Ответ allowed=false при нехватке.
// @Tags Quota
// @Accept json
// @Produce json
// @Param request body models.DummyQuotaCheck true "Параметры проверки"
// @Success 200 {object} map[string]any "Результат проверки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /quota/check [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.quota.check"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyQuotaCheck
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("validation failed"))
		return
	}

	allowed, remaining, err := h.service.CanCreateConfig(r.Context(), req.UserID, req.RequestedCount)
	if err != nil {
		log.Error("failed to check quota", sl.UID(req.UserID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check quota"))
		return
	}

	log.Info("success to check quota", sl.UID(req.UserID),
		slog.Bool("allowed", allowed), slog.Int("remaining", remaining))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"allowed":           allowed,
		"remaining_configs": remaining,
	}))
}
