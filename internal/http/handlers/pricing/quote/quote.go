// Package quote считает стоимость заказа по прайсу услуг.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/MindThoth/HeavyD-sub001/internal/http/response"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/pricing"
	"github.com/MindThoth/HeavyD-sub001/internal/services/portal"
)

// Request — позиции заказа.
type Request struct {
	Items []pricing.Item `json:"items" validate:"required,min=1,dive"`
}

// Service описывает расчёт стоимости.
type Service interface {
	Quote(ctx context.Context, items []pricing.Item) (portal.QuoteResult, error)
}

// Handler обрабатывает POST /api/v1/pricing/quote.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Рассчитать стоимость
// @Description Для каждой позиции считает площадь, себестоимость, рекомендуемую цену и прибыль; возвращает итоги.
// @Tags Pricing
// @Accept  json
// @Produce  json
// @Param request body Request true "Позиции заказа"
// @Success 200 {object} map[string]any "Расчёт"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неизвестная услуга"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/pricing/quote [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pricing.quote"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.Quote(r.Context(), req.Items)
	if err != nil {
		if errors.Is(err, portal.ErrUnknownService) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to quote", sl.Err(err))
		status, resp := response.FromBackend(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(res))
}
