// Package profile отдаёт карточку одного клиента для админки.
package profile

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/MindThoth/HeavyD-sub001/internal/http/response"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

// Service описывает чтение профиля клиента.
type Service interface {
	ClientProfile(ctx context.Context, email string) (models.Client, error)
}

// Handler обрабатывает GET /api/v1/clients/{email}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Профиль клиента
// @Description Карточка клиента по email; ответ кешируется так же, как список клиентов.
// @Tags Clients
// @Produce  json
// @Param email path string true "Email клиента"
// @Success 200 {object} map[string]any "Профиль"
// @Failure 400 {object} response.ErrorResponse "Некорректный email"
// @Failure 422 {object} response.ErrorResponse "Отказ бэкенда"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/clients/{email} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.clients.profile"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil || h.validate.Var(email, "required,email") != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid client email"))
		return
	}

	client, err := h.service.ClientProfile(r.Context(), email)
	if err != nil {
		log.Error("failed to load client", sl.Err(err), slog.String("email", email))
		status, resp := response.FromBackend(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}
	render.JSON(w, r, response.OKWithData(client))
}
