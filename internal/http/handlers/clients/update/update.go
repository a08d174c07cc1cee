// Package update реализует изменение статуса и заметок клиента.
//
// Оба обработчика берут email из пути, проверяют тело и передают запись в бэкенд.
// Кеш списка и профиля клиента сбрасывает сервис.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/MindThoth/HeavyD-sub001/internal/http/response"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

// StatusRequest — новое значение статуса.
type StatusRequest struct {
	Status string `json:"status" validate:"required,client_status"`
}

// NotesRequest — новый текст заметок; пустая строка очищает заметки.
type NotesRequest struct {
	Notes string `json:"notes" validate:"max=10000"`
}

// Service описывает изменение карточки клиента.
type Service interface {
	UpdateStatus(ctx context.Context, email, status string) error
	UpdateNotes(ctx context.Context, email, notes string) error
}

// Handler обрабатывает PUT /api/v1/clients/{email}/status и /notes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	validate := validator.New()
	// Ошибка возможна только при пустом имени тега.
	_ = validate.RegisterValidation("client_status", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.ClientStatus, fl.Field().String())
	})
	return &Handler{
		log:      log,
		service:  service,
		validate: validate,
	}
}

// Status godoc
// @Summary Изменить статус клиента
// @Tags Clients
// @Accept  json
// @Produce  json
// @Param email path string true "Email клиента"
// @Param request body StatusRequest true "Новый статус"
// @Success 200 {object} response.Response "Статус изменён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или отказ бэкенда"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/clients/{email}/status [put]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	h.serve(w, r, "handlers.clients.update.status", &req, func(ctx context.Context, email string) error {
		return h.service.UpdateStatus(ctx, email, req.Status)
	})
}

// Notes godoc
// @Summary Изменить заметки о клиенте
// @Tags Clients
// @Accept  json
// @Produce  json
// @Param email path string true "Email клиента"
// @Param request body NotesRequest true "Текст заметок"
// @Success 200 {object} response.Response "Заметки сохранены"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или отказ бэкенда"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/clients/{email}/notes [put]
func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	h.serve(w, r, "handlers.clients.update.notes", &req, func(ctx context.Context, email string) error {
		return h.service.UpdateNotes(ctx, email, req.Notes)
	})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, op string, req any, apply func(context.Context, string) error) {
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

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
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

	if err := apply(r.Context(), email); err != nil {
		log.Error("failed to update client", sl.Err(err), slog.String("email", email))
		status, resp := response.FromBackend(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("client updated", slog.String("email", email))
	render.JSON(w, r, response.OK())
}
