// Package receipts отдаёт клиенту его квитанции по токену сессии.
package receipts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/MindThoth/HeavyD-sub001/internal/http/middlewarectx"
	"github.com/MindThoth/HeavyD-sub001/internal/http/response"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

// Service описывает чтение квитанций.
type Service interface {
	Receipts(ctx context.Context, clientEmail string) ([]models.Receipt, error)
}

// Handler обрабатывает GET /api/v1/session/receipts.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Квитанции клиента
// @Description Квитанции клиента, которому принадлежит сессия. Email берётся из сессии, не из запроса.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Квитанции"
// @Failure 401 {object} response.ErrorResponse "Сессия недействительна"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/session/receipts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.receipts"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFrom(r.Context())
	if !ok {
		log.Error("session not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	list, err := h.service.Receipts(r.Context(), sess.Email)
	if err != nil {
		log.Error("failed to load receipts", sl.Err(err), slog.String("email", sess.Email))
		status, resp := response.FromBackend(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}
	if list == nil {
		list = []models.Receipt{}
	}
	render.JSON(w, r, response.OKWithData(list))
}
