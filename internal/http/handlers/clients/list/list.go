// Package list отдаёт список клиентов для админки.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/MindThoth/HeavyD-sub001/internal/http/response"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

// Service описывает чтение списка клиентов.
type Service interface {
	Clients(ctx context.Context) ([]models.Client, error)
}

// Handler обрабатывает GET /api/v1/clients.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список клиентов
// @Description Возвращает всех клиентов. Ответ кешируется на время TTL кеша.
// @Tags Clients
// @Produce  json
// @Success 200 {object} map[string]any "Список клиентов"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/clients [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.clients.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	clients, err := h.service.Clients(r.Context())
	if err != nil {
		log.Error("failed to list clients", sl.Err(err))
		status, resp := response.FromBackend(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}

	log.Debug("clients listed", slog.Int("count", len(clients)))
	render.JSON(w, r, response.OKWithData(clients))
}
