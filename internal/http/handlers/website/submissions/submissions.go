// Package submissions отдаёт журнал заявок с сайта для админки.
package submissions

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/MindThoth/HeavyD-sub001/internal/http/response"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

const maxLimit = 500

// Lister читает последние заявки из журнала.
type Lister interface {
	ListSubmissions(ctx context.Context, limit int) ([]*models.Submission, error)
}

// Handler обрабатывает GET /api/v1/submissions.
type Handler struct {
	log    *slog.Logger
	lister Lister
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, lister Lister) *Handler {
	return &Handler{log: log, lister: lister}
}

// ServeHTTP godoc
// @Summary Журнал заявок
// @Description Последние заявки с сайта с результатом пересылки в бэкенд, новые первыми.
// @Tags Website
// @Produce  json
// @Param limit query int false "Сколько заявок вернуть (по умолчанию 50, не больше 500)"
// @Success 200 {object} map[string]any "Заявки"
// @Failure 400 {object} response.ErrorResponse "Некорректный limit"
// @Failure 500 {object} response.ErrorResponse "Ошибка журнала"
// @Router /api/v1/submissions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.website.submissions"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxLimit {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	list, err := h.lister.ListSubmissions(r.Context(), limit)
	if err != nil {
		log.Error("failed to list submissions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read submissions"))
		return
	}
	if list == nil {
		list = []*models.Submission{}
	}
	render.JSON(w, r, response.OKWithData(list))
}
