// Package session отдаёт текущую сессию клиента. Маршрут стоит за SessionMiddleware,
// поэтому тихий повторный вход уже выполнен к моменту вызова.
package session

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/MindThoth/HeavyD-sub001/internal/http/middlewarectx"
	"github.com/MindThoth/HeavyD-sub001/internal/http/response"
)

// Handler обрабатывает GET /api/v1/session.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущая сессия
// @Description Возвращает email и профиль клиента по токену сессии.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Сессия"
// @Failure 401 {object} response.ErrorResponse "Сессия недействительна"
// @Router /api/v1/session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.session"

	sess, ok := middlewarectx.SessionFrom(r.Context())
	if !ok {
		h.log.Error("session not found in context",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	render.JSON(w, r, response.OKWithData(sess))
}
