// Package logout завершает клиентскую сессию.
package logout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/MindThoth/HeavyD-sub001/internal/http/middlewarectx"
	"github.com/MindThoth/HeavyD-sub001/internal/http/response"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/services/clientauth"
)

// Service описывает завершение сессии.
type Service interface {
	Logout(ctx context.Context, token string) error
}

// Handler обрабатывает POST /api/v1/logout.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выход клиента
// @Description Удаляет запись сессии на сервере. Токен после этого недействителен.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Сессия завершена"
// @Failure 401 {object} response.ErrorResponse "Токен недействителен"
// @Router /api/v1/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token, ok := middlewarectx.BearerToken(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid authorization header"))
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		if errors.Is(err, clientauth.ErrUnauthorized) {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid or expired session"))
			return
		}
		log.Error("logout failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not end session"))
		return
	}

	render.JSON(w, r, response.OK())
}
