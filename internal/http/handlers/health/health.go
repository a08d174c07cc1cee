// Package health отдаёт состояние шлюза и его необязательных зависимостей.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/MindThoth/HeavyD-sub001/internal/http/response"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
)

// Check проверяет одну зависимость.
type Check func(ctx context.Context) error

// Handler обрабатывает GET /health.
type Handler struct {
	log    *slog.Logger
	checks map[string]Check
}

// New создаёт Handler. checks могут быть пустыми: шлюз без Redis и Postgres здоров.
func New(log *slog.Logger, checks map[string]Check) *Handler {
	return &Handler{log: log, checks: checks}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Все зависимости доступны"
// @Failure 503 {object} map[string]any "Зависимость недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn("dependency unhealthy", slog.String("op", op), slog.String("dependency", name), sl.Err(err))
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Response{Success: false, Message: "degraded", Data: status})
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status":       "ok",
		"dependencies": status,
	}))
}
