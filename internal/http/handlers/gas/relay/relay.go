// Package relay реализует прокси того же источника: запрос браузера к /api/gas
// пересылается на Apps Script без изменений, ответ upstream возвращается с тем же
// статусом и телом. Так браузер обходит ограничение CORS, а адрес деплоя не
// попадает в клиентский бандл.
package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/MindThoth/HeavyD-sub001/internal/lib/metrics"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/upstream"
)

// MaxRequestBody — предельный размер тела запроса, которое шлюз пересылает upstream.
const MaxRequestBody = 1 << 20

// Forwarder пересылает запрос на upstream.
type Forwarder interface {
	App() string
	Target() string
	Forward(ctx context.Context, method, rawQuery string, body []byte, contentType string) (upstream.Result, error)
}

// Handler обрабатывает GET и POST /api/gas.
type Handler struct {
	log       *slog.Logger
	forwarder Forwarder
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, forwarder Forwarder) *Handler {
	return &Handler{
		log:       log,
		forwarder: forwarder,
	}
}

// ServeHTTP godoc
// @Summary Прокси к Apps Script
// @Description Пересылает GET (строку запроса) или POST (JSON-тело) на upstream и возвращает его ответ без изменений. Не-JSON ответ заворачивается в {"error": text}.
// @Tags Proxy
// @Accept  json
// @Produce  json
// @Param action query string false "Действие бэкенда"
// @Success 200 {object} map[string]any "Ответ upstream"
// @Failure 413 {object} map[string]any "Тело запроса слишком большое"
// @Failure 500 {object} map[string]any "Сбой пересылки"
// @Router /api/gas [get]
// @Router /api/gas [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.gas.relay"
	app := h.forwarder.App()

	log := h.log.With(
		slog.String("op", op),
		slog.String("app", app),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var body []byte
	if r.Method == http.MethodPost {
		var status int
		var err error
		body, status, err = ReadBody(w, r)
		if err != nil {
			log.Error("failed to read request body", sl.Err(err))
			Write(w, r, app, status, upstream.FailureBody(err))
			return
		}
	}

	res, err := h.forwarder.Forward(r.Context(), r.Method, r.URL.RawQuery, body, r.Header.Get("Content-Type"))
	if err != nil {
		log.Error("failed to relay request", sl.Err(err), sl.Upstream(h.forwarder.Target()))
		Write(w, r, app, http.StatusInternalServerError, upstream.FailureBody(err))
		return
	}

	log.Debug("relayed request", slog.Int("status", res.Status))
	Write(w, r, app, res.Status, res.Body)
}

// ReadBody читает тело запроса целиком. Тело больше MaxRequestBody не обрезается,
// а отклоняется: вызывающий получает статус 413, иначе 400.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, int, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, err
		}
		return nil, http.StatusBadRequest, err
	}
	return body, http.StatusOK, nil
}

// Write отдаёт готовое JSON-тело с кодом status и учитывает запрос в метриках.
func Write(w http.ResponseWriter, r *http.Request, app string, status int, body []byte) {
	metrics.ProxyRequests.WithLabelValues(app, r.Method, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
