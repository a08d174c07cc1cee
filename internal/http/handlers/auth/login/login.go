// Package login реализует вход клиента дашборда по email и коду доступа.
//
// Код проверяет бэкенд; при успехе шлюз возвращает токен сессии и профиль клиента.
package login

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
	"github.com/MindThoth/HeavyD-sub001/internal/services/clientauth"
)

// Request — структура входных данных для входа.
type Request struct {
	Email      string `json:"email" validate:"required,email"`
	AccessCode string `json:"accessCode" validate:"required,max=64"`
}

// Handler обрабатывает HTTP-запросы для входа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис клиентских сессий
	validate *validator.Validate // Валидатор для проверки входных данных
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	Login(ctx context.Context, email, accessCode string) (string, clientauth.Session, error)
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
// @Summary Вход клиента
// @Description Проверяет email и код доступа через бэкенд. Возвращает токен сессии и профиль клиента.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные клиента"
// @Success 200 {object} map[string]any "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
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

	token, sess, err := h.service.Login(r.Context(), req.Email, req.AccessCode)
	if err != nil {
		if errors.Is(err, clientauth.ErrInvalidCredentials) {
			log.Info("login rejected", slog.String("email", req.Email))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid email or access code"))
			return
		}
		log.Error("login failed", sl.Err(err))
		status, resp := response.FromBackend(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("login success", slog.String("session_id", sess.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":   token,
		"session": sess,
	}))
}
