// Package ledger отдаёт админке сотрудников, учёт времени и расходы.
//
// Чтения принимают необязательный ?clientEmail=, без него возвращаются записи
// по всем клиентам. Добавление проверяет тело и передаёт запись в бэкенд.
package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/MindThoth/HeavyD-sub001/internal/http/response"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

// TimeEntryRequest — новая запись времени.
type TimeEntryRequest struct {
	EmployeeID  string `json:"employeeId" validate:"required,max=64"`
	ClientEmail string `json:"clientEmail" validate:"required,email"`
	Date        string `json:"date" validate:"required,max=32"`
	Hours       string `json:"hours" validate:"required,numeric"`
	Description string `json:"description" validate:"max=2000"`
}

// ExpenseRequest — новый расход.
type ExpenseRequest struct {
	ClientEmail string `json:"clientEmail" validate:"required,email"`
	Date        string `json:"date" validate:"required,max=32"`
	Category    string `json:"category" validate:"required,max=100"`
	Amount      string `json:"amount" validate:"required,numeric"`
	Description string `json:"description" validate:"max=2000"`
}

// Service описывает чтение и пополнение учёта.
type Service interface {
	Employees(ctx context.Context) ([]models.Employee, error)
	TimeEntries(ctx context.Context, clientEmail string) ([]models.TimeEntry, error)
	Expenses(ctx context.Context, clientEmail string) ([]models.Expense, error)
	AddTimeEntry(ctx context.Context, entry models.TimeEntry) error
	AddExpense(ctx context.Context, expense models.Expense) error
}

// Handler обрабатывает /api/v1/employees, /time-entries и /expenses.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// Employees godoc
// @Summary Сотрудники
// @Tags Ledger
// @Produce  json
// @Success 200 {object} map[string]any "Сотрудники"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/employees [get]
func (h *Handler) Employees(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, "handlers.ledger.employees", func(ctx context.Context, _ string) ([]models.Employee, error) {
		return h.service.Employees(ctx)
	})
}

// TimeEntries godoc
// @Summary Учёт времени
// @Tags Ledger
// @Produce  json
// @Param clientEmail query string false "Email клиента"
// @Success 200 {object} map[string]any "Записи времени"
// @Failure 400 {object} response.ErrorResponse "Некорректный email"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/time-entries [get]
func (h *Handler) TimeEntries(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, "handlers.ledger.time_entries", h.service.TimeEntries)
}

// Expenses godoc
// @Summary Расходы
// @Tags Ledger
// @Produce  json
// @Param clientEmail query string false "Email клиента"
// @Success 200 {object} map[string]any "Расходы"
// @Failure 400 {object} response.ErrorResponse "Некорректный email"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/expenses [get]
func (h *Handler) Expenses(w http.ResponseWriter, r *http.Request) {
	list(h, w, r, "handlers.ledger.expenses", h.service.Expenses)
}

// AddTimeEntry godoc
// @Summary Добавить запись времени
// @Tags Ledger
// @Accept  json
// @Produce  json
// @Param request body TimeEntryRequest true "Запись времени"
// @Success 201 {object} response.Response "Запись добавлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или отказ бэкенда"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/time-entries [post]
func (h *Handler) AddTimeEntry(w http.ResponseWriter, r *http.Request) {
	var req TimeEntryRequest
	h.add(w, r, "handlers.ledger.add_time_entry", &req, func(ctx context.Context) error {
		return h.service.AddTimeEntry(ctx, models.TimeEntry{
			EmployeeID:  req.EmployeeID,
			ClientEmail: req.ClientEmail,
			Date:        req.Date,
			Hours:       req.Hours,
			Description: req.Description,
		})
	})
}

// AddExpense godoc
// @Summary Добавить расход
// @Tags Ledger
// @Accept  json
// @Produce  json
// @Param request body ExpenseRequest true "Расход"
// @Success 201 {object} response.Response "Расход добавлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или отказ бэкенда"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /api/v1/expenses [post]
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	h.add(w, r, "handlers.ledger.add_expense", &req, func(ctx context.Context) error {
		return h.service.AddExpense(ctx, models.Expense{
			ClientEmail: req.ClientEmail,
			Date:        req.Date,
			Category:    req.Category,
			Amount:      req.Amount,
			Description: req.Description,
		})
	})
}

func list[T any](h *Handler, w http.ResponseWriter, r *http.Request, op string, read func(context.Context, string) ([]T, error)) {
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	clientEmail := r.URL.Query().Get("clientEmail")
	if clientEmail != "" && h.validate.Var(clientEmail, "email") != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid client email"))
		return
	}

	items, err := read(r.Context(), clientEmail)
	if err != nil {
		log.Error("failed to read ledger", sl.Err(err))
		status, resp := response.FromBackend(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}
	if items == nil {
		items = []T{}
	}
	render.JSON(w, r, response.OKWithData(items))
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request, op string, req any, apply func(context.Context) error) {
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	if err := apply(r.Context()); err != nil {
		log.Error("failed to add ledger record", sl.Err(err))
		status, resp := response.FromBackend(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("ledger record added")
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK())
}
