package gateway

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-спецификации.
	_ "github.com/MindThoth/HeavyD-sub001/docs"
	"github.com/MindThoth/HeavyD-sub001/internal/config"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/auth/login"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/auth/logout"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/auth/receipts"
	authsession "github.com/MindThoth/HeavyD-sub001/internal/http/handlers/auth/session"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/clients/list"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/clients/profile"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/clients/update"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/gas/relay"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/health"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/ledger"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/pricing/quote"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/website/submissions"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/website/submitform"
	"github.com/MindThoth/HeavyD-sub001/internal/http/middlewarectx"
	"github.com/MindThoth/HeavyD-sub001/internal/services/clientauth"
	"github.com/MindThoth/HeavyD-sub001/internal/services/portal"
)

// Deps — зависимости обработчиков. Journal, Submissions и Publisher могут быть nil.
type Deps struct {
	Admin       relay.Forwarder
	Dashboard   relay.Forwarder
	Website     relay.Forwarder
	Auth        *clientauth.Service
	Portal      *portal.Service
	Journal     submitform.Journal
	Submissions submissions.Lister
	Publisher   submitform.Publisher
	Checks      map[string]health.Check
}

// RegisterRoutes регистрирует все маршруты шлюза.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	limit := func() func(next http.Handler) http.Handler {
		return middlewarectx.RateLimitMiddleware(logger, cfg.RPS, cfg.Burst)
	}

	// Прокси того же источника: у каждого приложения своя квота.
	r.Group(func(r chi.Router) {
		r.Use(limit())
		admin := relay.New(logger, deps.Admin)
		r.Get("/admin/api/gas", admin.ServeHTTP)
		r.Post("/admin/api/gas", admin.ServeHTTP)
	})
	r.Group(func(r chi.Router) {
		r.Use(limit())
		dashboard := relay.New(logger, deps.Dashboard)
		r.Get("/dashboard/api/gas", dashboard.ServeHTTP)
		r.Post("/dashboard/api/gas", dashboard.ServeHTTP)
		r.Get("/api/gas", dashboard.ServeHTTP)
		r.Post("/api/gas", dashboard.ServeHTTP)
	})
	r.Group(func(r chi.Router) {
		r.Use(limit())
		r.Post("/api/submit-form", submitform.New(logger, deps.Website, deps.Journal, deps.Publisher).ServeHTTP)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limit())

		// Открытые конечные точки
		r.Post("/login", login.New(logger, deps.Auth).ServeHTTP)
		r.Post("/logout", logout.New(logger, deps.Auth).ServeHTTP)
		r.Post("/pricing/quote", quote.New(logger, deps.Portal).ServeHTTP)

		// Админка
		clients := update.New(logger, deps.Portal)
		r.Get("/clients", list.New(logger, deps.Portal).ServeHTTP)
		r.Get("/clients/{email}", profile.New(logger, deps.Portal).ServeHTTP)
		r.Put("/clients/{email}/status", clients.Status)
		r.Put("/clients/{email}/notes", clients.Notes)

		books := ledger.New(logger, deps.Portal)
		r.Get("/employees", books.Employees)
		r.Get("/time-entries", books.TimeEntries)
		r.Post("/time-entries", books.AddTimeEntry)
		r.Get("/expenses", books.Expenses)
		r.Post("/expenses", books.AddExpense)
		if deps.Submissions != nil {
			r.Get("/submissions", submissions.New(logger, deps.Submissions).ServeHTTP)
		}

		// Группа с сессией клиента
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(logger, deps.Auth))
			r.Get("/session", authsession.New(logger).ServeHTTP)
			r.Get("/session/receipts", receipts.New(logger, deps.Portal).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, deps.Checks).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
