// Package gateway собирает HTTP-шлюз: прокси к трём деплоям Apps Script,
// приём заявок с сайта и типизированный API дашборда.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"

	"github.com/MindThoth/HeavyD-sub001/internal/cache"
	"github.com/MindThoth/HeavyD-sub001/internal/config"
	"github.com/MindThoth/HeavyD-sub001/internal/gas"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/health"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/jwt"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/rabbitmq"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/migrations"
	"github.com/MindThoth/HeavyD-sub001/internal/services/clientauth"
	"github.com/MindThoth/HeavyD-sub001/internal/services/portal"
	"github.com/MindThoth/HeavyD-sub001/internal/session"
	"github.com/MindThoth/HeavyD-sub001/internal/storage"
	"github.com/MindThoth/HeavyD-sub001/internal/upstream"
)

const cachePrefix = "heavyd:cache:"

// App — собранный шлюз.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	closers []func() error
}

// New подключает зависимости по конфигу и собирает маршруты.
// Redis, PostgreSQL и RabbitMQ необязательны: пустой адрес отключает компонент.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "gateway.New"
	app := &App{logger: logger}

	deps, err := app.connect(ctx, cfg)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, deps)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func (a *App) connect(ctx context.Context, cfg *config.Config) (Deps, error) {
	deps := Deps{
		Admin:     upstream.NewForwarder("admin", cfg.AdminURL, cfg.Backend.Timeout),
		Dashboard: upstream.NewForwarder("dashboard", cfg.DashboardURL, cfg.Backend.Timeout),
		Website:   upstream.NewForwarder("website", cfg.WebsiteURL, cfg.Backend.Timeout),
		Checks:    map[string]health.Check{},
	}

	gasOpts := []gas.Option{gas.WithTimeout(cfg.Backend.Timeout), gas.WithLogger(a.logger)}
	if cfg.DisableAdminFallback {
		gasOpts = append(gasOpts, gas.WithoutAdminFallback())
	}
	adminClient := gas.New(cfg.AdminURL, gasOpts...)
	dashboardClient := gas.New(cfg.DashboardURL, gasOpts...)

	var rdb *redis.Client
	if cfg.AddressRedis != "" {
		var err error
		rdb, err = cache.Connect(ctx, cfg.RedisConnection)
		if err != nil {
			return Deps{}, err
		}
		a.closers = append(a.closers, rdb.Close)
		deps.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var responses portal.Cache
	if cfg.Cache.Store == "redis" {
		responses = cache.NewRedis(rdb, cachePrefix, cfg.CacheTTL)
	} else {
		responses = cache.NewMemory(cfg.CacheTTL)
	}
	a.logger.Info("response cache ready", slog.String("store", cfg.Cache.Store), slog.Duration("ttl", cfg.CacheTTL))

	var sessions session.Binder
	if rdb != nil {
		sessions = session.NewRedisStore(rdb, cfg.RecordTTL)
	} else {
		a.logger.Warn("redis is not configured, client sessions are kept in memory")
		sessions = session.NewMemoryStore(cfg.RecordTTL)
	}

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	deps.Auth = clientauth.New(a.logger, dashboardClient, sessions, tokens, cfg.Revalidate)
	deps.Portal = portal.New(a.logger, adminClient, responses, cfg.Backend.Timeout)

	if cfg.StorageConnectionString != "" {
		db, err := storage.New(cfg.StorageConnectionString)
		if err != nil {
			return Deps{}, err
		}
		a.closers = append(a.closers, db.Close)
		if err := migrations.Run(db.DB); err != nil {
			return Deps{}, err
		}
		deps.Journal = db
		deps.Submissions = db
		deps.Checks["postgres"] = func(ctx context.Context) error { return storage.CheckDatabaseReady(ctx, db) }
	} else {
		a.logger.Info("submission journal disabled")
	}

	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(ctx, a.logger, cfg.RabbitMQ.URL, 5, 2*time.Second)
		if err != nil {
			return Deps{}, err
		}
		a.closers = append(a.closers, conn.Close)
		ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.LeadQueues())
		if err != nil {
			return Deps{}, err
		}
		publisher := rabbitmq.NewLeadPublisher(ch, cfg.Exchange)
		a.closers = append(a.closers, publisher.Close)
		deps.Publisher = publisher
		deps.Checks["rabbitmq"] = func(context.Context) error {
			ch, err := conn.Channel()
			if err != nil {
				return err
			}
			return ch.Close()
		}
	} else {
		a.logger.Info("lead events disabled")
	}

	return deps, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// Handler возвращает корневой обработчик; используется в тестах.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close dependency", sl.Err(err))
		}
	}
	a.closers = nil
}
