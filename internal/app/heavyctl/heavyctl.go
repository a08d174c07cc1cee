// Package heavyctl реализует консольный клиент дашборда. Ходит в бэкенд через прокси
// шлюза (/api/gas) и хранит сессию в локальном файле, чтобы следующий запуск
// выполнял тихий повторный вход.
package heavyctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MindThoth/HeavyD-sub001/internal/cache"
	"github.com/MindThoth/HeavyD-sub001/internal/gas"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
	"github.com/MindThoth/HeavyD-sub001/internal/session"
)

// DefaultGatewayURL — адрес прокси шлюза по умолчанию.
const DefaultGatewayURL = "http://localhost:8080/api/gas"

const pricesKey = "prices:all"

// Options настраивает клиент.
type Options struct {
	GatewayURL  string
	SessionFile string
	HTTPClient  *http.Client
	Timeout     time.Duration
	Out         io.Writer
	Log         *slog.Logger
}

// OptionsFromEnv читает HEAVYD_GATEWAY_URL и HEAVYD_SESSION_FILE.
func OptionsFromEnv() (Options, error) {
	opts := Options{
		GatewayURL:  os.Getenv("HEAVYD_GATEWAY_URL"),
		SessionFile: os.Getenv("HEAVYD_SESSION_FILE"),
		Timeout:     30 * time.Second,
	}
	if opts.GatewayURL == "" {
		opts.GatewayURL = DefaultGatewayURL
	}
	if opts.SessionFile == "" {
		path, err := session.DefaultPath()
		if err != nil {
			return Options{}, fmt.Errorf("heavyctl.OptionsFromEnv: %w", err)
		}
		opts.SessionFile = path
	}
	return opts, nil
}

// App — состояние одного запуска или всей сессии shell: клиент бэкенда, сессия и кеш ответов.
type App struct {
	client *gas.Client
	store  session.Store
	cache  *cache.Memory
	out    io.Writer
	log    *slog.Logger

	resume  singleflight.Group
	current *session.Record
}

// New создаёт App.
func New(opts Options) *App {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	gasOpts := []gas.Option{gas.WithLogger(opts.Log), gas.WithTimeout(opts.Timeout)}
	if opts.HTTPClient != nil {
		gasOpts = append(gasOpts, gas.WithHTTPClient(opts.HTTPClient))
	}
	return &App{
		client: gas.New(opts.GatewayURL, gasOpts...),
		store:  session.NewFileStore(opts.SessionFile),
		cache:  cache.NewMemory(cache.DefaultTTL),
		out:    opts.Out,
		log:    opts.Log,
	}
}

// Resume выполняет тихий повторный вход по сохранённой записи.
// Одновременные вызовы делят один запрос к бэкенду.
func (a *App) Resume(ctx context.Context) (*session.Record, error) {
	v, err, _ := a.resume.Do("resume", func() (any, error) {
		if a.current != nil {
			return a.current, nil
		}
		rec, err := a.resumeOnce(ctx)
		if err != nil {
			return nil, err
		}
		a.current = rec
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	rec, _ := v.(*session.Record)
	return rec, nil
}

func (a *App) resumeOnce(ctx context.Context) (*session.Record, error) {
	const op = "heavyctl.Resume"

	rec, err := a.store.Load(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !rec.CanResume() {
		return nil, nil
	}

	profile, err := a.client.Login(ctx, rec.Email, rec.AccessCode)
	switch {
	case errors.Is(err, gas.ErrApplication):
		a.log.Warn("saved session rejected, logging out", sl.Err(err))
		if clearErr := a.store.Clear(ctx); clearErr != nil {
			return nil, fmt.Errorf("%s: %w", op, clearErr)
		}
		return nil, nil
	case err != nil:
		// Без связи с бэкендом остаёмся с сохранённым профилем.
		a.log.Warn("silent re-login failed, using saved profile", sl.Err(err))
		return &rec, nil
	}

	fresh := session.NewRecord(rec.Email, rec.AccessCode, profile, time.Now())
	if err := a.store.Save(ctx, fresh); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &fresh, nil
}

// Login проверяет учётные данные и сохраняет сессию.
func (a *App) Login(ctx context.Context, email, accessCode string) (*session.Record, error) {
	const op = "heavyctl.Login"
	profile, err := a.client.Login(ctx, email, accessCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rec := session.NewRecord(email, accessCode, profile, time.Now())
	if err := a.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.current = &rec
	return &rec, nil
}

// Logout удаляет сохранённую сессию.
func (a *App) Logout(ctx context.Context) error {
	a.current = nil
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("heavyctl.Logout: %w", err)
	}
	return nil
}

// Prices возвращает прайс, читая его из бэкенда не чаще раза за TTL.
func (a *App) Prices(ctx context.Context) ([]models.ServicePrice, error) {
	var prices []models.ServicePrice
	if hit, _ := a.cache.Get(ctx, pricesKey, &prices); hit {
		return prices, nil
	}
	prices, err := a.client.ServicePrices(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.cache.Set(ctx, pricesKey, prices, 0); err != nil {
		a.log.Warn("failed to cache prices", sl.Err(err))
	}
	return prices, nil
}
