// Package portal реализует типизированный API дашборда и админки поверх бэкенда.
//
// Чтения идут через кеш с ленивым истечением; одновременные промахи по одному
// ключу схлопываются в один запрос к бэкенду, который не зависит от отмены
// контекста отдельного вызывающего и ограничен таймаутом бэкенда. Записи
// инвалидируют затронутые ключи, конкурирующие обновления разрешаются по правилу
// «последний выигрывает».
package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MindThoth/HeavyD-sub001/internal/gas"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
	"github.com/MindThoth/HeavyD-sub001/internal/pricing"
)

const (
	keyClients   = "clients:all"
	keyPrices    = "prices:all"
	keyEmployees = "employees:all"
)

func keyClient(email string) string   { return "client:" + email }
func keyReceipts(email string) string { return "receipts:" + email }

// keyTime и keyExpenses: пустой email означает выборку по всем клиентам.
func keyTime(email string) string     { return "time:" + email }
func keyExpenses(email string) string { return "expenses:" + email }

// ErrUnknownService возвращается Quote для услуги, которой нет в прайсе.
var ErrUnknownService = errors.New("unknown service")

// Cache — хранилище ответов бэкенда.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Backend — используемая часть клиента бэкенда.
type Backend interface {
	Clients(ctx context.Context) ([]models.Client, error)
	ClientData(ctx context.Context, email string) (models.Client, error)
	ServicePrices(ctx context.Context) ([]models.ServicePrice, error)
	Employees(ctx context.Context) ([]models.Employee, error)
	TimeEntries(ctx context.Context, clientEmail string) ([]models.TimeEntry, error)
	Expenses(ctx context.Context, clientEmail string) ([]models.Expense, error)
	Receipts(ctx context.Context, clientEmail string) ([]models.Receipt, error)
	CallMutating(ctx context.Context, m gas.Mutation) (*gas.Envelope, error)
}

// QuoteResult — расчёт по нескольким позициям.
type QuoteResult struct {
	Lines  []pricing.Line `json:"lines"`
	Totals pricing.Totals `json:"totals"`
}

// Service реализует операции дашборда.
type Service struct {
	log     *slog.Logger
	backend Backend
	cache   Cache
	timeout time.Duration
	group   singleflight.Group
}

// New создает Service. timeout ограничивает загрузку из бэкенда при промахе кеша;
// 0 оставляет только таймаут HTTP-клиента.
func New(log *slog.Logger, backend Backend, cache Cache, timeout time.Duration) *Service {
	return &Service{
		log:     log,
		backend: backend,
		cache:   cache,
		timeout: timeout,
	}
}

// Clients возвращает список всех клиентов.
func (s *Service) Clients(ctx context.Context) ([]models.Client, error) {
	const op = "portal.Clients"
	clients, err := readThrough(ctx, s, keyClients, s.backend.Clients)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return clients, nil
}

// ClientProfile возвращает профиль клиента по email.
func (s *Service) ClientProfile(ctx context.Context, email string) (models.Client, error) {
	const op = "portal.ClientProfile"
	client, err := readThrough(ctx, s, keyClient(email), func(ctx context.Context) (models.Client, error) {
		return s.backend.ClientData(ctx, email)
	})
	if err != nil {
		return models.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

// ServicePrices возвращает прайс услуг.
func (s *Service) ServicePrices(ctx context.Context) ([]models.ServicePrice, error) {
	const op = "portal.ServicePrices"
	prices, err := readThrough(ctx, s, keyPrices, s.backend.ServicePrices)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return prices, nil
}

// Employees возвращает сотрудников.
func (s *Service) Employees(ctx context.Context) ([]models.Employee, error) {
	const op = "portal.Employees"
	employees, err := readThrough(ctx, s, keyEmployees, s.backend.Employees)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return employees, nil
}

// TimeEntries возвращает записи времени по клиенту или по всем, если email пуст.
func (s *Service) TimeEntries(ctx context.Context, clientEmail string) ([]models.TimeEntry, error) {
	const op = "portal.TimeEntries"
	entries, err := readThrough(ctx, s, keyTime(clientEmail), func(ctx context.Context) ([]models.TimeEntry, error) {
		return s.backend.TimeEntries(ctx, clientEmail)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// Expenses возвращает расходы по клиенту или по всем, если email пуст.
func (s *Service) Expenses(ctx context.Context, clientEmail string) ([]models.Expense, error) {
	const op = "portal.Expenses"
	expenses, err := readThrough(ctx, s, keyExpenses(clientEmail), func(ctx context.Context) ([]models.Expense, error) {
		return s.backend.Expenses(ctx, clientEmail)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return expenses, nil
}

// Receipts возвращает квитанции клиента.
func (s *Service) Receipts(ctx context.Context, clientEmail string) ([]models.Receipt, error) {
	const op = "portal.Receipts"
	receipts, err := readThrough(ctx, s, keyReceipts(clientEmail), func(ctx context.Context) ([]models.Receipt, error) {
		return s.backend.Receipts(ctx, clientEmail)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return receipts, nil
}

// UpdateStatus меняет статус клиента.
func (s *Service) UpdateStatus(ctx context.Context, email, status string) error {
	return s.mutate(ctx, "portal.UpdateStatus", gas.UpdateClientStatus{Email: email, Status: status},
		keyClients, keyClient(email))
}

// UpdateNotes перезаписывает заметки о клиенте.
func (s *Service) UpdateNotes(ctx context.Context, email, notes string) error {
	return s.mutate(ctx, "portal.UpdateNotes", gas.UpdateClientNotes{Email: email, Notes: notes},
		keyClients, keyClient(email))
}

// AddTimeEntry добавляет запись времени.
func (s *Service) AddTimeEntry(ctx context.Context, entry models.TimeEntry) error {
	return s.mutate(ctx, "portal.AddTimeEntry", gas.AddTimeEntry{Entry: entry},
		keyTime(""), keyTime(entry.ClientEmail))
}

// AddExpense добавляет расход.
func (s *Service) AddExpense(ctx context.Context, expense models.Expense) error {
	return s.mutate(ctx, "portal.AddExpense", gas.AddExpense{Expense: expense},
		keyExpenses(""), keyExpenses(expense.ClientEmail))
}

func (s *Service) mutate(ctx context.Context, op string, m gas.Mutation, keys ...string) error {
	_, err := s.backend.CallMutating(ctx, m)
	// Запись могла дойти до таблицы и при ошибке.
	s.invalidate(ctx, keys...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Quote считает стоимость позиций по текущему прайсу.
func (s *Service) Quote(ctx context.Context, items []pricing.Item) (QuoteResult, error) {
	const op = "portal.Quote"

	prices, err := s.ServicePrices(ctx)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("%s: %w", op, err)
	}
	catalog, err := pricing.NewCatalog(prices)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("%s: %w", op, err)
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		rate, ok := catalog.Lookup(item.Service)
		if !ok {
			return QuoteResult{}, fmt.Errorf("%s: %w: %q", op, ErrUnknownService, item.Service)
		}
		lines = append(lines, pricing.Quote(rate, item))
	}
	return QuoteResult{Lines: lines, Totals: pricing.Summarize(lines)}, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.log.Warn("failed to invalidate cache key", slog.String("key", key), sl.Err(err))
		}
	}
}

// readThrough отдаёт значение из кеша, а при промахе загружает его из бэкенда.
// Ошибки кеша не мешают ответу: значение просто берётся из бэкенда.
// Загрузка общая для всех ждущих вызовов, поэтому идёт с контекстом без отмены;
// вызывающий с отменённым контекстом перестаёт ждать, остальные получают значение.
func readThrough[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", key), sl.Err(err))
	}
	if hit {
		return cached, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, s.timeout)
			defer cancel()
		}
		fresh, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(loadCtx, key, fresh, 0); err != nil {
			s.log.Warn("cache write failed", slog.String("key", key), sl.Err(err))
		}
		return fresh, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
