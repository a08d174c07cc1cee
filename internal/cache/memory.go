// Package cache реализует хранилища ответов бэкенда с ограниченным временем жизни:
// память процесса (Memory) и Redis (Redis). Оба хранилища сериализуют значения
// в JSON, поэтому взаимозаменяемы для потребителей.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MindThoth/HeavyD-sub001/internal/lib/metrics"
)

// DefaultTTL — время жизни записи, если при создании хранилища не указано иное.
const DefaultTTL = 5 * time.Minute

type entry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

// Memory — словарь в памяти процесса с отметкой времени на каждой записи.
// Просроченные записи удаляются лениво, при чтении; фоновой очистки и
// ограничения размера нет: ключей у приложения немного.
type Memory struct {
	mu    sync.Mutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

// MemoryOption настраивает Memory.
type MemoryOption func(*Memory)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory создаёт хранилище с фиксированным TTL. Неположительный ttl заменяется на DefaultTTL.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Memory{
		items: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get декодирует значение по ключу в result. Возвращает false, если ключ не
// записывался или запись старше своего TTL; во втором случае запись удаляется.
func (m *Memory) Get(_ context.Context, key string, result any) (bool, error) {
	const op = "cache.Memory.Get"
	m.mu.Lock()
	e, ok := m.items[key]
	if ok && m.now().Sub(e.storedAt) > e.ttl {
		delete(m.items, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()
		return false, nil
	}
	if err := json.Unmarshal(e.value, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	metrics.CacheLookups.WithLabelValues("memory", "hit").Inc()
	return true, nil
}

// Set всегда перезаписывает значение и ставит текущую отметку времени.
// Неположительный ttl означает TTL хранилища.
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	const op = "cache.Memory.Set"
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ttl <= 0 {
		ttl = m.ttl
	}
	m.mu.Lock()
	m.items[key] = entry{value: b, storedAt: m.now(), ttl: ttl}
	m.mu.Unlock()
	return nil
}

// Invalidate удаляет запись по ключу.
func (m *Memory) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// InvalidateAll удаляет все записи.
func (m *Memory) InvalidateAll(_ context.Context) error {
	m.mu.Lock()
	m.items = make(map[string]entry)
	m.mu.Unlock()
	return nil
}

// Len возвращает число хранимых записей, включая ещё не вычищенные просроченные.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// TTL возвращает время жизни записей по умолчанию.
func (m *Memory) TTL() time.Duration { return m.ttl }
