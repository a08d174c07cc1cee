package session

import (
	"context"
	"sync"
	"time"
)

// Binder выдаёт Store для конкретной сессии шлюза.
type Binder interface {
	Bind(id string) Store
}

type memoryEntry struct {
	rec      Record
	storedAt time.Time
}

// MemoryStore держит записи сессий в памяти процесса; используется шлюзом без Redis.
// Записи старше ttl не отдаются и удаляются при чтении, остальные просроченные
// вычищаются при каждом Save, так что брошенные сессии не копятся.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption настраивает MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore создаёт пустое хранилище; ttl <= 0 означает записи без срока жизни.
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind возвращает Store, привязанный к одной сессии.
func (s *MemoryStore) Bind(id string) Store {
	return &memoryBound{parent: s, id: id}
}

// Len возвращает число хранимых записей, включая ещё не вычищенные просроченные.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.storedAt) > s.ttl
}

func (s *MemoryStore) pruneLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, e := range s.records {
		if s.expired(e, now) {
			delete(s.records, id)
		}
	}
}

type memoryBound struct {
	parent *MemoryStore
	id     string
}

func (b *memoryBound) Save(_ context.Context, rec Record) error {
	s := b.parent
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	s.records[b.id] = memoryEntry{rec: rec, storedAt: now}
	return nil
}

func (b *memoryBound) Load(_ context.Context) (Record, error) {
	s := b.parent
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.records[b.id]
	if !ok {
		return Record{}, ErrNoSession
	}
	if s.expired(e, s.now()) {
		delete(s.records, b.id)
		return Record{}, ErrNoSession
	}
	return e.rec, nil
}

func (b *memoryBound) Clear(_ context.Context) error {
	b.parent.mu.Lock()
	delete(b.parent.records, b.id)
	b.parent.mu.Unlock()
	return nil
}
