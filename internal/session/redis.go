package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisStore хранит записи сессий шлюза в Redis, по ключу на идентификатор сессии.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore возвращает хранилище; ttl <= 0 означает записи без срока жизни.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Bind возвращает Store, привязанный к одной сессии.
func (s *RedisStore) Bind(id string) Store {
	return &boundStore{rdb: s.rdb, ttl: s.ttl, key: sessionKeyPrefix + id}
}

type boundStore struct {
	rdb *redis.Client
	ttl time.Duration
	key string
}

func (b *boundStore) Save(ctx context.Context, rec Record) error {
	const op = "session.RedisStore.Save"
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := b.rdb.Set(ctx, b.key, data, b.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (b *boundStore) Load(ctx context.Context) (Record, error) {
	const op = "session.RedisStore.Load"
	data, err := b.rdb.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNoSession
	}
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", op, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

func (b *boundStore) Clear(ctx context.Context) error {
	if err := b.rdb.Del(ctx, b.key).Err(); err != nil {
		return fmt.Errorf("session.RedisStore.Clear: %w", err)
	}
	return nil
}
