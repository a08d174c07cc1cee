package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MindThoth/HeavyD-sub001/internal/config"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/metrics"
)

// Connect открывает соединение с Redis и проверяет его командой PING.
func Connect(ctx context.Context, cfg config.RedisConnection) (*redis.Client, error) {
	const op = "cache.Connect"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return db, nil
}

// Redis хранит записи кеша в Redis под общим префиксом; срок жизни
// обеспечивает сам Redis.
type Redis struct {
	Db     *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis создаёт кеш поверх подключения db. Ключи получают префикс prefix.
func NewRedis(db *redis.Client, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{Db: db, prefix: prefix, ttl: ttl}
}

func (c *Redis) key(k string) string { return c.prefix + k }

// Get декодирует значение по ключу в result; false при отсутствии ключа.
func (c *Redis) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Redis.Get"
	val, err := c.Db.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("redis", "miss").Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	metrics.CacheLookups.WithLabelValues("redis", "hit").Inc()
	return true, nil
}

// Set сохраняет значение; неположительный ttl означает TTL кеша.
func (c *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	const op = "cache.Redis.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.Db.Set(ctx, c.key(key), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет значение по ключу.
func (c *Redis) Invalidate(ctx context.Context, key string) error {
	const op = "cache.Redis.Invalidate"
	if err := c.Db.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// InvalidateAll удаляет все ключи с префиксом кеша.
func (c *Redis) InvalidateAll(ctx context.Context) error {
	const op = "cache.Redis.InvalidateAll"
	iter := c.Db.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.Db.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
