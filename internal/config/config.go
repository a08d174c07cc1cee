// Package config предоставялет структуры и функции для парсинга и загрузки конфига шлюза.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	Upstreams               `yaml:"upstreams"`
	Backend                 `yaml:"backend"`
	Cache                   `yaml:"cache"`
	RedisConnection         `yaml:"redis_connection"`
	Session                 `yaml:"session"`
	RabbitMQ                `yaml:"rabbitmq"`
	RateLimit               `yaml:"rate_limit"`
	HTTPServer              `yaml:"http_server"`
}

// Upstreams хранит адреса развёрнутых Apps Script для каждого приложения.
// Если переменная окружения не задана, используется зашитый адрес.
type Upstreams struct {
	AdminURL     string `yaml:"admin_url" env:"ADMIN_GAS_URL" env-default:"https://script.google.com/macros/s/AKfycbx-heavyd-admin/exec"`
	DashboardURL string `yaml:"dashboard_url" env:"DASHBOARD_GAS_URL" env-default:"https://script.google.com/macros/s/AKfycbx-heavyd-dashboard/exec"`
	WebsiteURL   string `yaml:"website_url" env:"WEBSITE_GAS_URL" env-default:"https://script.google.com/macros/s/AKfycbx-heavyd-website/exec"`
}

// Backend настройки клиента бэкенда. Нулевой Timeout означает таймаут транспорта по умолчанию.
type Backend struct {
	Timeout              time.Duration `yaml:"timeout" env:"BACKEND_TIMEOUT"`
	DisableAdminFallback bool          `yaml:"disable_admin_fallback" env:"BACKEND_DISABLE_ADMIN_FALLBACK"`
}

// Cache настройки кеша ответов бэкенда.
type Cache struct {
	Store    string        `yaml:"store" env:"CACHE_STORE" env-default:"memory"`
	CacheTTL time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"5m"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDR"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Session настройки клиентских сессий шлюза.
type Session struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
	RecordTTL    time.Duration `yaml:"record_ttl" env-default:"720h"`
	Revalidate   bool          `yaml:"revalidate" env:"SESSION_REVALIDATE"`
}

// RabbitMQ настройки публикации событий о заявках с сайта.
type RabbitMQ struct {
	URL      string `yaml:"url" env:"RABBITMQ_URL"`
	Exchange string `yaml:"exchange" env-default:"leads"`
}

// RateLimit ограничивает частоту запросов к прокси.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// MustLoad загружает конфиг из файла CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает YAML-файл и переопределяет значения из переменных окружения.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Store {
	case "memory":
	case "redis":
		if c.AddressRedis == "" {
			return fmt.Errorf("cache store redis requires redis_connection.addressredis")
		}
	default:
		return fmt.Errorf("unknown cache store %q", c.Cache.Store)
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("session.jwt_secret_key is required")
	}
	return nil
}

// String печатает конфиг без секретов: адреса upstream и ключи скрыты.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Upstreams: admin=%t dashboard=%t website=%t\n"+
			"Backend:\n"+
			"  Timeout: %s\n"+
			"  DisableAdminFallback: %t\n"+
			"Cache:\n"+
			"  Store: %s\n"+
			"  TTL: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"Session:\n"+
			"  TokenTTL: %s\n"+
			"  RecordTTL: %s\n"+
			"  Revalidate: %t\n"+
			"Journal: %t\n"+
			"RabbitMQ: %t\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n",
		c.Env,
		c.AdminURL != "", c.DashboardURL != "", c.WebsiteURL != "",
		c.Backend.Timeout,
		c.DisableAdminFallback,
		c.Cache.Store,
		c.CacheTTL,
		c.AddressRedis,
		c.DB,
		c.TokenTTL,
		c.RecordTTL,
		c.Revalidate,
		c.StorageConnectionString != "",
		c.RabbitMQ.URL != "",
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
	)
}
