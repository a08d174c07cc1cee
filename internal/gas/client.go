// Package gas содержит типизированный клиент бэкенда на Google Apps Script.
//
// Чтения уходят GET-запросом с параметрами {action, api?, ...}, записи POST-запросом с
// JSON-телом {api?, mode, ...}. Каждый ответ обязан быть конвертом с булевым
// полем success; отказы классифицируются как TransportError, ProtocolError или
// ApplicationError. Единственный автоматический повтор: откат с
// административного обработчика на публичный, если первый не знает действие.
package gas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/MindThoth/HeavyD-sub001/internal/lib/metrics"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
)

const maxBodySize = 10 << 20

// Client вызывает бэкенд напрямую или через прокси того же источника.
type Client struct {
	baseURL    string
	httpClient *http.Client
	routes     map[string]Route
	timeout    time.Duration
	fallback   bool
	log        *slog.Logger
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout задаёт таймаут запроса; 0 оставляет таймаут транспорта.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger задаёт логгер.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRoute переопределяет обработчик для действия.
func WithRoute(action string, r Route) Option {
	return func(c *Client) { c.routes[action] = r }
}

// WithoutAdminFallback отключает повтор без api=admin.
func WithoutAdminFallback() Option {
	return func(c *Client) { c.fallback = false }
}

// New создаёт клиент для адреса baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		routes:     DefaultRoutes(),
		fallback:   true,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// RouteOf возвращает обработчик для действия.
func (c *Client) RouteOf(action string) Route {
	return c.routes[action]
}

// Call выполняет чтение.
func (c *Client) Call(ctx context.Context, q Query) (*Envelope, error) {
	action := q.Action()
	return c.do(action, func(admin bool) (*http.Request, error) {
		params := q.Values()
		params.Set("action", action)
		if admin {
			params.Set("api", adminAPI)
		}
		u, err := url.Parse(c.baseURL)
		if err != nil {
			return nil, err
		}
		merged := u.Query()
		for k, vs := range params {
			merged[k] = vs
		}
		u.RawQuery = merged.Encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	})
}

// CallMutating выполняет запись.
func (c *Client) CallMutating(ctx context.Context, m Mutation) (*Envelope, error) {
	mode := m.Mode()
	return c.do(mode, func(admin bool) (*http.Request, error) {
		body := m.Fields()
		body["mode"] = mode
		if admin {
			body["api"] = adminAPI
		}
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

type requestBuilder func(admin bool) (*http.Request, error)

func (c *Client) do(action string, build requestBuilder) (*Envelope, error) {
	const op = "gas.Client.do"
	log := c.log.With(slog.String("op", op), slog.String("action", action))

	admin := c.routes[action] == RouteAdmin
	status, body, err := c.roundTrip(action, build, admin)
	if err == nil && admin && c.fallback && isUnknownAction(body) {
		log.Warn("admin handler does not know action, retrying without api flag")
		status, body, err = c.roundTrip(action, build, false)
	}
	if err != nil {
		metrics.BackendCalls.WithLabelValues(action, "transport").Inc()
		log.Error("backend unreachable", sl.Err(err), sl.Upstream(c.baseURL))
		return nil, err
	}

	env, err := decodeEnvelope(action, status, body)
	if err != nil {
		metrics.BackendCalls.WithLabelValues(action, "protocol").Inc()
		log.Error("malformed backend response", sl.Err(err), slog.Int("status", status))
		return nil, err
	}
	if !env.Success {
		metrics.BackendCalls.WithLabelValues(action, "application").Inc()
		log.Info("backend rejected request", slog.String("message", env.Message))
		return env, &ApplicationError{Action: action, Message: env.Message}
	}
	metrics.BackendCalls.WithLabelValues(action, "ok").Inc()
	return env, nil
}

func (c *Client) roundTrip(action string, build requestBuilder, admin bool) (int, []byte, error) {
	req, err := build(admin)
	if err != nil {
		return 0, nil, &TransportError{Action: action, Err: fmt.Errorf("build request: %w", err)}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Action: action, Err: fmt.Errorf("read body: %w", err)}
	}
	return resp.StatusCode, body, nil
}
