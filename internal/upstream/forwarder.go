// Package upstream пересылает запросы браузера на развёрнутый Apps Script без
// изменений и возвращает ответ как есть. Адрес upstream известен только серверу.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MindThoth/HeavyD-sub001/internal/lib/metrics"
)

const maxBodySize = 10 << 20

// Result — ответ upstream. Body всегда корректный JSON: не-JSON тело
// заворачивается в {"error": "<текст>"}.
type Result struct {
	Status int
	Body   []byte
}

// Forwarder пересылает запросы на один адрес upstream.
type Forwarder struct {
	app        string
	target     string
	httpClient *http.Client
}

// NewForwarder создаёт пересыльщик для приложения app. Нулевой timeout означает
// таймаут транспорта по умолчанию.
func NewForwarder(app, target string, timeout time.Duration) *Forwarder {
	return &Forwarder{
		app:        app,
		target:     target,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// App возвращает имя приложения, которому принадлежит пересыльщик.
func (f *Forwarder) App() string { return f.app }

// Target возвращает адрес upstream.
func (f *Forwarder) Target() string { return f.target }

// Forward отправляет запрос с методом method. Для GET передаётся строка запроса
// rawQuery, для POST тело body с типом contentType.
func (f *Forwarder) Forward(ctx context.Context, method, rawQuery string, body []byte, contentType string) (Result, error) {
	const op = "upstream.Forward"

	req, err := f.newRequest(ctx, method, rawQuery, body, contentType)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	metrics.UpstreamDuration.WithLabelValues(f.app).Observe(time.Since(start).Seconds())
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, redact(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Result{}, fmt.Errorf("%s: read body: %w", op, redact(err))
	}
	return Result{Status: resp.StatusCode, Body: normalize(raw)}, nil
}

func (f *Forwarder) newRequest(ctx context.Context, method, rawQuery string, body []byte, contentType string) (*http.Request, error) {
	u, err := url.Parse(f.target)
	if err != nil {
		return nil, err
	}
	switch method {
	case http.MethodGet:
		if rawQuery != "" {
			if u.RawQuery != "" {
				u.RawQuery += "&" + rawQuery
			} else {
				u.RawQuery = rawQuery
			}
		}
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	case http.MethodPost:
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	default:
		return nil, fmt.Errorf("method %s is not relayed", method)
	}
}

// normalize гарантирует, что вызывающий получит разбираемый JSON.
func normalize(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return trimmed
	}
	wrapped, _ := json.Marshal(map[string]string{"error": string(raw)})
	return wrapped
}

// redact убирает адрес upstream из текста ошибки: *url.Error печатает его целиком.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

// FailureBody — тело ответа при сбое пересылки.
func FailureBody(err error) []byte {
	b, _ := json.Marshal(struct {
		Error   string `json:"error"`
		Success bool   `json:"success"`
	}{Error: err.Error(), Success: false})
	return b
}
