package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MindThoth/HeavyD-sub001/internal/upstream"
)

type ForwarderMock struct {
	mock.Mock
}

func (m *ForwarderMock) App() string    { return "dashboard" }
func (m *ForwarderMock) Target() string { return "https://script.google.com/macros/s/secret/exec" }

func (m *ForwarderMock) Forward(ctx context.Context, method, rawQuery string, body []byte, contentType string) (upstream.Result, error) {
	args := m.Called(ctx, method, rawQuery, body, contentType)
	res, _ := args.Get(0).(upstream.Result)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRelayHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		target      string
		body        string
		contentType string
		mockResult  upstream.Result
		mockErr     error
		wantStatus  int
		wantBody    string
		wantQuery   string
		wantPayload []byte
	}{
		{
			name:       "get relays query and status",
			method:     http.MethodGet,
			target:     "/api/gas?action=getClientData&email=a%40example.com",
			mockResult: upstream.Result{Status: http.StatusOK, Body: []byte(`{"success":true,"client":{}}`)},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true,"client":{}}`,
			wantQuery:  "action=getClientData&email=a%40example.com",
		},
		{
			name:        "post relays body",
			method:      http.MethodPost,
			target:      "/api/gas",
			body:        `{"mode":"updateClientNotes","notes":"hi"}`,
			contentType: "application/json",
			mockResult:  upstream.Result{Status: http.StatusOK, Body: []byte(`{"success":false,"message":"Client not found"}`)},
			wantStatus:  http.StatusOK,
			wantBody:    `{"success":false,"message":"Client not found"}`,
			wantPayload: []byte(`{"mode":"updateClientNotes","notes":"hi"}`),
		},
		{
			name:       "upstream error status is kept",
			method:     http.MethodGet,
			target:     "/api/gas",
			mockResult: upstream.Result{Status: http.StatusInternalServerError, Body: []byte(`{"error":"Internal Server Error"}`)},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal Server Error"}`,
		},
		{
			name:       "forwarding failure becomes 500 envelope",
			method:     http.MethodGet,
			target:     "/api/gas?action=x",
			mockErr:    errors.New("upstream.Forward: dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"upstream.Forward: dial tcp: connection refused","success":false}`,
			wantQuery:  "action=x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd := new(ForwarderMock)
			fwd.On("Forward", mock.Anything, tt.method, tt.wantQuery, tt.wantPayload, tt.contentType).
				Return(tt.mockResult, tt.mockErr).Once()

			var reqBody io.Reader
			if tt.body != "" {
				reqBody = bytes.NewBufferString(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.target, reqBody)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			New(newNoopLogger(), fwd).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			fwd.AssertExpectations(t)
		})
	}
}

func TestRelayHandler_NonJSONUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal Server Error"))
	}))
	defer srv.Close()

	h := New(newNoopLogger(), upstream.NewForwarder("dashboard", srv.URL, 0))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/gas?action=getServicePrices", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestRelayHandler_UnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL
	srv.Close()

	h := New(newNoopLogger(), upstream.NewForwarder("dashboard", target, 0))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/gas", bytes.NewBufferString(`{"mode":"x"}`)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), `"error":`)
}

func TestRelayHandler_BodyLimit(t *testing.T) {
	atLimit := `{"notes":"` + strings.Repeat("x", MaxRequestBody-len(`{"notes":""}`)) + `"}`
	overLimit := `{"notes":"` + strings.Repeat("x", MaxRequestBody) + `"}`

	t.Run("body at the limit is forwarded whole", func(t *testing.T) {
		fwd := new(ForwarderMock)
		fwd.On("Forward", mock.Anything, http.MethodPost, "", []byte(atLimit), "application/json").
			Return(upstream.Result{Status: http.StatusOK, Body: []byte(`{"success":true}`)}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/gas", bytes.NewBufferString(atLimit))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		New(newNoopLogger(), fwd).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		fwd.AssertExpectations(t)
	})

	t.Run("larger body is rejected, not truncated", func(t *testing.T) {
		fwd := new(ForwarderMock)

		req := httptest.NewRequest(http.MethodPost, "/api/gas", bytes.NewBufferString(overLimit))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		New(newNoopLogger(), fwd).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
		fwd.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
