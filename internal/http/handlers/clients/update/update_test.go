package update

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/MindThoth/HeavyD-sub001/internal/gas"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

type UpdateServiceMock struct {
	mock.Mock
}

func (m *UpdateServiceMock) UpdateStatus(ctx context.Context, email, status string) error {
	return m.Called(ctx, email, status).Error(0)
}

func (m *UpdateServiceMock) UpdateNotes(ctx context.Context, email, notes string) error {
	return m.Called(ctx, email, notes).Error(0)
}

func newRouter(svc Service) http.Handler {
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Put("/api/v1/clients/{email}/status", h.Status)
	r.Put("/api/v1/clients/{email}/notes", h.Notes)
	return r
}

func TestUpdateHandler_Status(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		setup      func(m *UpdateServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name: "ok",
			path: "/api/v1/clients/ann@x.io/status",
			body: `{"status":"active"}`,
			setup: func(m *UpdateServiceMock) {
				m.On("UpdateStatus", mock.Anything, "ann@x.io", "active").Return(nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
		},
		{
			name: "escaped email",
			path: "/api/v1/clients/ann%2Bprint%40x.io/status",
			body: `{"status":"archived"}`,
			setup: func(m *UpdateServiceMock) {
				m.On("UpdateStatus", mock.Anything, "ann+print@x.io", "archived").Return(nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
		},
		{
			name:       "unknown status",
			path:       "/api/v1/clients/ann@x.io/status",
			body:       `{"status":"vip"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `"message":"field Status must be one of [lead active in-progress completed archived]"`,
		},
		{
			name:       "bad email",
			path:       "/api/v1/clients/nobody/status",
			body:       `{"status":"active"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"message":"invalid client email"`,
		},
		{
			name: "backend says not found",
			path: "/api/v1/clients/zed@x.io/status",
			body: `{"status":"active"}`,
			setup: func(m *UpdateServiceMock) {
				m.On("UpdateStatus", mock.Anything, "zed@x.io", "active").
					Return(&gas.ApplicationError{Action: "updateClientStatus", Message: "Client not found"}).Once()
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `"message":"Client not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(UpdateServiceMock)
			if tt.setup != nil {
				tt.setup(svc)
			}
			rr := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, tt.path, bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestUpdateHandler_Notes(t *testing.T) {
	svc := new(UpdateServiceMock)
	svc.On("UpdateNotes", mock.Anything, "ann@x.io", "").Return(nil).Once()

	rr := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/v1/clients/ann@x.io/notes", bytes.NewBufferString(`{"notes":""}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)

	rr = httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/v1/clients/ann@x.io/notes", bytes.NewBufferString(`{"notes":`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateHandler_StatusAcceptsEveryClientStatus(t *testing.T) {
	for _, status := range models.ClientStatus {
		t.Run(status, func(t *testing.T) {
			svc := new(UpdateServiceMock)
			svc.On("UpdateStatus", mock.Anything, "ann@x.io", status).Return(nil).Once()

			rr := httptest.NewRecorder()
			body := bytes.NewBufferString(`{"status":"` + status + `"}`)
			newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/v1/clients/ann@x.io/status", body))

			assert.Equal(t, http.StatusOK, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}
