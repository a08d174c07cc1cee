package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MindThoth/HeavyD-sub001/internal/pricing"
	"github.com/MindThoth/HeavyD-sub001/internal/services/portal"
)

type QuoteServiceMock struct {
	mock.Mock
}

func (m *QuoteServiceMock) Quote(ctx context.Context, items []pricing.Item) (portal.QuoteResult, error) {
	args := m.Called(ctx, items)
	res, _ := args.Get(0).(portal.QuoteResult)
	return res, args.Error(1)
}

func TestQuoteHandler(t *testing.T) {
	banner := pricing.Item{Service: "Vinyl Banner", Height: 10, Width: 5, Quantity: 2, Multiplier: 4}
	line := pricing.Quote(pricing.Rate{UnitCost: 0.10, UnitPrice: 0.50}, banner)
	result := portal.QuoteResult{Lines: []pricing.Line{line}, Totals: pricing.Summarize([]pricing.Line{line})}

	tests := []struct {
		name       string
		body       string
		setup      func(m *QuoteServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name: "ok",
			body: `{"items":[{"service":"Vinyl Banner","height":10,"width":5,"quantity":2,"multiplier":4}]}`,
			setup: func(m *QuoteServiceMock) {
				m.On("Quote", mock.Anything, []pricing.Item{banner}).Return(result, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "no items",
			body:       `{"items":[]}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "zero width",
			body:       `{"items":[{"service":"Vinyl Banner","height":10,"width":0,"quantity":2,"multiplier":4}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "field Width must be greater than 0",
		},
		{
			name: "unknown service",
			body: `{"items":[{"service":"Neon","height":1,"width":1,"quantity":1,"multiplier":1}]}`,
			setup: func(m *QuoteServiceMock) {
				m.On("Quote", mock.Anything, mock.Anything).
					Return(portal.QuoteResult{}, fmt.Errorf("portal.Quote: %w: %q", portal.ErrUnknownService, "Neon")).Once()
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "unknown service",
		},
		{
			name:       "invalid json",
			body:       `[`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(QuoteServiceMock)
			if tt.setup != nil {
				tt.setup(svc)
			}
			rr := httptest.NewRecorder()
			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).
				ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rr.Body.String(), tt.wantBody)
			}
			svc.AssertExpectations(t)

			if tt.wantStatus == http.StatusOK {
				var resp struct {
					Success bool               `json:"success"`
					Data    portal.QuoteResult `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, "190.00", pricing.Money(resp.Data.Totals.Profit))
			}
		})
	}
}
