package submitform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/gas/relay"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/rabbitmq"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
	"github.com/MindThoth/HeavyD-sub001/internal/upstream"
)

type ForwarderMock struct {
	mock.Mock
}

func (m *ForwarderMock) App() string    { return "website" }
func (m *ForwarderMock) Target() string { return "https://script.google.com/macros/s/secret/exec" }

func (m *ForwarderMock) Forward(ctx context.Context, method, rawQuery string, body []byte, contentType string) (upstream.Result, error) {
	args := m.Called(ctx, method, rawQuery, body, contentType)
	res, _ := args.Get(0).(upstream.Result)
	return res, args.Error(1)
}

type JournalMock struct {
	mock.Mock
}

func (m *JournalMock) RecordSubmission(ctx context.Context, form models.ContactForm) (string, error) {
	args := m.Called(ctx, form)
	return args.String(0), args.Error(1)
}

func (m *JournalMock) MarkRelayed(ctx context.Context, id string, status int, accepted bool) error {
	args := m.Called(ctx, id, status, accepted)
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishLead(ctx context.Context, event rabbitmq.LeadEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var validForm = models.ContactForm{
	Name:    "Ann",
	Email:   "ann@x.io",
	Service: "Vinyl Banner",
	Message: "Need a quote",
}

const validBody = `{"mode":"submitContactForm","name":"Ann","email":"ann@x.io","service":"Vinyl Banner","message":"Need a quote"}`

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/submit-form", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSubmitForm_AcceptedFlow(t *testing.T) {
	fwd := new(ForwarderMock)
	journal := new(JournalMock)
	pub := new(PublisherMock)

	journal.On("RecordSubmission", mock.Anything, validForm).Return("sub-1", nil).Once()
	fwd.On("Forward", mock.Anything, http.MethodPost, "", []byte(validBody), "application/json").
		Return(upstream.Result{Status: http.StatusOK, Body: []byte(`{"success":true,"message":"Thanks"}`)}, nil).Once()
	journal.On("MarkRelayed", mock.Anything, "sub-1", http.StatusOK, true).Return(nil).Once()
	pub.On("PublishLead", mock.Anything, mock.MatchedBy(func(e rabbitmq.LeadEvent) bool {
		return e.SubmissionID == "sub-1" && e.Form == validForm
	})).Return(nil).Once()

	rr := post(New(newNoopLogger(), fwd, journal, pub), validBody)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Thanks"}`, rr.Body.String())
	fwd.AssertExpectations(t)
	journal.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSubmitForm_ForwardsBodyVerbatim(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantJournal bool
	}{
		{
			name:        "contact form without mode keeps extra fields",
			body:        `{"name":"Ann","email":"ann@x.io","message":"hi","budget":"5000","address":"1 Main St"}`,
			wantJournal: true,
		},
		{
			name: "custom mode is not rewritten",
			body: `{"mode":"requestQuote","name":"Ann","email":"ann@x.io","message":"hi","budget":"5000","address":"1 Main St"}`,
		},
		{
			name: "other form kind is forwarded",
			body: `{"mode":"newsletter","email":"ann@x.io"}`,
		},
		{
			name: "incomplete contact form is forwarded",
			body: `{"mode":"submitContactForm","email":"nope"}`,
		},
		{
			name: "non-json body is forwarded",
			body: `name=Ann&email=ann%40x.io`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd := new(ForwarderMock)
			journal := new(JournalMock)

			fwd.On("Forward", mock.Anything, http.MethodPost, "", []byte(tt.body), "application/json").
				Return(upstream.Result{Status: http.StatusOK, Body: []byte(`{"success":true}`)}, nil).Once()
			if tt.wantJournal {
				journal.On("RecordSubmission", mock.Anything, mock.Anything).Return("sub-9", nil).Once()
				journal.On("MarkRelayed", mock.Anything, "sub-9", http.StatusOK, true).Return(nil).Once()
			}

			rr := post(New(newNoopLogger(), fwd, journal, nil), tt.body)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, `{"success":true}`, rr.Body.String())
			fwd.AssertExpectations(t)
			journal.AssertExpectations(t)
			if !tt.wantJournal {
				journal.AssertNotCalled(t, "RecordSubmission", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestSubmitForm_RejectedIsNotPublished(t *testing.T) {
	fwd := new(ForwarderMock)
	journal := new(JournalMock)
	pub := new(PublisherMock)

	journal.On("RecordSubmission", mock.Anything, validForm).Return("sub-2", nil).Once()
	fwd.On("Forward", mock.Anything, http.MethodPost, "", mock.Anything, "application/json").
		Return(upstream.Result{Status: http.StatusOK, Body: []byte(`{"success":false,"message":"Sheet locked"}`)}, nil).Once()
	journal.On("MarkRelayed", mock.Anything, "sub-2", http.StatusOK, false).Return(nil).Once()

	rr := post(New(newNoopLogger(), fwd, journal, pub), validBody)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"Sheet locked"}`, rr.Body.String())
	pub.AssertNotCalled(t, "PublishLead", mock.Anything, mock.Anything)
	journal.AssertExpectations(t)
}

func TestSubmitForm_JournalFailureDoesNotBlockRelay(t *testing.T) {
	fwd := new(ForwarderMock)
	journal := new(JournalMock)
	pub := new(PublisherMock)

	journal.On("RecordSubmission", mock.Anything, validForm).Return("", errors.New("db down")).Once()
	fwd.On("Forward", mock.Anything, http.MethodPost, "", mock.Anything, "application/json").
		Return(upstream.Result{Status: http.StatusOK, Body: []byte(`{"success":true}`)}, nil).Once()
	pub.On("PublishLead", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	rr := post(New(newNoopLogger(), fwd, journal, pub), validBody)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	journal.AssertNotCalled(t, "MarkRelayed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertExpectations(t)
}

func TestSubmitForm_UpstreamUnreachable(t *testing.T) {
	fwd := new(ForwarderMock)
	journal := new(JournalMock)

	journal.On("RecordSubmission", mock.Anything, validForm).Return("sub-3", nil).Once()
	fwd.On("Forward", mock.Anything, http.MethodPost, "", mock.Anything, "application/json").
		Return(upstream.Result{}, errors.New("upstream.Forward: dial tcp: connection refused")).Once()
	journal.On("MarkRelayed", mock.Anything, "sub-3", http.StatusInternalServerError, false).Return(nil).Once()

	rr := post(New(newNoopLogger(), fwd, journal, nil), validBody)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, false, got["success"])
	assert.NotContains(t, rr.Body.String(), "secret")
	journal.AssertExpectations(t)
}

func TestSubmitForm_BodyTooLarge(t *testing.T) {
	fwd := new(ForwarderMock)
	journal := new(JournalMock)

	big := `{"name":"Ann","email":"ann@x.io","message":"` + strings.Repeat("x", relay.MaxRequestBody) + `"}`
	rr := post(New(newNoopLogger(), fwd, journal, nil), big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":false`)
	fwd.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	journal.AssertNotCalled(t, "RecordSubmission", mock.Anything, mock.Anything)
}
