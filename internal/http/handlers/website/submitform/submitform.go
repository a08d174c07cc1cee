// Package submitform реализует приём заявок с маркетингового сайта.
//
// Handler пересылает тело запроса в Apps Script без изменений и возвращает ответ
// upstream как есть. Если тело является формой обратной связи (mode
// submitContactForm или без mode), копия формы пишется в журнал, а принятая
// бэкендом заявка публикуется как событие. Сбои журнала и публикации только
// логируются, заявки другого вида пересылаются без журнала.
package submitform

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/MindThoth/HeavyD-sub001/internal/gas"
	"github.com/MindThoth/HeavyD-sub001/internal/http/handlers/gas/relay"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/rabbitmq"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
	"github.com/MindThoth/HeavyD-sub001/internal/upstream"
)

// publishTimeout ограничивает ожидание подтверждения брокера.
const publishTimeout = 5 * time.Second

// Journal сохраняет заявки и результат их пересылки.
type Journal interface {
	RecordSubmission(ctx context.Context, form models.ContactForm) (string, error)
	MarkRelayed(ctx context.Context, id string, status int, accepted bool) error
}

// Publisher публикует событие о принятой заявке.
type Publisher interface {
	PublishLead(ctx context.Context, event rabbitmq.LeadEvent) error
}

// Handler обрабатывает POST /api/submit-form.
type Handler struct {
	log       *slog.Logger
	forwarder relay.Forwarder
	journal   Journal
	publisher Publisher
	validate  *validator.Validate
	now       func() time.Time
}

// New создает Handler. journal и publisher могут быть nil.
func New(log *slog.Logger, forwarder relay.Forwarder, journal Journal, publisher Publisher) *Handler {
	return &Handler{
		log:       log,
		forwarder: forwarder,
		journal:   journal,
		publisher: publisher,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// ServeHTTP godoc
// @Summary Отправить заявку с сайта
// @Description Пересылает тело запроса в Apps Script без изменений и возвращает ответ upstream как есть. Форма обратной связи дополнительно сохраняется в журнал.
// @Tags Website
// @Accept  json
// @Produce  json
// @Param request body models.ContactForm true "Заявка"
// @Success 200 {object} map[string]any "Ответ upstream"
// @Failure 413 {object} map[string]any "Тело запроса слишком большое"
// @Failure 500 {object} map[string]any "Сбой пересылки"
// @Router /api/submit-form [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.website.submitform"
	app := h.forwarder.App()

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, status, err := relay.ReadBody(w, r)
	if err != nil {
		log.Warn("failed to read request body", sl.Err(err))
		relay.Write(w, r, app, status, upstream.FailureBody(err))
		return
	}

	receivedAt := h.now()
	form, isLead := h.parseLead(log, body)
	var id string
	if isLead {
		id = h.record(r.Context(), log, form)
	}

	res, err := h.forwarder.Forward(r.Context(), http.MethodPost, "", body, r.Header.Get("Content-Type"))
	if err != nil {
		log.Error("failed to relay submission", sl.Err(err), sl.Upstream(h.forwarder.Target()))
		h.mark(r.Context(), log, id, http.StatusInternalServerError, false)
		relay.Write(w, r, app, http.StatusInternalServerError, upstream.FailureBody(err))
		return
	}

	accepted := res.Status < http.StatusBadRequest && isSuccess(res.Body)
	h.mark(r.Context(), log, id, res.Status, accepted)
	if isLead && accepted {
		h.publish(r.Context(), log, rabbitmq.LeadEvent{SubmissionID: id, Form: form, ReceivedAt: receivedAt})
	}

	log.Info("submission relayed", slog.Int("status", res.Status), slog.Bool("accepted", accepted), slog.Bool("lead", isLead))
	relay.Write(w, r, app, res.Status, res.Body)
}

// parseLead разбирает копию тела как форму обратной связи. Тело другого вида
// или неполная форма не мешают пересылке, их просто нет в журнале.
func (h *Handler) parseLead(log *slog.Logger, body []byte) (models.ContactForm, bool) {
	var payload struct {
		Mode string `json:"mode"`
		models.ContactForm
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Info("submission body is not a JSON object, skipping journal", sl.Err(err))
		return models.ContactForm{}, false
	}
	if payload.Mode != "" && payload.Mode != (gas.SubmitContactForm{}).Mode() {
		log.Debug("submission is not a contact form, skipping journal", slog.String("mode", payload.Mode))
		return models.ContactForm{}, false
	}
	if err := h.validate.Struct(payload.ContactForm); err != nil {
		log.Info("contact form incomplete, skipping journal", sl.Err(err))
		return models.ContactForm{}, false
	}
	return payload.ContactForm, true
}

func (h *Handler) record(ctx context.Context, log *slog.Logger, form models.ContactForm) string {
	if h.journal == nil {
		return ""
	}
	id, err := h.journal.RecordSubmission(ctx, form)
	if err != nil {
		log.Error("failed to journal submission", sl.Err(err))
		return ""
	}
	return id
}

func (h *Handler) mark(ctx context.Context, log *slog.Logger, id string, status int, accepted bool) {
	if h.journal == nil || id == "" {
		return
	}
	if err := h.journal.MarkRelayed(ctx, id, status, accepted); err != nil {
		log.Error("failed to mark submission", sl.Err(err), slog.String("submission_id", id))
	}
}

func (h *Handler) publish(ctx context.Context, log *slog.Logger, event rabbitmq.LeadEvent) {
	if h.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := h.publisher.PublishLead(ctx, event); err != nil {
		log.Error("failed to publish lead event", sl.Err(err))
	}
}

func isSuccess(body []byte) bool {
	var env struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return false
	}
	return env.Success
}
