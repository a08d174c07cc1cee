package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LeadEvent — событие о заявке, принятой бэкендом.
type LeadEvent struct {
	SubmissionID string             `json:"submissionId,omitempty"`
	Form         models.ContactForm `json:"form"`
	ReceivedAt   time.Time          `json:"receivedAt"`
}

// ErrNotConfirmed возвращается, когда брокер отказался принять событие.
var ErrNotConfirmed = errors.New("broker did not confirm publish")

// LeadPublisher публикует события о заявках в обменник и ждёт подтверждения брокера.
// amqp.Channel не допускает конкурентной публикации, поэтому вызовы сериализуются.
type LeadPublisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
	confirms <-chan amqp.Confirmation
	seq      uint64
}

// NewLeadPublisher создаёт публикатор поверх канала из SetupChannel,
// канал должен быть в режиме подтверждений.
func NewLeadPublisher(ch *amqp.Channel, exchange string) *LeadPublisher {
	return &LeadPublisher{
		ch:       ch,
		exchange: exchange,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 16)),
	}
}

// PublishLead публикует событие lead.received. Отмена ctx прерывает ожидание
// подтверждения, но не отзывает уже отправленное сообщение.
func (p *LeadPublisher) PublishLead(ctx context.Context, event LeadEvent) error {
	const op = "rabbitmq.PublishLead"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := PublishMessage(p.ch, p.exchange, LeadReceivedKey, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.seq++
	if err := p.awaitConfirm(ctx, p.seq); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// awaitConfirm ждёт подтверждения с номером tag. Подтверждения более ранних
// публикаций, которые перестали ждать по отмене ctx, пропускаются.
func (p *LeadPublisher) awaitConfirm(ctx context.Context, tag uint64) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-p.confirms:
			if !ok {
				return amqp.ErrClosed
			}
			if c.DeliveryTag < tag {
				continue
			}
			if !c.Ack {
				return ErrNotConfirmed
			}
			return nil
		}
	}
}

// Close закрывает канал.
func (p *LeadPublisher) Close() error {
	return p.ch.Close()
}
