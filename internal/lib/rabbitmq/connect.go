// Package rabbitmq содержит подключение к брокеру и публикацию событий о заявках.
package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
)

// Connect подключается к брокеру не более чем за attempts попыток. Пауза delay
// между попытками прерывается отменой ctx; после последней попытки паузы нет.
func Connect(ctx context.Context, log *slog.Logger, uri string, attempts int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	attempts = max(attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := amqp.Dial(uri)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		log.Warn("broker unreachable, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			sl.Err(err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("%s: %d attempts: %w", op, attempts, lastErr)
}

// SetupChannel открывает канал в режиме подтверждений публикации, объявляет
// долговечный direct-обменник и привязывает к нему очереди.
func SetupChannel(conn *amqp.Connection, exchange string, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := declareTopology(ch, exchange, queues); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: enable confirms: %w", op, err)
	}
	return ch, nil
}

func declareTopology(ch *amqp.Channel, exchange string, queues []QueueConfig) error {
	const durable, autoDelete, internal, exclusive, noWait = true, false, false, false, false

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeDirect, durable, autoDelete, internal, noWait, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, durable, autoDelete, exclusive, noWait, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, exchange, noWait, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", q.QueueName, q.RoutingKey, err)
		}
	}
	return nil
}
