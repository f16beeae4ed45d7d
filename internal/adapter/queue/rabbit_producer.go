package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/aq2208/storefront-api/internal/usecase"
)

const (
	exchangeName = "order.events"
	// one notification queue catches every order.* event
	NotifyQueue      = "order.notify.q"
	notifyBindingKey = "order.*"
)

// RabbitProducer implements usecase.EventPublisher over a topic exchange.
// The event type doubles as the routing key, so downstream consumers can
// bind narrowly (order.paid only) or broadly (order.*).
type RabbitProducer struct {
	ch *amqp.Channel
}

// NewRabbitProducer declares the exchange, the notification queue, and its
// binding once at startup.
func NewRabbitProducer(ch *amqp.Channel) (*RabbitProducer, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		NotifyQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, notifyBindingKey, exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitProducer{ch: ch}, nil
}

// PublishOrderEvent routes the event by its type.
func (p *RabbitProducer) PublishOrderEvent(ctx context.Context, msg usecase.OrderEventMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Body:         body,
	}

	if err := p.ch.PublishWithContext(
		ctx,
		exchangeName,
		msg.Type, // routing key
		false,    // mandatory
		false,    // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}

	return nil
}

var _ usecase.EventPublisher = (*RabbitProducer)(nil)
