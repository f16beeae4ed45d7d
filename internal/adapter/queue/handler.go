package queue

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler consumes one delivery. Implementations must be idempotent; the
// Router redelivers on NACK. A nil return acks the message, an error nacks
// it (requeue behavior is the Router's call).
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) error
}
