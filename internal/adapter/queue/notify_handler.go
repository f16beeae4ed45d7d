package queue

import (
	"context"
	"log/slog"

	"github.com/aq2208/storefront-api/internal/usecase"
)

// Notifier delivers a customer-facing notification for an order event.
type Notifier interface {
	Notify(ctx context.Context, ev usecase.OrderEventMsg) error
}

// NotifyHandler consumes order.* events and hands them to the Notifier.
// Intended for use with queue.JSONHandler[usecase.OrderEventMsg].
type NotifyHandler struct {
	N Notifier
}

func NewNotifyHandler(n Notifier) *NotifyHandler {
	return &NotifyHandler{N: n}
}

func (h *NotifyHandler) HandleEvent(ctx context.Context, ev usecase.OrderEventMsg) error {
	return h.N.Notify(ctx, ev)
}

// LogNotifier records the notification instead of sending it anywhere.
// Stands in until a real delivery channel is wired up.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, ev usecase.OrderEventMsg) error {
	n.Log.Info("order notification",
		slog.String("order_id", ev.OrderID),
		slog.String("user_id", ev.UserID),
		slog.String("type", ev.Type),
		slog.String("status", ev.Status))
	return nil
}
