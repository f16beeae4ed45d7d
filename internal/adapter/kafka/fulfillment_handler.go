package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
)

// FulfillmentHandler applies courier status updates from the fulfillment
// topic to the order store.
type FulfillmentHandler struct {
	Store usecase.TxRunner
	Cache usecase.StatusCache // optional
	Log   *slog.Logger
}

func NewFulfillmentHandler(store usecase.TxRunner, cache usecase.StatusCache, log *slog.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{Store: store, Cache: cache, Log: log}
}

func (h *FulfillmentHandler) Handle(ctx context.Context, ev usecase.FulfillmentStatusMsg) error {
	var target entity.Status
	switch ev.Status {
	case "SHIPPED":
		target = entity.StatusShipped
	case "DELIVERED":
		target = entity.StatusDelivered
	default:
		// Unknown courier statuses are dropped, not retried.
		h.Log.Warn("unknown fulfillment status",
			slog.String("order_id", ev.OrderID), slog.String("status", ev.Status))
		return nil
	}

	err := h.Store.WithinTx(ctx, func(tx usecase.Tx) error {
		ord, err := tx.OrderForUpdate(ctx, ev.OrderID)
		if err != nil {
			return err
		}
		// Cancelled and Delivered orders never move again, and a replayed
		// SHIPPED must not rewind a delivered order.
		if ord.Status.Terminal() {
			return entity.ErrTerminalStatus
		}
		return tx.SetStatus(ctx, ord.ID, target)
	})
	switch {
	case errors.Is(err, entity.ErrTerminalStatus), errors.Is(err, entity.ErrOrderNotFound):
		// Stale or unknown update; ack and move on.
		h.Log.Warn("fulfillment update dropped",
			slog.String("order_id", ev.OrderID),
			slog.String("status", ev.Status),
			slog.Any("reason", err))
		return nil
	case err != nil:
		return fmt.Errorf("apply fulfillment status: %w", err)
	}

	if h.Cache != nil {
		_ = h.Cache.SetStatus(ctx, ev.OrderID, string(target))
	}
	return nil
}
