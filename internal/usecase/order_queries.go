package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/aq2208/storefront-api/internal/entity"
)

// OrderQueries serves the read side plus the admin status override.
type OrderQueries struct {
	store  TxRunner
	orders OrderReader
	pub    EventPublisher
	cache  StatusCache
	now    func() time.Time
	log    *slog.Logger
}

func NewOrderQueries(store TxRunner, orders OrderReader, pub EventPublisher, cache StatusCache, log *slog.Logger) *OrderQueries {
	return &OrderQueries{store: store, orders: orders, pub: pub, cache: cache, now: time.Now, log: log}
}

func (uc *OrderQueries) MyOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	return uc.orders.ListByUser(ctx, userID)
}

// Get enforces ownership: a row that exists but belongs to someone else is
// reported as absent.
func (uc *OrderQueries) Get(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	ord, err := uc.orders.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord.UserID != userID {
		return nil, entity.ErrOrderNotFound
	}
	return ord, nil
}

func (uc *OrderQueries) ListAll(ctx context.Context) ([]entity.Order, error) {
	return uc.orders.ListAll(ctx)
}

// AdminSetStatus transitions the order status. The only guard besides
// existence is the terminal-state one: Cancelled and Delivered orders stay
// where they are, since cancellation has already restored stock.
func (uc *OrderQueries) AdminSetStatus(ctx context.Context, orderID string, status entity.Status) error {
	if !status.Valid() {
		return entity.ErrInvalidStatus
	}
	var updated *entity.Order
	err := uc.store.WithinTx(ctx, func(tx Tx) error {
		ord, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if ord.Status.Terminal() && ord.Status != status {
			return entity.ErrTerminalStatus
		}
		if err := tx.SetStatus(ctx, ord.ID, status); err != nil {
			return err
		}
		ord.Status = status
		updated = ord
		return nil
	})
	if err != nil {
		return err
	}

	if uc.pub != nil {
		msg := OrderEventMsg{
			OrderID:  updated.ID,
			UserID:   updated.UserID,
			Type:     EventStatusUpdated,
			Status:   string(status),
			Occurred: uc.now(),
		}
		if err := uc.pub.PublishOrderEvent(ctx, msg); err != nil {
			uc.log.Warn("publish status update failed", "order_id", updated.ID, "err", err)
		}
	}
	if uc.cache != nil {
		_ = uc.cache.SetStatus(ctx, updated.ID, string(status))
	}
	return nil
}
