package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/aq2208/storefront-api/internal/entity"
)

// CancelOrder lets the owning user cancel an order inside the cancellation
// window while it is still Pending or Processing. Cancellation restores the
// ledger from the item snapshot in the same transaction.
type CancelOrder struct {
	store  TxRunner
	pub    EventPublisher
	cache  StatusCache
	window time.Duration
	now    func() time.Time
	log    *slog.Logger
}

func NewCancelOrder(store TxRunner, pub EventPublisher, cache StatusCache, window time.Duration, log *slog.Logger) *CancelOrder {
	if window <= 0 {
		window = 4 * time.Hour
	}
	return &CancelOrder{store: store, pub: pub, cache: cache, window: window, now: time.Now, log: log}
}

// WithClock overrides the clock, for tests.
func (uc *CancelOrder) WithClock(now func() time.Time) *CancelOrder {
	uc.now = now
	return uc
}

func (uc *CancelOrder) Execute(ctx context.Context, userID, orderID string) error {
	var cancelled *entity.Order
	err := uc.store.WithinTx(ctx, func(tx Tx) error {
		ord, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if ord.UserID != userID {
			// Not owned by the caller: indistinguishable from absent.
			return entity.ErrOrderNotFound
		}
		if uc.now().Sub(ord.OrderDate) > uc.window {
			return entity.ErrWindowExpired
		}
		if !ord.Status.Cancellable() {
			return entity.ErrNotCancellable
		}

		// Gateway orders hold no stock until the payment is confirmed;
		// cancelling an unpaid one has nothing to give back.
		if ord.PaymentMethod != entity.MethodRazorpay || ord.PaymentStatus == entity.PaymentPaid {
			for _, it := range ord.Items {
				if err := tx.RestoreStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}

		payStatus := ord.PaymentStatus
		if payStatus == entity.PaymentPaid {
			payStatus = entity.PaymentRefunded
		}
		if err := tx.MarkCancelled(ctx, ord.ID, payStatus); err != nil {
			return err
		}
		ord.Status = entity.StatusCancelled
		ord.PaymentStatus = payStatus
		cancelled = ord
		return nil
	})
	if err != nil {
		return err
	}

	if uc.pub != nil {
		msg := OrderEventMsg{
			OrderID:  cancelled.ID,
			UserID:   cancelled.UserID,
			Type:     EventOrderCancelled,
			Status:   string(entity.StatusCancelled),
			Occurred: uc.now(),
		}
		if err := uc.pub.PublishOrderEvent(ctx, msg); err != nil {
			uc.log.Warn("publish order.cancelled failed", "order_id", cancelled.ID, "err", err)
		}
	}
	if uc.cache != nil {
		_ = uc.cache.SetStatus(ctx, cancelled.ID, string(entity.StatusCancelled))
	}
	return nil
}
