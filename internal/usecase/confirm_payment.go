package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aq2208/storefront-api/internal/entity"
)

// ErrStockExhausted is returned when a paid gateway order cannot be settled
// because stock ran out between intent creation and confirmation. Money has
// been collected, so this must be surfaced for manual reconciliation, never
// swallowed.
var ErrStockExhausted = errors.New("stock exhausted at payment confirmation")

type ConfirmPaymentInput struct {
	UserID         string
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

type ConfirmPaymentOutput struct {
	OrderID string
	// AlreadySettled is true when the callback was a replay for an order
	// that is already Paid; no side effects were re-applied.
	AlreadySettled bool
}

// ConfirmPayment settles a staged gateway order: verifies the callback
// signature, commits the stock debit (the first and only one for gateway
// orders), marks the order paid and clears the cart in one transaction.
// Replayed callbacks are idempotent.
type ConfirmPayment struct {
	store    TxRunner
	verifier SignatureVerifier
	pub      EventPublisher
	cache    StatusCache
	now      func() time.Time
	log      *slog.Logger
}

func NewConfirmPayment(store TxRunner, verifier SignatureVerifier, pub EventPublisher, cache StatusCache, log *slog.Logger) *ConfirmPayment {
	return &ConfirmPayment{store: store, verifier: verifier, pub: pub, cache: cache, now: time.Now, log: log}
}

func (uc *ConfirmPayment) Execute(ctx context.Context, in ConfirmPaymentInput) (ConfirmPaymentOutput, error) {
	if !uc.verifier.Verify(in.GatewayOrderID, in.PaymentID, in.Signature) {
		return ConfirmPaymentOutput{}, entity.ErrSignatureInvalid
	}

	var out ConfirmPaymentOutput
	var settled *entity.Order
	err := uc.store.WithinTx(ctx, func(tx Tx) error {
		ord, err := tx.OrderByGatewayID(ctx, in.GatewayOrderID)
		if err != nil {
			return err
		}
		if in.UserID != "" && ord.UserID != in.UserID {
			return entity.ErrOrderNotFound
		}
		out.OrderID = ord.ID

		// Replay of an already-settled confirmation: succeed without
		// touching stock or cart again.
		if ord.PaymentStatus == entity.PaymentPaid {
			out.AlreadySettled = true
			return nil
		}

		for _, it := range ord.Items {
			if err := tx.DebitStock(ctx, it.ProductID, it.Quantity); err != nil {
				if entity.IsInsufficientStock(err) {
					return fmt.Errorf("%w: %v", ErrStockExhausted, err)
				}
				return err
			}
		}
		if err := tx.MarkPaid(ctx, ord.ID, in.PaymentID, in.Signature); err != nil {
			return err
		}
		if err := tx.ClearCart(ctx, ord.UserID); err != nil {
			return err
		}
		ord.Status = entity.StatusProcessing
		ord.PaymentStatus = entity.PaymentPaid
		settled = ord
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStockExhausted) {
			uc.log.Error("paid order could not be settled, needs manual reconciliation",
				"gateway_order_id", in.GatewayOrderID, "payment_id", in.PaymentID, "err", err)
		}
		return ConfirmPaymentOutput{}, err
	}

	if settled != nil {
		if uc.pub != nil {
			msg := OrderEventMsg{
				OrderID:  settled.ID,
				UserID:   settled.UserID,
				Type:     EventOrderPaid,
				Status:   string(settled.Status),
				Method:   string(settled.PaymentMethod),
				Total:    settled.TotalAmount.StringFixed(2),
				Occurred: uc.now(),
			}
			if err := uc.pub.PublishOrderEvent(ctx, msg); err != nil {
				uc.log.Warn("publish order.paid failed", "order_id", settled.ID, "err", err)
			}
		}
		if uc.cache != nil {
			_ = uc.cache.SetStatus(ctx, settled.ID, string(settled.Status))
		}
	}
	return out, nil
}
