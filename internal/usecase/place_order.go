package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aq2208/storefront-api/internal/entity"
)

var (
	ErrDuplicate      = errors.New("duplicate idempotency key")
	ErrMissingUPIRef  = errors.New("transaction reference is required for UPI orders")
	ErrUnknownMethod  = errors.New("unknown payment method")
	ErrMissingAddress = errors.New("delivery address id is required")
)

type PlaceOrderInput struct {
	UserID            string
	DeliveryAddressID string
	Method            entity.PaymentMethod
	TransactionRef    string // UPI manual reconciliation reference
	IdempotencyKey    string // optional, from X-Idempotency-Key
}

type PlaceOrderOutput struct {
	Order *entity.Order
	// Gateway checkout only: the intent the client completes payment against.
	GatewayOrderID string
	AmountMinor    int64
	Currency       string
}

// PlaceOrder implements the placement protocol: load the cart, resolve
// authoritative prices from the catalog, validate stock, build the immutable
// snapshot, then either debit-and-finalize (COD/UPI) or stage the order
// behind an external payment intent (gateway). COD/UPI run debit, order
// insert and cart clear in one transaction; the gateway branch rolls its
// tentative order row back when intent creation fails.
type PlaceOrder struct {
	store    TxRunner
	orders   OrderReader
	catalog  CatalogReader
	addrs    AddressReader
	gateway  PaymentGateway
	idem     IdempotencyStore
	pub      EventPublisher
	cache    StatusCache
	currency string
	now      func() time.Time
	log      *slog.Logger
}

func NewPlaceOrder(store TxRunner, orders OrderReader, catalog CatalogReader, addrs AddressReader,
	gateway PaymentGateway, idem IdempotencyStore, pub EventPublisher, cache StatusCache,
	currency string, log *slog.Logger) *PlaceOrder {
	return &PlaceOrder{
		store:    store,
		orders:   orders,
		catalog:  catalog,
		addrs:    addrs,
		gateway:  gateway,
		idem:     idem,
		pub:      pub,
		cache:    cache,
		currency: currency,
		now:      time.Now,
		log:      log,
	}
}

// WithClock overrides the clock, for tests.
func (uc *PlaceOrder) WithClock(now func() time.Time) *PlaceOrder {
	uc.now = now
	return uc
}

func (uc *PlaceOrder) Execute(ctx context.Context, in PlaceOrderInput) (PlaceOrderOutput, error) {
	switch in.Method {
	case entity.MethodCOD, entity.MethodUPI, entity.MethodRazorpay:
	default:
		return PlaceOrderOutput{}, ErrUnknownMethod
	}
	if in.DeliveryAddressID == "" {
		return PlaceOrderOutput{}, ErrMissingAddress
	}
	if in.Method == entity.MethodUPI && in.TransactionRef == "" {
		return PlaceOrderOutput{}, ErrMissingUPIRef
	}

	// Fast path: idempotency recall.
	locked := false
	if in.IdempotencyKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, in.UserID, in.IdempotencyKey); ok {
			return uc.recallOutput(ctx, id)
		}
		ok, err := uc.idem.TryLock(ctx, in.UserID, in.IdempotencyKey)
		if err != nil {
			return PlaceOrderOutput{}, err
		}
		if !ok {
			return PlaceOrderOutput{}, ErrDuplicate
		}
		locked = true
		// A failed placement must not burn the key: release the lock so the
		// client can retry. On success the lock stays and Recall serves
		// replays.
		defer func() {
			if locked {
				_ = uc.idem.Unlock(ctx, in.UserID, in.IdempotencyKey)
			}
		}()
	}

	owned, err := uc.addrs.Owned(ctx, in.DeliveryAddressID, in.UserID)
	if err != nil {
		return PlaceOrderOutput{}, err
	}
	if !owned {
		return PlaceOrderOutput{}, entity.ErrAddressNotFound
	}

	var out PlaceOrderOutput
	err = uc.store.WithinTx(ctx, func(tx Tx) error {
		items, err := tx.CartItems(ctx, in.UserID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return entity.ErrEmptyCart
		}

		snapshot, total, err := uc.buildSnapshot(ctx, items)
		if err != nil {
			return err
		}

		order := &entity.Order{
			ID:                uuid.NewString(),
			UserID:            in.UserID,
			ShippingAddressID: in.DeliveryAddressID,
			TotalAmount:       total,
			PaymentMethod:     in.Method,
			Items:             snapshot,
			OrderDate:         uc.now(),
		}

		switch in.Method {
		case entity.MethodCOD, entity.MethodUPI:
			for _, it := range snapshot {
				if err := tx.DebitStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
			order.Status = entity.StatusProcessing
			if in.Method == entity.MethodCOD {
				order.PaymentStatus = entity.PaymentPendingCOD
			} else {
				order.PaymentStatus = entity.PaymentPending
				order.TransactionRef = in.TransactionRef
			}
			if err := tx.InsertOrder(ctx, order); err != nil {
				return err
			}
			if err := tx.ClearCart(ctx, in.UserID); err != nil {
				return err
			}

		case entity.MethodRazorpay:
			// Validate stock but do not debit: for gateway checkouts the
			// commit happens at payment confirmation, so an abandoned
			// checkout never holds stock.
			for _, it := range snapshot {
				avail, err := tx.StockAvailable(ctx, it.ProductID)
				if err != nil {
					return err
				}
				if avail < it.Quantity {
					return &entity.InsufficientStockError{ProductID: it.ProductID, ProductName: it.ProductName}
				}
			}
			order.Status = entity.StatusPending
			order.PaymentStatus = entity.PaymentPending
			if err := tx.InsertOrder(ctx, order); err != nil {
				return err
			}

			amountMinor := total.Shift(2).IntPart()
			gwID, err := uc.gateway.CreateIntent(ctx, amountMinor, uc.currency, order.ID)
			if err != nil {
				// Roll the tentative order row back with the transaction.
				return fmt.Errorf("%w: %v", entity.ErrGatewayUnavailable, err)
			}
			if err := tx.SetGatewayOrderID(ctx, order.ID, gwID); err != nil {
				return err
			}
			order.RazorpayOrderID = gwID
			out.GatewayOrderID = gwID
			out.AmountMinor = amountMinor
			out.Currency = uc.currency
		}

		out.Order = order
		return nil
	})
	if err != nil {
		return PlaceOrderOutput{}, err
	}

	if in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, in.UserID, in.IdempotencyKey, out.Order.ID)
		locked = false
	}
	uc.afterCommit(ctx, out.Order)
	return out, nil
}

// buildSnapshot resolves the authoritative unit price for every cart line
// from the catalog. Client-supplied prices never enter the snapshot.
func (uc *PlaceOrder) buildSnapshot(ctx context.Context, items []entity.CartItem) ([]entity.OrderItem, decimal.Decimal, error) {
	snapshot := make([]entity.OrderItem, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		p, err := uc.catalog.ProductByID(ctx, it.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		line := entity.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			Price:       p.Price,
		}
		if len(p.Images) > 0 {
			line.Image = p.Images[0]
		}
		snapshot = append(snapshot, line)
		total = total.Add(line.Subtotal())
	}
	return snapshot, total, nil
}

func (uc *PlaceOrder) recallOutput(ctx context.Context, orderID string) (PlaceOrderOutput, error) {
	ord, err := uc.orders.ByID(ctx, orderID)
	if err != nil {
		return PlaceOrderOutput{}, err
	}
	out := PlaceOrderOutput{Order: ord}
	if ord.PaymentMethod == entity.MethodRazorpay {
		out.GatewayOrderID = ord.RazorpayOrderID
		out.AmountMinor = ord.TotalAmount.Shift(2).IntPart()
		out.Currency = uc.currency
	}
	return out, nil
}

// afterCommit publishes the lifecycle event and warms the status cache.
// Both are best-effort; the order is already durable.
func (uc *PlaceOrder) afterCommit(ctx context.Context, ord *entity.Order) {
	if uc.pub != nil {
		msg := OrderEventMsg{
			OrderID:  ord.ID,
			UserID:   ord.UserID,
			Type:     EventOrderPlaced,
			Status:   string(ord.Status),
			Method:   string(ord.PaymentMethod),
			Total:    ord.TotalAmount.StringFixed(2),
			Occurred: uc.now(),
		}
		if err := uc.pub.PublishOrderEvent(ctx, msg); err != nil {
			uc.log.Warn("publish order.placed failed", "order_id", ord.ID, "err", err)
		}
	}
	if uc.cache != nil {
		_ = uc.cache.SetStatus(ctx, ord.ID, string(ord.Status))
	}
}
