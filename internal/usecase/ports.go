package usecase

import (
	"context"

	"github.com/aq2208/storefront-api/internal/entity"
)

// TxRunner opens one all-or-nothing unit of work. Every mutation made through
// the Tx commits or rolls back together; no partial state is ever visible to
// other transactions.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional view over the store. Row reads marked "ForUpdate"
// hold a row lock until commit.
type Tx interface {
	CartItems(ctx context.Context, userID string) ([]entity.CartItem, error)
	ClearCart(ctx context.Context, userID string) error

	// StockAvailable returns the ledger quantity, 0 when no entry exists.
	StockAvailable(ctx context.Context, productID string) (int, error)
	// DebitStock decrements the ledger only if quantity >= qty; a shortfall
	// (or a missing entry) returns *entity.InsufficientStockError.
	DebitStock(ctx context.Context, productID string, qty int) error
	RestoreStock(ctx context.Context, productID string, qty int) error

	InsertOrder(ctx context.Context, o *entity.Order) error
	OrderForUpdate(ctx context.Context, orderID string) (*entity.Order, error)
	OrderByGatewayID(ctx context.Context, gatewayOrderID string) (*entity.Order, error)
	SetGatewayOrderID(ctx context.Context, orderID, gatewayOrderID string) error
	// MarkPaid sets payment_status=Paid, status=Processing and stores the
	// gateway payment id and signature.
	MarkPaid(ctx context.Context, orderID, paymentID, signature string) error
	MarkCancelled(ctx context.Context, orderID, paymentStatus string) error
	SetStatus(ctx context.Context, orderID string, status entity.Status) error
}

type OrderReader interface {
	ByID(ctx context.Context, orderID string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Order, error)
	ListAll(ctx context.Context) ([]entity.Order, error)
}

type CartStore interface {
	Items(ctx context.Context, userID string) ([]entity.CartItem, error)
	// Add inserts the row or increments quantity when the (user, product)
	// pair already exists.
	Add(ctx context.Context, item entity.CartItem) error
	SetQuantity(ctx context.Context, userID, productID string, qty int) error
	Remove(ctx context.Context, userID, productID string) error
}

type CatalogReader interface {
	ProductByID(ctx context.Context, productID string) (*entity.Product, error)
	Products(ctx context.Context) ([]entity.Product, error)
}

type StockStore interface {
	List(ctx context.Context) ([]entity.StockEntry, error)
	// Create fails with entity.ErrStockExists when an entry is already present.
	Create(ctx context.Context, e *entity.StockEntry) error
	SetLevel(ctx context.Context, productID, productName string, qty int) error
}

type AddressReader interface {
	// Owned reports whether the address exists and belongs to the user.
	Owned(ctx context.Context, addressID, userID string) (bool, error)
}

// PaymentGateway opens a payment intent with the external gateway. The amount
// is in the currency's smallest unit.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string) (gatewayOrderID string, err error)
}

type SignatureVerifier interface {
	Verify(gatewayOrderID, paymentID, signature string) bool
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, msg OrderEventMsg) error
}

type StatusCache interface {
	SetStatus(ctx context.Context, orderID, status string) error
	GetStatus(ctx context.Context, orderID string) (string, bool, error)
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	// Unlock releases a held lock so a failed operation can be retried
	// under the same key.
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}
