package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
	StatusPaid       Status = "Paid"
	StatusFailed     Status = "Failed"
)

// Valid reports whether s is one of the known order statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusCancelled, StatusPaid, StatusFailed:
		return true
	}
	return false
}

// Terminal statuses cannot be transitioned out of, not even by an admin.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusDelivered
}

// Cancellable statuses: only orders that have not left the warehouse.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

type PaymentMethod string

const (
	MethodCOD      PaymentMethod = "COD"
	MethodUPI      PaymentMethod = "UPI"
	MethodRazorpay PaymentMethod = "Razorpay"
)

// Payment status is free-form in the store; these are the values the
// system itself writes.
const (
	PaymentPending    = "Pending"
	PaymentPendingCOD = "Pending (COD)"
	PaymentPaid       = "Paid"
	PaymentRefunded   = "Refunded"
)

// OrderItem is one line of the immutable snapshot captured at order-creation
// time. Later catalog edits never touch it.
type OrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	ShippingAddressID string          `json:"shipping_address_id"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Status            Status          `json:"status"`
	PaymentStatus     string          `json:"payment_status"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	TransactionRef    string          `json:"transaction_ref,omitempty"`
	RazorpayOrderID   string          `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string          `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string          `json:"-"`
	Items             []OrderItem     `json:"items_details"`
	OrderDate         time.Time       `json:"order_date"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// SnapshotTotal recomputes the total from the item snapshot. The stored
// TotalAmount always equals it.
func (o *Order) SnapshotTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
