package entity

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart          = errors.New("cannot place order with an empty cart")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrAddressNotFound    = errors.New("delivery address not found")
	ErrCartItemNotFound   = errors.New("product not found in cart")
	ErrStockNotFound      = errors.New("stock entry not found")
	ErrStockExists        = errors.New("stock for this product already exists")
	ErrSignatureInvalid   = errors.New("payment signature verification failed")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrWindowExpired      = errors.New("the 4-hour cancellation window has passed")
	ErrNotCancellable     = errors.New("order is not in a cancellable state")
	ErrTerminalStatus     = errors.New("order is in a terminal status")
	ErrInvalidStatus      = errors.New("invalid order status")
)

// InsufficientStockError names the product that could not be debited, so the
// client can tell the user which line to fix.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for product %q", name)
}

// IsInsufficientStock reports whether err is (or wraps) a stock shortfall.
func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}
