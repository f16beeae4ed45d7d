package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one (user, product) row. Name/price/image are snapshotted at
// add-time; the orchestrator still resolves the authoritative price from the
// catalog when the order is placed.
type CartItem struct {
	UserID    string          `json:"-"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}
