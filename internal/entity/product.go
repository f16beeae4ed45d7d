package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is owned by the catalog; this service only reads it.
type Product struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice,omitempty"`
	Images        []string            `json:"images"`
}

// StockEntry holds the available quantity for one product. Quantity is never
// negative; it is mutated only through the ledger's conditional debit and
// unconditional restore.
type StockEntry struct {
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	UpdatedAt   time.Time `json:"last_updated"`
}
