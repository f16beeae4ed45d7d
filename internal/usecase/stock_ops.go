package usecase

import (
	"context"

	"github.com/aq2208/storefront-api/internal/entity"
)

// StockOps is the admin surface of the ledger: provisioning and corrections.
// Order flows never call these; they go through the transactional
// debit/restore.
type StockOps struct {
	stock   StockStore
	catalog CatalogReader
}

func NewStockOps(stock StockStore, catalog CatalogReader) *StockOps {
	return &StockOps{stock: stock, catalog: catalog}
}

func (uc *StockOps) List(ctx context.Context) ([]entity.StockEntry, error) {
	return uc.stock.List(ctx)
}

// Create provisions the ledger entry for a catalog product. One entry per
// product; a second create is a conflict, corrections go through SetQuantity.
func (uc *StockOps) Create(ctx context.Context, productID, productName string, qty int) (*entity.StockEntry, error) {
	if _, err := uc.catalog.ProductByID(ctx, productID); err != nil {
		return nil, err
	}
	e := &entity.StockEntry{ProductID: productID, ProductName: productName, Quantity: qty}
	if err := uc.stock.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (uc *StockOps) SetQuantity(ctx context.Context, productID, productName string, qty int) error {
	return uc.stock.SetLevel(ctx, productID, productName, qty)
}
