package usecase

import (
	"context"

	"github.com/aq2208/storefront-api/internal/entity"
)

// CartOps manages the per-user cart rows. Prices and names stored on the row
// are an add-time snapshot; placement always re-resolves them from the
// catalog.
type CartOps struct {
	cart    CartStore
	catalog CatalogReader
}

func NewCartOps(cart CartStore, catalog CatalogReader) *CartOps {
	return &CartOps{cart: cart, catalog: catalog}
}

func (uc *CartOps) Items(ctx context.Context, userID string) ([]entity.CartItem, error) {
	return uc.cart.Items(ctx, userID)
}

// Add puts one unit of the product in the cart, incrementing the existing
// row on repeat adds. The snapshot comes from the catalog, never the client.
func (uc *CartOps) Add(ctx context.Context, userID, productID string) ([]entity.CartItem, error) {
	p, err := uc.catalog.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	item := entity.CartItem{
		UserID:    userID,
		ProductID: p.ID,
		Quantity:  1,
		Name:      p.Name,
		Price:     p.Price,
	}
	if len(p.Images) > 0 {
		item.Image = p.Images[0]
	}
	if err := uc.cart.Add(ctx, item); err != nil {
		return nil, err
	}
	return uc.cart.Items(ctx, userID)
}

func (uc *CartOps) SetQuantity(ctx context.Context, userID, productID string, qty int) ([]entity.CartItem, error) {
	if err := uc.cart.SetQuantity(ctx, userID, productID, qty); err != nil {
		return nil, err
	}
	return uc.cart.Items(ctx, userID)
}

func (uc *CartOps) Remove(ctx context.Context, userID, productID string) ([]entity.CartItem, error) {
	if err := uc.cart.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return uc.cart.Items(ctx, userID)
}
