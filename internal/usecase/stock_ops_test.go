package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aq2208/storefront-api/internal/entity"
)

type fakeStockStore struct {
	entries map[string]*entity.StockEntry
}

func newFakeStockStore() *fakeStockStore {
	return &fakeStockStore{entries: map[string]*entity.StockEntry{}}
}

func (f *fakeStockStore) List(_ context.Context) ([]entity.StockEntry, error) {
	var out []entity.StockEntry
	for _, e := range f.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeStockStore) Create(_ context.Context, e *entity.StockEntry) error {
	if _, ok := f.entries[e.ProductID]; ok {
		return entity.ErrStockExists
	}
	cp := *e
	f.entries[e.ProductID] = &cp
	return nil
}

func (f *fakeStockStore) SetLevel(_ context.Context, productID, productName string, qty int) error {
	e, ok := f.entries[productID]
	if !ok {
		return entity.ErrStockNotFound
	}
	e.Quantity = qty
	if productName != "" {
		e.ProductName = productName
	}
	return nil
}

func newStockFixture() (*fakeStockStore, *StockOps) {
	stock := newFakeStockStore()
	catalog := newMemStore()
	catalog.seedProduct("p1", "Steel Bottle", "100.00")
	return stock, NewStockOps(stock, catalog)
}

func TestStockCreate(t *testing.T) {
	_, uc := newStockFixture()

	entry, err := uc.Create(context.Background(), "p1", "Steel Bottle", 10)
	require.NoError(t, err)
	require.Equal(t, 10, entry.Quantity)

	// one ledger entry per product
	_, err = uc.Create(context.Background(), "p1", "Steel Bottle", 99)
	require.ErrorIs(t, err, entity.ErrStockExists)
}

func TestStockCreateUnknownProduct(t *testing.T) {
	_, uc := newStockFixture()
	_, err := uc.Create(context.Background(), "ghost", "Ghost", 10)
	require.ErrorIs(t, err, entity.ErrProductNotFound)
}

func TestStockSetQuantity(t *testing.T) {
	stock, uc := newStockFixture()
	_, err := uc.Create(context.Background(), "p1", "Steel Bottle", 10)
	require.NoError(t, err)

	require.NoError(t, uc.SetQuantity(context.Background(), "p1", "", 3))
	require.Equal(t, 3, stock.entries["p1"].Quantity)

	err = uc.SetQuantity(context.Background(), "ghost", "", 3)
	require.ErrorIs(t, err, entity.ErrStockNotFound)
}
