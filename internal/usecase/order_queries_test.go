package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aq2208/storefront-api/internal/entity"
)

func newQueriesFixture() (*memStore, *fakePublisher, *fakeCache, *OrderQueries) {
	store := newMemStore()
	pub := &fakePublisher{}
	cache := newFakeCache()
	uc := NewOrderQueries(store, store, pub, cache, testLogger())
	return store, pub, cache, uc
}

func seedSimpleOrder(store *memStore, id, userID string, status entity.Status) {
	store.seedOrder(&entity.Order{
		ID:            id,
		UserID:        userID,
		Status:        status,
		PaymentStatus: entity.PaymentPendingCOD,
		PaymentMethod: entity.MethodCOD,
		TotalAmount:   decimal.RequireFromString("100.00"),
		OrderDate:     time.Now(),
	})
}

func TestGetOrderOwnership(t *testing.T) {
	store, _, _, uc := newQueriesFixture()
	seedSimpleOrder(store, "o1", "u1", entity.StatusProcessing)

	ord, err := uc.Get(context.Background(), "u1", "o1")
	require.NoError(t, err)
	require.Equal(t, "o1", ord.ID)

	// someone else's order reads as absent
	_, err = uc.Get(context.Background(), "u2", "o1")
	require.ErrorIs(t, err, entity.ErrOrderNotFound)
}

func TestMyOrders(t *testing.T) {
	store, _, _, uc := newQueriesFixture()
	seedSimpleOrder(store, "o1", "u1", entity.StatusProcessing)
	seedSimpleOrder(store, "o2", "u1", entity.StatusDelivered)
	seedSimpleOrder(store, "o3", "u2", entity.StatusProcessing)

	orders, err := uc.MyOrders(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	all, err := uc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestAdminSetStatus(t *testing.T) {
	store, pub, cache, uc := newQueriesFixture()
	seedSimpleOrder(store, "o1", "u1", entity.StatusProcessing)

	require.NoError(t, uc.AdminSetStatus(context.Background(), "o1", entity.StatusShipped))
	require.Equal(t, entity.StatusShipped, store.order("o1").Status)
	require.Len(t, pub.ofType(EventStatusUpdated), 1)

	status, ok, _ := cache.GetStatus(context.Background(), "o1")
	require.True(t, ok)
	require.Equal(t, string(entity.StatusShipped), status)
}

func TestAdminSetStatusInvalid(t *testing.T) {
	store, _, _, uc := newQueriesFixture()
	seedSimpleOrder(store, "o1", "u1", entity.StatusProcessing)

	err := uc.AdminSetStatus(context.Background(), "o1", "Teleported")
	require.ErrorIs(t, err, entity.ErrInvalidStatus)
	require.Equal(t, entity.StatusProcessing, store.order("o1").Status)
}

func TestAdminSetStatusTerminalGuard(t *testing.T) {
	for _, terminal := range []entity.Status{entity.StatusCancelled, entity.StatusDelivered} {
		t.Run(string(terminal), func(t *testing.T) {
			store, _, _, uc := newQueriesFixture()
			seedSimpleOrder(store, "o1", "u1", terminal)

			err := uc.AdminSetStatus(context.Background(), "o1", entity.StatusProcessing)
			require.ErrorIs(t, err, entity.ErrTerminalStatus)
			require.Equal(t, terminal, store.order("o1").Status)
		})
	}
}

func TestAdminSetStatusMissingOrder(t *testing.T) {
	_, _, _, uc := newQueriesFixture()
	err := uc.AdminSetStatus(context.Background(), "ghost", entity.StatusShipped)
	require.ErrorIs(t, err, entity.ErrOrderNotFound)
}
