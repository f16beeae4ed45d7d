package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/security"
)

type confirmFixture struct {
	store  *memStore
	signer security.PaymentSigner
	pub    *fakePublisher
	cache  *fakeCache
	uc     *ConfirmPayment
}

func newConfirmFixture() *confirmFixture {
	f := &confirmFixture{
		store:  newMemStore(),
		signer: security.NewPaymentSigner("test-secret"),
		pub:    &fakePublisher{},
		cache:  newFakeCache(),
	}
	f.uc = NewConfirmPayment(f.store, f.signer, f.pub, f.cache, testLogger())
	return f
}

// stageGatewayOrder seeds a Pending order awaiting payment confirmation.
func (f *confirmFixture) stageGatewayOrder(orderID, userID, gwID string, qty int) {
	f.store.seedStock("p1", "Steel Bottle", 5)
	f.store.seedCart(userID, "p1", qty)
	f.store.seedOrder(&entity.Order{
		ID:              orderID,
		UserID:          userID,
		Status:          entity.StatusPending,
		PaymentStatus:   entity.PaymentPending,
		PaymentMethod:   entity.MethodRazorpay,
		RazorpayOrderID: gwID,
		TotalAmount:     decimal.RequireFromString("200.00"),
		Items: []entity.OrderItem{{
			ProductID:   "p1",
			ProductName: "Steel Bottle",
			Quantity:    qty,
			Price:       decimal.RequireFromString("100.00"),
		}},
		OrderDate: time.Now(),
	})
}

func TestConfirmPayment(t *testing.T) {
	f := newConfirmFixture()
	f.stageGatewayOrder("o1", "u1", "gw1", 2)

	out, err := f.uc.Execute(context.Background(), ConfirmPaymentInput{
		UserID:         "u1",
		GatewayOrderID: "gw1",
		PaymentID:      "pay1",
		Signature:      f.signer.Sign("gw1", "pay1"),
	})
	require.NoError(t, err)
	require.Equal(t, "o1", out.OrderID)
	require.False(t, out.AlreadySettled)

	ord := f.store.order("o1")
	require.Equal(t, entity.StatusProcessing, ord.Status)
	require.Equal(t, entity.PaymentPaid, ord.PaymentStatus)
	require.Equal(t, "pay1", ord.RazorpayPaymentID)

	// the one and only stock debit for a gateway order happens here
	require.Equal(t, 3, f.store.stockQty("p1"))
	require.Zero(t, f.store.cartLen("u1"))
	require.Len(t, f.pub.ofType(EventOrderPaid), 1)
}

func TestConfirmPaymentTamperedSignature(t *testing.T) {
	f := newConfirmFixture()
	f.stageGatewayOrder("o1", "u1", "gw1", 2)

	_, err := f.uc.Execute(context.Background(), ConfirmPaymentInput{
		UserID:         "u1",
		GatewayOrderID: "gw1",
		PaymentID:      "pay1",
		Signature:      f.signer.Sign("gw1", "someone-elses-payment"),
	})
	require.ErrorIs(t, err, entity.ErrSignatureInvalid)

	// order untouched, stock untouched
	ord := f.store.order("o1")
	require.Equal(t, entity.StatusPending, ord.Status)
	require.Equal(t, entity.PaymentPending, ord.PaymentStatus)
	require.Equal(t, 5, f.store.stockQty("p1"))
}

func TestConfirmPaymentReplayIsIdempotent(t *testing.T) {
	f := newConfirmFixture()
	f.stageGatewayOrder("o1", "u1", "gw1", 2)

	in := ConfirmPaymentInput{
		UserID:         "u1",
		GatewayOrderID: "gw1",
		PaymentID:      "pay1",
		Signature:      f.signer.Sign("gw1", "pay1"),
	}
	first, err := f.uc.Execute(context.Background(), in)
	require.NoError(t, err)
	require.False(t, first.AlreadySettled)

	second, err := f.uc.Execute(context.Background(), in)
	require.NoError(t, err)
	require.True(t, second.AlreadySettled)
	require.Equal(t, "o1", second.OrderID)

	// debited exactly once, one paid event
	require.Equal(t, 3, f.store.stockQty("p1"))
	require.Len(t, f.pub.ofType(EventOrderPaid), 1)
}

func TestConfirmPaymentUnknownGatewayOrder(t *testing.T) {
	f := newConfirmFixture()

	_, err := f.uc.Execute(context.Background(), ConfirmPaymentInput{
		GatewayOrderID: "gw-missing",
		PaymentID:      "pay1",
		Signature:      f.signer.Sign("gw-missing", "pay1"),
	})
	require.ErrorIs(t, err, entity.ErrOrderNotFound)
}

func TestConfirmPaymentWrongUser(t *testing.T) {
	f := newConfirmFixture()
	f.stageGatewayOrder("o1", "u1", "gw1", 2)

	_, err := f.uc.Execute(context.Background(), ConfirmPaymentInput{
		UserID:         "u2",
		GatewayOrderID: "gw1",
		PaymentID:      "pay1",
		Signature:      f.signer.Sign("gw1", "pay1"),
	})
	require.ErrorIs(t, err, entity.ErrOrderNotFound)
	require.Equal(t, 5, f.store.stockQty("p1"))
}

func TestConfirmPaymentStockExhausted(t *testing.T) {
	f := newConfirmFixture()
	f.stageGatewayOrder("o1", "u1", "gw1", 2)
	// someone else took the stock between intent and confirmation
	f.store.state.stock["p1"].Quantity = 1

	_, err := f.uc.Execute(context.Background(), ConfirmPaymentInput{
		UserID:         "u1",
		GatewayOrderID: "gw1",
		PaymentID:      "pay1",
		Signature:      f.signer.Sign("gw1", "pay1"),
	})
	require.ErrorIs(t, err, ErrStockExhausted)

	// nothing committed; the order stays Pending for manual reconciliation
	ord := f.store.order("o1")
	require.Equal(t, entity.StatusPending, ord.Status)
	require.Equal(t, entity.PaymentPending, ord.PaymentStatus)
	require.Equal(t, 1, f.store.stockQty("p1"))
}
