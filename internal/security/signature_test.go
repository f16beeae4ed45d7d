package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentSigner_RoundTrip(t *testing.T) {
	s := NewPaymentSigner("test-secret")

	sig := s.Sign("order_abc", "pay_123")
	assert.NotEmpty(t, sig)
	assert.True(t, s.Verify("order_abc", "pay_123", sig))
}

func TestPaymentSigner_RejectsTampering(t *testing.T) {
	s := NewPaymentSigner("test-secret")
	sig := s.Sign("order_abc", "pay_123")

	tests := []struct {
		name                       string
		orderID, paymentID, signed string
	}{
		{"different order id", "order_xyz", "pay_123", sig},
		{"different payment id", "order_abc", "pay_999", sig},
		{"truncated signature", "order_abc", "pay_123", sig[:len(sig)-2]},
		{"non-hex signature", "order_abc", "pay_123", "not-hex!"},
		{"empty signature", "order_abc", "pay_123", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, s.Verify(tc.orderID, tc.paymentID, tc.signed))
		})
	}
}

func TestPaymentSigner_DifferentSecretsDisagree(t *testing.T) {
	a := NewPaymentSigner("secret-a")
	b := NewPaymentSigner("secret-b")

	sig := a.Sign("order_abc", "pay_123")
	assert.False(t, b.Verify("order_abc", "pay_123", sig))
}
