package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// PaymentSigner computes and verifies the gateway's callback signature:
// hex(HMAC-SHA256(orderID + "|" + paymentID, secret)). The comparison is
// constant-time.
type PaymentSigner interface {
	Sign(gatewayOrderID, paymentID string) string
	Verify(gatewayOrderID, paymentID, signature string) bool
}

type hmacSigner struct {
	secret []byte
}

func NewPaymentSigner(secret string) PaymentSigner {
	return &hmacSigner{secret: []byte(secret)}
}

func (s *hmacSigner) Sign(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *hmacSigner) Verify(gatewayOrderID, paymentID, signature string) bool {
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hmac.Equal(mac.Sum(nil), want)
}
