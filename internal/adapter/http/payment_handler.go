package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aq2208/storefront-api/internal/adapter/http/middleware"
	"github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
)

// PaymentHandler serves the gateway checkout pair: intent creation and
// callback verification.
type PaymentHandler struct {
	place   *usecase.PlaceOrder
	confirm *usecase.ConfirmPayment
	keyID   string // public key id the client checkout widget needs
}

func NewPaymentHandler(place *usecase.PlaceOrder, confirm *usecase.ConfirmPayment, keyID string) *PaymentHandler {
	return &PaymentHandler{place: place, confirm: confirm, keyID: keyID}
}

type createPaymentReq struct {
	DeliveryAddressID string `json:"deliveryAddressId" binding:"required"`
}

// CreateOrder stages a gateway order from the cart and opens the payment
// intent. Stock is validated but not debited; the debit happens at
// verification.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req createPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	idemKey := c.GetHeader("X-Idempotency-Key")

	// Intent creation calls out to the gateway, so allow more headroom.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	out, err := h.place.Execute(ctx, usecase.PlaceOrderInput{
		UserID:            middleware.UserID(c),
		DeliveryAddressID: req.DeliveryAddressID,
		Method:            entity.MethodRazorpay,
		IdempotencyKey:    idemKey,
	})
	if err != nil {
		middleware.RecordOrderOperation("place", "error")
		writeError(c, err)
		return
	}

	middleware.RecordOrderOperation("place", "ok")
	c.JSON(http.StatusCreated, gin.H{
		"key_id":   h.keyID,
		"amount":   out.AmountMinor,
		"currency": out.Currency,
		"order_id": out.GatewayOrderID,
		"receipt":  out.Order.ID,
	})
}

type verifyPaymentReq struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// VerifyPayment settles the staged order after the client completes checkout.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req verifyPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.confirm.Execute(ctx, usecase.ConfirmPaymentInput{
		UserID:         middleware.UserID(c),
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
	})
	if err != nil {
		middleware.RecordOrderOperation("confirm", "error")
		writeError(c, err)
		return
	}

	middleware.RecordOrderOperation("confirm", "ok")
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"orderId": out.OrderID,
	})
}
