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

type OrderHandler struct {
	place   *usecase.PlaceOrder
	cancel  *usecase.CancelOrder
	queries *usecase.OrderQueries
}

func NewOrderHandler(place *usecase.PlaceOrder, cancel *usecase.CancelOrder, queries *usecase.OrderQueries) *OrderHandler {
	return &OrderHandler{place: place, cancel: cancel, queries: queries}
}

type placeOrderReq struct {
	DeliveryAddressID string `json:"deliveryAddressId" binding:"required"`
	TransactionRef    string `json:"transactionRef"`
}

// PlaceCOD finalizes a cash-on-delivery order straight from the cart.
func (h *OrderHandler) PlaceCOD(c *gin.Context) {
	h.placeWith(c, entity.MethodCOD)
}

// PlaceUPI finalizes an order against a manually entered UPI reference.
func (h *OrderHandler) PlaceUPI(c *gin.Context) {
	h.placeWith(c, entity.MethodUPI)
}

func (h *OrderHandler) placeWith(c *gin.Context, method entity.PaymentMethod) {
	var req placeOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	idemKey := c.GetHeader("X-Idempotency-Key") // prevent duplicated requests

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.place.Execute(ctx, usecase.PlaceOrderInput{
		UserID:            middleware.UserID(c),
		DeliveryAddressID: req.DeliveryAddressID,
		Method:            method,
		TransactionRef:    req.TransactionRef,
		IdempotencyKey:    idemKey,
	})
	if err != nil {
		middleware.RecordOrderOperation("place", "error")
		writeError(c, err)
		return
	}

	middleware.RecordOrderOperation("place", "ok")
	body := gin.H{
		"orderId":       out.Order.ID,
		"status":        out.Order.Status,
		"paymentStatus": out.Order.PaymentStatus,
		"total":         out.Order.TotalAmount,
	}
	if out.Order.TransactionRef != "" {
		body["transactionRef"] = out.Order.TransactionRef
	}
	c.JSON(http.StatusCreated, body)
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.queries.MyOrders(ctx, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder serves GET /orders/:userId/:orderId. The path user id must match
// the caller unless the caller is an admin; mismatches read as absent.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID := c.Param("userId")
	if userID != middleware.UserID(c) && !middleware.IsAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": entity.ErrOrderNotFound.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	ord, err := h.queries.Get(ctx, userID, c.Param("orderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// Cancel serves PUT /orders/:orderId/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.cancel.Execute(ctx, middleware.UserID(c), c.Param("orderId")); err != nil {
		middleware.RecordOrderOperation("cancel", "error")
		writeError(c, err)
		return
	}
	middleware.RecordOrderOperation("cancel", "ok")
	c.JSON(http.StatusOK, gin.H{"message": "order cancelled"})
}

// ListAll is the admin order listing.
func (h *OrderHandler) ListAll(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.queries.ListAll(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []entity.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

type setStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus is the admin status override: PUT /orders/:orderId/status.
func (h *OrderHandler) SetStatus(c *gin.Context) {
	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.queries.AdminSetStatus(ctx, c.Param("orderId"), entity.Status(req.Status)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated", "status": req.Status})
}
