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

type CartHandler struct {
	cart *usecase.CartOps
}

func NewCartHandler(cart *usecase.CartOps) *CartHandler {
	return &CartHandler{cart: cart}
}

func (h *CartHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.cart.Items(ctx, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respondCart(c, http.StatusOK, items)
}

type addCartReq struct {
	ProductID string `json:"productId" binding:"required"`
}

// Add puts one unit in the cart. Only the product id is accepted; price and
// name come from the catalog.
func (h *CartHandler) Add(c *gin.Context) {
	var req addCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.cart.Add(ctx, middleware.UserID(c), req.ProductID)
	if err != nil {
		writeError(c, err)
		return
	}
	respondCart(c, http.StatusCreated, items)
}

type setCartQtyReq struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

func (h *CartHandler) SetQuantity(c *gin.Context) {
	var req setCartQtyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.cart.SetQuantity(ctx, middleware.UserID(c), c.Param("productId"), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	respondCart(c, http.StatusOK, items)
}

func (h *CartHandler) Remove(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.cart.Remove(ctx, middleware.UserID(c), c.Param("productId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respondCart(c, http.StatusOK, items)
}

func respondCart(c *gin.Context, status int, items []entity.CartItem) {
	if items == nil {
		items = []entity.CartItem{}
	}
	c.JSON(status, gin.H{"items": items})
}
