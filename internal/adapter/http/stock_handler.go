package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aq2208/storefront-api/internal/usecase"
)

// StockHandler is the admin surface of the stock ledger.
type StockHandler struct {
	stock *usecase.StockOps
}

func NewStockHandler(stock *usecase.StockOps) *StockHandler {
	return &StockHandler{stock: stock}
}

func (h *StockHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	entries, err := h.stock.List(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

type createStockReq struct {
	ProductID   string `json:"productId" binding:"required"`
	ProductName string `json:"productName" binding:"required"`
	Quantity    int    `json:"quantity" binding:"gte=0"`
}

func (h *StockHandler) Create(c *gin.Context) {
	var req createStockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	entry, err := h.stock.Create(ctx, req.ProductID, req.ProductName, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type setStockReq struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity" binding:"gte=0"`
}

func (h *StockHandler) SetQuantity(c *gin.Context) {
	var req setStockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.stock.SetQuantity(ctx, c.Param("productId"), req.ProductName, req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stock updated"})
}
