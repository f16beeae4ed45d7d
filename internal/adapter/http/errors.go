package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/logging"
	"github.com/aq2208/storefront-api/internal/usecase"
)

// writeError maps domain errors onto the HTTP surface. Anything unmapped is a
// 500 with a generic body; the detail goes to the log only.
func writeError(c *gin.Context, err error) {
	var ise *entity.InsufficientStockError

	switch {
	case errors.As(err, &ise):
		c.JSON(http.StatusConflict, gin.H{"error": ise.Error()})
	case errors.Is(err, entity.ErrEmptyCart),
		errors.Is(err, entity.ErrSignatureInvalid),
		errors.Is(err, entity.ErrWindowExpired),
		errors.Is(err, entity.ErrInvalidStatus),
		errors.Is(err, usecase.ErrMissingUPIRef),
		errors.Is(err, usecase.ErrUnknownMethod),
		errors.Is(err, usecase.ErrMissingAddress):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrOrderNotFound),
		errors.Is(err, entity.ErrProductNotFound),
		errors.Is(err, entity.ErrAddressNotFound),
		errors.Is(err, entity.ErrCartItemNotFound),
		errors.Is(err, entity.ErrStockNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrStockExists),
		errors.Is(err, entity.ErrNotCancellable),
		errors.Is(err, entity.ErrTerminalStatus),
		errors.Is(err, usecase.ErrStockExhausted),
		errors.Is(err, usecase.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
	default:
		logging.From(c).Error("unhandled error", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
