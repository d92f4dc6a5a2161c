// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmaway/storefront/internal/domain/cart"
	"github.com/charmaway/storefront/internal/interfaces/http/middleware"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the JSON error envelope
func respondError(c *gin.Context, err error) {
	var (
		validation *apperror.ValidationError
		inUse      *apperror.InUseError
		stock      *apperror.StockError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": validation.Fields,
		})
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient stock",
			"data":  stock,
		})
	case errors.Is(err, apperror.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock"})
	case errors.As(err, &inUse):
		c.JSON(http.StatusConflict, gin.H{
			"error":     err.Error(),
			"order_ids": inUse.OrderIDs,
		})
	case errors.Is(err, apperror.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperror.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
	case errors.Is(err, apperror.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperror.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// respondBinding reports a request body or query that failed to bind
func respondBinding(c *gin.Context, err error) {
	respondError(c, apperror.FromBinding(err))
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}

// cartOwner is the signed-in customer when there is one, the guest session otherwise
func cartOwner(c *gin.Context) cart.Owner {
	if id, ok := middleware.GetCustomerIDFromContext(c); ok {
		return cart.CustomerOwner(id)
	}
	return cart.GuestOwner(middleware.GetSessionID(c))
}

// customerID reads the authenticated customer, answering 401 when absent
func customerID(c *gin.Context) (uint, bool) {
	id, ok := middleware.GetCustomerIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Customer not authenticated",
		})
	}
	return id, ok
}
