// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/charmaway/storefront/internal/domain/cart"
	"github.com/charmaway/storefront/internal/domain/customer"
	"github.com/charmaway/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles registration, login and token refresh
type AuthHandler struct {
	customerService *customer.Service
	cartService     *cart.Service
	log             *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(customers *customer.Service, carts *cart.Service, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		customerService: customers,
		cartService:     carts,
		log:             log,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req customer.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBinding(c, err)
		return
	}

	response, err := h.customerService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.mergeGuestCart(c, response.Customer.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"data":    response,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req customer.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBinding(c, err)
		return
	}

	response, err := h.customerService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.mergeGuestCart(c, response.Customer.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    response,
	})
}

// RefreshToken handles POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req customer.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBinding(c, err)
		return
	}

	response, err := h.customerService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"data":    response,
	})
}

// mergeGuestCart hands the session's cart to the customer. The sign-in still succeeds when it fails.
func (h *AuthHandler) mergeGuestCart(c *gin.Context, customerID uint) {
	sessionID := middleware.GetSessionID(c)
	if err := h.cartService.MergeGuestCart(c.Request.Context(), sessionID, customerID); err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"customer_id": customerID,
			"request_id":  middleware.GetRequestID(c),
		}).Warn("Guest cart could not be merged")
	}
}
