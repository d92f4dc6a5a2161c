// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/charmaway/storefront/internal/domain/payment"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment provider callbacks
type PaymentHandler struct {
	paymentService *payment.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *payment.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: payments}
}

// Webhook handles POST /payments/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	if err := h.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Webhook processed",
	})
}
