// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/charmaway/storefront/internal/domain/cart"
	"github.com/charmaway/storefront/internal/domain/checkout"
	"github.com/charmaway/storefront/internal/domain/order"
	"github.com/charmaway/storefront/internal/domain/payment"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CheckoutHandler handles the checkout flow from summary to order creation
type CheckoutHandler struct {
	checkoutService *checkout.Service
	orderService    *order.Service
	paymentService  *payment.Service
	log             *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkouts *checkout.Service, orders *order.Service, payments *payment.Service, log *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkouts,
		orderService:    orders,
		paymentService:  payments,
		log:             log,
	}
}

// GetSummary handles GET /checkout
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	option := checkout.DeliveryOption(c.Query("delivery_option"))

	summary, err := h.checkoutService.Summary(c.Request.Context(), cartOwner(c), option)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary retrieved successfully",
		"data":    summary,
	})
}

// Submit handles POST /checkout
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var form checkout.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		respondBinding(c, err)
		return
	}

	result, err := h.checkoutService.Submit(c.Request.Context(), cartOwner(c), &form)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout saved",
		"data":    result,
	})
}

// Confirm handles POST /checkout/confirm for cash on delivery
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	owner := cartOwner(c)

	created, ok := h.placeOrder(c, owner, checkout.PaymentCashOnDelivery)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    created,
	})
}

// PaymentIntent handles POST /checkout/payment-intent for card payments
func (h *CheckoutHandler) PaymentIntent(c *gin.Context) {
	owner := cartOwner(c)

	created, ok := h.placeOrder(c, owner, checkout.PaymentCard)
	if !ok {
		return
	}

	intent, err := h.paymentService.CreateIntent(c.Request.Context(), created)
	if err != nil {
		h.log.WithError(err).WithField("public_id", created.PublicID).Error("Payment intent creation failed")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed, awaiting card payment",
		"data": gin.H{
			"order":   created,
			"payment": intent,
		},
	})
}

// RetryPaymentIntent handles POST /orders/:public_id/payment-intent for a card order still awaiting payment
func (h *CheckoutHandler) RetryPaymentIntent(c *gin.Context) {
	ctx := c.Request.Context()

	o, err := h.orderService.GetByPublicID(ctx, c.Param("public_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	intent, err := h.paymentService.ResumeIntent(ctx, o)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment intent ready",
		"data": gin.H{
			"order":   o,
			"payment": intent,
		},
	})
}

// placeOrder turns the staged checkout into an order when its payment method matches
func (h *CheckoutHandler) placeOrder(c *gin.Context, owner cart.Owner, method checkout.PaymentMethod) (*order.Order, bool) {
	ctx := c.Request.Context()

	staged, err := h.checkoutService.Staged(ctx, owner)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if staged.Form.PaymentMethod != method {
		respondError(c, apperror.Invalid("payment_method", "checkout was submitted with "+string(staged.Form.PaymentMethod)))
		return nil, false
	}

	created, err := h.orderService.CreateFromCart(ctx, owner, &staged.Form)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	if err := h.checkoutService.Discard(ctx, owner); err != nil {
		h.log.WithError(err).WithField("public_id", created.PublicID).Warn("Staged checkout could not be discarded")
	}
	return created, true
}
