// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/charmaway/storefront/internal/domain/order"
	"github.com/charmaway/storefront/internal/pkg/pdf"
	"github.com/gin-gonic/gin"
)

// InvoiceRenderer turns an order into a PDF document
type InvoiceRenderer interface {
	Invoice(o *order.Order) ([]byte, error)
}

// InvoiceHandler handles invoice downloads
type InvoiceHandler struct {
	orderService *order.Service
	renderer     InvoiceRenderer
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orders *order.Service, renderer InvoiceRenderer) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orders,
		renderer:     renderer,
	}
}

// GenerateInvoice handles GET /orders/:public_id/invoice
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	o, err := h.orderService.GetByPublicID(c.Request.Context(), c.Param("public_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	document, err := h.renderer.Invoice(o)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate invoice",
		})
		return
	}

	filename := fmt.Sprintf("%s.pdf", pdf.InvoiceNumber(o))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", document)
}
