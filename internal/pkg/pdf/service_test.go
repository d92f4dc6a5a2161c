// internal/pkg/pdf/service_test.go
package pdf

import (
	"testing"
	"time"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/checkout"
	"github.com/charmaway/storefront/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return NewService(&config.Config{App: config.AppConfig{
		CompanyName:  "Charmaway",
		CompanyEmail: "hola@charmaway.es",
		CompanyPhone: "+34 954 000 000",
	}})
}

func invoiceOrder() *order.Order {
	return &order.Order{
		PublicID:       "K7dPx2mQa9Zt",
		Email:          "cliente@example.com",
		Status:         order.StatusProcessing,
		DeliveryOption: checkout.DeliveryHome,
		Address:        "Calle Sierpes 1",
		City:           "Sevilla",
		ZipCode:        "41004",
		PaymentMethod:  checkout.PaymentCard,
		PaymentStatus:  order.PaymentStatusPaid,
		Subtotal:       1800,
		ShippingCost:   299,
		FinalPrice:     2099,
		CreatedAt:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Items: []order.OrderItem{
			{Name: "Labial mate", Quantity: 2, UnitPrice: 500, Subtotal: 1000},
			{Name: "Manicura", Quantity: 1, UnitPrice: 800, Subtotal: 800},
		},
	}
}

func TestInvoiceHTML(t *testing.T) {
	html, err := testService().InvoiceHTML(invoiceOrder())
	require.NoError(t, err)

	assert.Contains(t, html, "INV-K7dPx2mQa9Zt")
	assert.Contains(t, html, "01/03/2026")
	assert.Contains(t, html, "Labial mate")
	assert.Contains(t, html, "5.00 €")
	assert.Contains(t, html, "10.00 €")
	assert.Contains(t, html, "2.99 €")
	assert.Contains(t, html, "20.99 €")
	assert.Contains(t, html, "status-paid")
	assert.Contains(t, html, "Calle Sierpes 1")
	assert.Contains(t, html, "41004 Sevilla")
	assert.NotContains(t, html, "Notes:")
}

func TestInvoiceHTML_PickupWithNotes(t *testing.T) {
	o := invoiceOrder()
	o.DeliveryOption = checkout.DeliveryPickUp
	o.Address, o.City, o.ZipCode = "", "", ""
	o.PaymentStatus = order.PaymentStatusNotRequired
	o.Notes = "Regalo <envolver>"

	html, err := testService().InvoiceHTML(o)
	require.NoError(t, err)

	assert.Contains(t, html, "Store pick-up")
	assert.NotContains(t, html, "Ship To:")
	assert.Contains(t, html, "status-pending")
	assert.Contains(t, html, "Regalo &lt;envolver&gt;")
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-abc", InvoiceNumber(&order.Order{PublicID: "abc"}))
}
