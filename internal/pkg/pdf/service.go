// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/checkout"
	"github.com/charmaway/storefront/internal/domain/order"
)

var invoiceTmpl = template.Must(template.New("invoice").
	Funcs(template.FuncMap{"money": order.FormatAmount}).
	Parse(invoiceTemplate))

// Service renders order documents as PDF
type Service struct {
	config *config.Config
}

func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// Invoice renders the invoice of an order and converts it to PDF with wkhtmltopdf
func (s *Service) Invoice(o *order.Order) ([]byte, error) {
	markup, err := s.InvoiceHTML(o)
	if err != nil {
		return nil, err
	}

	gen, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}
	gen.PageSize.Set(wkhtmltopdf.PageSizeA4)
	gen.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	gen.Dpi.Set(300)
	gen.MarginTop.Set(15)
	gen.MarginBottom.Set(15)
	gen.Title.Set(InvoiceNumber(o))

	page := wkhtmltopdf.NewPageReader(strings.NewReader(markup))
	page.Encoding.Set("utf-8")
	page.FooterCenter.Set("[page] / [topage]")
	page.FooterFontSize.Set(8)
	gen.AddPage(page)

	if err := gen.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return gen.Bytes(), nil
}

// InvoiceHTML renders the invoice markup fed to wkhtmltopdf
func (s *Service) InvoiceHTML(o *order.Order) (string, error) {
	app := s.config.App
	view := invoiceView{
		Number:   InvoiceNumber(o),
		IssuedOn: time.Now().Format("02/01/2006"),
		Order:    o,
		Pickup:   o.DeliveryOption == checkout.DeliveryPickUp,
		Paid:     o.PaymentStatus == order.PaymentStatusPaid,
		Seller: seller{
			Name:    app.CompanyName,
			Address: app.CompanyAddress,
			Phone:   app.CompanyPhone,
			Email:   app.CompanyEmail,
			Website: app.CompanyWebsite,
		},
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render invoice: %w", err)
	}
	return buf.String(), nil
}

// InvoiceNumber derives the invoice number from the order's public id
func InvoiceNumber(o *order.Order) string {
	return "INV-" + o.PublicID
}

type invoiceView struct {
	Number   string
	IssuedOn string
	Order    *order.Order
	Pickup   bool
	Paid     bool
	Seller   seller
}

type seller struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

// wkhtmltopdf runs an old WebKit, so the layout sticks to tables
const invoiceTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Number}}</title>
<style>
  * { box-sizing: border-box; }
  body { font: 12px/1.5 "Helvetica Neue", Helvetica, sans-serif; color: #2b2b2b; margin: 0; }
  h1 { font-size: 22px; letter-spacing: 1px; margin: 0 0 4px; color: #b0466e; }
  table { width: 100%; border-collapse: collapse; }
  .muted { color: #7a7a7a; }
  .right { text-align: right; }
  .masthead td { vertical-align: top; padding-bottom: 18px; border-bottom: 3px solid #b0466e; }
  .doc-title { font-size: 18px; text-transform: uppercase; letter-spacing: 2px; }
  .meta td { padding: 14px 0 4px; vertical-align: top; width: 50%; }
  .meta strong { display: block; text-transform: uppercase; font-size: 10px; color: #7a7a7a; }
  .lines { margin-top: 18px; }
  .lines th { font-size: 10px; text-transform: uppercase; color: #7a7a7a; border-bottom: 1px solid #d9d9d9; padding: 6px 4px; text-align: left; }
  .lines td { padding: 8px 4px; border-bottom: 1px solid #f0f0f0; }
  .lines .num { text-align: right; width: 90px; }
  .sums { width: 45%; margin: 16px 0 0 auto; }
  .sums td { padding: 4px; }
  .sums .grand td { font-size: 15px; font-weight: bold; border-top: 2px solid #2b2b2b; padding-top: 8px; }
  .badge { font-size: 10px; padding: 2px 6px; border-radius: 3px; text-transform: uppercase; }
  .status-paid { background: #e3f4e8; color: #1f6b3a; }
  .status-pending { background: #fbf0d9; color: #8a5a00; }
  .notes { margin-top: 24px; padding: 10px; background: #faf6f8; }
  .closing { margin-top: 40px; text-align: center; font-size: 11px; color: #7a7a7a; }
</style>
</head>
<body>
<table class="masthead">
  <tr>
    <td>
      <h1>{{.Seller.Name}}</h1>
      {{with .Seller.Address}}<div class="muted">{{.}}</div>{{end}}
      {{with .Seller.Phone}}<div class="muted">Tel. {{.}}</div>{{end}}
      {{with .Seller.Email}}<div class="muted">{{.}}</div>{{end}}
      {{with .Seller.Website}}<div class="muted">{{.}}</div>{{end}}
    </td>
    <td class="right">
      <div class="doc-title">Invoice</div>
      <div>{{.Number}}</div>
      <div class="muted">Issued {{.IssuedOn}}</div>
    </td>
  </tr>
</table>

<table class="meta">
  <tr>
    <td>
      <strong>Billed to</strong>
      {{.Order.Email}}
    </td>
    <td class="right">
      <strong>Order</strong>
      {{.Order.PublicID}} &middot; {{.Order.CreatedAt.Format "02/01/2006"}}<br>
      {{.Order.Status}}
    </td>
  </tr>
  <tr>
    <td>
      {{if .Pickup}}<strong>Store pick-up</strong>
      Collect at {{.Seller.Name}}
      {{else}}<strong>Ship To:</strong>
      {{.Order.Address}}<br>
      {{.Order.ZipCode}} {{.Order.City}}
      {{end}}
    </td>
    <td class="right">
      <strong>Payment</strong>
      {{.Order.PaymentMethod}}
      <span class="badge {{if .Paid}}status-paid{{else}}status-pending{{end}}">{{.Order.PaymentStatus}}</span>
    </td>
  </tr>
</table>

<table class="lines">
  <thead>
    <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit</th><th class="num">Amount</th></tr>
  </thead>
  <tbody>
  {{range .Order.Items}}
    <tr>
      <td>{{.Name}}</td>
      <td class="num">{{.Quantity}}</td>
      <td class="num">{{money .UnitPrice}}</td>
      <td class="num">{{money .Subtotal}}</td>
    </tr>
  {{end}}
  </tbody>
</table>

<table class="sums">
  <tr><td>Subtotal</td><td class="right">{{money .Order.Subtotal}}</td></tr>
  <tr><td>Shipping</td><td class="right">{{money .Order.ShippingCost}}</td></tr>
  <tr class="grand"><td>Total</td><td class="right">{{money .Order.FinalPrice}}</td></tr>
</table>

{{with .Order.Notes}}<div class="notes"><strong>Notes:</strong> {{.}}</div>{{end}}

<div class="closing">
  Thank you for shopping with {{.Seller.Name}}.
  {{with .Seller.Email}}Questions about this invoice: {{.}}{{end}}
</div>
</body>
</html>
`
