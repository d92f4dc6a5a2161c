// internal/pkg/email/service_test.go
package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/checkout"
	"github.com/charmaway/storefront/internal/domain/order"
	"github.com/charmaway/storefront/internal/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []*Message
}

func (r *recordingSender) Send(_ context.Context, msg *Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			CompanyName:  "Charmaway",
			CompanyEmail: "hola@charmaway.es",
			FrontendURL:  "https://shop.example.com/",
		},
		External: config.ExternalConfig{Email: config.EmailConfig{
			Provider:  "log",
			APIKey:    "key",
			APISecret: "secret",
			FromEmail: "noreply@charmaway.es",
			FromName:  "Charmaway",
		}},
	}
}

func sampleOrder() *order.Order {
	return &order.Order{
		PublicID:       "K7dPx2mQa9Zt",
		Email:          "cliente@example.com",
		DeliveryOption: checkout.DeliveryHome,
		Address:        "Calle Sierpes 1",
		City:           "Sevilla",
		ZipCode:        "41004",
		Subtotal:       1800,
		ShippingCost:   299,
		FinalPrice:     2099,
		CreatedAt:      time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		Items: []order.OrderItem{
			{Name: "Sérum <Vitamina C>", Quantity: 2, UnitPrice: 500, Subtotal: 1000},
			{Name: "Manicura", Quantity: 1, UnitPrice: 800, Subtotal: 800},
		},
	}
}

func TestOrderPlaced_SendsConfirmation(t *testing.T) {
	sender := &recordingSender{}
	svc, err := NewService(testConfig(), sender, logger.Discard())
	require.NoError(t, err)

	require.NoError(t, svc.OrderPlaced(context.Background(), sampleOrder()))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"cliente@example.com"}, msg.To)
	assert.Equal(t, "Order confirmation #K7dPx2mQa9Zt", msg.Subject)
	assert.Contains(t, msg.HTML, "#K7dPx2mQa9Zt")
	assert.Contains(t, msg.HTML, "20.99 €")
	assert.Contains(t, msg.HTML, "2.99 €")
	assert.Contains(t, msg.HTML, "Calle Sierpes 1, 41004 Sevilla")
	assert.Contains(t, msg.HTML, "https://shop.example.com/orders/K7dPx2mQa9Zt")
	assert.Contains(t, msg.HTML, "01/03/2026 10:30")
	assert.Contains(t, msg.HTML, "Sérum &lt;Vitamina C&gt;")
}

func TestOrderPlaced_NoEmailIsSkipped(t *testing.T) {
	sender := &recordingSender{}
	svc, err := NewService(testConfig(), sender, logger.Discard())
	require.NoError(t, err)

	o := sampleOrder()
	o.Email = "  "
	require.NoError(t, svc.OrderPlaced(context.Background(), o))
	assert.Empty(t, sender.sent)
}

func TestRenderOrderConfirmation_PickupAndFreeShipping(t *testing.T) {
	svc, err := NewService(testConfig(), &recordingSender{}, logger.Discard())
	require.NoError(t, err)

	o := sampleOrder()
	o.DeliveryOption = checkout.DeliveryPickUp
	o.Address, o.City, o.ZipCode = "", "", ""
	o.ShippingCost = 0

	html, err := svc.RenderOrderConfirmation(o)
	require.NoError(t, err)
	assert.Contains(t, html, "pick up your order in store")
	assert.Contains(t, html, "Shipping: Free")
	assert.NotContains(t, html, "Shipping to:")
}

func TestSend_RequiresRecipient(t *testing.T) {
	svc, err := NewService(testConfig(), &recordingSender{}, logger.Discard())
	require.NoError(t, err)

	assert.Error(t, svc.Send(context.Background(), &Message{Subject: "hi"}))
}

func TestNewSender(t *testing.T) {
	cfg := testConfig()

	sender, err := NewSender(cfg, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, sender)

	cfg.External.Email.Provider = "mailjet"
	sender, err = NewSender(cfg, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &MailjetSender{}, sender)

	cfg.External.Email.Provider = "smtp"
	_, err = NewSender(cfg, logger.Discard())
	assert.Error(t, err, "smtp without host")

	cfg.External.Email.SMTPHost = "smtp.example.com"
	cfg.External.Email.SMTPPort = 587
	sender, err = NewSender(cfg, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, sender)

	cfg.External.Email.Provider = "sendgrid"
	_, err = NewSender(cfg, logger.Discard())
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	log, hook := test.NewNullLogger()
	sender := NewLogSender(log)

	require.NoError(t, sender.Send(context.Background(), &Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Hello",
		HTML:    "<p>hi</p>",
	}))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "a@example.com, b@example.com", entry.Data["to"])
	assert.Equal(t, "Hello", entry.Data["subject"])
}

func TestMailjetSender(t *testing.T) {
	var got mailjetRequest
	var user, pass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ = r.BasicAuth()
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Messages":[{"Status":"success"}]}`))
	}))
	defer srv.Close()

	cfg := testConfig().External.Email
	cfg.ReplyTo = "hola@charmaway.es"
	sender, err := NewMailjetSender(cfg, srv.Client())
	require.NoError(t, err)
	sender.endpoint = srv.URL

	err = sender.Send(context.Background(), &Message{
		To:      []string{"cliente@example.com"},
		Subject: "Order confirmation #K7dPx2mQa9Zt",
		HTML:    "<p>gracias</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "key", user)
	assert.Equal(t, "secret", pass)
	require.Len(t, got.Messages, 1)
	m := got.Messages[0]
	assert.Equal(t, "noreply@charmaway.es", m.From.Email)
	assert.Equal(t, "Charmaway", m.From.Name)
	assert.Equal(t, []mailjetAddress{{Email: "cliente@example.com"}}, m.To)
	assert.Equal(t, "hola@charmaway.es", m.ReplyTo.Email)
	assert.Equal(t, "<p>gracias</p>", m.HTMLPart)
}

func TestMailjetSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ErrorMessage":"API key authentication/authorization failure"}`))
	}))
	defer srv.Close()

	sender, err := NewMailjetSender(testConfig().External.Email, srv.Client())
	require.NoError(t, err)
	sender.endpoint = srv.URL

	err = sender.Send(context.Background(), &Message{To: []string{"x@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestNewMailjetSender_RequiresCredentials(t *testing.T) {
	_, err := NewMailjetSender(config.EmailConfig{APIKey: "key"}, nil)
	assert.Error(t, err)
}

func TestBuildMIME(t *testing.T) {
	cfg := testConfig().External.Email
	cfg.ReplyTo = "hola@charmaway.es"

	raw := string(buildMIME(cfg, &Message{
		To:      []string{"a@example.com"},
		Subject: "Confirmación",
		HTML:    "<p>hi</p>",
	}))

	headers, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found)
	assert.Equal(t, "<p>hi</p>", body)
	assert.Contains(t, headers, "From: Charmaway <noreply@charmaway.es>\r\n")
	assert.Contains(t, headers, "Reply-To: hola@charmaway.es\r\n")
	assert.Contains(t, headers, "Subject: =?utf-8?q?Confirmaci=C3=B3n?=\r\n")
	assert.Contains(t, headers, `Content-Type: text/html; charset="utf-8"`)
}
