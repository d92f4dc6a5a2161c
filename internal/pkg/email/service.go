// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/checkout"
	"github.com/charmaway/storefront/internal/domain/order"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// Message is a single outgoing HTML email
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers a rendered message through one provider
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Service renders shop emails and hands them to a Sender
type Service struct {
	config    *config.Config
	sender    Sender
	templates *template.Template
	log       *logrus.Logger
}

type orderConfirmationData struct {
	ShopName     string
	SupportEmail string
	TrackURL     string
	Year         int
	Pickup       bool
	Order        *order.Order
}

// NewSender picks the provider named in the email configuration
func NewSender(cfg *config.Config, log *logrus.Logger) (Sender, error) {
	emailCfg := cfg.External.Email
	switch strings.ToLower(emailCfg.Provider) {
	case "", "log":
		return &LogSender{log: log}, nil
	case "smtp":
		return NewSMTPSender(emailCfg)
	case "mailjet":
		return NewMailjetSender(emailCfg, nil)
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", emailCfg.Provider)
	}
}

// NewService creates the service. A nil sender falls back to the configured provider.
func NewService(cfg *config.Config, sender Sender, log *logrus.Logger) (*Service, error) {
	if sender == nil {
		var err error
		if sender, err = NewSender(cfg, log); err != nil {
			return nil, err
		}
	}

	tmpl, err := template.New("email").
		Funcs(template.FuncMap{"money": order.FormatAmount}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &Service{config: cfg, sender: sender, templates: tmpl, log: log}, nil
}

// OrderPlaced sends the order confirmation to the address on the order
func (s *Service) OrderPlaced(ctx context.Context, o *order.Order) error {
	to := strings.TrimSpace(o.Email)
	if to == "" {
		s.log.WithField("order", o.PublicID).Info("Order has no email, skipping confirmation")
		return nil
	}

	html, err := s.RenderOrderConfirmation(o)
	if err != nil {
		return err
	}

	msg := &Message{
		To:      []string{to},
		Subject: OrderConfirmationSubject(o),
		HTML:    html,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}

	s.log.WithFields(logrus.Fields{"order": o.PublicID, "to": to}).Info("Order confirmation sent")
	return nil
}

// Send delivers an arbitrary message through the configured provider
func (s *Service) Send(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	return s.sender.Send(ctx, msg)
}

// RenderOrderConfirmation renders the confirmation body for an order
func (s *Service) RenderOrderConfirmation(o *order.Order) (string, error) {
	data := orderConfirmationData{
		ShopName:     s.config.App.CompanyName,
		SupportEmail: s.config.App.CompanyEmail,
		Year:         time.Now().Year(),
		Pickup:       o.DeliveryOption == checkout.DeliveryPickUp,
		Order:        o,
	}
	if base := strings.TrimRight(s.config.App.FrontendURL, "/"); base != "" {
		data.TrackURL = base + "/orders/" + o.PublicID
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "order_confirmation.html", data); err != nil {
		return "", fmt.Errorf("failed to render order confirmation: %w", err)
	}
	return buf.String(), nil
}

// OrderConfirmationSubject is the subject line of the confirmation email
func OrderConfirmationSubject(o *order.Order) string {
	return "Order confirmation #" + o.PublicID
}

// LogSender only logs messages. Used in development.
type LogSender struct {
	log *logrus.Logger
}

func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

func (l *LogSender) Send(_ context.Context, msg *Message) error {
	l.log.WithFields(logrus.Fields{
		"to":      strings.Join(msg.To, ", "),
		"subject": msg.Subject,
		"bytes":   len(msg.HTML),
	}).Info("Email not sent (log provider)")
	return nil
}

func formatFrom(cfg config.EmailConfig) string {
	if cfg.FromName != "" {
		return fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return cfg.FromEmail
}
