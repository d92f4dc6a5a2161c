// internal/pkg/email/mailjet.go
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmaway/storefront/internal/config"
)

const mailjetSendURL = "https://api.mailjet.com/v3.1/send"

type mailjetAddress struct {
	Email string `json:"Email"`
	Name  string `json:"Name"`
}

type mailjetMessage struct {
	From     mailjetAddress   `json:"From"`
	To       []mailjetAddress `json:"To"`
	ReplyTo  *mailjetAddress  `json:"ReplyTo,omitempty"`
	Subject  string           `json:"Subject"`
	HTMLPart string           `json:"HTMLPart"`
}

type mailjetRequest struct {
	Messages []mailjetMessage `json:"Messages"`
}

// MailjetSender posts messages to the Mailjet v3.1 send API
type MailjetSender struct {
	cfg      config.EmailConfig
	client   *http.Client
	endpoint string
}

// NewMailjetSender creates the sender. A nil client gets a 30 second timeout.
func NewMailjetSender(cfg config.EmailConfig, client *http.Client) (*MailjetSender, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("Mailjet API key and secret are required")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &MailjetSender{cfg: cfg, client: client, endpoint: mailjetSendURL}, nil
}

func (m *MailjetSender) Send(ctx context.Context, msg *Message) error {
	payload := mailjetMessage{
		From:     mailjetAddress{Email: m.cfg.FromEmail, Name: m.cfg.FromName},
		Subject:  msg.Subject,
		HTMLPart: msg.HTML,
	}
	for _, addr := range msg.To {
		payload.To = append(payload.To, mailjetAddress{Email: addr})
	}
	if m.cfg.ReplyTo != "" {
		payload.ReplyTo = &mailjetAddress{Email: m.cfg.ReplyTo}
	}

	body, err := json.Marshal(mailjetRequest{Messages: []mailjetMessage{payload}})
	if err != nil {
		return fmt.Errorf("failed to marshal Mailjet request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create Mailjet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(m.cfg.APIKey, m.cfg.APISecret)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Mailjet request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("Mailjet API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
