// internal/domain/payment/stripe_service.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/checkout"
	"github.com/charmaway/storefront/internal/domain/order"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
	"gorm.io/gorm"
)

// IntentClient creates and retrieves Stripe payment intents
type IntentClient interface {
	Create(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// stripeIntents talks to the Stripe API with the configured secret key
type stripeIntents struct {
	client *paymentintent.Client
}

// NewIntentClient returns the Stripe backed IntentClient
func NewIntentClient(secretKey string) IntentClient {
	return &stripeIntents{client: &paymentintent.Client{
		B:   stripe.GetBackend(stripe.APIBackend),
		Key: secretKey,
	}}
}

func (c *stripeIntents) Create(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return c.client.New(params)
}

func (c *stripeIntents) Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return c.client.Get(id, params)
}

// Service handles card payments through Stripe
type Service struct {
	db      *gorm.DB
	config  *config.Config
	intents IntentClient
	log     *logrus.Logger
}

// NewService creates a new payment service
func NewService(db *gorm.DB, cfg *config.Config, intents IntentClient, log *logrus.Logger) *Service {
	if intents == nil {
		intents = NewIntentClient(cfg.External.Stripe.SecretKey)
	}
	return &Service{
		db:      db,
		config:  cfg,
		intents: intents,
		log:     log,
	}
}

// IntentResponse is what the storefront needs to confirm the card payment
type IntentResponse struct {
	PublicID       string `json:"public_id"`
	IntentID       string `json:"intent_id"`
	ClientSecret   string `json:"client_secret"`
	PublishableKey string `json:"publishable_key"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

// CreateIntent opens a payment intent for the order's final price
func (s *Service) CreateIntent(ctx context.Context, o *order.Order) (*IntentResponse, error) {
	if o.FinalPrice <= 0 {
		return nil, apperror.Invalid("amount", "must be positive")
	}
	if o.PaymentMethod != checkout.PaymentCard {
		return nil, apperror.Invalid("payment_method", "order is not paid by card")
	}
	currency := strings.ToLower(s.config.Shop.Currency)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(o.FinalPrice),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if o.Email != "" {
		params.ReceiptEmail = stripe.String(o.Email)
	}
	params.Context = ctx
	params.SetIdempotencyKey("order-" + o.PublicID)
	params.AddMetadata("order_id", strconv.FormatUint(uint64(o.ID), 10))
	params.AddMetadata("public_id", o.PublicID)

	pi, err := s.intents.Create(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	payment := Payment{
		OrderID:  o.ID,
		Provider: ProviderStripe,
		IntentID: pi.ID,
		Amount:   o.FinalPrice,
		Currency: currency,
		Status:   StatusPending,
	}
	// The idempotency key hands back the same intent when an earlier attempt saved nothing
	if err := s.db.WithContext(ctx).Where("intent_id = ?", pi.ID).FirstOrCreate(&payment).Error; err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":  o.ID,
		"public_id": o.PublicID,
		"intent_id": pi.ID,
		"amount":    o.FinalPrice,
	}).Info("Payment intent created")

	return s.response(o, pi), nil
}

// ResumeIntent hands an unpaid card order a usable intent again. It reuses the
// latest open or failed intent, and opens one when none was ever saved.
func (s *Service) ResumeIntent(ctx context.Context, o *order.Order) (*IntentResponse, error) {
	if o.PaymentMethod != checkout.PaymentCard {
		return nil, apperror.Invalid("payment_method", "order is not paid by card")
	}
	if o.PaymentStatus == order.PaymentStatusPaid {
		return nil, fmt.Errorf("order %s is already paid: %w", o.PublicID, apperror.ErrConflict)
	}
	if o.Status == order.StatusCancelled {
		return nil, fmt.Errorf("order %s is cancelled: %w", o.PublicID, apperror.ErrConflict)
	}

	var latest Payment
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND status <> ?", o.ID, StatusSucceeded).
		Order("id DESC").
		First(&latest).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.CreateIntent(ctx, o)
	case err != nil:
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.intents.Get(latest.IntentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return nil, fmt.Errorf("payment intent %s already succeeded: %w", pi.ID, apperror.ErrConflict)
	case stripe.PaymentIntentStatusCanceled:
		return nil, fmt.Errorf("payment intent %s was canceled: %w", pi.ID, apperror.ErrConflict)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":  o.ID,
		"public_id": o.PublicID,
		"intent_id": pi.ID,
	}).Info("Payment intent resumed")
	return s.response(o, pi), nil
}

func (s *Service) response(o *order.Order, pi *stripe.PaymentIntent) *IntentResponse {
	return &IntentResponse{
		PublicID:       o.PublicID,
		IntentID:       pi.ID,
		ClientSecret:   pi.ClientSecret,
		PublishableKey: s.config.External.Stripe.PublishableKey,
		Amount:         o.FinalPrice,
		Currency:       strings.ToLower(s.config.Shop.Currency),
	}
}

// HandleWebhook verifies and applies a Stripe event
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.config.External.Stripe.WebhookSecret)
	if err != nil {
		s.log.WithError(err).Warn("Stripe webhook signature verification failed")
		return fmt.Errorf("invalid webhook: %w", apperror.ErrUnauthorized)
	}

	entry := s.log.WithFields(logrus.Fields{"event_id": event.ID, "event_type": event.Type})

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return s.applyIntent(ctx, event, StatusSucceeded)
	case stripe.EventTypePaymentIntentPaymentFailed:
		return s.applyIntent(ctx, event, StatusFailed)
	default:
		entry.Info("Unhandled webhook event type")
		return nil
	}
}

func (s *Service) applyIntent(ctx context.Context, event stripe.Event, status Status) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return apperror.Invalid("payload", "is not a payment intent")
	}

	orderID, err := strconv.ParseUint(pi.Metadata["order_id"], 10, 64)
	if err != nil || orderID == 0 {
		return apperror.NotFound("order")
	}

	var failure string
	if status == StatusFailed && pi.LastPaymentError != nil {
		failure = pi.LastPaymentError.Msg
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&order.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to find order: %w", err)
		}
		if count == 0 {
			return apperror.NotFound("order")
		}

		var payment Payment
		err := tx.Where("intent_id = ?", pi.ID).First(&payment).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			payment = Payment{
				OrderID:        uint(orderID),
				Provider:       ProviderStripe,
				IntentID:       pi.ID,
				Amount:         pi.Amount,
				Currency:       string(pi.Currency),
				Status:         status,
				FailureMessage: failure,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return fmt.Errorf("failed to save payment: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to find payment: %w", err)
		case !payment.Status.Accepts(status):
			s.log.WithFields(logrus.Fields{
				"intent_id": pi.ID,
				"status":    payment.Status,
			}).Info("Skipping duplicate payment webhook")
			return nil
		default:
			updates := map[string]interface{}{
				"status":          status,
				"failure_message": failure,
			}
			if err := tx.Model(&payment).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update payment: %w", err)
			}
		}

		return order.MarkPayment(tx, uint(orderID), status == StatusSucceeded)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":  orderID,
		"intent_id": pi.ID,
		"status":    status,
	}).Info("Payment status updated")
	return nil
}
