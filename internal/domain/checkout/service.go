// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/cart"
	"github.com/charmaway/storefront/internal/pkg/apperror"
)

// SessionStore keeps short-lived checkout state, Redis in production
type SessionStore interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// CartReader loads the owner's cart
type CartReader interface {
	Get(ctx context.Context, owner cart.Owner) (*cart.View, error)
}

// ShippingRules are the money rules for delivery, in cents
type ShippingRules struct {
	FlatFee       int64
	FreeThreshold int64
}

// RulesFromConfig reads the shipping rules from the shop settings
func RulesFromConfig(shop config.ShopConfig) ShippingRules {
	return ShippingRules{
		FlatFee:       shop.ShippingFlatFee,
		FreeThreshold: shop.FreeShippingThreshold,
	}
}

// ShippingCost is free for pick-up and for deliveries strictly above the threshold
func ShippingCost(subtotal int64, option DeliveryOption, rules ShippingRules) int64 {
	if option == DeliveryPickUp {
		return 0
	}
	if subtotal > rules.FreeThreshold {
		return 0
	}
	return rules.FlatFee
}

// Summary is the money breakdown of a cart for a delivery option
type Summary struct {
	Items          []cart.CartItem `json:"items"`
	Totals         cart.Totals     `json:"totals"`
	DeliveryOption DeliveryOption  `json:"delivery_option"`
	Subtotal       int64           `json:"subtotal"`
	ShippingCost   int64           `json:"shipping_cost"`
	Total          int64           `json:"total"`
}

// StagedCheckout is the form kept between the checkout page and the payment step
type StagedCheckout struct {
	Form     Form      `json:"form"`
	Total    int64     `json:"total"`
	StagedAt time.Time `json:"staged_at"`
}

// SubmitResult tells the storefront what to do next
type SubmitResult struct {
	NextStep string   `json:"next_step"`
	Summary  *Summary `json:"summary"`
}

// Service handles checkout business logic
type Service struct {
	carts  CartReader
	store  SessionStore
	config *config.Config
}

// NewService creates a new checkout service
func NewService(carts CartReader, store SessionStore, cfg *config.Config) *Service {
	return &Service{
		carts:  carts,
		store:  store,
		config: cfg,
	}
}

// Rules returns the configured shipping rules
func (s *Service) Rules() ShippingRules {
	return RulesFromConfig(s.config.Shop)
}

// Summary prices the owner's cart. An empty option means home delivery.
func (s *Service) Summary(ctx context.Context, owner cart.Owner, option DeliveryOption) (*Summary, error) {
	if option == "" {
		option = DeliveryHome
	}
	if !option.Valid() {
		return nil, apperror.Invalid("delivery_option", "must be one of: DELIVERY PICK_UP")
	}

	view, err := s.carts.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, apperror.ErrEmptyCart
	}

	subtotal := view.Totals.Subtotal
	shipping := ShippingCost(subtotal, option, s.Rules())

	return &Summary{
		Items:          view.Items,
		Totals:         view.Totals,
		DeliveryOption: option,
		Subtotal:       subtotal,
		ShippingCost:   shipping,
		Total:          subtotal + shipping,
	}, nil
}

// Submit validates and stages the checkout form for the next step
func (s *Service) Submit(ctx context.Context, owner cart.Owner, form *Form) (*SubmitResult, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	summary, err := s.Summary(ctx, owner, form.DeliveryOption)
	if err != nil {
		return nil, err
	}

	staged := StagedCheckout{
		Form:     *form,
		Total:    summary.Total,
		StagedAt: time.Now().UTC(),
	}
	if err := s.store.SetJSON(ctx, sessionKey(owner), staged, s.config.Shop.CheckoutTTL); err != nil {
		return nil, fmt.Errorf("failed to stage checkout: %w", err)
	}

	return &SubmitResult{
		NextStep: form.NextStep(),
		Summary:  summary,
	}, nil
}

// Staged loads the staged checkout of the owner
func (s *Service) Staged(ctx context.Context, owner cart.Owner) (*StagedCheckout, error) {
	var staged StagedCheckout
	found, err := s.store.GetJSON(ctx, sessionKey(owner), &staged)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("no checkout in progress: %w", apperror.ErrNotFound)
	}
	return &staged, nil
}

// Discard drops the staged checkout
func (s *Service) Discard(ctx context.Context, owner cart.Owner) error {
	if err := s.store.Del(ctx, sessionKey(owner)); err != nil {
		return fmt.Errorf("failed to discard checkout: %w", err)
	}
	return nil
}

func sessionKey(owner cart.Owner) string {
	return "checkout:" + owner.Key()
}
