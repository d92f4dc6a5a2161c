// internal/domain/payment/entity.go
package payment

import (
	"time"

	"github.com/charmaway/storefront/internal/domain/order"
)

// Status is the state of a provider payment
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports that no later event may change the payment
func (s Status) Terminal() bool {
	return s == StatusSucceeded
}

// Accepts reports whether an event carrying next moves a payment at s.
// A failed intent goes back to requires_payment_method at Stripe and may still succeed.
func (s Status) Accepts(next Status) bool {
	return !s.Terminal() && s != next
}

const ProviderStripe = "stripe"

// Payment records one provider payment attempt for an order
type Payment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrderID        uint      `gorm:"not null;index" json:"order_id"`
	Provider       string    `gorm:"not null;size:20;default:'stripe'" json:"provider"`
	IntentID       string    `gorm:"uniqueIndex;not null;size:255" json:"intent_id"`
	Amount         int64     `gorm:"not null" json:"amount"` // In cents
	Currency       string    `gorm:"size:3;not null" json:"currency"`
	Status         Status    `gorm:"not null;size:20;default:'pending'" json:"status"`
	FailureMessage string    `gorm:"type:text" json:"failure_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Order *order.Order `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Payment) TableName() string { return "payments" }
