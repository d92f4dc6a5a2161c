// internal/domain/checkout/form.go
package checkout

import (
	"regexp"
	"strings"

	"github.com/charmaway/storefront/internal/pkg/apperror"
)

// DeliveryOption chooses between home delivery and store pick-up
type DeliveryOption string

const (
	DeliveryHome   DeliveryOption = "DELIVERY"
	DeliveryPickUp DeliveryOption = "PICK_UP"
)

func (d DeliveryOption) Valid() bool {
	return d == DeliveryHome || d == DeliveryPickUp
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCard || p == PaymentCashOnDelivery
}

// Next checkout steps returned by Submit
const (
	StepPayment = "payment"
	StepConfirm = "confirm"
)

const maxNotesLength = 1000

var zipCodePattern = regexp.MustCompile(`^\d{5}$`)

// Form holds the data collected on the checkout page
type Form struct {
	Email          string         `json:"email" binding:"required,email"`
	PaymentMethod  PaymentMethod  `json:"payment_method" binding:"required"`
	DeliveryOption DeliveryOption `json:"delivery_option" binding:"required"`
	Address        string         `json:"address" binding:"max=255"`
	City           string         `json:"city" binding:"max=100"`
	ZipCode        string         `json:"zip_code"`
	Notes          string         `json:"notes"`
}

// Normalize trims the free text fields
func (f *Form) Normalize() {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.ZipCode = strings.TrimSpace(f.ZipCode)
	f.Notes = strings.TrimSpace(f.Notes)
}

func (f *Form) Validate() error {
	v := &apperror.ValidationError{}

	if !apperror.ValidEmail(strings.TrimSpace(f.Email)) {
		v.Add("email", "must be a valid email address")
	}
	if !f.PaymentMethod.Valid() {
		v.Add("payment_method", "must be one of: card cash_on_delivery")
	}
	if !f.DeliveryOption.Valid() {
		v.Add("delivery_option", "must be one of: DELIVERY PICK_UP")
	}

	if f.DeliveryOption == DeliveryHome {
		if strings.TrimSpace(f.Address) == "" {
			v.Add("address", "is required for delivery")
		}
		if strings.TrimSpace(f.City) == "" {
			v.Add("city", "is required for delivery")
		}
		if !zipCodePattern.MatchString(strings.TrimSpace(f.ZipCode)) {
			v.Add("zip_code", "must be 5 digits")
		}
	}

	if len([]rune(f.Notes)) > maxNotesLength {
		v.Add("notes", "must be at most 1000 characters")
	}
	return v.OrNil()
}

// NextStep is where the storefront goes after the form is accepted
func (f *Form) NextStep() string {
	if f.PaymentMethod == PaymentCard {
		return StepPayment
	}
	return StepConfirm
}
