// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/charmaway/storefront/internal/domain/checkout"
	"github.com/charmaway/storefront/internal/domain/customer"
	"github.com/charmaway/storefront/internal/domain/product"
	"github.com/charmaway/storefront/internal/domain/treatment"
)

// Status represents the order status
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// Statuses lists every order status in display order
var Statuses = []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusPaid        PaymentStatus = "paid"
	PaymentStatusFailed      PaymentStatus = "failed"
	PaymentStatusNotRequired PaymentStatus = "not_required"
)

// Order represents the order entity
type Order struct {
	ID             uint                    `gorm:"primaryKey" json:"id"`
	PublicID       string                  `gorm:"uniqueIndex;not null;size:12" json:"public_id"`
	UserID         *uint                   `gorm:"index" json:"user_id"` // Nullable for guest orders
	Email          string                  `gorm:"size:255;index" json:"email"`
	Status         Status                  `gorm:"not null;size:20;default:'PROCESSING'" json:"status"`
	DeliveryOption checkout.DeliveryOption `gorm:"not null;size:20;default:'DELIVERY'" json:"delivery_option"`
	Address        string                  `gorm:"size:255" json:"address"`
	City           string                  `gorm:"size:100" json:"city"`
	ZipCode        string                  `gorm:"size:5" json:"zip_code"`
	PaymentMethod  checkout.PaymentMethod  `gorm:"not null;size:50" json:"payment_method"`
	PaymentStatus  PaymentStatus           `gorm:"not null;size:20;default:'pending'" json:"payment_status"`

	// Financial Information, in cents
	Subtotal     int64 `gorm:"not null;default:0" json:"subtotal"`
	ShippingCost int64 `gorm:"not null;default:0" json:"shipping_cost"`
	FinalPrice   int64 `gorm:"not null;default:0" json:"final_price"`

	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Customer      *customer.Customer   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is a snapshot of one cart line. Never updated after creation.
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	ProductID   *uint     `gorm:"index" json:"product_id"`
	TreatmentID *uint     `gorm:"index" json:"treatment_id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Quantity    int       `gorm:"not null;check:order_items_quantity_check,quantity >= 1" json:"quantity"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"` // Price per unit in cents
	Subtotal    int64     `gorm:"not null" json:"subtotal"`   // Quantity * UnitPrice
	CreatedAt   time.Time `json:"created_at"`

	Product   *product.Product     `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Treatment *treatment.Treatment `gorm:"foreignKey:TreatmentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	FromStatus Status    `gorm:"size:20" json:"from_status"`
	ToStatus   Status    `gorm:"not null;size:20" json:"to_status"`
	Comment    string    `gorm:"type:text" json:"comment"`
	ChangedBy  *uint     `gorm:"index" json:"changed_by"` // Admin customer id, nil for the storefront
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// IsGuest reports whether the order was placed without an account
func (o *Order) IsGuest() bool {
	return o.UserID == nil
}

// RequiresPayment reports whether the order still waits for a card payment
func (o *Order) RequiresPayment() bool {
	return o.PaymentMethod == checkout.PaymentCard && o.PaymentStatus == PaymentStatusPending
}

// ItemCount returns the number of units across all lines
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Totals sums the line subtotals and adds the shipping cost
func Totals(items []OrderItem, shipping int64) (subtotal, final int64) {
	for _, item := range items {
		subtotal += item.Subtotal
	}
	return subtotal, subtotal + shipping
}

// FormatAmount renders cents as a euro amount, e.g. 2099 -> "20.99 €"
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d €", sign, cents/100, cents%100)
}
