// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/charmaway/storefront/internal/domain/customer"
	"github.com/charmaway/storefront/internal/domain/product"
	"github.com/charmaway/storefront/internal/domain/treatment"
)

// CartItem is one cart line. It belongs to a customer or to a guest session and
// references either a product or a treatment, never both.
type CartItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       *uint     `gorm:"index;check:cart_items_owner_check,(user_id IS NULL) <> (session_key IS NULL)" json:"user_id,omitempty"`
	SessionKey   *string   `gorm:"size:40;index" json:"-"`
	ProductID    *uint     `gorm:"index;check:cart_items_item_check,(product_id IS NULL) <> (treatment_id IS NULL)" json:"product_id,omitempty"`
	TreatmentID  *uint     `gorm:"index" json:"treatment_id,omitempty"`
	Quantity     int       `gorm:"not null;default:1;check:cart_items_quantity_check,quantity >= 1" json:"quantity"`
	CurrentPrice int64     `gorm:"not null" json:"current_price"` // Unit price in cents when last added
	AddedAt      time.Time `gorm:"autoCreateTime" json:"added_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	Customer  *customer.Customer   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Product   *product.Product     `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"product,omitempty"`
	Treatment *treatment.Treatment `gorm:"foreignKey:TreatmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"treatment,omitempty"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// Subtotal is quantity times the captured unit price
func (i *CartItem) Subtotal() int64 {
	return int64(i.Quantity) * i.CurrentPrice
}

// Name returns the name of the referenced product or treatment, when loaded
func (i *CartItem) Name() string {
	switch {
	case i.Product != nil:
		return i.Product.Name
	case i.Treatment != nil:
		return i.Treatment.Name
	default:
		return ""
	}
}

// Ref returns the item reference of the line
func (i *CartItem) Ref() ItemRef {
	if i.ProductID != nil {
		return ProductRef(*i.ProductID)
	}
	if i.TreatmentID != nil {
		return TreatmentRef(*i.TreatmentID)
	}
	return ItemRef{}
}

// Totals represents calculated cart totals
type Totals struct {
	ItemCount int   `json:"item_count"` // Sum of all quantities
	Lines     int   `json:"lines"`
	Subtotal  int64 `json:"subtotal"`
}

// View is a cart with its lines and totals
type View struct {
	Items  []CartItem `json:"items"`
	Totals Totals     `json:"totals"`
}

// CalculateTotals sums quantities and line subtotals
func CalculateTotals(items []CartItem) Totals {
	totals := Totals{Lines: len(items)}
	for i := range items {
		totals.ItemCount += items[i].Quantity
		totals.Subtotal += items[i].Subtotal()
	}
	return totals
}
