// internal/domain/treatment/entity.go
package treatment

import (
	"time"

	"github.com/charmaway/storefront/internal/domain/product"
	"gorm.io/gorm"
)

// Treatment represents a bookable beauty service. It carries no stock.
type Treatment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:200" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	Price       int64     `gorm:"not null" json:"price"` // Price in cents
	OfferPrice  *int64    `json:"offer_price"`
	Duration    string    `gorm:"size:100" json:"duration"` // e.g. "30 minutos"
	Image       string    `gorm:"size:500" json:"image"`
	IsAvailable bool      `gorm:"default:true" json:"is_available"`
	IsFeatured  bool      `gorm:"default:false" json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	FinalPrice         int64 `gorm:"-" json:"final_price"`
	DiscountPercentage int   `gorm:"-" json:"discount_percentage"`

	Category *product.Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
}

func (Treatment) TableName() string { return "treatments" }

func (t *Treatment) pricing() product.Pricing {
	return product.Pricing{Price: t.Price, OfferPrice: t.OfferPrice}
}

// HasOffer reports whether the offer price undercuts the base price
func (t *Treatment) HasOffer() bool { return t.pricing().HasOffer() }

// EffectivePrice follows the same offer rule as products
func (t *Treatment) EffectivePrice() int64 { return t.pricing().EffectivePrice() }

func (t *Treatment) AfterFind(tx *gorm.DB) error {
	t.FinalPrice = t.EffectivePrice()
	t.DiscountPercentage = t.pricing().Discount()
	return nil
}
