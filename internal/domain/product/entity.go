// internal/domain/product/entity.go
package product

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// Department groups categories (Makeup, Skincare, Services...)
type Department struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null;size:100" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Image         string    `gorm:"size:255" json:"image"`
	OrderPosition int       `gorm:"default:0" json:"order_position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Categories []Category `gorm:"foreignKey:DepartmentID" json:"categories,omitempty"`
}

// Category represents product categories
type Category struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null;size:100" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Image         string    `gorm:"size:255" json:"image"`
	DepartmentID  *uint     `gorm:"index" json:"department_id"`
	OrderPosition int       `gorm:"default:0" json:"order_position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Department *Department `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"department,omitempty"`
}

// Brand represents product brands
type Brand struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Image       string    `gorm:"size:255" json:"image"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product represents a stocked catalog item
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       int64     `gorm:"not null" json:"price"` // Price in cents
	OfferPrice  *int64    `json:"offer_price"`          // Optional sale price in cents
	Gender      string    `gorm:"size:50;index" json:"gender"`
	Color       string    `gorm:"size:50;index" json:"color"`
	Material    string    `gorm:"size:100" json:"material"`
	Stock       int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	IsAvailable bool      `gorm:"default:true" json:"is_available"`
	IsFeatured  bool      `gorm:"default:false" json:"is_featured"`
	BrandID     *uint     `gorm:"index" json:"brand_id"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Computed after load
	FinalPrice         int64 `gorm:"-" json:"final_price"`
	DiscountPercentage int   `gorm:"-" json:"discount_percentage"`

	// Relationships
	Brand    *Brand         `gorm:"foreignKey:BrandID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"brand,omitempty"`
	Category *Category      `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	Images   []ProductImage `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
	Sizes    []ProductSize  `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sizes,omitempty"`
}

// ProductImage represents product images
type ProductImage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProductID     uint      `gorm:"not null;index" json:"product_id"`
	URL           string    `gorm:"not null;size:500" json:"url"`
	IsMain        bool      `gorm:"default:false" json:"is_main"`
	OrderPosition int       `gorm:"default:0" json:"order_position"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProductSize represents a size presentation of a product (40g, 50ml...)
type ProductSize struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;uniqueIndex:idx_product_sizes_product_size" json:"product_id"`
	Size      string `gorm:"not null;size:20;default:'Standard';uniqueIndex:idx_product_sizes_product_size" json:"size"`
	Stock     int    `gorm:"not null;default:0;check:product_size_stock_check,stock >= 0" json:"stock"`
}

// TableName overrides
func (Department) TableName() string   { return "departments" }
func (Category) TableName() string     { return "categories" }
func (Brand) TableName() string        { return "brands" }
func (Product) TableName() string      { return "products" }
func (ProductImage) TableName() string { return "product_images" }
func (ProductSize) TableName() string  { return "product_sizes" }

// HasOffer reports whether the offer price undercuts the base price
func (p *Product) HasOffer() bool {
	return hasOffer(p.Price, p.OfferPrice)
}

// EffectivePrice is the price a customer pays right now
func (p *Product) EffectivePrice() int64 {
	return effectivePrice(p.Price, p.OfferPrice)
}

// Discount returns the rounded discount percentage, 0 without an offer
func (p *Product) Discount() int {
	return discountPercentage(p.Price, p.OfferPrice)
}

// AfterFind fills the computed price fields
func (p *Product) AfterFind(tx *gorm.DB) error {
	p.FinalPrice = p.EffectivePrice()
	p.DiscountPercentage = p.Discount()
	return nil
}

func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

// MainImage returns the image flagged as main, falling back to the first one
func (p *Product) MainImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsMain {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

func hasOffer(price int64, offer *int64) bool {
	return offer != nil && *offer < price
}

func effectivePrice(price int64, offer *int64) int64 {
	if hasOffer(price, offer) {
		return *offer
	}
	return price
}

func discountPercentage(price int64, offer *int64) int {
	if !hasOffer(price, offer) || price <= 0 {
		return 0
	}
	return int(math.Round(float64(price-*offer) / float64(price) * 100))
}

// Pricing exposes the offer rules to other catalog-like packages
type Pricing struct {
	Price      int64
	OfferPrice *int64
}

func (p Pricing) HasOffer() bool        { return hasOffer(p.Price, p.OfferPrice) }
func (p Pricing) EffectivePrice() int64 { return effectivePrice(p.Price, p.OfferPrice) }
func (p Pricing) Discount() int         { return discountPercentage(p.Price, p.OfferPrice) }
