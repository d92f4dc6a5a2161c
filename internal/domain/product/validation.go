// internal/domain/product/validation.go
package product

import (
	"strings"

	"github.com/charmaway/storefront/internal/pkg/apperror"
)

// ImageInput describes one product image in a create/update request
type ImageInput struct {
	URL           string `json:"url" binding:"required,max=500"`
	IsMain        bool   `json:"is_main"`
	OrderPosition int    `json:"order_position"`
}

// SizeInput describes one size presentation in a create/update request
type SizeInput struct {
	Size  string `json:"size" binding:"max=20"`
	Stock int    `json:"stock" binding:"gte=0"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	Name        string       `json:"name" binding:"required,max=255"`
	Description string       `json:"description"`
	Price       int64        `json:"price" binding:"required,gt=0"`
	OfferPrice  *int64       `json:"offer_price" binding:"omitempty,gte=0"`
	Gender      string       `json:"gender" binding:"max=50"`
	Color       string       `json:"color" binding:"max=50"`
	Material    string       `json:"material" binding:"max=100"`
	Stock       int          `json:"stock" binding:"gte=0"`
	IsAvailable *bool        `json:"is_available"`
	IsFeatured  bool         `json:"is_featured"`
	BrandID     *uint        `json:"brand_id"`
	CategoryID  *uint        `json:"category_id"`
	Images      []ImageInput `json:"images" binding:"dive"`
	Sizes       []SizeInput  `json:"sizes" binding:"dive"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Price       *int64        `json:"price"`
	OfferPrice  *int64        `json:"offer_price"`
	ClearOffer  bool          `json:"clear_offer"`
	Gender      *string       `json:"gender"`
	Color       *string       `json:"color"`
	Material    *string       `json:"material"`
	Stock       *int          `json:"stock"`
	IsAvailable *bool         `json:"is_available"`
	IsFeatured  *bool         `json:"is_featured"`
	BrandID     *uint         `json:"brand_id"`
	CategoryID  *uint         `json:"category_id"`
	Images      *[]ImageInput `json:"images"`
	Sizes       *[]SizeInput  `json:"sizes"`
}

// Validate checks the fields that do not need the database
func (r *ProductCreateRequest) Validate() error {
	v := &apperror.ValidationError{}
	validateName(v, r.Name, 255)
	validatePrice(v, r.Price, r.OfferPrice)
	if r.Stock < 0 {
		v.Add("stock", "must not be negative")
	}
	validateImages(v, r.Images)
	validateSizes(v, r.Sizes)
	return v.OrNil()
}

// Validate checks the fields present in the update
func (r *ProductUpdateRequest) Validate(current *Product) error {
	v := &apperror.ValidationError{}
	if r.Name != nil {
		validateName(v, *r.Name, 255)
	}

	price := current.Price
	if r.Price != nil {
		price = *r.Price
	}
	offer := current.OfferPrice
	if r.OfferPrice != nil {
		offer = r.OfferPrice
	}
	if r.ClearOffer {
		offer = nil
	}
	validatePrice(v, price, offer)

	if r.Stock != nil && *r.Stock < 0 {
		v.Add("stock", "must not be negative")
	}
	if r.Images != nil {
		validateImages(v, *r.Images)
	}
	if r.Sizes != nil {
		validateSizes(v, *r.Sizes)
	}
	return v.OrNil()
}

// CategoryRequest represents category create/update data
type CategoryRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	Description   string `json:"description"`
	Image         string `json:"image" binding:"max=255"`
	DepartmentID  *uint  `json:"department_id"`
	OrderPosition int    `json:"order_position"`
}

func (r *CategoryRequest) Validate() error {
	v := &apperror.ValidationError{}
	validateName(v, r.Name, 100)
	if len(r.Image) > 255 {
		v.Add("image", "must be at most 255 characters")
	}
	return v.OrNil()
}

// BrandRequest represents brand create/update data
type BrandRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Image       string `json:"image" binding:"max=255"`
	Description string `json:"description"`
}

func (r *BrandRequest) Validate() error {
	v := &apperror.ValidationError{}
	validateName(v, r.Name, 100)
	if len(r.Image) > 255 {
		v.Add("image", "must be at most 255 characters")
	}
	return v.OrNil()
}

// DepartmentRequest represents department create/update data
type DepartmentRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	Description   string `json:"description"`
	Image         string `json:"image" binding:"max=255"`
	OrderPosition int    `json:"order_position"`
}

func (r *DepartmentRequest) Validate() error {
	v := &apperror.ValidationError{}
	validateName(v, r.Name, 100)
	if len(r.Image) > 255 {
		v.Add("image", "must be at most 255 characters")
	}
	return v.OrNil()
}

func validateName(v *apperror.ValidationError, name string, max int) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		v.Add("name", "is required")
	case len([]rune(name)) > max:
		v.Add("name", "is too long")
	}
}

func validatePrice(v *apperror.ValidationError, price int64, offer *int64) {
	if price <= 0 {
		v.Add("price", "must be greater than 0")
	}
	if offer != nil && *offer < 0 {
		v.Add("offer_price", "must not be negative")
	}
}

func validateImages(v *apperror.ValidationError, images []ImageInput) {
	mains := 0
	for _, img := range images {
		if strings.TrimSpace(img.URL) == "" {
			v.Add("images", "url is required")
		}
		if img.IsMain {
			mains++
		}
	}
	if mains > 1 {
		v.Add("images", "only one image can be main")
	}
}

func validateSizes(v *apperror.ValidationError, sizes []SizeInput) {
	seen := make(map[string]bool, len(sizes))
	for _, s := range sizes {
		key := strings.ToLower(strings.TrimSpace(s.Size))
		if key == "" {
			key = "standard"
		}
		if seen[key] {
			v.Add("sizes", "duplicate size "+s.Size)
		}
		seen[key] = true
		if s.Stock < 0 {
			v.Add("sizes", "stock must not be negative")
		}
	}
}
