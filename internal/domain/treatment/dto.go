// internal/domain/treatment/dto.go
package treatment

import (
	"strings"

	"github.com/charmaway/storefront/internal/pkg/apperror"
)

// ListRequest represents treatment catalog query parameters
type ListRequest struct {
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
	CategoryID uint   `form:"category"`
	Query      string `form:"q"`
	Sort       string `form:"sort"`

	OnlyAvailable bool `form:"-"`
}

// Request represents treatment create/update data
type Request struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	CategoryID  *uint  `json:"category_id"`
	Price       int64  `json:"price" binding:"required,gt=0"`
	OfferPrice  *int64 `json:"offer_price" binding:"omitempty,gte=0"`
	Duration    string `json:"duration" binding:"max=100"`
	Image       string `json:"image" binding:"max=500"`
	IsAvailable *bool  `json:"is_available"`
	IsFeatured  bool   `json:"is_featured"`
}

func (r *Request) Validate() error {
	v := &apperror.ValidationError{}

	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		v.Add("name", "is required")
	case len([]rune(name)) > 200:
		v.Add("name", "is too long")
	}
	if r.Price <= 0 {
		v.Add("price", "must be greater than 0")
	}
	if r.OfferPrice != nil && *r.OfferPrice < 0 {
		v.Add("offer_price", "must not be negative")
	}
	if len(r.Duration) > 100 {
		v.Add("duration", "must be at most 100 characters")
	}
	if len(r.Image) > 500 {
		v.Add("image", "must be at most 500 characters")
	}
	return v.OrNil()
}
