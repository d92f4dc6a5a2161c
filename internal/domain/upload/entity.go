// internal/domain/upload/entity.go
package upload

import (
	"fmt"
	"time"

	"github.com/charmaway/storefront/internal/domain/product"
)

// ProductAsset is a stored file attached to a product
type ProductAsset struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductID    *uint     `gorm:"index" json:"product_id"`
	Key          string    `gorm:"not null;size:500;uniqueIndex" json:"key"`
	URL          string    `gorm:"not null;size:500" json:"url"`
	OriginalName string    `gorm:"not null;size:255" json:"original_name"`
	MimeType     string    `gorm:"not null;size:100" json:"mime_type"`
	Size         int64     `gorm:"not null" json:"size"`
	UploadedBy   uint      `gorm:"not null;index" json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`

	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}

func (ProductAsset) TableName() string { return "product_assets" }

// FormattedSize returns human-readable file size
func (a *ProductAsset) FormattedSize() string {
	const unit = 1024
	if a.Size < unit {
		return fmt.Sprintf("%d B", a.Size)
	}

	div, exp := int64(unit), 0
	for n := a.Size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(a.Size)/float64(div), "KMGTPE"[exp])
}
