// internal/domain/customer/entity.go
package customer

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Customer represents a storefront account. Admins are customers with IsAdmin set.
type Customer struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Email       string     `gorm:"not null;size:255" json:"email"` // unique on LOWER(email), see migrations
	Password    string     `gorm:"not null;size:255" json:"-"`
	Name        string     `gorm:"not null;size:50" json:"name"`
	Surnames    string     `gorm:"size:100" json:"surnames"`
	Phone       string     `gorm:"size:20" json:"phone"`
	Address     string     `gorm:"size:255" json:"address"`
	City        string     `gorm:"size:100" json:"city"`
	ZipCode     string     `gorm:"size:20" json:"zip_code"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	IsAdmin     bool       `gorm:"default:false" json:"is_admin"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// BeforeCreate normalizes the email before insert
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	c.Email = NormalizeEmail(c.Email)
	return nil
}

// FullName returns name and surnames joined
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.Name + " " + c.Surnames)
}

// DisplayName returns the full name, or the email when no name is set
func (c *Customer) DisplayName() string {
	if name := c.FullName(); name != "" {
		return name
	}
	return c.Email
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
