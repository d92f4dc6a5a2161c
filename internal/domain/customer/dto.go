// internal/domain/customer/dto.go
package customer

import (
	"regexp"
	"strings"

	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/charmaway/storefront/internal/pkg/auth"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// RegisterRequest represents customer registration data
type RegisterRequest struct {
	Name            string `json:"name" binding:"required,max=50"`
	Surnames        string `json:"surnames" binding:"max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	Phone           string `json:"phone" binding:"max=20"`
	Address         string `json:"address" binding:"max=255"`
	City            string `json:"city" binding:"max=100"`
	ZipCode         string `json:"zip_code" binding:"max=20"`
}

func (r *RegisterRequest) Validate() error {
	v := &apperror.ValidationError{}

	if strings.TrimSpace(r.Name) == "" {
		v.Add("name", "is required")
	}
	validateEmail(v, r.Email)
	if err := auth.ValidatePassword(r.Password); err != nil {
		v.Add("password", err.Error())
	}
	if r.Password != r.ConfirmPassword {
		v.Add("confirm_password", "passwords do not match")
	}
	if r.ZipCode != "" && !zipPattern.MatchString(r.ZipCode) {
		v.Add("zip_code", "must be 5 digits")
	}
	return v.OrNil()
}

// LoginRequest represents customer login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ProfileUpdateRequest represents the fields a customer may change
type ProfileUpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=50"`
	Surnames *string `json:"surnames" binding:"omitempty,max=100"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Address  *string `json:"address" binding:"omitempty,max=255"`
	City     *string `json:"city" binding:"omitempty,max=100"`
	ZipCode  *string `json:"zip_code" binding:"omitempty,max=20"`
}

func (r *ProfileUpdateRequest) Validate() error {
	v := &apperror.ValidationError{}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		v.Add("name", "is required")
	}
	if r.ZipCode != nil && *r.ZipCode != "" && !zipPattern.MatchString(*r.ZipCode) {
		v.Add("zip_code", "must be 5 digits")
	}
	return v.OrNil()
}

// updates returns the column map for the provided fields
func (r *ProfileUpdateRequest) updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Name != nil {
		updates["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Surnames != nil {
		updates["surnames"] = strings.TrimSpace(*r.Surnames)
	}
	if r.Phone != nil {
		updates["phone"] = *r.Phone
	}
	if r.Address != nil {
		updates["address"] = *r.Address
	}
	if r.City != nil {
		updates["city"] = *r.City
	}
	if r.ZipCode != nil {
		updates["zip_code"] = *r.ZipCode
	}
	return updates
}

// ChangePasswordRequest represents password change data
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

func (r *ChangePasswordRequest) Validate() error {
	v := &apperror.ValidationError{}
	if err := auth.ValidatePassword(r.NewPassword); err != nil {
		v.Add("new_password", err.Error())
	}
	if r.NewPassword != r.ConfirmPassword {
		v.Add("confirm_password", "passwords do not match")
	}
	return v.OrNil()
}

func validateEmail(v *apperror.ValidationError, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		v.Add("email", "is required")
		return
	}
	if !apperror.ValidEmail(email) {
		v.Add("email", "must be a valid email address")
	}
}
