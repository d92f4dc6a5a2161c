// internal/domain/customer/service.go
package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/charmaway/storefront/internal/pkg/auth"
	"gorm.io/gorm"
)

var errInvalidCredentials = fmt.Errorf("invalid email or password: %w", apperror.ErrUnauthorized)

// Service handles customer account logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new customer service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Customer     *Customer `json:"customer"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
}

// Register creates a new customer account and signs it in
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)
	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Invalid("email", "already registered")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	customer := Customer{
		Email:       email,
		Password:    hashedPassword,
		Name:        strings.TrimSpace(req.Name),
		Surnames:    strings.TrimSpace(req.Surnames),
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		ZipCode:     req.ZipCode,
		IsActive:    true,
		LastLoginAt: &now,
	}

	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Invalid("email", "already registered")
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return s.authResponse(&customer)
}

// Login authenticates a customer by email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	var customer Customer
	err := s.db.WithContext(ctx).
		Where("LOWER(email) = ? AND is_active = ?", NormalizeEmail(req.Email), true).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, customer.Password); err != nil {
		return nil, errInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&customer).UpdateColumn("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	customer.LastLoginAt = &now

	return s.authResponse(&customer)
}

// Refresh issues new tokens from a valid refresh token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperror.ErrUnauthorized)
	}

	var customer Customer
	err = s.db.WithContext(ctx).Where("id = ? AND is_active = ?", claims.CustomerID, true).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer not found or inactive: %w", apperror.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return s.authResponse(&customer)
}

// Profile gets an active customer's profile
func (s *Service) Profile(ctx context.Context, customerID uint) (*Customer, error) {
	var customer Customer
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", customerID, true).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("customer")
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

// UpdateProfile updates the contact and address fields of a customer
func (s *Service) UpdateProfile(ctx context.Context, customerID uint, req *ProfileUpdateRequest) (*Customer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.Profile(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if updates := req.updates(); len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(customer).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}
	return customer, nil
}

// ChangePassword changes a password after verifying the current one
func (s *Service) ChangePassword(ctx context.Context, customerID uint, req *ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	customer, err := s.Profile(ctx, customerID)
	if err != nil {
		return err
	}

	if err := s.passwordManager.VerifyPassword(req.CurrentPassword, customer.Password); err != nil {
		return apperror.Invalid("current_password", "is incorrect")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(customer).Update("password", hashedPassword).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *Service) emailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Customer{}).Where("LOWER(email) = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func (s *Service) authResponse(customer *Customer) (*AuthResponse, error) {
	pair, err := s.jwtManager.GenerateTokenPair(customer.ID, customer.Email, customer.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Customer:     customer,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}
