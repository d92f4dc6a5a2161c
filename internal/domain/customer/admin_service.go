// internal/domain/customer/admin_service.go
package customer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/charmaway/storefront/internal/pkg/pagination"
	"gorm.io/gorm"
)

// AdminService handles admin customer management operations
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAdminService creates a new admin customer service
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents customer list query parameters
type ListRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
	Status string `form:"status"` // active, inactive, all
	Role   string `form:"role"`   // admin, customer, all
}

// ListResponse represents customer list with pagination
type ListResponse struct {
	Customers  []WithStats           `json:"customers"`
	Pagination pagination.Pagination `json:"pagination"`
}

// WithStats represents a customer with order statistics
type WithStats struct {
	Customer
	OrderCount  int64      `json:"order_count"`
	TotalSpent  int64      `json:"total_spent"` // In cents
	LastOrderAt *time.Time `json:"last_order_at"`
}

// AdminUpdateRequest represents admin edits to a customer
type AdminUpdateRequest struct {
	ProfileUpdateRequest
	IsActive *bool `json:"is_active"`
	IsAdmin  *bool `json:"is_admin"`
}

type orderStats struct {
	UserID      uint
	OrderCount  int64
	TotalSpent  int64
	LastOrderAt *time.Time
}

// List retrieves customers with filtering and pagination
func (s *AdminService) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	var customers []Customer
	var total int64

	page := pagination.Page(req.Page)
	limit := pagination.Limit(req.Limit)

	query := s.filtered(s.db.WithContext(ctx).Model(&Customer{}), req)

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	if err := query.Order("created_at DESC, id DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve customers: %w", err)
	}

	ids := make([]uint, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.ID)
	}
	stats, err := s.stats(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]WithStats, 0, len(customers))
	for _, c := range customers {
		row := WithStats{Customer: c}
		if st, ok := stats[c.ID]; ok {
			row.OrderCount = st.OrderCount
			row.TotalSpent = st.TotalSpent
			row.LastOrderAt = st.LastOrderAt
		}
		result = append(result, row)
	}

	return &ListResponse{
		Customers:  result,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// Get retrieves a single customer with stats
func (s *AdminService) Get(ctx context.Context, id uint) (*WithStats, error) {
	var customer Customer
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("customer")
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	stats, err := s.stats(ctx, []uint{id})
	if err != nil {
		return nil, err
	}

	result := &WithStats{Customer: customer}
	if st, ok := stats[id]; ok {
		result.OrderCount = st.OrderCount
		result.TotalSpent = st.TotalSpent
		result.LastOrderAt = st.LastOrderAt
	}
	return result, nil
}

// Update edits profile fields and the active/admin flags of a customer
func (s *AdminService) Update(ctx context.Context, id uint, req *AdminUpdateRequest, adminID uint) (*WithStats, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if id == adminID {
		if req.IsActive != nil && !*req.IsActive {
			return nil, fmt.Errorf("cannot deactivate your own account: %w", apperror.ErrForbidden)
		}
		if req.IsAdmin != nil && !*req.IsAdmin {
			return nil, fmt.Errorf("cannot remove your own admin privileges: %w", apperror.ErrForbidden)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer Customer
		if err := tx.Where("id = ?", id).First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("customer")
			}
			return fmt.Errorf("failed to find customer: %w", err)
		}

		updates := req.updates()
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if req.IsAdmin != nil {
			if !*req.IsAdmin && customer.IsAdmin {
				var admins int64
				if err := tx.Model(&Customer{}).Where("is_admin = ? AND id <> ?", true, id).Count(&admins).Error; err != nil {
					return fmt.Errorf("failed to count admins: %w", err)
				}
				if admins == 0 {
					return fmt.Errorf("at least one admin must remain: %w", apperror.ErrConflict)
				}
			}
			updates["is_admin"] = *req.IsAdmin
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&customer).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes a customer. Their orders keep a null customer reference.
func (s *AdminService) Delete(ctx context.Context, id uint, adminID uint) error {
	if id == adminID {
		return fmt.Errorf("cannot delete your own account: %w", apperror.ErrForbidden)
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Customer{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("customer")
	}
	return nil
}

// ExportCSV exports the filtered customers as CSV
func (s *AdminService) ExportCSV(ctx context.Context, req *ListRequest) ([]byte, string, error) {
	var customers []Customer
	if err := s.filtered(s.db.WithContext(ctx).Model(&Customer{}), req).Order("created_at DESC").Find(&customers).Error; err != nil {
		return nil, "", fmt.Errorf("failed to retrieve customers for export: %w", err)
	}

	var csvData strings.Builder
	writer := csv.NewWriter(&csvData)

	records := [][]string{{"ID", "Email", "Name", "Surnames", "Phone", "City", "Is Active", "Is Admin", "Created At", "Last Login"}}
	for _, c := range customers {
		lastLogin := "Never"
		if c.LastLoginAt != nil {
			lastLogin = c.LastLoginAt.Format("2006-01-02 15:04:05")
		}
		records = append(records, []string{
			strconv.FormatUint(uint64(c.ID), 10),
			c.Email,
			c.Name,
			c.Surnames,
			c.Phone,
			c.City,
			strconv.FormatBool(c.IsActive),
			strconv.FormatBool(c.IsAdmin),
			c.CreatedAt.Format("2006-01-02 15:04:05"),
			lastLogin,
		})
	}

	if err := writer.WriteAll(records); err != nil {
		return nil, "", fmt.Errorf("failed to write CSV: %w", err)
	}

	filename := fmt.Sprintf("customers_export_%s.csv", time.Now().Format("2006-01-02_15-04-05"))
	return []byte(csvData.String()), filename, nil
}

func (s *AdminService) filtered(query *gorm.DB, req *ListRequest) *gorm.DB {
	if search := strings.TrimSpace(req.Search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR LOWER(surnames) LIKE ? OR phone LIKE ?",
			term, term, term, "%"+search+"%",
		)
	}

	switch req.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	switch req.Role {
	case "admin":
		query = query.Where("is_admin = ?", true)
	case "customer":
		query = query.Where("is_admin = ?", false)
	}

	return query
}

// stats aggregates non-cancelled orders per customer in one query
func (s *AdminService) stats(ctx context.Context, ids []uint) (map[uint]orderStats, error) {
	out := make(map[uint]orderStats, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []orderStats
	err := s.db.WithContext(ctx).Table("orders").
		Select("user_id, COUNT(*) AS order_count, COALESCE(SUM(final_price), 0) AS total_spent, MAX(created_at) AS last_order_at").
		Where("user_id IN ? AND status <> ?", ids, "CANCELLED").
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load order stats: %w", err)
	}

	for _, r := range rows {
		out[r.UserID] = r
	}
	return out, nil
}
