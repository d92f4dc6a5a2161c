// internal/domain/treatment/service.go
package treatment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/product"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/charmaway/storefront/internal/pkg/pagination"
	"gorm.io/gorm"
)

var treatmentSorts = map[string]string{
	"name":       "treatments.name ASC",
	"price_asc":  "treatments.price ASC",
	"price_desc": "treatments.price DESC",
}

// Service handles treatment catalog logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new treatment service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListResponse represents treatment list with pagination
type ListResponse struct {
	Treatments []Treatment           `json:"treatments"`
	Pagination pagination.Pagination `json:"pagination"`
}

// List retrieves treatments with filtering, sorting and pagination
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	var treatments []Treatment
	var total int64

	page := pagination.Page(req.Page)
	perPage := pagination.StorefrontPerPage(req.PerPage)

	query := s.db.WithContext(ctx).Model(&Treatment{}).
		Joins("LEFT JOIN categories ON categories.id = treatments.category_id")

	if req.OnlyAvailable {
		query = query.Where("treatments.is_available = ?", true)
	}
	if req.CategoryID > 0 {
		query = query.Where("treatments.category_id = ?", req.CategoryID)
	}
	if q := strings.TrimSpace(req.Query); q != "" {
		search := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(treatments.name) LIKE ? OR LOWER(treatments.description) LIKE ? OR LOWER(categories.name) LIKE ?",
			search, search, search,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count treatments: %w", err)
	}

	order, ok := treatmentSorts[req.Sort]
	if !ok {
		order = treatmentSorts["name"]
	}

	err := query.
		Select("treatments.*").
		Preload("Category").
		Order(order + ", treatments.id ASC").
		Offset(pagination.Offset(page, perPage)).
		Limit(perPage).
		Find(&treatments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve treatments: %w", err)
	}

	return &ListResponse{
		Treatments: treatments,
		Pagination: pagination.New(page, perPage, total),
	}, nil
}

// Get retrieves a single treatment by ID
func (s *Service) Get(ctx context.Context, id uint) (*Treatment, error) {
	var treatment Treatment
	if err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&treatment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("treatment")
		}
		return nil, fmt.Errorf("failed to retrieve treatment: %w", err)
	}
	return &treatment, nil
}

// Categories lists the categories of the treatments department
func (s *Service) Categories(ctx context.Context) ([]product.Category, error) {
	var categories []product.Category
	err := s.db.WithContext(ctx).
		Joins("JOIN departments ON departments.id = categories.department_id").
		Where("departments.name = ?", s.config.Shop.TreatmentsDepartment).
		Order("categories.order_position ASC, categories.name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve treatment categories: %w", err)
	}
	return categories, nil
}

// Create creates a new treatment
func (s *Service) Create(ctx context.Context, req *Request) (*Treatment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	treatment := Treatment{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		OfferPrice:  req.OfferPrice,
		Duration:    req.Duration,
		Image:       req.Image,
		IsAvailable: isAvailable,
		IsFeatured:  req.IsFeatured,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, req.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(&treatment).Error; err != nil {
			return fmt.Errorf("failed to create treatment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	treatment.FinalPrice = treatment.EffectivePrice()
	return &treatment, nil
}

// Update replaces the editable fields of a treatment
func (s *Service) Update(ctx context.Context, id uint, req *Request) (*Treatment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var treatment Treatment
		if err := tx.Where("id = ?", id).First(&treatment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("treatment")
			}
			return fmt.Errorf("failed to find treatment: %w", err)
		}
		if err := checkCategory(tx, req.CategoryID); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":        strings.TrimSpace(req.Name),
			"description": req.Description,
			"category_id": req.CategoryID,
			"price":       req.Price,
			"offer_price": req.OfferPrice,
			"duration":    req.Duration,
			"image":       req.Image,
			"is_featured": req.IsFeatured,
		}
		if req.IsAvailable != nil {
			updates["is_available"] = *req.IsAvailable
		}

		if err := tx.Model(&treatment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update treatment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a treatment no order line references
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Treatment{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to find treatment: %w", err)
		}
		if count == 0 {
			return apperror.NotFound("treatment")
		}

		orderIDs, err := product.BlockingOrdersFor(tx, "treatment_id", id)
		if err != nil {
			return err
		}
		if len(orderIDs) > 0 {
			return &apperror.InUseError{Resource: "treatment", OrderIDs: orderIDs}
		}

		if err := tx.Delete(&Treatment{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete treatment: %w", err)
		}
		return nil
	})
}

func checkCategory(tx *gorm.DB, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&product.Category{}).Where("id = ?", *categoryID).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if n == 0 {
		return apperror.Invalid("category_id", "does not exist")
	}
	return nil
}
