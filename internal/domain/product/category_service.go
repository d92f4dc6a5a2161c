// internal/domain/product/category_service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"gorm.io/gorm"
)

// CategoryService handles categories, brands and departments
type CategoryService struct {
	db     *gorm.DB
	config *config.Config
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, cfg *config.Config) *CategoryService {
	return &CategoryService{
		db:     db,
		config: cfg,
	}
}

// CategoryWithProductCount represents category with product count
type CategoryWithProductCount struct {
	Category
	ProductCount int64 `json:"product_count"`
}

// CATEGORIES

// GetCategories retrieves all categories in display order
func (s *CategoryService) GetCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.db.WithContext(ctx).Preload("Department").Order("order_position ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// GetCategoriesWithProductCount retrieves categories with their available product counts
func (s *CategoryService) GetCategoriesWithProductCount(ctx context.Context) ([]CategoryWithProductCount, error) {
	categories, err := s.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	type countRow struct {
		CategoryID uint
		Total      int64
	}
	var rows []countRow
	err = s.db.WithContext(ctx).Model(&Product{}).
		Select("category_id, COUNT(*) AS total").
		Where("category_id IS NOT NULL AND is_available = ?", true).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Total
	}

	result := make([]CategoryWithProductCount, 0, len(categories))
	for _, cat := range categories {
		result = append(result, CategoryWithProductCount{Category: cat, ProductCount: counts[cat.ID]})
	}
	return result, nil
}

// GetCategory retrieves a single category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := s.db.WithContext(ctx).Preload("Department").Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("category")
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", err)
	}
	return &category, nil
}

// GetCategoriesByDepartmentName lists the categories of a department
func (s *CategoryService) GetCategoriesByDepartmentName(ctx context.Context, department string) ([]Category, error) {
	var categories []Category
	err := s.db.WithContext(ctx).
		Joins("JOIN departments ON departments.id = categories.department_id").
		Where("LOWER(departments.name) = LOWER(?)", department).
		Order("categories.order_position ASC, categories.name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a category with a case-insensitively unique name
func (s *CategoryService) CreateCategory(ctx context.Context, req *CategoryRequest) (*Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	category := Category{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Image:         req.Image,
		DepartmentID:  req.DepartmentID,
		OrderPosition: req.OrderPosition,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, &Category{}, category.Name, 0); err != nil {
			return err
		}
		if err := ensureDepartment(tx, req.DepartmentID); err != nil {
			return err
		}
		return createUnique(tx, &category, "category")
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory updates a category
func (s *CategoryService) UpdateCategory(ctx context.Context, id uint, req *CategoryRequest) (*Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var category Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("category")
			}
			return fmt.Errorf("failed to find category: %w", err)
		}
		name := strings.TrimSpace(req.Name)
		if err := ensureUniqueName(tx, &Category{}, name, id); err != nil {
			return err
		}
		if err := ensureDepartment(tx, req.DepartmentID); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":           name,
			"description":    req.Description,
			"image":          req.Image,
			"department_id":  req.DepartmentID,
			"order_position": req.OrderPosition,
		}
		return updateUnique(tx, &category, updates, "category")
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory deletes a category without products or treatments
func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productCount int64
		if err := tx.Model(&Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if productCount > 0 {
			return fmt.Errorf("category has %d products: %w", productCount, apperror.ErrInUse)
		}

		var treatmentCount int64
		if err := tx.Table("treatments").Where("category_id = ?", id).Count(&treatmentCount).Error; err != nil {
			return fmt.Errorf("failed to count treatments: %w", err)
		}
		if treatmentCount > 0 {
			return fmt.Errorf("category has %d treatments: %w", treatmentCount, apperror.ErrInUse)
		}

		result := tx.Where("id = ?", id).Delete(&Category{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete category: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("category")
		}
		return nil
	})
}

// BRANDS

// GetBrands retrieves all brands ordered by name
func (s *CategoryService) GetBrands(ctx context.Context) ([]Brand, error) {
	var brands []Brand
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve brands: %w", err)
	}
	return brands, nil
}

// GetBrand retrieves a single brand by ID
func (s *CategoryService) GetBrand(ctx context.Context, id uint) (*Brand, error) {
	var brand Brand
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("brand")
		}
		return nil, fmt.Errorf("failed to retrieve brand: %w", err)
	}
	return &brand, nil
}

// CreateBrand creates a brand with a case-insensitively unique name
func (s *CategoryService) CreateBrand(ctx context.Context, req *BrandRequest) (*Brand, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	brand := Brand{
		Name:        strings.TrimSpace(req.Name),
		Image:       req.Image,
		Description: req.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, &Brand{}, brand.Name, 0); err != nil {
			return err
		}
		return createUnique(tx, &brand, "brand")
	})
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// UpdateBrand updates a brand
func (s *CategoryService) UpdateBrand(ctx context.Context, id uint, req *BrandRequest) (*Brand, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var brand Brand
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&brand).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("brand")
			}
			return fmt.Errorf("failed to find brand: %w", err)
		}
		name := strings.TrimSpace(req.Name)
		if err := ensureUniqueName(tx, &Brand{}, name, id); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"name":        name,
			"image":       req.Image,
			"description": req.Description,
		}
		return updateUnique(tx, &brand, updates, "brand")
	})
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// DeleteBrand deletes a brand without products
func (s *CategoryService) DeleteBrand(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productCount int64
		if err := tx.Model(&Product{}).Where("brand_id = ?", id).Count(&productCount).Error; err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if productCount > 0 {
			return fmt.Errorf("brand has %d products: %w", productCount, apperror.ErrInUse)
		}

		result := tx.Where("id = ?", id).Delete(&Brand{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete brand: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("brand")
		}
		return nil
	})
}

// DEPARTMENTS

// GetDepartments retrieves departments with their categories
func (s *CategoryService) GetDepartments(ctx context.Context) ([]Department, error) {
	var departments []Department
	err := s.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_position ASC, name ASC")
		}).
		Order("order_position ASC, name ASC").
		Find(&departments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve departments: %w", err)
	}
	return departments, nil
}

// CreateDepartment creates a department with a case-insensitively unique name
func (s *CategoryService) CreateDepartment(ctx context.Context, req *DepartmentRequest) (*Department, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	department := Department{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Image:         req.Image,
		OrderPosition: req.OrderPosition,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, &Department{}, department.Name, 0); err != nil {
			return err
		}
		return createUnique(tx, &department, "department")
	})
	if err != nil {
		return nil, err
	}
	return &department, nil
}

// UpdateDepartment updates a department
func (s *CategoryService) UpdateDepartment(ctx context.Context, id uint, req *DepartmentRequest) (*Department, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var department Department
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&department).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("department")
			}
			return fmt.Errorf("failed to find department: %w", err)
		}
		name := strings.TrimSpace(req.Name)
		if err := ensureUniqueName(tx, &Department{}, name, id); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"name":           name,
			"description":    req.Description,
			"image":          req.Image,
			"order_position": req.OrderPosition,
		}
		return updateUnique(tx, &department, updates, "department")
	})
	if err != nil {
		return nil, err
	}
	return &department, nil
}

// DeleteDepartment deletes a department without categories
func (s *CategoryService) DeleteDepartment(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var categoryCount int64
		if err := tx.Model(&Category{}).Where("department_id = ?", id).Count(&categoryCount).Error; err != nil {
			return fmt.Errorf("failed to count categories: %w", err)
		}
		if categoryCount > 0 {
			return fmt.Errorf("department has %d categories: %w", categoryCount, apperror.ErrInUse)
		}

		result := tx.Where("id = ?", id).Delete(&Department{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete department: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("department")
		}
		return nil
	})
}

// ensureUniqueName rejects a name another row already uses, ignoring case
func ensureUniqueName(tx *gorm.DB, model interface{}, name string, excludeID uint) error {
	query := tx.Model(model).Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name))
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check name: %w", err)
	}
	if count > 0 {
		return apperror.Invalid("name", "already exists")
	}
	return nil
}

func ensureDepartment(tx *gorm.DB, departmentID *uint) error {
	if departmentID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&Department{}).Where("id = ?", *departmentID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check department: %w", err)
	}
	if count == 0 {
		return apperror.Invalid("department_id", "does not exist")
	}
	return nil
}

// createUnique inserts a row, reporting a lost uniqueness race as a field error
func createUnique(tx *gorm.DB, value interface{}, resource string) error {
	if err := tx.Create(value).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Invalid("name", "already exists")
		}
		return fmt.Errorf("failed to create %s: %w", resource, err)
	}
	return nil
}

func updateUnique(tx *gorm.DB, model interface{}, updates map[string]interface{}, resource string) error {
	if err := tx.Model(model).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Invalid("name", "already exists")
		}
		return fmt.Errorf("failed to update %s: %w", resource, err)
	}
	return nil
}
