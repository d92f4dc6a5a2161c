// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/charmaway/storefront/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents catalog query parameters
type ProductListRequest struct {
	Page         int      `form:"page"`
	PerPage      int      `form:"per_page"`
	CategoryID   uint     `form:"category"`
	DepartmentID uint     `form:"department"`
	BrandIDs     []uint   `form:"brand"`
	Query        string   `form:"q"`
	PriceRange   string   `form:"price_range"`
	MinPrice     int64    `form:"min_price"`
	MaxPrice     int64    `form:"max_price"`
	Availability []string `form:"availability"`
	Genders      []string `form:"gender"`
	Colors       []string `form:"color"`
	Sort         string   `form:"sort"`

	// Set by the caller, never bound from the query string
	OnlyAvailable bool `form:"-"`
}

// ProductResponse represents product list with pagination
type ProductResponse struct {
	Products   []Product             `json:"products"`
	Pagination pagination.Pagination `json:"pagination"`
}

// Facets lists the values a shopper can filter by
type Facets struct {
	Categories []Category `json:"categories"`
	Brands     []Brand    `json:"brands"`
	Colors     []string   `json:"colors"`
	Genders    []string   `json:"genders"`
}

// HomeSections holds the products shown on the landing page
type HomeSections struct {
	Featured   []Product  `json:"featured"`
	Offers     []Product  `json:"offers"`
	Newest     []Product  `json:"newest"`
	Categories []Category `json:"categories"`
}

// ListProducts retrieves products with filtering, sorting and pagination
func (s *Service) ListProducts(ctx context.Context, req *ProductListRequest) (*ProductResponse, error) {
	var products []Product
	var total int64

	page := pagination.Page(req.Page)
	perPage := pagination.StorefrontPerPage(req.PerPage)

	query := s.db.WithContext(ctx).Model(&Product{}).
		Joins("LEFT JOIN brands ON brands.id = products.brand_id").
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
	query = applyProductFilters(query, req)

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	err := query.
		Select("products.*").
		Preload("Brand").
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_main DESC, order_position ASC, id ASC")
		}).
		Order(productOrderClause(req.Sort)).
		Offset(pagination.Offset(page, perPage)).
		Limit(perPage).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ProductResponse{
		Products:   products,
		Pagination: pagination.New(page, perPage, total),
	}, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	result := s.db.WithContext(ctx).
		Preload("Brand").
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_position ASC, id ASC")
		}).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB {
			return db.Order("size ASC")
		}).
		Where("id = ?", id).
		First(&product)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}

	return &product, nil
}

// Facets returns the filter values available in the catalog
func (s *Service) Facets(ctx context.Context) (*Facets, error) {
	db := s.db.WithContext(ctx)
	facets := &Facets{}

	if err := db.Order("name ASC").Find(&facets.Categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if err := db.Order("name ASC").Find(&facets.Brands).Error; err != nil {
		return nil, fmt.Errorf("failed to load brands: %w", err)
	}
	if err := db.Model(&Product{}).Where("color <> ''").Distinct().Order("color").Pluck("color", &facets.Colors).Error; err != nil {
		return nil, fmt.Errorf("failed to load colors: %w", err)
	}
	if err := db.Model(&Product{}).Where("gender <> ''").Distinct().Order("gender").Pluck("gender", &facets.Genders).Error; err != nil {
		return nil, fmt.Errorf("failed to load genders: %w", err)
	}

	return facets, nil
}

// Home returns the landing page sections
func (s *Service) Home(ctx context.Context) (*HomeSections, error) {
	db := s.db.WithContext(ctx)
	home := &HomeSections{}

	withImages := func(q *gorm.DB) *gorm.DB {
		return q.Preload("Brand").Preload("Category").Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_main DESC, order_position ASC")
		})
	}

	if err := withImages(db.Where("is_available = ? AND is_featured = ?", true, true)).
		Order("created_at DESC").Limit(8).Find(&home.Featured).Error; err != nil {
		return nil, fmt.Errorf("failed to load featured products: %w", err)
	}
	if err := withImages(db.Where("is_available = ? AND offer_price IS NOT NULL AND offer_price < price", true)).
		Order("created_at DESC").Limit(4).Find(&home.Offers).Error; err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}
	if err := withImages(db.Where("is_available = ?", true)).
		Order("created_at DESC").Limit(4).Find(&home.Newest).Error; err != nil {
		return nil, fmt.Errorf("failed to load newest products: %w", err)
	}
	if err := db.Order("order_position ASC, name ASC").Find(&home.Categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return home, nil
}

// CreateProduct creates a new product with its images and sizes
func (s *Service) CreateProduct(ctx context.Context, req *ProductCreateRequest) (*Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	product := Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		OfferPrice:  req.OfferPrice,
		Gender:      req.Gender,
		Color:       req.Color,
		Material:    req.Material,
		Stock:       req.Stock,
		IsAvailable: isAvailable,
		IsFeatured:  req.IsFeatured,
		BrandID:     req.BrandID,
		CategoryID:  req.CategoryID,
		Images:      buildImages(req.Images),
		Sizes:       buildSizes(req.Sizes),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkReferences(tx, req.BrandID, req.CategoryID); err != nil {
			return err
		}
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct updates an existing product
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *ProductUpdateRequest) (*Product, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product Product
		if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product")
			}
			return fmt.Errorf("failed to find product: %w", err)
		}

		if err := req.Validate(&product); err != nil {
			return err
		}
		if err := s.checkReferences(tx, req.BrandID, req.CategoryID); err != nil {
			return err
		}

		// Update fields
		updates := make(map[string]interface{})

		if req.Name != nil {
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Price != nil {
			updates["price"] = *req.Price
		}
		if req.ClearOffer {
			updates["offer_price"] = nil
		} else if req.OfferPrice != nil {
			updates["offer_price"] = *req.OfferPrice
		}
		if req.Gender != nil {
			updates["gender"] = *req.Gender
		}
		if req.Color != nil {
			updates["color"] = *req.Color
		}
		if req.Material != nil {
			updates["material"] = *req.Material
		}
		if req.Stock != nil {
			updates["stock"] = *req.Stock
		}
		if req.IsAvailable != nil {
			updates["is_available"] = *req.IsAvailable
		}
		if req.IsFeatured != nil {
			updates["is_featured"] = *req.IsFeatured
		}
		if req.BrandID != nil {
			updates["brand_id"] = *req.BrandID
		}
		if req.CategoryID != nil {
			updates["category_id"] = *req.CategoryID
		}

		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update product: %w", err)
			}
		}

		if req.Images != nil {
			if err := tx.Where("product_id = ?", id).Delete(&ProductImage{}).Error; err != nil {
				return fmt.Errorf("failed to replace images: %w", err)
			}
			if images := buildImages(*req.Images); len(images) > 0 {
				for i := range images {
					images[i].ProductID = id
				}
				if err := tx.Create(&images).Error; err != nil {
					return fmt.Errorf("failed to replace images: %w", err)
				}
			}
		}

		if req.Sizes != nil {
			if err := tx.Where("product_id = ?", id).Delete(&ProductSize{}).Error; err != nil {
				return fmt.Errorf("failed to replace sizes: %w", err)
			}
			if sizes := buildSizes(*req.Sizes); len(sizes) > 0 {
				for i := range sizes {
					sizes[i].ProductID = id
				}
				if err := tx.Create(&sizes).Error; err != nil {
					return fmt.Errorf("failed to replace sizes: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, id)
}

// UpdateStock sets the absolute stock of a product
func (s *Service) UpdateStock(ctx context.Context, productID uint, stock int) error {
	if stock < 0 {
		return apperror.Invalid("stock", "must not be negative")
	}

	result := s.db.WithContext(ctx).Model(&Product{}).
		Where("id = ?", productID).
		Update("stock", stock)

	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product")
	}
	return nil
}

// BlockingOrders returns the ids of orders that reference the product
func (s *Service) BlockingOrders(ctx context.Context, productID uint) ([]uint, error) {
	return blockingOrders(s.db.WithContext(ctx), "product_id", productID)
}

// DeleteProduct removes a product that no order references.
// When order lines point at the product nothing is deleted and the
// blocking order ids are returned in an *apperror.InUseError.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to find product: %w", err)
		}
		if count == 0 {
			return apperror.NotFound("product")
		}

		orderIDs, err := blockingOrders(tx, "product_id", id)
		if err != nil {
			return err
		}
		if len(orderIDs) > 0 {
			return &apperror.InUseError{Resource: "product", OrderIDs: orderIDs}
		}

		if err := tx.Delete(&Product{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

// AddImage appends an image to a product, main when it is the first one
func (s *Service) AddImage(ctx context.Context, productID uint, url string) (*ProductImage, error) {
	var image ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to find product: %w", err)
		}
		if count == 0 {
			return apperror.NotFound("product")
		}

		var existing int64
		if err := tx.Model(&ProductImage{}).Where("product_id = ?", productID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to count images: %w", err)
		}

		image = ProductImage{
			ProductID:     productID,
			URL:           url,
			IsMain:        existing == 0,
			OrderPosition: int(existing),
		}
		if err := tx.Create(&image).Error; err != nil {
			return fmt.Errorf("failed to add image: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// blockingOrders collects distinct order ids whose lines reference the given column value
func blockingOrders(db *gorm.DB, column string, id uint) ([]uint, error) {
	var orderIDs []uint
	err := db.Table("order_items").
		Distinct("order_id").
		Where(column+" = ?", id).
		Order("order_id").
		Pluck("order_id", &orderIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check order references: %w", err)
	}
	return orderIDs, nil
}

// BlockingOrdersFor is blockingOrders for other catalog packages (treatments)
func BlockingOrdersFor(db *gorm.DB, column string, id uint) ([]uint, error) {
	return blockingOrders(db, column, id)
}

func (s *Service) checkReferences(tx *gorm.DB, brandID, categoryID *uint) error {
	v := &apperror.ValidationError{}
	if brandID != nil {
		var n int64
		if err := tx.Model(&Brand{}).Where("id = ?", *brandID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check brand: %w", err)
		}
		if n == 0 {
			v.Add("brand_id", "does not exist")
		}
	}
	if categoryID != nil {
		var n int64
		if err := tx.Model(&Category{}).Where("id = ?", *categoryID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check category: %w", err)
		}
		if n == 0 {
			v.Add("category_id", "does not exist")
		}
	}
	return v.OrNil()
}

func buildImages(in []ImageInput) []ProductImage {
	images := make([]ProductImage, 0, len(in))
	hasMain := false
	for i, img := range in {
		images = append(images, ProductImage{
			URL:           strings.TrimSpace(img.URL),
			IsMain:        img.IsMain,
			OrderPosition: img.OrderPosition,
		})
		if img.IsMain {
			hasMain = true
		}
		if img.OrderPosition == 0 {
			images[i].OrderPosition = i
		}
	}
	if !hasMain && len(images) > 0 {
		images[0].IsMain = true
	}
	return images
}

func buildSizes(in []SizeInput) []ProductSize {
	sizes := make([]ProductSize, 0, len(in))
	for _, sz := range in {
		name := strings.TrimSpace(sz.Size)
		if name == "" {
			name = "Standard"
		}
		sizes = append(sizes, ProductSize{Size: name, Stock: sz.Stock})
	}
	return sizes
}
