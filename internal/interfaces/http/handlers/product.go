// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/product"
	"github.com/charmaway/storefront/internal/domain/upload"
	"github.com/charmaway/storefront/internal/interfaces/http/middleware"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles catalog and product admin endpoints
type ProductHandler struct {
	productService  *product.Service
	categoryService *product.CategoryService
	uploadService   *upload.Service
	config          *config.Config
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service, categories *product.CategoryService, uploads *upload.Service, cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		productService:  products,
		categoryService: categories,
		uploadService:   uploads,
		config:          cfg,
	}
}

// Home handles GET /catalog/home
func (h *ProductHandler) Home(c *gin.Context) {
	sections, err := h.productService.Home(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Home retrieved successfully",
		"data":    sections,
	})
}

// GetProducts handles GET /catalog/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBinding(c, err)
		return
	}

	// Public listing only shows available products
	req.OnlyAvailable = true
	h.listProducts(c, &req)
}

// GetProduct handles GET /catalog/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	p, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !p.IsAvailable {
		respondError(c, apperror.NotFound("product"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    p,
	})
}

// GetFacets handles GET /catalog/facets
func (h *ProductHandler) GetFacets(c *gin.Context) {
	facets, err := h.productService.Facets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Facets retrieved successfully",
		"data":    facets,
	})
}

// GetCategoryProducts handles GET /catalog/categories/:id/products
func (h *ProductHandler) GetCategoryProducts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBinding(c, err)
		return
	}

	if _, err := h.categoryService.GetCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	req.CategoryID = id
	req.OnlyAvailable = true
	h.listProducts(c, &req)
}

// GetBrandProducts handles GET /catalog/brands/:id/products
func (h *ProductHandler) GetBrandProducts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBinding(c, err)
		return
	}

	if _, err := h.categoryService.GetBrand(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	req.BrandIDs = []uint{id}
	req.OnlyAvailable = true
	h.listProducts(c, &req)
}

// AdminGetProducts handles GET /admin/products
func (h *ProductHandler) AdminGetProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBinding(c, err)
		return
	}
	h.listProducts(c, &req)
}

// AdminGetProduct handles GET /admin/products/:id
func (h *ProductHandler) AdminGetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	p, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    p,
	})
}

// AdminCreateProduct handles POST /admin/products
func (h *ProductHandler) AdminCreateProduct(c *gin.Context) {
	var req product.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBinding(c, err)
		return
	}

	p, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    p,
	})
}

// AdminUpdateProduct handles PUT /admin/products/:id
func (h *ProductHandler) AdminUpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req product.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBinding(c, err)
		return
	}

	p, err := h.productService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"data":    p,
	})
}

// StockRequest sets the absolute stock of a product
type StockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

// AdminUpdateStock handles PATCH /admin/products/:id/stock
func (h *ProductHandler) AdminUpdateStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBinding(c, err)
		return
	}

	if err := h.productService.UpdateStock(c.Request.Context(), id, *req.Stock); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock updated successfully",
		"data":    gin.H{"id": id, "stock": *req.Stock},
	})
}

// AdminDeleteProduct handles DELETE /admin/products/:id
func (h *ProductHandler) AdminDeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// AdminUploadImage handles POST /admin/products/:id/images
func (h *ProductHandler) AdminUploadImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	adminID, _ := middleware.GetCustomerIDFromContext(c)

	header, err := c.FormFile("image")
	if err != nil {
		respondError(c, apperror.Invalid("image", "is required"))
		return
	}

	result, err := h.uploadService.UploadProductImage(c.Request.Context(), id, header, adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Image uploaded successfully",
		"data":    result,
	})
}

// AdminDeleteAsset handles DELETE /admin/assets/:id
func (h *ProductHandler) AdminDeleteAsset(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.uploadService.DeleteAsset(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Asset deleted successfully",
	})
}

func (h *ProductHandler) listProducts(c *gin.Context, req *product.ProductListRequest) {
	response, err := h.productService.ListProducts(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    response,
	})
}
