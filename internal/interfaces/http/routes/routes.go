// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/interfaces/http/handlers"
	"github.com/charmaway/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups every handler mounted under /api/v1
type Handlers struct {
	Product       *handlers.ProductHandler
	Category      *handlers.CategoryHandler
	Treatment     *handlers.TreatmentHandler
	Cart          *handlers.CartHandler
	Checkout      *handlers.CheckoutHandler
	Order         *handlers.OrderHandler
	Invoice       *handlers.InvoiceHandler
	Payment       *handlers.PaymentHandler
	Auth          *handlers.AuthHandler
	Account       *handlers.AccountHandler
	CustomerAdmin *handlers.CustomerAdminHandler
	Analytics     *handlers.AnalyticsHandler
}

// SetupRoutes mounts all API routes. lookups guards login and guest order lookup.
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config, lookups *middleware.BurstLimiter) {
	SetupCatalogRoutes(rg, h)
	SetupCartRoutes(rg, h, cfg)
	SetupCheckoutRoutes(rg, h, cfg)
	SetupOrderRoutes(rg, h, lookups)
	SetupPaymentRoutes(rg, h)
	SetupAuthRoutes(rg, h, lookups)
	SetupAccountRoutes(rg, h, cfg)
	SetupAdminRoutes(rg, h, cfg)
}

// SetupCatalogRoutes sets up the public catalog
func SetupCatalogRoutes(rg *gin.RouterGroup, h *Handlers) {
	catalog := rg.Group("/catalog")
	{
		catalog.GET("/home", h.Product.Home)
		catalog.GET("/facets", h.Product.GetFacets)

		catalog.GET("/products", h.Product.GetProducts)
		catalog.GET("/products/:id", h.Product.GetProduct)

		catalog.GET("/categories", h.Category.GetCategories)
		catalog.GET("/categories/:id/products", h.Product.GetCategoryProducts)

		catalog.GET("/brands", h.Category.GetBrands)
		catalog.GET("/brands/:id/products", h.Product.GetBrandProducts)

		catalog.GET("/departments", h.Category.GetDepartments)

		catalog.GET("/treatments", h.Treatment.GetTreatments)
		catalog.GET("/treatments/categories", h.Treatment.GetCategories)
		catalog.GET("/treatments/:id", h.Treatment.GetTreatment)
	}
}

// SetupCartRoutes sets up cart routes for guests and customers
func SetupCartRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", h.Cart.GetCart)
		cart.GET("/count", h.Cart.GetCount)
		cart.DELETE("", h.Cart.ClearCart)

		cart.POST("/products/:id", h.Cart.AddProduct)
		cart.POST("/products/:id/decrease", h.Cart.DecreaseProduct)
		cart.DELETE("/products/:id", h.Cart.RemoveProduct)

		cart.POST("/treatments/:id", h.Cart.AddTreatment)
		cart.POST("/treatments/:id/decrease", h.Cart.DecreaseTreatment)
		cart.DELETE("/treatments/:id", h.Cart.RemoveTreatment)

		cart.POST("/buy-now/products/:id", h.Cart.BuyNowProduct)
		cart.POST("/buy-now/treatments/:id", h.Cart.BuyNowTreatment)
	}
}

// SetupCheckoutRoutes sets up checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	checkout := rg.Group("/checkout")
	checkout.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		checkout.GET("", h.Checkout.GetSummary)
		checkout.POST("", h.Checkout.Submit)
		checkout.POST("/confirm", h.Checkout.Confirm)
		checkout.POST("/payment-intent", h.Checkout.PaymentIntent)
	}
}

// SetupOrderRoutes sets up public order tracking
func SetupOrderRoutes(rg *gin.RouterGroup, h *Handlers, lookups *middleware.BurstLimiter) {
	orders := rg.Group("/orders")
	{
		orders.POST("/lookup", middleware.BurstLimit(lookups), h.Order.Lookup)
		orders.GET("/:public_id", h.Order.GetOrder)
		orders.GET("/:public_id/invoice", h.Invoice.GenerateInvoice)
		orders.POST("/:public_id/payment-intent", middleware.BurstLimit(lookups), h.Checkout.RetryPaymentIntent)
	}
}

// SetupPaymentRoutes sets up payment provider callbacks
func SetupPaymentRoutes(rg *gin.RouterGroup, h *Handlers) {
	payments := rg.Group("/payments")
	{
		payments.POST("/webhook", h.Payment.Webhook)
	}
}

// SetupAuthRoutes sets up authentication routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *Handlers, lookups *middleware.BurstLimiter) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", middleware.BurstLimit(lookups), h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

// SetupAccountRoutes sets up the signed-in customer's routes
func SetupAccountRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	account := rg.Group("/account")
	account.Use(middleware.AuthMiddleware(cfg))
	{
		account.GET("/profile", h.Account.GetProfile)
		account.PUT("/profile", h.Account.UpdateProfile)
		account.PUT("/password", h.Account.ChangePassword)
		account.GET("/orders", h.Order.GetMyOrders)
	}
}

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", h.Analytics.GetDashboard)

		// Products
		admin.GET("/products", h.Product.AdminGetProducts)
		admin.GET("/products/:id", h.Product.AdminGetProduct)
		admin.POST("/products", h.Product.AdminCreateProduct)
		admin.PUT("/products/:id", h.Product.AdminUpdateProduct)
		admin.PATCH("/products/:id/stock", h.Product.AdminUpdateStock)
		admin.DELETE("/products/:id", h.Product.AdminDeleteProduct)
		admin.POST("/products/:id/images", h.Product.AdminUploadImage)
		admin.DELETE("/assets/:id", h.Product.AdminDeleteAsset)

		// Reference data
		admin.POST("/categories", h.Category.CreateCategory)
		admin.PUT("/categories/:id", h.Category.UpdateCategory)
		admin.DELETE("/categories/:id", h.Category.DeleteCategory)
		admin.POST("/brands", h.Category.CreateBrand)
		admin.PUT("/brands/:id", h.Category.UpdateBrand)
		admin.DELETE("/brands/:id", h.Category.DeleteBrand)
		admin.POST("/departments", h.Category.CreateDepartment)
		admin.PUT("/departments/:id", h.Category.UpdateDepartment)
		admin.DELETE("/departments/:id", h.Category.DeleteDepartment)

		// Treatments
		admin.POST("/treatments", h.Treatment.AdminCreate)
		admin.PUT("/treatments/:id", h.Treatment.AdminUpdate)
		admin.DELETE("/treatments/:id", h.Treatment.AdminDelete)

		// Customers
		admin.GET("/customers", h.CustomerAdmin.GetCustomers)
		admin.GET("/customers/export", h.CustomerAdmin.ExportCustomers)
		admin.GET("/customers/:id", h.CustomerAdmin.GetCustomer)
		admin.PUT("/customers/:id", h.CustomerAdmin.UpdateCustomer)
		admin.DELETE("/customers/:id", h.CustomerAdmin.DeleteCustomer)

		// Orders
		admin.GET("/orders", h.Order.AdminGetOrders)
		admin.GET("/orders/:id", h.Order.AdminGetOrder)
		admin.PATCH("/orders/:id/status", h.Order.AdminUpdateStatus)
		admin.PATCH("/orders/:id/notes", h.Order.AdminUpdateNotes)
	}
}
