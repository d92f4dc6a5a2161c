// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/analytics"
	"github.com/charmaway/storefront/internal/domain/cart"
	"github.com/charmaway/storefront/internal/domain/checkout"
	"github.com/charmaway/storefront/internal/domain/customer"
	"github.com/charmaway/storefront/internal/domain/order"
	"github.com/charmaway/storefront/internal/domain/payment"
	"github.com/charmaway/storefront/internal/domain/product"
	"github.com/charmaway/storefront/internal/domain/treatment"
	"github.com/charmaway/storefront/internal/domain/upload"
	"github.com/charmaway/storefront/internal/infrastructure/database/postgres"
	"github.com/charmaway/storefront/internal/infrastructure/database/redis"
	"github.com/charmaway/storefront/internal/interfaces/http/handlers"
	"github.com/charmaway/storefront/internal/interfaces/http/middleware"
	"github.com/charmaway/storefront/internal/interfaces/http/routes"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/charmaway/storefront/internal/pkg/email"
	"github.com/charmaway/storefront/internal/pkg/pdf"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const healthTimeout = 3 * time.Second

// HealthChecker is a dependency reported by /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	log        *logrus.Logger
	gin        *gin.Engine
	httpServer *http.Server
	cache      *redis.Client
	handlers   *routes.Handlers
	checks     map[string]HealthChecker
}

// NewServer wires the domain services and handlers on top of the shared connections
func NewServer(cfg *config.Config, db *postgres.DB, cache *redis.Client, log *logrus.Logger) (*Server, error) {
	storage, err := upload.NewStorage(context.Background(), cfg.External.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	mailer, err := email.NewService(cfg, nil, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email: %w", err)
	}

	gormDB := db.GetDB()

	productService := product.NewService(gormDB, cfg)
	categoryService := product.NewCategoryService(gormDB, cfg)
	treatmentService := treatment.NewService(gormDB, cfg)
	cartService := cart.NewService(gormDB, cfg)
	checkoutService := checkout.NewService(cartService, cache, cfg)
	orderService := order.NewService(gormDB, cfg, mailer, log)
	paymentService := payment.NewService(gormDB, cfg, nil, log)
	customerService := customer.NewService(gormDB, cfg)
	uploadService := upload.NewService(gormDB, cfg, storage, log)

	h := &routes.Handlers{
		Product:       handlers.NewProductHandler(productService, categoryService, uploadService, cfg),
		Category:      handlers.NewCategoryHandler(categoryService),
		Treatment:     handlers.NewTreatmentHandler(treatmentService),
		Cart:          handlers.NewCartHandler(cartService),
		Checkout:      handlers.NewCheckoutHandler(checkoutService, orderService, paymentService, log),
		Order:         handlers.NewOrderHandler(orderService),
		Invoice:       handlers.NewInvoiceHandler(orderService, pdf.NewService(cfg)),
		Payment:       handlers.NewPaymentHandler(paymentService),
		Auth:          handlers.NewAuthHandler(customerService, cartService, log),
		Account:       handlers.NewAccountHandler(customerService),
		CustomerAdmin: handlers.NewCustomerAdminHandler(customer.NewAdminService(gormDB, cfg)),
		Analytics:     handlers.NewAnalyticsHandler(analytics.NewService(gormDB, cfg)),
	}

	return &Server{
		config:   cfg,
		log:      log,
		cache:    cache,
		handlers: h,
		checks: map[string]HealthChecker{
			"database": db,
			"redis":    cache,
		},
	}, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s.gin = gin.New()
	if err := s.gin.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}
	registerValidator()

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.log.WithFields(logrus.Fields{
		"port":        s.config.Server.Port,
		"environment": s.config.App.Environment,
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// registerValidator makes binding errors name fields by their json tag
func registerValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(apperror.JSONTagName)
	}
}

// setupMiddleware configures the global middleware chain
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RateLimit(s.config, s.cache, s.log))
	s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
	s.gin.Use(middleware.GuestSession(s.config))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)

	storage := s.config.External.Storage
	if storage.Provider == "" || storage.Provider == "local" {
		s.gin.Static("/uploads", storage.LocalPath)
	}

	lookups := middleware.NewBurstLimiter(s.config.Security.LookupBurst, s.config.Security.LookupBurst)

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, s.handlers, s.config, lookups)
}

// healthCheck reports the database and redis state
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	for name, check := range s.checks {
		if err := check.Health(ctx); err != nil {
			s.log.WithError(err).WithField("dependency", name).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  name + " unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}
