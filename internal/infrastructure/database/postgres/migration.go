// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"strings"

	"github.com/charmaway/storefront/internal/domain/cart"
	"github.com/charmaway/storefront/internal/domain/customer"
	"github.com/charmaway/storefront/internal/domain/order"
	"github.com/charmaway/storefront/internal/domain/payment"
	"github.com/charmaway/storefront/internal/domain/product"
	"github.com/charmaway/storefront/internal/domain/treatment"
	"github.com/charmaway/storefront/internal/domain/upload"
	"github.com/charmaway/storefront/internal/pkg/auth"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Development credentials created by SeedInitialData
const (
	DevAdminEmail    = "admin@charmaway.es"
	DevAdminPassword = "Admin1234!"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log *logrus.Logger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		// Catalog
		&product.Department{},
		&product.Category{},
		&product.Brand{},
		&product.Product{},
		&product.ProductImage{},
		&product.ProductSize{},
		&treatment.Treatment{},

		// Accounts and carts
		&customer.Customer{},
		&cart.CartItem{},

		// Orders
		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
		&payment.Payment{},

		// Uploads
		&upload.ProductAsset{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

// Indexes returns the statements gorm tags cannot express: expression and partial indexes
func Indexes() []string {
	return []string{
		// Case-insensitive uniqueness
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_departments_name_lower ON departments(LOWER(name))",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_lower ON categories(LOWER(name))",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_brands_name_lower ON brands(LOWER(name))",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_email_lower ON customers(LOWER(email))",

		// One cart line per owner and item
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items(user_id, product_id) WHERE user_id IS NOT NULL AND product_id IS NOT NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_user_treatment ON cart_items(user_id, treatment_id) WHERE user_id IS NOT NULL AND treatment_id IS NOT NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_session_product ON cart_items(session_key, product_id) WHERE session_key IS NOT NULL AND product_id IS NOT NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_session_treatment ON cart_items(session_key, treatment_id) WHERE session_key IS NOT NULL AND treatment_id IS NOT NULL",

		// Listing and admin filters
		"CREATE INDEX IF NOT EXISTS idx_products_available_featured ON products(is_available, is_featured)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_treatments_available ON treatments(is_available, is_featured)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_email_lower ON orders(LOWER(email))",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id)",
	}
}

// CreateIndexes creates the additional indexes. Uniqueness indexes are required, so any failure is returned.
func (m *Migration) CreateIndexes() error {
	m.log.Info("Creating additional database indexes")

	for _, indexSQL := range Indexes() {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	m.log.WithField("count", len(Indexes())).Info("Database indexes ready")
	return nil
}

// SeedInitialData inserts development data. Existing rows are left untouched.
func (m *Migration) SeedInitialData(treatmentsDepartment string) error {
	m.log.Info("Seeding initial data")

	return m.db.Transaction(func(tx *gorm.DB) error {
		departments, err := seedDepartments(tx, treatmentsDepartment)
		if err != nil {
			return fmt.Errorf("failed to seed departments: %w", err)
		}

		categories, err := seedCategories(tx, departments, treatmentsDepartment)
		if err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}

		brands, err := seedBrands(tx)
		if err != nil {
			return fmt.Errorf("failed to seed brands: %w", err)
		}

		if err := seedProducts(tx, categories, brands); err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}

		if err := seedTreatments(tx, categories); err != nil {
			return fmt.Errorf("failed to seed treatments: %w", err)
		}

		if err := seedAdmin(tx); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}

		m.log.Info("Initial data seeded")
		return nil
	})
}

func seedDepartments(tx *gorm.DB, treatmentsDepartment string) (map[string]uint, error) {
	rows := []product.Department{
		{Name: "Maquillaje", Description: "Productos de maquillaje para ojos, labios y rostro", OrderPosition: 1},
		{Name: "Cuidado Facial", Description: "Productos para el cuidado y tratamiento facial", OrderPosition: 2},
		{Name: "Fragancias", Description: "Perfumes y fragancias para hombre y mujer", OrderPosition: 3},
		{Name: treatmentsDepartment, Description: "Tratamientos en nuestro centro", OrderPosition: 9},
	}

	ids := make(map[string]uint, len(rows))
	for i := range rows {
		row := rows[i]
		if err := tx.Where("LOWER(name) = ?", strings.ToLower(row.Name)).FirstOrCreate(&row).Error; err != nil {
			return nil, err
		}
		ids[row.Name] = row.ID
	}
	return ids, nil
}

func seedCategories(tx *gorm.DB, departments map[string]uint, treatmentsDepartment string) (map[string]uint, error) {
	type seed struct {
		name       string
		department string
		position   int
	}
	seeds := []seed{
		{"Labiales", "Maquillaje", 1},
		{"Bases y correctores", "Maquillaje", 2},
		{"Serums", "Cuidado Facial", 1},
		{"Hidratantes faciales", "Cuidado Facial", 2},
		{"Perfumes", "Fragancias", 1},
		{"Manicura", treatmentsDepartment, 1},
		{"Tratamientos faciales", treatmentsDepartment, 2},
	}

	ids := make(map[string]uint, len(seeds))
	for _, s := range seeds {
		deptID := departments[s.department]
		row := product.Category{Name: s.name, DepartmentID: &deptID, OrderPosition: s.position}
		if err := tx.Where("LOWER(name) = ?", strings.ToLower(s.name)).FirstOrCreate(&row).Error; err != nil {
			return nil, err
		}
		ids[s.name] = row.ID
	}
	return ids, nil
}

func seedBrands(tx *gorm.DB) (map[string]uint, error) {
	names := []string{"Maybelline", "The Ordinary", "CeraVe", "Lancôme"}

	ids := make(map[string]uint, len(names))
	for _, name := range names {
		row := product.Brand{Name: name, Description: "Productos de " + name}
		if err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).FirstOrCreate(&row).Error; err != nil {
			return nil, err
		}
		ids[name] = row.ID
	}
	return ids, nil
}

func seedProducts(tx *gorm.DB, categories, brands map[string]uint) error {
	type seed struct {
		name     string
		category string
		brand    string
		price    int64
		offer    int64
		stock    int
		featured bool
	}
	seeds := []seed{
		{"Labial Superstay Matte Ink", "Labiales", "Maybelline", 1295, 999, 40, true},
		{"Base Fit Me Mate", "Bases y correctores", "Maybelline", 1150, 0, 25, false},
		{"Niacinamide 10% + Zinc 1%", "Serums", "The Ordinary", 790, 0, 60, true},
		{"Crema Hidratante Facial", "Hidratantes faciales", "CeraVe", 1495, 1290, 3, false},
		{"La Vie Est Belle 50ml", "Perfumes", "Lancôme", 8900, 0, 0, true},
	}

	for _, s := range seeds {
		var count int64
		if err := tx.Model(&product.Product{}).Where("name = ?", s.name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		categoryID, brandID := categories[s.category], brands[s.brand]
		row := product.Product{
			Name:        s.name,
			Description: s.name + " de " + s.brand,
			Price:       s.price,
			Stock:       s.stock,
			IsAvailable: true,
			IsFeatured:  s.featured,
			CategoryID:  &categoryID,
			BrandID:     &brandID,
			Sizes:       []product.ProductSize{{Size: "Standard", Stock: s.stock}},
		}
		if s.offer > 0 {
			offer := s.offer
			row.OfferPrice = &offer
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedTreatments(tx *gorm.DB, categories map[string]uint) error {
	type seed struct {
		name     string
		category string
		price    int64
		duration string
	}
	seeds := []seed{
		{"Manicura semipermanente", "Manicura", 2500, "45 minutos"},
		{"Limpieza facial profunda", "Tratamientos faciales", 4500, "60 minutos"},
	}

	for _, s := range seeds {
		var count int64
		if err := tx.Model(&treatment.Treatment{}).Where("name = ?", s.name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		categoryID := categories[s.category]
		row := treatment.Treatment{
			Name:        s.name,
			CategoryID:  &categoryID,
			Price:       s.price,
			Duration:    s.duration,
			IsAvailable: true,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&customer.Customer{}).Where("LOWER(email) = ?", DevAdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(DevAdminPassword, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := customer.Customer{
		Email:    DevAdminEmail,
		Password: hash,
		Name:     "Admin",
		IsActive: true,
		IsAdmin:  true,
	}
	return tx.Create(&admin).Error
}

// DropAllTables drops every table in reverse dependency order. Development only.
func (m *Migration) DropAllTables() error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", models[i], err)
		}
	}
	m.log.Warn("All tables dropped")
	return nil
}
