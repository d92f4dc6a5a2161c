// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/customer"
	"github.com/charmaway/storefront/internal/domain/order"
	"github.com/charmaway/storefront/internal/domain/product"
	"gorm.io/gorm"
)

const (
	recentOrdersLimit = 5
	lowStockLimit     = 50
	revenueDays       = 30
)

// Service handles analytics business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Dashboard represents the admin dashboard figures
type Dashboard struct {
	// Catalog
	TotalProducts      int64             `json:"total_products"`
	OutOfStockProducts int64             `json:"out_of_stock_products"`
	LowStockProducts   []LowStockProduct `json:"low_stock_products"`

	// Orders
	TotalOrders    int64                  `json:"total_orders"`
	OrdersByStatus map[order.Status]int64 `json:"orders_by_status"`
	Revenue        int64                  `json:"revenue"` // In cents, cancelled orders excluded
	AvgOrderValue  int64                  `json:"avg_order_value"`
	RevenueByDay   []TimeSeriesData       `json:"revenue_by_day"`
	RecentOrders   []order.Order          `json:"recent_orders"`

	TotalCustomers int64 `json:"total_customers"`
}

type LowStockProduct struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type TimeSeriesData struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
	Count int64  `json:"count"`
}

type statusCount struct {
	Status order.Status
	Count  int64
}

// Dashboard collects the admin dashboard figures
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	stats := &Dashboard{OrdersByStatus: make(map[order.Status]int64, len(order.Statuses))}

	if err := db.Model(&product.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	if err := db.Model(&product.Product{}).Where("stock = 0").Count(&stats.OutOfStockProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count out of stock products: %w", err)
	}

	stats.LowStockProducts = []LowStockProduct{}
	if err := db.Model(&product.Product{}).
		Select("id, name, stock").
		Where("stock <= ?", s.config.Shop.LowStockThreshold).
		Order("stock ASC, name ASC").
		Limit(lowStockLimit).
		Scan(&stats.LowStockProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}

	var counts []statusCount
	if err := db.Model(&order.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, status := range order.Statuses {
		stats.OrdersByStatus[status] = 0
	}
	for _, c := range counts {
		stats.OrdersByStatus[c.Status] = c.Count
		stats.TotalOrders += c.Count
	}

	if err := db.Model(&order.Order{}).
		Select("COALESCE(SUM(final_price), 0)").
		Where("status <> ?", order.StatusCancelled).
		Scan(&stats.Revenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if billable := stats.TotalOrders - stats.OrdersByStatus[order.StatusCancelled]; billable > 0 {
		stats.AvgOrderValue = stats.Revenue / billable
	}

	series, err := s.revenueByDay(db, revenueDays)
	if err != nil {
		return nil, err
	}
	stats.RevenueByDay = series

	if err := db.Order("created_at DESC, id DESC").
		Limit(recentOrdersLimit).
		Find(&stats.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent orders: %w", err)
	}

	if err := db.Model(&customer.Customer{}).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	return stats, nil
}

func (s *Service) revenueByDay(db *gorm.DB, days int) ([]TimeSeriesData, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	since := today.AddDate(0, 0, -(days - 1))

	series := []TimeSeriesData{}
	err := db.Raw(`
		SELECT
			TO_CHAR(created_at, 'YYYY-MM-DD') AS date,
			COALESCE(SUM(final_price), 0) AS value,
			COUNT(*) AS count
		FROM orders
		WHERE created_at >= ? AND status <> ?
		GROUP BY 1
		ORDER BY 1
	`, since, order.StatusCancelled).Scan(&series).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily revenue: %w", err)
	}
	return series, nil
}
