// internal/domain/analytics/service_test.go
package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock
}

func testConfig() *config.Config {
	return &config.Config{Shop: config.ShopConfig{LowStockThreshold: 5}}
}

func TestDashboard(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewService(db, testConfig())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE stock = 0`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT id, name, stock FROM "products" WHERE stock <= \$1 ORDER BY stock ASC, name ASC LIMIT \$2`).
		WithArgs(5, lowStockLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "stock"}).
			AddRow(3, "Colorete", 0).
			AddRow(8, "Perfilador", 4))
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "orders" GROUP BY "status"`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("PROCESSING", 3).
			AddRow("DELIVERED", 1).
			AddRow("CANCELLED", 2))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(final_price\), 0\) FROM "orders" WHERE status <> \$1`).
		WithArgs("CANCELLED").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(8000))
	mock.ExpectQuery(`TO_CHAR\(created_at, 'YYYY-MM-DD'\) AS date`).
		WithArgs(sqlmock.AnyArg(), "CANCELLED").
		WillReturnRows(sqlmock.NewRows([]string{"date", "value", "count"}).
			AddRow("2026-03-01", 5000, 2).
			AddRow("2026-03-02", 3000, 2))
	mock.ExpectQuery(`SELECT \* FROM "orders" ORDER BY created_at DESC, id DESC LIMIT \$1`).
		WithArgs(recentOrdersLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id", "public_id", "status", "final_price", "created_at"}).
			AddRow(9, "K7dPx2mQa9Zt", "PROCESSING", 2099, time.Now()).
			AddRow(8, "M3nQr8sTv2Wx", "DELIVERED", 1500, time.Now().Add(-time.Hour)))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(40))

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(12), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.OutOfStockProducts)
	require.Len(t, stats.LowStockProducts, 2)
	assert.Equal(t, LowStockProduct{ID: 3, Name: "Colorete", Stock: 0}, stats.LowStockProducts[0])

	assert.Equal(t, int64(6), stats.TotalOrders)
	assert.Equal(t, int64(3), stats.OrdersByStatus[order.StatusProcessing])
	assert.Equal(t, int64(0), stats.OrdersByStatus[order.StatusShipped])
	assert.Equal(t, int64(2), stats.OrdersByStatus[order.StatusCancelled])
	assert.Len(t, stats.OrdersByStatus, len(order.Statuses))

	assert.Equal(t, int64(8000), stats.Revenue)
	assert.Equal(t, int64(2000), stats.AvgOrderValue)
	require.Len(t, stats.RevenueByDay, 2)
	assert.Equal(t, TimeSeriesData{Date: "2026-03-01", Value: 5000, Count: 2}, stats.RevenueByDay[0])

	require.Len(t, stats.RecentOrders, 2)
	assert.Equal(t, "K7dPx2mQa9Zt", stats.RecentOrders[0].PublicID)
	assert.Equal(t, int64(40), stats.TotalCustomers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboard_EmptyShop(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewService(db, testConfig())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE stock = 0`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT id, name, stock FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "stock"}))
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(final_price\), 0\) FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectQuery(`TO_CHAR`).
		WillReturnRows(sqlmock.NewRows([]string{"date", "value", "count"}))
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats.LowStockProducts)
	assert.NotNil(t, stats.LowStockProducts)
	assert.Equal(t, int64(0), stats.AvgOrderValue)
	assert.Empty(t, stats.RecentOrders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboard_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := NewService(db, testConfig())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnError(errors.New("connection reset"))

	_, err := svc.Dashboard(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count products")
}
