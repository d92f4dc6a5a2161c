package product

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/pkg/apperror"
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

func TestReserve_Success(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, Reserve(db, 7, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_InsufficientStock(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT "stock" FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(2))

	err := Reserve(db, 7, 3)
	require.ErrorIs(t, err, apperror.ErrInsufficientStock)

	var stockErr *apperror.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, uint(7), stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_UnknownProduct(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT "stock" FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}))

	err := Reserve(db, 99, 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.True(t, IsNotFound(err))
}

func TestReserve_RejectsNonPositiveQuantity(t *testing.T) {
	db, mock := setupMockDB(t)

	assert.ErrorIs(t, Reserve(db, 1, 0), apperror.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET "stock"=stock \+ \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, Release(db, 7, 2))
	assert.ErrorIs(t, Release(db, 7, 0), apperror.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProduct_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewService(db, &config.Config{})

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	p, err := service.GetProduct(context.Background(), 42)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteProduct_BlockedByOrders(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewService(db, &config.Config{})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT DISTINCT "order_id" FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(3).AddRow(9))
	mock.ExpectRollback()

	err := service.DeleteProduct(context.Background(), 5)
	require.ErrorIs(t, err, apperror.ErrInUse)

	var inUse *apperror.InUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, []uint{3, 9}, inUse.OrderIDs)
	assert.Equal(t, "product", inUse.Resource)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewService(db, &config.Config{})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT DISTINCT "order_id" FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))
	mock.ExpectExec(`DELETE FROM "products"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, service.DeleteProduct(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewService(db, &config.Config{})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	assert.ErrorIs(t, service.DeleteProduct(context.Background(), 5), apperror.ErrNotFound)
}

func TestUpdateStock_RejectsNegative(t *testing.T) {
	db, _ := setupMockDB(t)
	service := NewService(db, &config.Config{})

	assert.ErrorIs(t, service.UpdateStock(context.Background(), 1, -3), apperror.ErrValidation)
}

func TestCreateCategory_DuplicateNameIgnoringCase(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewCategoryService(db, &config.Config{})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories" WHERE LOWER\(name\) = LOWER\(\$1\)`).
		WithArgs("maquillaje").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	category, err := service.CreateCategory(context.Background(), &CategoryRequest{Name: " maquillaje "})
	assert.Nil(t, category)
	assert.Equal(t, []string{"name"}, fieldNames(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategory_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewCategoryService(db, &config.Config{})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	category, err := service.CreateCategory(context.Background(), &CategoryRequest{Name: "Maquillaje"})
	require.NoError(t, err)
	assert.Equal(t, uint(5), category.ID)
	assert.Equal(t, "Maquillaje", category.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategory_WithProducts(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewCategoryService(db, &config.Config{})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	assert.ErrorIs(t, service.DeleteCategory(context.Background(), 1), apperror.ErrInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBrand_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewCategoryService(db, &config.Config{})

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM "brands"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, service.DeleteBrand(context.Background(), 8), apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
