// internal/domain/product/stock.go
package product

import (
	"errors"
	"fmt"

	"github.com/charmaway/storefront/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Reserve takes n units of stock from a product in a single conditional update.
// The row is only touched when it still holds at least n units, so concurrent
// reservations can never drive stock below zero.
func Reserve(tx *gorm.DB, productID uint, n int) error {
	if n <= 0 {
		return apperror.Invalid("quantity", "must be at least 1")
	}

	result := tx.Model(&Product{}).
		Where("id = ? AND stock >= ?", productID, n).
		UpdateColumn("stock", gorm.Expr("stock - ?", n))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve stock: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	// Nothing updated: either the product is gone or it is short
	available, err := currentStock(tx, productID)
	if err != nil {
		return err
	}
	return &apperror.StockError{ProductID: productID, Requested: n, Available: available}
}

// Release gives n units back to a product
func Release(tx *gorm.DB, productID uint, n int) error {
	if n <= 0 {
		return apperror.Invalid("quantity", "must be at least 1")
	}

	result := tx.Model(&Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", n))
	if result.Error != nil {
		return fmt.Errorf("failed to release stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("product")
	}
	return nil
}

func currentStock(tx *gorm.DB, productID uint) (int, error) {
	var stock []int
	if err := tx.Model(&Product{}).Where("id = ?", productID).Pluck("stock", &stock).Error; err != nil {
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}
	if len(stock) == 0 {
		return 0, apperror.NotFound("product")
	}
	return stock[0], nil
}

// IsNotFound reports whether err is a gorm or domain not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, apperror.ErrNotFound)
}
