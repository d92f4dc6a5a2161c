// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/product"
	"github.com/charmaway/storefront/internal/domain/treatment"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles cart business logic. Adding a product to a cart takes the
// units out of stock immediately; decreasing, removing or clearing gives them back.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Get retrieves the owner's cart with items and totals
func (s *Service) Get(ctx context.Context, owner Owner) (*View, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	items, err := Lines(s.db.WithContext(ctx), owner)
	if err != nil {
		return nil, err
	}

	return &View{
		Items:  items,
		Totals: CalculateTotals(items),
	}, nil
}

// Add puts quantity units of an item into the cart, adding to an existing line
func (s *Service) Add(ctx context.Context, owner Owner, ref ItemRef, quantity int) (*CartItem, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if err := ref.validate(); err != nil {
		return nil, err
	}

	var line *CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		line, err = add(tx, owner, ref, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// Decrease takes one unit off a line, deleting it at quantity 1
func (s *Service) Decrease(ctx context.Context, owner Owner, ref ItemRef) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := findLine(tx, owner, ref)
		if err != nil {
			return err
		}

		if line.ProductID != nil {
			if err := product.Release(tx, *line.ProductID, 1); err != nil {
				return err
			}
		}

		if line.Quantity <= 1 {
			if err := tx.Delete(line).Error; err != nil {
				return fmt.Errorf("failed to remove cart item: %w", err)
			}
			return nil
		}

		if err := tx.Model(line).UpdateColumn("quantity", gorm.Expr("quantity - 1")).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		return nil
	})
}

// Remove deletes a line and gives its units back to stock
func (s *Service) Remove(ctx context.Context, owner Owner, ref ItemRef) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := findLine(tx, owner, ref)
		if err != nil {
			return err
		}
		if line.ProductID != nil {
			if err := product.Release(tx, *line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Delete(line).Error; err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
		return nil
	})
}

// Clear empties the cart and releases every held product unit
func (s *Service) Clear(ctx context.Context, owner Owner) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return clearLines(tx, owner)
	})
}

// BuyNow replaces the cart with a single unit of the item
func (s *Service) BuyNow(ctx context.Context, owner Owner, ref ItemRef) (*View, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if err := ref.validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearLines(tx, owner); err != nil {
			return err
		}
		_, err := add(tx, owner, ref, 1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, owner)
}

// Total is the sum of quantity times captured price over the owner's lines
func (s *Service) Total(ctx context.Context, owner Owner) (int64, error) {
	if err := owner.Validate(); err != nil {
		return 0, err
	}

	var total int64
	err := owner.Scope(s.db.WithContext(ctx).Model(&CartItem{})).
		Select("COALESCE(SUM(quantity * current_price), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to calculate cart total: %w", err)
	}
	return total, nil
}

// Count is the number of units in the owner's cart
func (s *Service) Count(ctx context.Context, owner Owner) (int, error) {
	if err := owner.Validate(); err != nil {
		return 0, err
	}

	var count int
	err := owner.Scope(s.db.WithContext(ctx).Model(&CartItem{})).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}

// MergeGuestCart moves a guest session's lines to a customer after login.
// Stock was already held when the lines were added, so nothing is reserved again.
func (s *Service) MergeGuestCart(ctx context.Context, sessionKey string, userID uint) error {
	if sessionKey == "" {
		return nil
	}

	guest := GuestOwner(sessionKey)
	customer := CustomerOwner(userID)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var guestLines []CartItem
		if err := guest.Scope(tx).Order("id").Find(&guestLines).Error; err != nil {
			return fmt.Errorf("failed to load guest cart: %w", err)
		}

		for i := range guestLines {
			line := &guestLines[i]

			existing, err := findLine(tx, customer, line.Ref())
			if err != nil && !errors.Is(err, apperror.ErrNotFound) {
				return err
			}

			if existing != nil {
				err := tx.Model(existing).UpdateColumns(map[string]interface{}{
					"quantity":      gorm.Expr("quantity + ?", line.Quantity),
					"current_price": line.CurrentPrice,
				}).Error
				if err != nil {
					return fmt.Errorf("failed to merge cart item: %w", err)
				}
				if err := tx.Delete(line).Error; err != nil {
					return fmt.Errorf("failed to merge cart item: %w", err)
				}
				continue
			}

			err = tx.Model(line).UpdateColumns(map[string]interface{}{
				"user_id":     userID,
				"session_key": nil,
			}).Error
			if err != nil {
				return fmt.Errorf("failed to move cart item: %w", err)
			}
		}
		return nil
	})
}

// Lines loads the owner's lines with their product or treatment, oldest first
func Lines(db *gorm.DB, owner Owner) ([]CartItem, error) {
	var items []CartItem
	err := owner.Scope(db).
		Preload("Product").
		Preload("Product.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_main DESC, order_position ASC")
		}).
		Preload("Treatment").
		Order("cart_items.added_at ASC, cart_items.id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return items, nil
}

// DeleteLines removes the owner's lines without touching stock. Used when the
// held units become an order.
func DeleteLines(tx *gorm.DB, owner Owner) error {
	if err := owner.Scope(tx).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to empty cart: %w", err)
	}
	return nil
}

func add(tx *gorm.DB, owner Owner, ref ItemRef, quantity int) (*CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var price int64
	switch ref.Kind {
	case KindProduct:
		var p product.Product
		if err := tx.Where("id = ?", ref.ID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("product")
			}
			return nil, fmt.Errorf("failed to find product: %w", err)
		}
		if !p.IsAvailable {
			return nil, fmt.Errorf("product %d is not available: %w", p.ID, apperror.ErrConflict)
		}
		if err := product.Reserve(tx, p.ID, quantity); err != nil {
			return nil, err
		}
		price = p.EffectivePrice()

	case KindTreatment:
		var t treatment.Treatment
		if err := tx.Where("id = ?", ref.ID).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("treatment")
			}
			return nil, fmt.Errorf("failed to find treatment: %w", err)
		}
		if !t.IsAvailable {
			return nil, fmt.Errorf("treatment %d is not available: %w", t.ID, apperror.ErrConflict)
		}
		price = t.EffectivePrice()
	}

	line, err := findLine(tx, owner, ref)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	if line != nil {
		err := tx.Model(line).UpdateColumns(map[string]interface{}{
			"quantity":      gorm.Expr("quantity + ?", quantity),
			"current_price": price,
			"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
		line.Quantity += quantity
		line.CurrentPrice = price
		return line, nil
	}

	line = &CartItem{Quantity: quantity, CurrentPrice: price}
	owner.assign(line)
	id := ref.ID
	if ref.Kind == KindProduct {
		line.ProductID = &id
	} else {
		line.TreatmentID = &id
	}

	if err := tx.Create(line).Error; err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	return line, nil
}

func clearLines(tx *gorm.DB, owner Owner) error {
	var lines []CartItem
	if err := owner.Scope(tx).Find(&lines).Error; err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	for _, line := range lines {
		if line.ProductID == nil {
			continue
		}
		if err := product.Release(tx, *line.ProductID, line.Quantity); err != nil && !product.IsNotFound(err) {
			return err
		}
	}

	if len(lines) == 0 {
		return nil
	}
	return DeleteLines(tx, owner)
}

func findLine(tx *gorm.DB, owner Owner, ref ItemRef) (*CartItem, error) {
	var line CartItem
	err := ref.Scope(owner.Scope(tx)).Order("id").First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item for %s %w", ref, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &line, nil
}
