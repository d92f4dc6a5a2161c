// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/domain/cart"
	"github.com/charmaway/storefront/internal/domain/checkout"
	"github.com/charmaway/storefront/internal/domain/product"
	"github.com/charmaway/storefront/internal/pkg/apperror"
	"github.com/charmaway/storefront/internal/pkg/pagination"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	notifyTimeout  = 30 * time.Second
	maxNotesLength = 1000
)

// Notifier is told about new orders once they are committed
type Notifier interface {
	OrderPlaced(ctx context.Context, order *Order) error
}

// Service handles order business logic
type Service struct {
	db       *gorm.DB
	config   *config.Config
	notifier Notifier
	log      *logrus.Logger
}

// NewService creates a new order service. notifier may be nil.
func NewService(db *gorm.DB, cfg *config.Config, notifier Notifier, log *logrus.Logger) *Service {
	return &Service{
		db:       db,
		config:   cfg,
		notifier: notifier,
		log:      log,
	}
}

// AdminListRequest represents order list query parameters
type AdminListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Status Status `form:"status"`
	Email  string `form:"email"`
}

// ListResponse represents orders with pagination
type ListResponse struct {
	Orders     []Order               `json:"orders"`
	Pagination pagination.Pagination `json:"pagination"`
}

// CreateFromCart turns the owner's cart into an order. Stock was taken when
// the lines were added, so it is only checked again here.
func (s *Service) CreateFromCart(ctx context.Context, owner cart.Owner, form *checkout.Form) (*Order, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	order, err := s.createFromCart(tx, owner, form)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"public_id": order.PublicID,
		"owner":     owner.Key(),
		"total":     order.FinalPrice,
	}).Info("Order created")

	s.notify(ctx, order)
	return order, nil
}

func (s *Service) createFromCart(tx *gorm.DB, owner cart.Owner, form *checkout.Form) (*Order, error) {
	lines, err := cart.Lines(tx, owner)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperror.ErrEmptyCart
	}

	items := make([]OrderItem, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		if line.ProductID != nil {
			if err := checkHold(tx, *line.ProductID, line.Quantity); err != nil {
				return nil, err
			}
		}
		items = append(items, OrderItem{
			ProductID:   line.ProductID,
			TreatmentID: line.TreatmentID,
			Name:        line.Name(),
			Quantity:    line.Quantity,
			UnitPrice:   line.CurrentPrice,
			Subtotal:    line.Subtotal(),
		})
	}

	subtotal, _ := Totals(items, 0)
	shipping := checkout.ShippingCost(subtotal, form.DeliveryOption, checkout.RulesFromConfig(s.config.Shop))
	final := subtotal + shipping

	publicID, err := uniquePublicID(tx)
	if err != nil {
		return nil, err
	}

	order := &Order{
		PublicID:       publicID,
		UserID:         owner.UserID,
		Email:          form.Email,
		Status:         StatusProcessing,
		DeliveryOption: form.DeliveryOption,
		PaymentMethod:  form.PaymentMethod,
		PaymentStatus:  initialPaymentStatus(form.PaymentMethod),
		Subtotal:       subtotal,
		ShippingCost:   shipping,
		FinalPrice:     final,
		Notes:          form.Notes,
		Items:          items,
	}
	if form.DeliveryOption == checkout.DeliveryHome {
		order.Address = form.Address
		order.City = form.City
		order.ZipCode = form.ZipCode
	}

	if err := tx.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	history := OrderStatusHistory{
		OrderID:  order.ID,
		ToStatus: StatusProcessing,
		Comment:  "Order created",
	}
	if err := tx.Create(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to create status history: %w", err)
	}
	order.StatusHistory = []OrderStatusHistory{history}

	if err := cart.DeleteLines(tx, owner); err != nil {
		return nil, err
	}
	return order, nil
}

// checkHold locks the product row and makes sure the units this line holds are still backed.
// Stock already had the hold taken out at add time, so a held line needs stock >= 0 and not stock >= qty.
func checkHold(tx *gorm.DB, productID uint, qty int) error {
	var p product.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "stock", "is_available").
		Where("id = ?", productID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperror.StockError{ProductID: productID, Requested: qty, Available: 0}
		}
		return fmt.Errorf("failed to lock product: %w", err)
	}
	if !p.IsAvailable {
		return &apperror.StockError{ProductID: productID, Requested: qty, Available: 0}
	}
	if p.Stock < 0 {
		return &apperror.StockError{ProductID: productID, Requested: qty, Available: max(p.Stock+qty, 0)}
	}
	return nil
}

func uniquePublicID(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < publicIDMaxAttempts; attempt++ {
		id := NewPublicID()
		var count int64
		if err := tx.Model(&Order{}).Where("public_id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check public id: %w", err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique public id after %d attempts", publicIDMaxAttempts)
}

func initialPaymentStatus(method checkout.PaymentMethod) PaymentStatus {
	if method == checkout.PaymentCard {
		return PaymentStatusPending
	}
	return PaymentStatusNotRequired
}

// notify runs the notifier in the background. It outlives the request but not notifyTimeout.
func (s *Service) notify(ctx context.Context, order *Order) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		if err := s.notifier.OrderPlaced(ctx, order); err != nil {
			s.log.WithError(err).WithField("public_id", order.PublicID).Warn("Order notification failed")
		}
	}()
}

// GetByPublicID retrieves an order by the id shown to customers
func (s *Service) GetByPublicID(ctx context.Context, publicID string) (*Order, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil, apperror.NotFound("order")
	}
	return s.find(ctx, "public_id = ?", publicID)
}

// Get retrieves a single order by ID
func (s *Service) Get(ctx context.Context, id uint) (*Order, error) {
	return s.find(ctx, "id = ?", id)
}

func (s *Service) find(ctx context.Context, where string, arg interface{}) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Where(where, arg).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order")
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &order, nil
}

// ListForCustomer returns a customer's orders, newest first
func (s *Service) ListForCustomer(ctx context.Context, userID uint, page, limit int) (*ListResponse, error) {
	query := s.db.WithContext(ctx).Model(&Order{}).Where("user_id = ?", userID)
	return s.list(query, page, limit)
}

// List retrieves orders with filtering and pagination
func (s *Service) List(ctx context.Context, req *AdminListRequest) (*ListResponse, error) {
	query := s.db.WithContext(ctx).Model(&Order{})

	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, apperror.Invalid("status", "is not a valid order status")
		}
		query = query.Where("status = ?", req.Status)
	}

	if email := strings.TrimSpace(req.Email); email != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(email)+"%")
	}

	return s.list(query, req.Page, req.Limit)
}

func (s *Service) list(query *gorm.DB, page, limit int) (*ListResponse, error) {
	page = pagination.Page(page)
	limit = pagination.Limit(limit)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.
		Preload("Items").
		Order("created_at DESC, id DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &ListResponse{
		Orders:     orders,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// UpdateStatus writes a new status and its history row. Setting the current
// status again changes nothing.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status Status, changedBy uint, comment string) (*Order, error) {
	if !status.Valid() {
		return nil, apperror.Invalid("status", "must be one of: PROCESSING SHIPPED DELIVERED CANCELLED")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("order")
			}
			return fmt.Errorf("failed to retrieve order: %w", err)
		}
		if order.Status == status {
			return nil
		}

		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		by := changedBy
		history := OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: order.Status,
			ToStatus:   status,
			Comment:    strings.TrimSpace(comment),
			ChangedBy:  &by,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": id, "status": status, "admin_id": changedBy}).Info("Order status updated")
	return s.Get(ctx, id)
}

// UpdateNotes replaces the order notes
func (s *Service) UpdateNotes(ctx context.Context, id uint, notes string) error {
	notes = strings.TrimSpace(notes)
	if len([]rune(notes)) > maxNotesLength {
		return apperror.Invalid("notes", "must be at most 1000 characters")
	}

	result := s.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Update("notes", notes)
	if result.Error != nil {
		return fmt.Errorf("failed to update order notes: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("order")
	}
	return nil
}

// MarkPayment records the card payment outcome on the order
func (s *Service) MarkPayment(ctx context.Context, orderID uint, paid bool) error {
	return MarkPayment(s.db.WithContext(ctx), orderID, paid)
}

// MarkPayment is the transactional form used by the payment webhook
func MarkPayment(tx *gorm.DB, orderID uint, paid bool) error {
	status := PaymentStatusFailed
	if paid {
		status = PaymentStatusPaid
	}

	result := tx.Model(&Order{}).Where("id = ?", orderID).Update("payment_status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("order")
	}
	return nil
}
