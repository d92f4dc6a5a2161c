// internal/pkg/apperror/errors.go
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds shared by every domain package. Handlers switch on these with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("conflict")
	ErrInUse             = errors.New("resource in use")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrEmptyCart         = errors.New("cart is empty")
)

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field level problems for a single input
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// Add appends a field error
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether any field error was recorded
func (e *ValidationError) Has() bool {
	return len(e.Fields) > 0
}

// OrNil returns the error when it holds field errors, nil otherwise
func (e *ValidationError) OrNil() error {
	if e == nil || !e.Has() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a single-field validation error
func Invalid(field, message string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// InUseError reports the orders that keep a record from being deleted
type InUseError struct {
	Resource string `json:"resource"`
	OrderIDs []uint `json:"order_ids"`
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s is referenced by %d order(s)", e.Resource, len(e.OrderIDs))
}

func (e *InUseError) Is(target error) bool {
	return target == ErrInUse
}

// StockError reports a product that cannot cover the requested quantity
type StockError struct {
	ProductID uint `json:"product_id"`
	Requested int  `json:"requested"`
	Available int  `json:"available"`
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// NotFound wraps ErrNotFound with the name of the missing resource
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}
