package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories.
var (
	// ErrNotFound indicates a referenced order/product/item/payment/customer
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates an optimistic concurrency check failed. The
	// operation rolled back and can be retried.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrEmptyOrder indicates payment initiation was attempted on an order
	// with no line items.
	ErrEmptyOrder = errors.New("order has no items")
)

// ValidationError indicates a missing required field or a value violating a
// constraint (negative amount, quantity below 1, ...).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StateError indicates an operation attempted against an order or payment
// whose current status forbids it.
type StateError struct {
	Entity  string
	Status  string
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s in status %s: %s", e.Entity, e.Status, e.Message)
}

// NewStateError creates a new state error.
func NewStateError(entity, status, message string) *StateError {
	return &StateError{Entity: entity, Status: status, Message: message}
}

// InsufficientStockError indicates a requested quantity or delta exceeds the
// available product stock.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// IsRetryable reports whether the caller should retry the operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
