// Package errors defines domain-specific error types for the sale module.
package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrSaleNotFound indicates that the requested sale does not exist.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrProductNotFound indicates that a referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrSaleAlreadyCancelled indicates that the sale was cancelled before.
	ErrSaleAlreadyCancelled = errors.New("sale already cancelled")
	// ErrInsufficientStock indicates that a requested quantity exceeds the
	// available stock. Use errors.As with InsufficientStockError for details.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports which product blocked a sale commit,
// how much stock was available and how much was requested.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
