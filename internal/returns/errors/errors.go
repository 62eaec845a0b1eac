// Package errors defines domain-specific error types for the returns module.
package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrReturnNotFound indicates that the requested return does not exist.
	ErrReturnNotFound = errors.New("return not found")
	// ErrSaleNotFound indicates that the target sale does not exist.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrSaleAlreadyCancelled indicates that the sale was cancelled before.
	ErrSaleAlreadyCancelled = errors.New("sale already cancelled")
	// ErrProductNotFound indicates that a referenced product no longer exists.
	ErrProductNotFound = errors.New("product not found")
	// ErrItemNotInSale indicates that a returned line does not match any line
	// of the original sale.
	ErrItemNotInSale = errors.New("item not part of the sale")
	// ErrOverReturn indicates that the cumulative returned quantity would
	// exceed the originally sold quantity. Use errors.As with OverReturnError
	// for details.
	ErrOverReturn = errors.New("return exceeds sold quantity")
)

// OverReturnError reports which line of a partial return would exceed the
// originally sold quantity, counting all prior returns for the same sale.
type OverReturnError struct {
	ProductID       uuid.UUID
	ProductName     string
	Sold            int32
	AlreadyReturned int32
	Requested       int32
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("over-return for %q: sold %d, already returned %d, requested %d",
		e.ProductName, e.Sold, e.AlreadyReturned, e.Requested)
}

func (e *OverReturnError) Unwrap() error {
	return ErrOverReturn
}
