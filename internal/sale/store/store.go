// Package store provides an interface for sale storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Sale is the storage model for a sale. Monetary amounts are integer cents.
type Sale struct {
	ID            uuid.UUID
	CustomerID    *uuid.UUID
	CustomerName  *string
	Subtotal      int64
	Discount      int64
	Total         int64
	PaymentMethod string
	Status        string
	CreatedAt     time.Time
}

// SaleItem is the storage model for a sale line item. Product name and unit
// price are snapshots taken at commit time.
type SaleItem struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	UnitPrice   int64
	LineTotal   int64
}

// SaleParams carries the sale attributes supplied by the caller.
type SaleParams struct {
	CustomerID    *uuid.UUID
	CustomerName  *string
	Discount      int64
	PaymentMethod string
}

// SaleItemParams carries one proposed line item. UnitPrice overrides the
// product's current price when set.
type SaleItemParams struct {
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice *int64
}

// StockLevel reports a product's stock after a committed mutation.
type StockLevel struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int32
	MinStock  *int32
}

// Sale statuses.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// SaleStore is an interface for sale storage operations.
type SaleStore interface {
	// CreateSale commits a sale atomically: it locks every referenced
	// product row, validates that no line exceeds the available stock,
	// decrements the quantities and inserts the sale with its items.
	// No product is mutated when any line fails.
	// Returns ErrProductNotFound, or an InsufficientStockError wrapping
	// ErrInsufficientStock, when a precondition is violated.
	// The returned stock levels reflect the post-commit quantities of the
	// referenced products.
	CreateSale(ctx context.Context, params SaleParams, items []SaleItemParams) (*Sale, []SaleItem, []StockLevel, error)

	// FindByID retrieves a sale and its line items.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, []SaleItem, error)

	// FindAll returns sales ordered by creation time descending.
	FindAll(ctx context.Context, offset, limit int32) ([]Sale, error)

	// CancelSale flips the sale status to cancelled without touching stock.
	// Stock restoration goes through the returns flow.
	// Returns ErrSaleNotFound or ErrSaleAlreadyCancelled.
	CancelSale(ctx context.Context, id uuid.UUID) (*Sale, error)

	// DeleteSale removes a sale and its items. Stock is not restored.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	DeleteSale(ctx context.Context, id uuid.UUID) error
}
