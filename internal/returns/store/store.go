// Package store provides an interface for return storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Return is the storage model for a return. Monetary amounts are integer cents.
type Return struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	ReturnType  string
	Reason      *string
	Notes       *string
	TotalRefund int64
	CreatedAt   time.Time
}

// ReturnItem is the storage model for a returned line item.
type ReturnItem struct {
	ID          uuid.UUID
	ReturnID    uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	UnitPrice   int64
	LineTotal   int64
}

// ReturnItemParams identifies one line of the original sale and the quantity
// to return. The (product ID, unit price) pair must match a sale line.
type ReturnItemParams struct {
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice int64
}

// Return types.
const (
	TypeFull    = "full"
	TypePartial = "partial"
)

// ReturnStore is an interface for return storage operations.
type ReturnStore interface {
	// CreateFull cancels a completed sale atomically: it restores every
	// product's stock by the originally sold quantity, flips the sale status
	// to cancelled and records a return mirroring all sale lines.
	// Returns ErrSaleNotFound, ErrSaleAlreadyCancelled or ErrProductNotFound.
	CreateFull(ctx context.Context, saleID uuid.UUID, reason, notes string) (*Return, []ReturnItem, error)

	// CreatePartial returns a subset of a completed sale's lines atomically:
	// it validates each line against the original sale and against the
	// cumulative quantity returned by all prior returns for the sale, then
	// restores stock and records the return. The sale stays completed.
	// Returns ErrSaleNotFound, ErrSaleAlreadyCancelled, ErrItemNotInSale,
	// ErrProductNotFound, or an OverReturnError wrapping ErrOverReturn.
	CreatePartial(ctx context.Context, saleID uuid.UUID, items []ReturnItemParams, reason, notes string) (*Return, []ReturnItem, error)

	// FindByID retrieves a return and its line items.
	FindByID(ctx context.Context, id uuid.UUID) (*Return, []ReturnItem, error)

	// FindAll returns returns ordered by creation time descending.
	FindAll(ctx context.Context, offset, limit int32) ([]Return, error)

	// FindBySaleID returns all returns recorded against a sale.
	FindBySaleID(ctx context.Context, saleID uuid.UUID) ([]Return, error)
}
