// Package store provides an interface for cash closure storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Closure is the storage model for a cash closure. Monetary amounts are
// integer cents.
type Closure struct {
	ID               uuid.UUID
	ClosureDate      time.Time
	ClosedAt         time.Time
	SalesTotal       int64
	SalesCount       int32
	CashTotal        int64
	CashCount        int32
	CardTotal        int64
	CardCount        int32
	TransferTotal    int64
	TransferCount    int32
	OtherTotal       int64
	OtherCount       int32
	DeclaredCash     int64
	DeclaredCard     int64
	DeclaredTransfer int64
	DeclaredOther    int64
	TotalDeclared    int64
	Difference       int64
	Notes            *string
}

// SalesSummary aggregates completed sales for a single day, overall and per
// payment method.
type SalesSummary struct {
	SalesTotal    int64
	SalesCount    int32
	CashTotal     int64
	CashCount     int32
	CardTotal     int64
	CardCount     int32
	TransferTotal int64
	TransferCount int32
	OtherTotal    int64
	OtherCount    int32
}

// ClosureParams carries the caller-supplied attributes of a closure. The
// sales side of the row is computed from the day's completed sales.
type ClosureParams struct {
	ClosureDate      time.Time
	DeclaredCash     int64
	DeclaredCard     int64
	DeclaredTransfer int64
	DeclaredOther    int64
	Notes            *string
}

// ClosureStore defines persistence operations for cash closures.
type ClosureStore interface {
	SalesSummary(ctx context.Context, date time.Time) (*SalesSummary, error)
	Create(ctx context.Context, params ClosureParams) (*Closure, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Closure, error)
	FindAll(ctx context.Context, offset, limit int32) ([]Closure, error)
	FindByRange(ctx context.Context, from, to time.Time) ([]Closure, error)
}
