// Package store provides an interface for sales reporting queries.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleRow is one completed sale in a report listing.
type SaleRow struct {
	ID            uuid.UUID
	CustomerName  *string
	Total         int64
	PaymentMethod string
	CreatedAt     time.Time
}

// PeriodBucket aggregates completed sales over one date_trunc bucket.
type PeriodBucket struct {
	Period time.Time
	Total  int64
	Count  int32
}

// TopProduct is one row of the top-sellers ranking.
type TopProduct struct {
	ProductID uuid.UUID
	Name      string
	Units     int32
	Revenue   int64
}

// CostAggregate carries the expense side of a report. Priced reports
// whether any sold product carries a buy price at all.
type CostAggregate struct {
	Expenses int64
	Priced   bool
}

// FrequentCustomer is one row of the frequent-customers ranking.
type FrequentCustomer struct {
	CustomerID   uuid.UUID
	Name         string
	Purchases    int32
	TotalSpent   int64
	LastPurchase time.Time
}

// MethodBucket aggregates completed sales per payment method.
type MethodBucket struct {
	PaymentMethod string
	Total         int64
	Count         int32
}

// ReportStore defines the read-only queries backing reports and the dashboard.
// All queries consider completed sales only.
type ReportStore interface {
	SalesInRange(ctx context.Context, from, to time.Time) ([]SaleRow, error)
	SalesByPeriod(ctx context.Context, period string, from, to time.Time) ([]PeriodBucket, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int32) ([]TopProduct, error)
	Costs(ctx context.Context, from, to time.Time) (*CostAggregate, error)
	FrequentCustomers(ctx context.Context, from, to time.Time, limit int32) ([]FrequentCustomer, error)
	SalesByMethod(ctx context.Context, from, to time.Time) ([]MethodBucket, error)
}
