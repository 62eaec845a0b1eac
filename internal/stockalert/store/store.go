// Package store provides an interface for stock alert storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AlertConfig holds the single-row alert configuration.
type AlertConfig struct {
	DefaultThreshold int32
	Enabled          bool
	NotifyDashboard  bool
	NotifyMenu       bool
	UpdatedAt        time.Time
}

// LowStockProduct is a product at or below its effective threshold. The
// threshold is the product's min_stock when set, otherwise the global default.
type LowStockProduct struct {
	ProductID uuid.UUID
	Name      string
	Category  *string
	Quantity  int32
	Threshold int32
}

// AlertStore defines persistence operations for stock alerts.
type AlertStore interface {
	GetConfig(ctx context.Context) (*AlertConfig, error)
	SaveConfig(ctx context.Context, config AlertConfig) (*AlertConfig, error)
	LowStockProducts(ctx context.Context, defaultThreshold int32) ([]LowStockProduct, error)
}
