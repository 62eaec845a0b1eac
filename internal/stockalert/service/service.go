// Package service provides the implementation of stock alert business logic.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mvelarde/puntoventa/internal/stockalert/store"
)

// AlertService defines the methods for stock alert configuration and listing.
type AlertService interface {
	// GetConfig returns the alert configuration, defaults when never saved.
	GetConfig(ctx context.Context) (*ConfigDto, error)

	// SaveConfig stores the alert configuration.
	SaveConfig(ctx context.Context, config ConfigUpdateDto) (*ConfigDto, error)

	// ListAlerts returns products at or below their threshold, critical first.
	ListAlerts(ctx context.Context) ([]AlertDto, error)

	// Policy exposes the global threshold and enabled flag for sale commits.
	Policy(ctx context.Context) (int32, bool, error)
}

// Service implements AlertService.
type Service struct {
	repository store.AlertStore
}

// NewService creates a new instance of AlertService with the provided repository.
func NewService(repo store.AlertStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ConfigUpdateDto represents the data transfer object for saving the config.
type ConfigUpdateDto struct {
	DefaultThreshold int32 `json:"default_threshold" validate:"required,gt=0"`
	Enabled          bool  `json:"enabled"`
	NotifyDashboard  bool  `json:"notify_dashboard"`
	NotifyMenu       bool  `json:"notify_menu"`
}

// ConfigDto represents the data transfer object for the alert configuration.
type ConfigDto struct {
	DefaultThreshold int32  `json:"default_threshold"`
	Enabled          bool   `json:"enabled"`
	NotifyDashboard  bool   `json:"notify_dashboard"`
	NotifyMenu       bool   `json:"notify_menu"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

// AlertDto represents one low-stock alert.
type AlertDto struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  *string `json:"category,omitempty"`
	Quantity  int32   `json:"quantity"`
	Threshold int32   `json:"threshold"`
	Critical  bool    `json:"critical"`
}

// GetConfig returns the alert configuration.
func (s *Service) GetConfig(ctx context.Context) (*ConfigDto, error) {
	config, err := s.repository.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert config: %w", err)
	}
	return toConfigDto(config), nil
}

// SaveConfig stores the alert configuration.
func (s *Service) SaveConfig(ctx context.Context, config ConfigUpdateDto) (*ConfigDto, error) {
	saved, err := s.repository.SaveConfig(ctx, store.AlertConfig{
		DefaultThreshold: config.DefaultThreshold,
		Enabled:          config.Enabled,
		NotifyDashboard:  config.NotifyDashboard,
		NotifyMenu:       config.NotifyMenu,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save alert config: %w", err)
	}
	return toConfigDto(saved), nil
}

// ListAlerts returns products at or below their effective threshold. A
// product is critical when its quantity is at or below half the threshold.
// With alerts disabled the list is empty.
func (s *Service) ListAlerts(ctx context.Context) ([]AlertDto, error) {
	config, err := s.repository.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert config: %w", err)
	}
	if !config.Enabled {
		return []AlertDto{}, nil
	}
	products, err := s.repository.LowStockProducts(ctx, config.DefaultThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	alerts := make([]AlertDto, 0, len(products))
	for _, p := range products {
		alerts = append(alerts, AlertDto{
			ProductID: p.ProductID.String(),
			Name:      p.Name,
			Category:  p.Category,
			Quantity:  p.Quantity,
			Threshold: p.Threshold,
			Critical:  p.Quantity <= p.Threshold/2,
		})
	}
	return alerts, nil
}

// Policy reports the global threshold and whether alerting is enabled.
func (s *Service) Policy(ctx context.Context) (int32, bool, error) {
	config, err := s.repository.GetConfig(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load alert config: %w", err)
	}
	return config.DefaultThreshold, config.Enabled, nil
}

func toConfigDto(c *store.AlertConfig) *ConfigDto {
	dto := &ConfigDto{
		DefaultThreshold: c.DefaultThreshold,
		Enabled:          c.Enabled,
		NotifyDashboard:  c.NotifyDashboard,
		NotifyMenu:       c.NotifyMenu,
	}
	if !c.UpdatedAt.IsZero() {
		dto.UpdatedAt = c.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}
