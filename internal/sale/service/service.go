// Package service provides the implementation of sale business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mvelarde/puntoventa/internal/sale/store"
	"github.com/mvelarde/puntoventa/pkg/messaging"
	"github.com/mvelarde/puntoventa/pkg/messaging/events"
)

// SaleService defines the methods for committing and querying sales.
type SaleService interface {
	// Create commits a sale atomically against the current stock.
	// Returns ErrProductNotFound or ErrInsufficientStock when a line
	// cannot be satisfied; no stock is mutated in that case.
	Create(ctx context.Context, sale SaleCreateDto) (*SaleDto, error)

	// FindByID retrieves a sale with its line items.
	FindByID(ctx context.Context, id uuid.UUID) (*SaleDto, error)

	// FindAll returns sales ordered by creation time descending.
	FindAll(ctx context.Context, offset, limit int32) ([]SaleDto, error)

	// Cancel flips the sale status to cancelled without touching stock.
	Cancel(ctx context.Context, id uuid.UUID) (*SaleDto, error)

	// Delete removes a sale without restoring stock.
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockPolicy reports the low stock alerting configuration.
type StockPolicy interface {
	// Policy returns the global threshold and whether alerting is enabled.
	Policy(ctx context.Context) (threshold int32, enabled bool, err error)
}

// Service implements SaleService.
type Service struct {
	repository store.SaleStore
	publisher  messaging.Publisher
	policy     StockPolicy
	logger     *slog.Logger
}

// NewService creates a new instance of SaleService.
func NewService(repo store.SaleStore, publisher messaging.Publisher, policy StockPolicy, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		publisher:  publisher,
		policy:     policy,
		logger:     logger.With("component", "service.sale"),
	}
}

// SaleItemCreateDto represents one proposed line item. UnitPrice overrides
// the product's current price when set.
type SaleItemCreateDto struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int32  `json:"quantity"   validate:"required,gt=0"`
	UnitPrice *int64 `json:"unit_price" validate:"omitempty,min=0"`
}

// SaleCreateDto represents the data transfer object for committing a sale.
type SaleCreateDto struct {
	CustomerID    string              `json:"customer_id"    validate:"omitempty,uuid"`
	CustomerName  string              `json:"customer_name"  validate:"max=100"`
	Items         []SaleItemCreateDto `json:"items"          validate:"required,min=1,dive"`
	Discount      int64               `json:"discount"       validate:"min=0"`
	PaymentMethod string              `json:"payment_method" validate:"required,oneof=cash card transfer other"`
}

// SaleItemDto represents the data transfer object for a sale line item.
type SaleItemDto struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
}

// SaleDto represents the data transfer object for a sale.
type SaleDto struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id,omitempty"`
	CustomerName  string        `json:"customer_name,omitempty"`
	Items         []SaleItemDto `json:"items"`
	Subtotal      int64         `json:"subtotal"`
	Discount      int64         `json:"discount"`
	Total         int64         `json:"total"`
	PaymentMethod string        `json:"payment_method"`
	Status        string        `json:"status"`
	CreatedAt     string        `json:"created_at"`
}

// Create commits a sale and publishes the resulting events. Event publication
// happens after the transaction commits; a publish failure is logged but does
// not fail the already committed sale.
func (s *Service) Create(ctx context.Context, sale SaleCreateDto) (*SaleDto, error) {
	params, items, err := toSaleParams(sale)
	if err != nil {
		return nil, err
	}

	created, createdItems, levels, err := s.repository.CreateSale(ctx, params, items)
	if err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	s.publishSaleCreated(ctx, created, len(createdItems))
	s.publishLowStock(ctx, levels)

	return toSaleDto(created, createdItems), nil
}

// FindByID retrieves a sale with its line items.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*SaleDto, error) {
	sale, items, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale by ID %s: %w", id, err)
	}
	return toSaleDto(sale, items), nil
}

// FindAll retrieves a page of sales without line items.
func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]SaleDto, error) {
	sales, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	dtos := make([]SaleDto, len(sales))
	for i, sale := range sales {
		dtos[i] = *toSaleDto(&sale, nil)
	}
	return dtos, nil
}

// Cancel flips the sale status to cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*SaleDto, error) {
	cancelled, err := s.repository.CancelSale(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel sale with ID %s: %w", id, err)
	}
	return toSaleDto(cancelled, nil), nil
}

// Delete removes a sale.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteSale(ctx, id)
}

func (s *Service) publishSaleCreated(ctx context.Context, sale *store.Sale, itemCount int) {
	event := events.SaleCreatedEvent{
		SaleID:        sale.ID,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		ItemCount:     itemCount,
		CreatedAt:     sale.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sale created event", "sale_id", sale.ID, "error", err)
	}
}

// publishLowStock emits a LowStockEvent for every product the sale left at or
// below its threshold. The per-product min_stock overrides the global default.
func (s *Service) publishLowStock(ctx context.Context, levels []store.StockLevel) {
	defaultThreshold, enabled, err := s.policy.Policy(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load stock alert policy", "error", err)
		return
	}
	if !enabled {
		return
	}
	for _, level := range levels {
		threshold := defaultThreshold
		if level.MinStock != nil {
			threshold = *level.MinStock
		}
		if level.Quantity > threshold {
			continue
		}
		event := events.LowStockEvent{
			ProductID:   level.ProductID,
			ProductName: level.Name,
			Quantity:    level.Quantity,
			Threshold:   threshold,
			Critical:    level.Quantity <= threshold/2,
			OccurredAt:  time.Now(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish low stock event", "product_id", level.ProductID, "error", err)
		}
	}
}

func toSaleParams(dto SaleCreateDto) (store.SaleParams, []store.SaleItemParams, error) {
	params := store.SaleParams{
		Discount:      dto.Discount,
		PaymentMethod: dto.PaymentMethod,
	}
	if dto.CustomerID != "" {
		id, err := uuid.Parse(dto.CustomerID)
		if err != nil {
			return store.SaleParams{}, nil, fmt.Errorf("invalid customer ID %q: %w", dto.CustomerID, err)
		}
		params.CustomerID = &id
	}
	if dto.CustomerName != "" {
		name := dto.CustomerName
		params.CustomerName = &name
	}

	items := make([]store.SaleItemParams, len(dto.Items))
	for i, item := range dto.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return store.SaleParams{}, nil, fmt.Errorf("invalid product ID %q: %w", item.ProductID, err)
		}
		items[i] = store.SaleItemParams{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return params, items, nil
}

func toSaleDto(sale *store.Sale, items []store.SaleItem) *SaleDto {
	dto := &SaleDto{
		ID:            sale.ID.String(),
		Items:         make([]SaleItemDto, len(items)),
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		CreatedAt:     sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.CustomerID != nil {
		dto.CustomerID = sale.CustomerID.String()
	}
	if sale.CustomerName != nil {
		dto.CustomerName = *sale.CustomerName
	}
	for i, item := range items {
		dto.Items[i] = SaleItemDto{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		}
	}
	return dto
}
