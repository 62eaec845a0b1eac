// Package service provides the implementation of return business logic.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mvelarde/puntoventa/internal/returns/store"
)

// ReturnService defines the methods for processing returns.
type ReturnService interface {
	// CreateFull cancels a completed sale, restoring all stock.
	CreateFull(ctx context.Context, ret ReturnFullCreateDto) (*ReturnDto, error)

	// CreatePartial returns a subset of a sale's lines, restoring their stock.
	CreatePartial(ctx context.Context, ret ReturnPartialCreateDto) (*ReturnDto, error)

	// FindByID retrieves a return with its line items.
	FindByID(ctx context.Context, id uuid.UUID) (*ReturnDto, error)

	// FindAll returns returns ordered by creation time descending.
	FindAll(ctx context.Context, offset, limit int32) ([]ReturnDto, error)

	// FindBySaleID returns all returns recorded against a sale.
	FindBySaleID(ctx context.Context, saleID uuid.UUID) ([]ReturnDto, error)
}

// Service implements ReturnService.
type Service struct {
	repository store.ReturnStore
}

// NewService creates a new instance of ReturnService with the provided repository.
func NewService(repo store.ReturnStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ReturnFullCreateDto represents the data transfer object for a full return.
type ReturnFullCreateDto struct {
	SaleID string `json:"sale_id" validate:"required,uuid"`
	Reason string `json:"reason"  validate:"max=200"`
	Notes  string `json:"notes"   validate:"max=500"`
}

// ReturnItemCreateDto identifies one line of the original sale to return.
type ReturnItemCreateDto struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int32  `json:"quantity"   validate:"required,gt=0"`
	UnitPrice int64  `json:"unit_price" validate:"min=0"`
}

// ReturnPartialCreateDto represents the data transfer object for a partial return.
type ReturnPartialCreateDto struct {
	SaleID string                `json:"sale_id" validate:"required,uuid"`
	Items  []ReturnItemCreateDto `json:"items"   validate:"required,min=1,dive"`
	Reason string                `json:"reason"  validate:"max=200"`
	Notes  string                `json:"notes"   validate:"max=500"`
}

// ReturnItemDto represents the data transfer object for a returned line item.
type ReturnItemDto struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
}

// ReturnDto represents the data transfer object for a return.
type ReturnDto struct {
	ID          string          `json:"id"`
	SaleID      string          `json:"sale_id"`
	ReturnType  string          `json:"return_type"`
	Reason      string          `json:"reason,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	TotalRefund int64           `json:"total_refund"`
	Items       []ReturnItemDto `json:"items"`
	CreatedAt   string          `json:"created_at"`
}

// CreateFull cancels a sale and records the mirroring return.
func (s *Service) CreateFull(ctx context.Context, ret ReturnFullCreateDto) (*ReturnDto, error) {
	saleID, err := uuid.Parse(ret.SaleID)
	if err != nil {
		return nil, fmt.Errorf("invalid sale ID %q: %w", ret.SaleID, err)
	}
	created, items, err := s.repository.CreateFull(ctx, saleID, ret.Reason, ret.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create full return: %w", err)
	}
	return toReturnDto(created, items), nil
}

// CreatePartial records a partial return.
func (s *Service) CreatePartial(ctx context.Context, ret ReturnPartialCreateDto) (*ReturnDto, error) {
	saleID, err := uuid.Parse(ret.SaleID)
	if err != nil {
		return nil, fmt.Errorf("invalid sale ID %q: %w", ret.SaleID, err)
	}
	items := make([]store.ReturnItemParams, len(ret.Items))
	for i, item := range ret.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product ID %q: %w", item.ProductID, err)
		}
		items[i] = store.ReturnItemParams{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	created, createdItems, err := s.repository.CreatePartial(ctx, saleID, items, ret.Reason, ret.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create partial return: %w", err)
	}
	return toReturnDto(created, createdItems), nil
}

// FindByID retrieves a return with its line items.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ReturnDto, error) {
	ret, items, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch return by ID %s: %w", id, err)
	}
	return toReturnDto(ret, items), nil
}

// FindAll retrieves a page of returns without line items.
func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]ReturnDto, error) {
	returns, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch returns: %w", err)
	}
	return toReturnDtos(returns), nil
}

// FindBySaleID retrieves all returns recorded against a sale.
func (s *Service) FindBySaleID(ctx context.Context, saleID uuid.UUID) ([]ReturnDto, error) {
	returns, err := s.repository.FindBySaleID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch returns for sale %s: %w", saleID, err)
	}
	return toReturnDtos(returns), nil
}

func toReturnDto(ret *store.Return, items []store.ReturnItem) *ReturnDto {
	dto := &ReturnDto{
		ID:          ret.ID.String(),
		SaleID:      ret.SaleID.String(),
		ReturnType:  ret.ReturnType,
		TotalRefund: ret.TotalRefund,
		Items:       make([]ReturnItemDto, len(items)),
		CreatedAt:   ret.CreatedAt.Format(time.RFC3339),
	}
	if ret.Reason != nil {
		dto.Reason = *ret.Reason
	}
	if ret.Notes != nil {
		dto.Notes = *ret.Notes
	}
	for i, item := range items {
		dto.Items[i] = ReturnItemDto{
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

func toReturnDtos(returns []store.Return) []ReturnDto {
	dtos := make([]ReturnDto, len(returns))
	for i, ret := range returns {
		dtos[i] = *toReturnDto(&ret, nil)
	}
	return dtos
}
