// Package service provides the implementation of cash closure business logic.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mvelarde/puntoventa/internal/closure/store"
)

const dateLayout = "2006-01-02"

// ClosureService defines the methods for managing cash closures.
type ClosureService interface {
	// SalesSummary aggregates the completed sales of one calendar date.
	SalesSummary(ctx context.Context, date string) (*SalesSummaryDto, error)

	// Create records a closure for a date, computing the sales side server-side.
	Create(ctx context.Context, closure ClosureCreateDto) (*ClosureDto, error)

	// FindByID retrieves a closure by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*ClosureDto, error)

	// FindAll returns closures ordered by closure date descending.
	FindAll(ctx context.Context, offset, limit int32) ([]ClosureDto, error)

	// FindByRange returns closures whose date falls within [from, to].
	FindByRange(ctx context.Context, from, to string) ([]ClosureDto, error)
}

// Service implements ClosureService.
type Service struct {
	repository store.ClosureStore
}

// NewService creates a new instance of ClosureService with the provided repository.
func NewService(repo store.ClosureStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ClosureCreateDto represents the data transfer object for creating a closure.
// Declared amounts are integer cents counted at the till.
type ClosureCreateDto struct {
	ClosureDate      string `json:"closure_date"      validate:"required,datetime=2006-01-02"`
	DeclaredCash     int64  `json:"declared_cash"     validate:"min=0"`
	DeclaredCard     int64  `json:"declared_card"     validate:"min=0"`
	DeclaredTransfer int64  `json:"declared_transfer" validate:"min=0"`
	DeclaredOther    int64  `json:"declared_other"    validate:"min=0"`
	Notes            string `json:"notes"             validate:"max=500"`
}

// ClosureDto represents the data transfer object for a cash closure.
type ClosureDto struct {
	ID               string  `json:"id"`
	ClosureDate      string  `json:"closure_date"`
	ClosedAt         string  `json:"closed_at"`
	SalesTotal       int64   `json:"sales_total"`
	SalesCount       int32   `json:"sales_count"`
	CashTotal        int64   `json:"cash_total"`
	CashCount        int32   `json:"cash_count"`
	CardTotal        int64   `json:"card_total"`
	CardCount        int32   `json:"card_count"`
	TransferTotal    int64   `json:"transfer_total"`
	TransferCount    int32   `json:"transfer_count"`
	OtherTotal       int64   `json:"other_total"`
	OtherCount       int32   `json:"other_count"`
	DeclaredCash     int64   `json:"declared_cash"`
	DeclaredCard     int64   `json:"declared_card"`
	DeclaredTransfer int64   `json:"declared_transfer"`
	DeclaredOther    int64   `json:"declared_other"`
	TotalDeclared    int64   `json:"total_declared"`
	Difference       int64   `json:"difference"`
	Notes            *string `json:"notes,omitempty"`
}

// SalesSummaryDto represents the aggregated sales of one date.
type SalesSummaryDto struct {
	Date          string `json:"date"`
	SalesTotal    int64  `json:"sales_total"`
	SalesCount    int32  `json:"sales_count"`
	CashTotal     int64  `json:"cash_total"`
	CashCount     int32  `json:"cash_count"`
	CardTotal     int64  `json:"card_total"`
	CardCount     int32  `json:"card_count"`
	TransferTotal int64  `json:"transfer_total"`
	TransferCount int32  `json:"transfer_count"`
	OtherTotal    int64  `json:"other_total"`
	OtherCount    int32  `json:"other_count"`
}

// SalesSummary aggregates the completed sales of the given date.
func (s *Service) SalesSummary(ctx context.Context, date string) (*SalesSummaryDto, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	summary, err := s.repository.SalesSummary(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sales for %s: %w", date, err)
	}
	return toSalesSummaryDto(date, summary), nil
}

// Create records a closure for the requested date. The sales totals are
// computed from that day's completed sales, never taken from the caller.
func (s *Service) Create(ctx context.Context, closure ClosureCreateDto) (*ClosureDto, error) {
	day, err := time.Parse(dateLayout, closure.ClosureDate)
	if err != nil {
		return nil, fmt.Errorf("invalid closure date %q: %w", closure.ClosureDate, err)
	}
	created, err := s.repository.Create(ctx, toClosureParams(day, closure))
	if err != nil {
		return nil, fmt.Errorf("failed to create closure: %w", err)
	}
	return toClosureDto(created), nil
}

// FindByID retrieves a closure by its unique identifier.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ClosureDto, error) {
	closure, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find closure by ID: %w", err)
	}
	return toClosureDto(closure), nil
}

// FindAll returns closures ordered by closure date descending.
func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]ClosureDto, error) {
	closures, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find closures: %w", err)
	}
	return toClosureDtos(closures), nil
}

// FindByRange returns closures whose date falls within [from, to].
func (s *Service) FindByRange(ctx context.Context, from, to string) ([]ClosureDto, error) {
	fromDay, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	toDay, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q: %w", to, err)
	}
	closures, err := s.repository.FindByRange(ctx, fromDay, toDay)
	if err != nil {
		return nil, fmt.Errorf("failed to find closures in range: %w", err)
	}
	return toClosureDtos(closures), nil
}

func toClosureParams(day time.Time, dto ClosureCreateDto) store.ClosureParams {
	params := store.ClosureParams{
		ClosureDate:      day,
		DeclaredCash:     dto.DeclaredCash,
		DeclaredCard:     dto.DeclaredCard,
		DeclaredTransfer: dto.DeclaredTransfer,
		DeclaredOther:    dto.DeclaredOther,
	}
	if dto.Notes != "" {
		params.Notes = &dto.Notes
	}
	return params
}

func toClosureDto(c *store.Closure) *ClosureDto {
	return &ClosureDto{
		ID:               c.ID.String(),
		ClosureDate:      c.ClosureDate.Format(dateLayout),
		ClosedAt:         c.ClosedAt.Format(time.RFC3339),
		SalesTotal:       c.SalesTotal,
		SalesCount:       c.SalesCount,
		CashTotal:        c.CashTotal,
		CashCount:        c.CashCount,
		CardTotal:        c.CardTotal,
		CardCount:        c.CardCount,
		TransferTotal:    c.TransferTotal,
		TransferCount:    c.TransferCount,
		OtherTotal:       c.OtherTotal,
		OtherCount:       c.OtherCount,
		DeclaredCash:     c.DeclaredCash,
		DeclaredCard:     c.DeclaredCard,
		DeclaredTransfer: c.DeclaredTransfer,
		DeclaredOther:    c.DeclaredOther,
		TotalDeclared:    c.TotalDeclared,
		Difference:       c.Difference,
		Notes:            c.Notes,
	}
}

func toClosureDtos(closures []store.Closure) []ClosureDto {
	dtos := make([]ClosureDto, 0, len(closures))
	for i := range closures {
		dtos = append(dtos, *toClosureDto(&closures[i]))
	}
	return dtos
}

func toSalesSummaryDto(date string, s *store.SalesSummary) *SalesSummaryDto {
	return &SalesSummaryDto{
		Date:          date,
		SalesTotal:    s.SalesTotal,
		SalesCount:    s.SalesCount,
		CashTotal:     s.CashTotal,
		CashCount:     s.CashCount,
		CardTotal:     s.CardTotal,
		CardCount:     s.CardCount,
		TransferTotal: s.TransferTotal,
		TransferCount: s.TransferCount,
		OtherTotal:    s.OtherTotal,
		OtherCount:    s.OtherCount,
	}
}
