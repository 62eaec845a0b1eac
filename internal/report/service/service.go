// Package service provides the implementation of reporting business logic.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mvelarde/puntoventa/internal/report/store"
	alertsvc "github.com/mvelarde/puntoventa/internal/stockalert/service"
)

const dateLayout = "2006-01-02"

const rankingLimit = 20

// ReportService defines the methods for sales reporting.
type ReportService interface {
	// SalesInRange lists completed sales between two dates, inclusive.
	SalesInRange(ctx context.Context, from, to string) ([]SaleRowDto, error)

	// FullReport builds the aggregated report for a date range.
	FullReport(ctx context.Context, period, from, to string) (*FullReportDto, error)

	// Dashboard builds the landing-page snapshot for today.
	Dashboard(ctx context.Context) (*DashboardDto, error)
}

// LowStockSource supplies the low-stock section of the dashboard.
type LowStockSource interface {
	ListAlerts(ctx context.Context) ([]alertsvc.AlertDto, error)
}

// Service implements ReportService.
type Service struct {
	repository store.ReportStore
	alerts     LowStockSource
}

// NewService creates a new instance of ReportService with the provided repository.
func NewService(repo store.ReportStore, alerts LowStockSource) *Service {
	return &Service{
		repository: repo,
		alerts:     alerts,
	}
}

// SaleRowDto represents one completed sale in a report listing.
type SaleRowDto struct {
	ID            string  `json:"id"`
	CustomerName  *string `json:"customer_name,omitempty"`
	Total         int64   `json:"total"`
	PaymentMethod string  `json:"payment_method"`
	CreatedAt     string  `json:"created_at"`
}

// PeriodBucketDto represents one time bucket of the sales series.
type PeriodBucketDto struct {
	Period string `json:"period"`
	Total  int64  `json:"total"`
	Count  int32  `json:"count"`
}

// TopProductDto represents one row of the top-sellers ranking.
type TopProductDto struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Units     int32  `json:"units"`
	Revenue   int64  `json:"revenue"`
}

// IncomeVsExpensesDto compares income against estimated costs. Omitted from
// the report when no sold product carries a buy price.
type IncomeVsExpensesDto struct {
	Income    int64   `json:"income"`
	Expenses  int64   `json:"expenses"`
	Profit    int64   `json:"profit"`
	MarginPct float64 `json:"margin_pct"`
}

// FrequentCustomerDto represents one row of the frequent-customers ranking.
type FrequentCustomerDto struct {
	CustomerID   string `json:"customer_id"`
	Name         string `json:"name"`
	Purchases    int32  `json:"purchases"`
	TotalSpent   int64  `json:"total_spent"`
	LastPurchase string `json:"last_purchase"`
}

// SummaryDto represents the headline figures of a report.
type SummaryDto struct {
	Total         int64 `json:"total"`
	Count         int32 `json:"count"`
	AverageTicket int64 `json:"average_ticket"`
}

// FullReportDto is the aggregated report for a date range.
type FullReportDto struct {
	SalesByPeriod     []PeriodBucketDto     `json:"sales_by_period"`
	TopProducts       []TopProductDto       `json:"top_products"`
	IncomeVsExpenses  *IncomeVsExpensesDto  `json:"income_vs_expenses,omitempty"`
	FrequentCustomers []FrequentCustomerDto `json:"frequent_customers"`
	Summary           SummaryDto            `json:"summary"`
}

// MethodBucketDto represents totals for one payment method.
type MethodBucketDto struct {
	PaymentMethod string `json:"payment_method"`
	Total         int64  `json:"total"`
	Count         int32  `json:"count"`
}

// DashboardDto is the landing-page snapshot.
type DashboardDto struct {
	TodayTotal    int64               `json:"today_total"`
	TodayCount    int32               `json:"today_count"`
	TodayByMethod []MethodBucketDto   `json:"today_by_method"`
	Last7Days     []PeriodBucketDto   `json:"last_7_days"`
	TopProducts   []TopProductDto     `json:"top_products"`
	LowStock      []alertsvc.AlertDto `json:"low_stock"`
}

// parseRange turns two inclusive dates into a half-open timestamp range.
func parseRange(from, to string) (time.Time, time.Time, error) {
	fromDay, err := time.Parse(dateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	toDay, err := time.Parse(dateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q: %w", to, err)
	}
	return fromDay, toDay.AddDate(0, 0, 1), nil
}

// SalesInRange lists completed sales between two dates, inclusive.
func (s *Service) SalesInRange(ctx context.Context, from, to string) ([]SaleRowDto, error) {
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	sales, err := s.repository.SalesInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales in range: %w", err)
	}
	dtos := make([]SaleRowDto, 0, len(sales))
	for _, row := range sales {
		dtos = append(dtos, SaleRowDto{
			ID:            row.ID.String(),
			CustomerName:  row.CustomerName,
			Total:         row.Total,
			PaymentMethod: row.PaymentMethod,
			CreatedAt:     row.CreatedAt.Format(time.RFC3339),
		})
	}
	return dtos, nil
}

// FullReport builds the aggregated report for a date range.
func (s *Service) FullReport(ctx context.Context, period, from, to string) (*FullReportDto, error) {
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}

	buckets, err := s.repository.SalesByPeriod(ctx, period, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket sales: %w", err)
	}
	top, err := s.repository.TopProducts(ctx, start, end, rankingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	costs, err := s.repository.Costs(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate costs: %w", err)
	}
	frequent, err := s.repository.FrequentCustomers(ctx, start, end, rankingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank customers: %w", err)
	}

	report := &FullReportDto{
		SalesByPeriod:     toPeriodBucketDtos(buckets),
		TopProducts:       toTopProductDtos(top),
		FrequentCustomers: toFrequentCustomerDtos(frequent),
	}

	var income int64
	var count int32
	for _, b := range buckets {
		income += b.Total
		count += b.Count
	}
	report.Summary = SummaryDto{Total: income, Count: count}
	if count > 0 {
		report.Summary.AverageTicket = income / int64(count)
	}

	if costs.Priced {
		profit := income - costs.Expenses
		ive := &IncomeVsExpensesDto{Income: income, Expenses: costs.Expenses, Profit: profit}
		if income > 0 {
			ive.MarginPct = float64(profit) / float64(income) * 100
		}
		report.IncomeVsExpenses = ive
	}
	return report, nil
}

// Dashboard builds today's snapshot, with a seven day series behind it.
func (s *Service) Dashboard(ctx context.Context) (*DashboardDto, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	weekAgo := today.AddDate(0, 0, -6)

	byMethod, err := s.repository.SalesByMethod(ctx, today, tomorrow)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate today's sales: %w", err)
	}
	series, err := s.repository.SalesByPeriod(ctx, "day", weekAgo, tomorrow)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales series: %w", err)
	}
	top, err := s.repository.TopProducts(ctx, weekAgo, tomorrow, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	lowStock, err := s.alerts.ListAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}

	dashboard := &DashboardDto{
		TodayByMethod: make([]MethodBucketDto, 0, len(byMethod)),
		Last7Days:     toPeriodBucketDtos(series),
		TopProducts:   toTopProductDtos(top),
		LowStock:      lowStock,
	}
	for _, b := range byMethod {
		dashboard.TodayTotal += b.Total
		dashboard.TodayCount += b.Count
		dashboard.TodayByMethod = append(dashboard.TodayByMethod, MethodBucketDto{
			PaymentMethod: b.PaymentMethod,
			Total:         b.Total,
			Count:         b.Count,
		})
	}
	return dashboard, nil
}

func toPeriodBucketDtos(buckets []store.PeriodBucket) []PeriodBucketDto {
	dtos := make([]PeriodBucketDto, 0, len(buckets))
	for _, b := range buckets {
		dtos = append(dtos, PeriodBucketDto{
			Period: b.Period.Format(dateLayout),
			Total:  b.Total,
			Count:  b.Count,
		})
	}
	return dtos
}

func toTopProductDtos(products []store.TopProduct) []TopProductDto {
	dtos := make([]TopProductDto, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, TopProductDto{
			ProductID: p.ProductID.String(),
			Name:      p.Name,
			Units:     p.Units,
			Revenue:   p.Revenue,
		})
	}
	return dtos
}

func toFrequentCustomerDtos(customers []store.FrequentCustomer) []FrequentCustomerDto {
	dtos := make([]FrequentCustomerDto, 0, len(customers))
	for _, fc := range customers {
		dtos = append(dtos, FrequentCustomerDto{
			CustomerID:   fc.CustomerID.String(),
			Name:         fc.Name,
			Purchases:    fc.Purchases,
			TotalSpent:   fc.TotalSpent,
			LastPurchase: fc.LastPurchase.Format(dateLayout),
		})
	}
	return dtos
}
