package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mvelarde/puntoventa/internal/report/store"
	alertsvc "github.com/mvelarde/puntoventa/internal/stockalert/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockReportStore is a mock implementation of the ReportStore interface
type mockReportStore struct {
	sales     []store.SaleRow
	buckets   []store.PeriodBucket
	top       []store.TopProduct
	costs     *store.CostAggregate
	frequent  []store.FrequentCustomer
	byMethod  []store.MethodBucket
	error     error
	periodArg string
}

func (m *mockReportStore) SalesInRange(_ context.Context, _, _ time.Time) ([]store.SaleRow, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sales, nil
}

func (m *mockReportStore) SalesByPeriod(_ context.Context, period string, _, _ time.Time) ([]store.PeriodBucket, error) {
	m.periodArg = period
	if m.error != nil {
		return nil, m.error
	}
	return m.buckets, nil
}

func (m *mockReportStore) TopProducts(_ context.Context, _, _ time.Time, _ int32) ([]store.TopProduct, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.top, nil
}

func (m *mockReportStore) Costs(_ context.Context, _, _ time.Time) (*store.CostAggregate, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.costs, nil
}

func (m *mockReportStore) FrequentCustomers(_ context.Context, _, _ time.Time, _ int32) ([]store.FrequentCustomer, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.frequent, nil
}

func (m *mockReportStore) SalesByMethod(_ context.Context, _, _ time.Time) ([]store.MethodBucket, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.byMethod, nil
}

// mockAlertSource is a mock implementation of the LowStockSource interface
type mockAlertSource struct {
	alerts []alertsvc.AlertDto
	error  error
}

func (m *mockAlertSource) ListAlerts(_ context.Context) ([]alertsvc.AlertDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.alerts, nil
}

func Test_ReportService_FullReport(t *testing.T) {
	day1 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)

	t.Run("Success - summary and margin computed", func(t *testing.T) {
		// given two daily buckets and priced costs
		mockStore := &mockReportStore{
			buckets: []store.PeriodBucket{
				{Period: day1, Total: 6000, Count: 2},
				{Period: day2, Total: 4000, Count: 2},
			},
			top:      []store.TopProduct{{ProductID: uuid.New(), Name: "Coffee 500g", Units: 7, Revenue: 7000}},
			costs:    &store.CostAggregate{Expenses: 4000, Priced: true},
			frequent: []store.FrequentCustomer{},
		}
		service := NewService(mockStore, &mockAlertSource{})

		// when
		report, err := service.FullReport(context.Background(), "day", "2026-08-01", "2026-08-02")

		// then
		require.NoError(t, err)
		assert.Equal(t, "day", mockStore.periodArg)
		assert.Equal(t, int64(10000), report.Summary.Total)
		assert.Equal(t, int32(4), report.Summary.Count)
		assert.Equal(t, int64(2500), report.Summary.AverageTicket)
		require.NotNil(t, report.IncomeVsExpenses)
		assert.Equal(t, int64(6000), report.IncomeVsExpenses.Profit)
		assert.InDelta(t, 60.0, report.IncomeVsExpenses.MarginPct, 0.001)
	})

	t.Run("Success - no buy prices omits income vs expenses", func(t *testing.T) {
		// given
		mockStore := &mockReportStore{
			buckets:  []store.PeriodBucket{{Period: day1, Total: 6000, Count: 2}},
			top:      []store.TopProduct{},
			costs:    &store.CostAggregate{Expenses: 0, Priced: false},
			frequent: []store.FrequentCustomer{},
		}
		service := NewService(mockStore, &mockAlertSource{})

		// when
		report, err := service.FullReport(context.Background(), "week", "2026-08-01", "2026-08-31")

		// then
		require.NoError(t, err)
		assert.Nil(t, report.IncomeVsExpenses)
		assert.Equal(t, "week", mockStore.periodArg)
	})

	t.Run("Success - empty range", func(t *testing.T) {
		// given
		mockStore := &mockReportStore{
			buckets:  []store.PeriodBucket{},
			top:      []store.TopProduct{},
			costs:    &store.CostAggregate{},
			frequent: []store.FrequentCustomer{},
		}
		service := NewService(mockStore, &mockAlertSource{})

		// when
		report, err := service.FullReport(context.Background(), "day", "2026-08-01", "2026-08-02")

		// then
		require.NoError(t, err)
		assert.Equal(t, int64(0), report.Summary.Total)
		assert.Equal(t, int64(0), report.Summary.AverageTicket)
	})

	t.Run("Error - malformed date", func(t *testing.T) {
		// given
		service := NewService(&mockReportStore{}, &mockAlertSource{})

		// when
		report, err := service.FullReport(context.Background(), "day", "August 1st", "2026-08-02")

		// then
		require.Error(t, err)
		assert.Nil(t, report)
	})
}

func Test_ReportService_Dashboard(t *testing.T) {
	// given today's sales split across two methods and one alert
	mockStore := &mockReportStore{
		byMethod: []store.MethodBucket{
			{PaymentMethod: "cash", Total: 5000, Count: 3},
			{PaymentMethod: "card", Total: 2000, Count: 1},
		},
		buckets: []store.PeriodBucket{{Period: time.Now(), Total: 7000, Count: 4}},
		top:     []store.TopProduct{{ProductID: uuid.New(), Name: "Coffee 500g", Units: 4, Revenue: 4000}},
	}
	alerts := &mockAlertSource{alerts: []alertsvc.AlertDto{
		{ProductID: uuid.New().String(), Name: "Sugar 1kg", Quantity: 3, Threshold: 10, Critical: true},
	}}
	service := NewService(mockStore, alerts)

	// when
	dashboard, err := service.Dashboard(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(7000), dashboard.TodayTotal)
	assert.Equal(t, int32(4), dashboard.TodayCount)
	assert.Len(t, dashboard.TodayByMethod, 2)
	assert.Len(t, dashboard.LowStock, 1)
	assert.Equal(t, "day", mockStore.periodArg)
}

func Test_ReportService_SalesInRange(t *testing.T) {
	// given
	customer := "Ana Torres"
	mockStore := &mockReportStore{sales: []store.SaleRow{
		{ID: uuid.New(), CustomerName: &customer, Total: 3000, PaymentMethod: "cash", CreatedAt: time.Now()},
	}}
	service := NewService(mockStore, &mockAlertSource{})

	// when
	sales, err := service.SalesInRange(context.Background(), "2026-08-01", "2026-08-31")

	// then
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, int64(3000), sales[0].Total)
	require.NotNil(t, sales[0].CustomerName)
	assert.Equal(t, "Ana Torres", *sales[0].CustomerName)
}
