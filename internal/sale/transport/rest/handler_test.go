package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	salerrors "github.com/mvelarde/puntoventa/internal/sale/errors"
	"github.com/mvelarde/puntoventa/internal/sale/service"
	"github.com/stretchr/testify/assert"
)

// mockSaleService is a mock implementation of the SaleService interface
type mockSaleService struct {
	sale  *service.SaleDto
	sales []service.SaleDto
	error error
}

func (m *mockSaleService) Create(_ context.Context, _ service.SaleCreateDto) (*service.SaleDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sale, nil
}

func (m *mockSaleService) FindByID(_ context.Context, _ uuid.UUID) (*service.SaleDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sale, nil
}

func (m *mockSaleService) FindAll(_ context.Context, _, _ int32) ([]service.SaleDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sales, nil
}

func (m *mockSaleService) Cancel(_ context.Context, _ uuid.UUID) (*service.SaleDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sale, nil
}

func (m *mockSaleService) Delete(_ context.Context, _ uuid.UUID) error {
	return m.error
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func Test_SaleAPI_Create(t *testing.T) {
	mockSaleID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockProductID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	createdAt := time.Now().Format(time.RFC3339)

	committedSale := &service.SaleDto{
		ID:            mockSaleID.String(),
		Subtotal:      2500,
		Total:         2500,
		PaymentMethod: "cash",
		Status:        "completed",
		CreatedAt:     createdAt,
	}
	validBody := `{"items":[{"product_id":"` + mockProductID.String() + `","quantity":2}],"payment_method":"cash"}`

	testCases := []struct {
		name         string
		mockService  mockSaleService
		body         string
		expectedCode int
		bodyContains string
	}{
		{
			name:         "Success - sale committed",
			mockService:  mockSaleService{sale: committedSale},
			body:         validBody,
			expectedCode: http.StatusCreated,
			bodyContains: mockSaleID.String(),
		},
		{
			name:         "Error - empty items rejected",
			mockService:  mockSaleService{},
			body:         `{"items":[],"payment_method":"cash"}`,
			expectedCode: http.StatusBadRequest,
			bodyContains: "validation_errors",
		},
		{
			name:         "Error - zero quantity rejected",
			mockService:  mockSaleService{},
			body:         `{"items":[{"product_id":"` + mockProductID.String() + `","quantity":0}],"payment_method":"cash"}`,
			expectedCode: http.StatusBadRequest,
			bodyContains: "validation_errors",
		},
		{
			name:         "Error - unknown payment method rejected",
			mockService:  mockSaleService{},
			body:         `{"items":[{"product_id":"` + mockProductID.String() + `","quantity":1}],"payment_method":"bitcoin"}`,
			expectedCode: http.StatusBadRequest,
			bodyContains: "validation_errors",
		},
		{
			name: "Error - insufficient stock reports the offending product",
			mockService: mockSaleService{
				error: &salerrors.InsufficientStockError{
					ProductID: mockProductID, ProductName: "Coffee 500g", Available: 2, Requested: 4,
				},
			},
			body:         validBody,
			expectedCode: http.StatusConflict,
			bodyContains: `"available":2`,
		},
		{
			name:         "Error - product not found",
			mockService:  mockSaleService{error: salerrors.ErrProductNotFound},
			body:         validBody,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - service error",
			mockService:  mockSaleService{error: errors.New("service unavailable")},
			body:         validBody,
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, newTestLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.Create(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			if tc.bodyContains != "" {
				assert.Contains(t, rr.Body.String(), tc.bodyContains)
			}
		})
	}
}

func Test_SaleAPI_FindByID(t *testing.T) {
	mockSaleID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	testCases := []struct {
		name         string
		mockService  mockSaleService
		saleID       string
		expectedCode int
	}{
		{
			name: "Success - sale found",
			mockService: mockSaleService{
				sale: &service.SaleDto{ID: mockSaleID.String(), Status: "completed", PaymentMethod: "cash"},
			},
			saleID:       mockSaleID.String(),
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - invalid id",
			mockService:  mockSaleService{},
			saleID:       "123-invalid-id",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - sale not found",
			mockService:  mockSaleService{error: salerrors.ErrSaleNotFound},
			saleID:       mockSaleID.String(),
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, newTestLogger())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+tc.saleID, nil)
			req.SetPathValue("id", tc.saleID)
			rr := httptest.NewRecorder()

			// when
			api.FindByID(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_SaleAPI_Cancel(t *testing.T) {
	mockSaleID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	testCases := []struct {
		name         string
		mockService  mockSaleService
		expectedCode int
	}{
		{
			name: "Success - sale cancelled",
			mockService: mockSaleService{
				sale: &service.SaleDto{ID: mockSaleID.String(), Status: "cancelled", PaymentMethod: "cash"},
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - already cancelled",
			mockService:  mockSaleService{error: salerrors.ErrSaleAlreadyCancelled},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - sale not found",
			mockService:  mockSaleService{error: salerrors.ErrSaleNotFound},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, newTestLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/"+mockSaleID.String()+"/cancel", nil)
			req.SetPathValue("id", mockSaleID.String())
			rr := httptest.NewRecorder()

			// when
			api.Cancel(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}
