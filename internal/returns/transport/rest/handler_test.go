package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	reterrors "github.com/mvelarde/puntoventa/internal/returns/errors"
	"github.com/mvelarde/puntoventa/internal/returns/service"
	"github.com/stretchr/testify/assert"
)

// mockReturnService is a mock implementation of the ReturnService interface
type mockReturnService struct {
	ret     *service.ReturnDto
	returns []service.ReturnDto
	error   error
}

func (m *mockReturnService) CreateFull(_ context.Context, _ service.ReturnFullCreateDto) (*service.ReturnDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.ret, nil
}

func (m *mockReturnService) CreatePartial(_ context.Context, _ service.ReturnPartialCreateDto) (*service.ReturnDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.ret, nil
}

func (m *mockReturnService) FindByID(_ context.Context, _ uuid.UUID) (*service.ReturnDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.ret, nil
}

func (m *mockReturnService) FindAll(_ context.Context, _, _ int32) ([]service.ReturnDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.returns, nil
}

func (m *mockReturnService) FindBySaleID(_ context.Context, _ uuid.UUID) ([]service.ReturnDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.returns, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func Test_ReturnAPI_CreateFull(t *testing.T) {
	mockReturnID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockSaleID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	validBody := `{"sale_id":"` + mockSaleID.String() + `","reason":"damaged"}`

	testCases := []struct {
		name         string
		mockService  mockReturnService
		body         string
		expectedCode int
	}{
		{
			name: "Success - full return created",
			mockService: mockReturnService{
				ret: &service.ReturnDto{ID: mockReturnID.String(), SaleID: mockSaleID.String(), ReturnType: "full"},
			},
			body:         validBody,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - missing sale ID",
			mockService:  mockReturnService{},
			body:         `{"reason":"damaged"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - sale not found",
			mockService:  mockReturnService{error: reterrors.ErrSaleNotFound},
			body:         validBody,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - sale already cancelled",
			mockService:  mockReturnService{error: reterrors.ErrSaleAlreadyCancelled},
			body:         validBody,
			expectedCode: http.StatusConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, newTestLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/returns/full", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.CreateFull(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_ReturnAPI_CreatePartial(t *testing.T) {
	mockReturnID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockSaleID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")
	mockProductID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174002")
	validBody := `{"sale_id":"` + mockSaleID.String() + `","items":[{"product_id":"` + mockProductID.String() + `","quantity":1,"unit_price":1000}]}`

	testCases := []struct {
		name         string
		mockService  mockReturnService
		body         string
		expectedCode int
		bodyContains string
	}{
		{
			name: "Success - partial return created",
			mockService: mockReturnService{
				ret: &service.ReturnDto{ID: mockReturnID.String(), SaleID: mockSaleID.String(), ReturnType: "partial", TotalRefund: 1000},
			},
			body:         validBody,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - empty items rejected",
			mockService:  mockReturnService{},
			body:         `{"sale_id":"` + mockSaleID.String() + `","items":[]}`,
			expectedCode: http.StatusBadRequest,
			bodyContains: "validation_errors",
		},
		{
			name: "Error - over-return reports the offending product",
			mockService: mockReturnService{
				error: &reterrors.OverReturnError{
					ProductID: mockProductID, ProductName: "Coffee 500g",
					Sold: 2, AlreadyReturned: 1, Requested: 2,
				},
			},
			body:         validBody,
			expectedCode: http.StatusConflict,
			bodyContains: `"already_returned":1`,
		},
		{
			name:         "Error - item not in sale",
			mockService:  mockReturnService{error: reterrors.ErrItemNotInSale},
			body:         validBody,
			expectedCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, newTestLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/returns/partial", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.CreatePartial(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			if tc.bodyContains != "" {
				assert.Contains(t, rr.Body.String(), tc.bodyContains)
			}
		})
	}
}

func Test_ReturnAPI_FindAll(t *testing.T) {
	mockSaleID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")

	t.Run("Success - returns for a sale", func(t *testing.T) {
		// given
		api := NewHandler(&mockReturnService{
			returns: []service.ReturnDto{{ID: uuid.New().String(), SaleID: mockSaleID.String(), ReturnType: "partial"}},
		}, newTestLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/returns?sale_id="+mockSaleID.String(), nil)
		rr := httptest.NewRecorder()

		// when
		api.FindAll(rr, req)

		// then
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), mockSaleID.String())
	})

	t.Run("Error - malformed sale_id", func(t *testing.T) {
		// given
		api := NewHandler(&mockReturnService{}, newTestLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/returns?sale_id=nope", nil)
		rr := httptest.NewRecorder()

		// when
		api.FindAll(rr, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Success - paginated list", func(t *testing.T) {
		// given
		api := NewHandler(&mockReturnService{returns: []service.ReturnDto{}}, newTestLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/returns?offset=0&limit=20", nil)
		rr := httptest.NewRecorder()

		// when
		api.FindAll(rr, req)

		// then
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
