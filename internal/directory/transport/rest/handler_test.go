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
	direrrors "github.com/mvelarde/puntoventa/internal/directory/errors"
	"github.com/mvelarde/puntoventa/internal/directory/service"
	"github.com/stretchr/testify/assert"
)

// mockDirectoryService is a mock implementation of the DirectoryService interface
type mockDirectoryService struct {
	customer  *service.CustomerDto
	customers []service.CustomerDto
	supplier  *service.SupplierDto
	suppliers []service.SupplierDto
	error     error
}

func (m *mockDirectoryService) FindCustomerByID(_ context.Context, _ uuid.UUID) (*service.CustomerDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.customer, nil
}

func (m *mockDirectoryService) FindAllCustomers(_ context.Context, _ string, _, _ int32) ([]service.CustomerDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.customers, nil
}

func (m *mockDirectoryService) CreateCustomer(_ context.Context, _ service.CustomerCreateDto) (*service.CustomerDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.customer, nil
}

func (m *mockDirectoryService) UpdateCustomer(_ context.Context, _ uuid.UUID, _ service.CustomerCreateDto) (*service.CustomerDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.customer, nil
}

func (m *mockDirectoryService) DeleteCustomerByID(_ context.Context, _ uuid.UUID) error {
	return m.error
}

func (m *mockDirectoryService) FindSupplierByID(_ context.Context, _ uuid.UUID) (*service.SupplierDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.supplier, nil
}

func (m *mockDirectoryService) FindAllSuppliers(_ context.Context, _, _ int32) ([]service.SupplierDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.suppliers, nil
}

func (m *mockDirectoryService) CreateSupplier(_ context.Context, _ service.SupplierCreateDto) (*service.SupplierDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.supplier, nil
}

func (m *mockDirectoryService) UpdateSupplier(_ context.Context, _ uuid.UUID, _ service.SupplierCreateDto) (*service.SupplierDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.supplier, nil
}

func (m *mockDirectoryService) DeleteSupplierByID(_ context.Context, _ uuid.UUID) error {
	return m.error
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func Test_DirectoryAPI_Customers(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	createdAt := time.Now().Format(time.RFC3339)
	customer := &service.CustomerDto{ID: mockID.String(), Name: "Maria Lopez", Phone: "555-0134", CreatedAt: createdAt}

	t.Run("Success - customer found", func(t *testing.T) {
		// given
		api := NewHandler(&mockDirectoryService{customer: customer}, newTestLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+mockID.String(), nil)
		req.SetPathValue("id", mockID.String())
		rr := httptest.NewRecorder()

		// when
		api.FindCustomerByID(rr, req)

		// then
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Maria Lopez")
	})

	t.Run("Error - customer not found", func(t *testing.T) {
		// given
		api := NewHandler(&mockDirectoryService{error: direrrors.ErrCustomerNotFound}, newTestLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+mockID.String(), nil)
		req.SetPathValue("id", mockID.String())
		rr := httptest.NewRecorder()

		// when
		api.FindCustomerByID(rr, req)

		// then
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Success - customer created", func(t *testing.T) {
		// given
		api := NewHandler(&mockDirectoryService{customer: customer}, newTestLogger())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers",
			strings.NewReader(`{"name":"Maria Lopez","phone":"555-0134"}`))
		rr := httptest.NewRecorder()

		// when
		api.CreateCustomer(rr, req)

		// then
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Error - invalid email rejected", func(t *testing.T) {
		// given
		api := NewHandler(&mockDirectoryService{}, newTestLogger())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers",
			strings.NewReader(`{"name":"Maria Lopez","email":"not-an-email"}`))
		rr := httptest.NewRecorder()

		// when
		api.CreateCustomer(rr, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "validation_errors")
	})

	t.Run("Success - customers listed with pagination", func(t *testing.T) {
		// given
		api := NewHandler(&mockDirectoryService{customers: []service.CustomerDto{*customer}}, newTestLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers?offset=0&limit=20", nil)
		rr := httptest.NewRecorder()

		// when
		api.FindAllCustomers(rr, req)

		// then
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Error - missing pagination params", func(t *testing.T) {
		// given
		api := NewHandler(&mockDirectoryService{}, newTestLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
		rr := httptest.NewRecorder()

		// when
		api.FindAllCustomers(rr, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func Test_DirectoryAPI_Suppliers(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	createdAt := time.Now().Format(time.RFC3339)
	supplier := &service.SupplierDto{ID: mockID.String(), Name: "Distribuidora Norte", Company: "Norte SA", CreatedAt: createdAt}

	t.Run("Success - supplier created", func(t *testing.T) {
		// given
		api := NewHandler(&mockDirectoryService{supplier: supplier}, newTestLogger())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/suppliers",
			strings.NewReader(`{"name":"Distribuidora Norte","company":"Norte SA"}`))
		rr := httptest.NewRecorder()

		// when
		api.CreateSupplier(rr, req)

		// then
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), "Norte SA")
	})

	t.Run("Error - supplier not found on delete", func(t *testing.T) {
		// given
		api := NewHandler(&mockDirectoryService{error: direrrors.ErrSupplierNotFound}, newTestLogger())
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/suppliers/"+mockID.String(), nil)
		req.SetPathValue("id", mockID.String())
		rr := httptest.NewRecorder()

		// when
		api.DeleteSupplierByID(rr, req)

		// then
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Error - service error on list", func(t *testing.T) {
		// given
		api := NewHandler(&mockDirectoryService{error: errors.New("service unavailable")}, newTestLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/v1/suppliers?offset=0&limit=20", nil)
		rr := httptest.NewRecorder()

		// when
		api.FindAllSuppliers(rr, req)

		// then
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
