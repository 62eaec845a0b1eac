package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	direrrors "github.com/mvelarde/puntoventa/internal/directory/errors"
	"github.com/mvelarde/puntoventa/internal/directory/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDirectoryStore is a mock implementation of the DirectoryStore interface
type mockDirectoryStore struct {
	customer  *store.Customer
	customers []store.Customer
	supplier  *store.Supplier
	suppliers []store.Supplier
	error     error

	searchedTerm string
}

func (m *mockDirectoryStore) FindCustomerByID(_ context.Context, _ uuid.UUID) (*store.Customer, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.customer, nil
}

func (m *mockDirectoryStore) FindAllCustomers(_ context.Context, _, _ int32) ([]store.Customer, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.customers, nil
}

func (m *mockDirectoryStore) SearchCustomersByName(_ context.Context, term string, _, _ int32) ([]store.Customer, error) {
	m.searchedTerm = term
	if m.error != nil {
		return nil, m.error
	}
	return m.customers, nil
}

func (m *mockDirectoryStore) CreateCustomer(_ context.Context, _ store.CustomerParams) (*store.Customer, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.customer, nil
}

func (m *mockDirectoryStore) UpdateCustomer(_ context.Context, _ uuid.UUID, _ store.CustomerParams) (*store.Customer, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.customer, nil
}

func (m *mockDirectoryStore) DeleteCustomerByID(_ context.Context, _ uuid.UUID) error {
	return m.error
}

func (m *mockDirectoryStore) FindSupplierByID(_ context.Context, _ uuid.UUID) (*store.Supplier, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.supplier, nil
}

func (m *mockDirectoryStore) FindAllSuppliers(_ context.Context, _, _ int32) ([]store.Supplier, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.suppliers, nil
}

func (m *mockDirectoryStore) CreateSupplier(_ context.Context, _ store.SupplierParams) (*store.Supplier, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.supplier, nil
}

func (m *mockDirectoryStore) UpdateSupplier(_ context.Context, _ uuid.UUID, _ store.SupplierParams) (*store.Supplier, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.supplier, nil
}

func (m *mockDirectoryStore) DeleteSupplierByID(_ context.Context, _ uuid.UUID) error {
	return m.error
}

func Test_DirectoryService_FindCustomerByID(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	createdAt := time.Now()

	testCases := []struct {
		name        string
		mockStore   *mockDirectoryStore
		expected    *CustomerDto
		expectError error
	}{
		{
			name: "Success - customer found",
			mockStore: &mockDirectoryStore{
				customer: &store.Customer{ID: mockID, Name: "Maria Lopez", Phone: "555-0134", CreatedAt: createdAt},
			},
			expected: &CustomerDto{
				ID:        mockID.String(),
				Name:      "Maria Lopez",
				Phone:     "555-0134",
				CreatedAt: createdAt.Format(time.RFC3339),
			},
		},
		{
			name:        "Error - customer not found",
			mockStore:   &mockDirectoryStore{error: direrrors.ErrCustomerNotFound},
			expectError: direrrors.ErrCustomerNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore)
			// when
			found, err := service.FindCustomerByID(context.Background(), mockID)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_DirectoryService_FindAllCustomers(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	createdAt := time.Now()

	t.Run("Success - search term routed to name search", func(t *testing.T) {
		// given
		mockStore := &mockDirectoryStore{
			customers: []store.Customer{{ID: mockID, Name: "Maria Lopez", CreatedAt: createdAt}},
		}
		service := NewService(mockStore)
		// when
		list, err := service.FindAllCustomers(context.Background(), "maria", 0, 20)
		// then
		require.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Equal(t, "maria", mockStore.searchedTerm)
	})

	t.Run("Success - empty term lists all", func(t *testing.T) {
		// given
		mockStore := &mockDirectoryStore{customers: []store.Customer{}}
		service := NewService(mockStore)
		// when
		list, err := service.FindAllCustomers(context.Background(), "", 0, 20)
		// then
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.Empty(t, mockStore.searchedTerm)
	})

	t.Run("Error - store error", func(t *testing.T) {
		// given
		service := NewService(&mockDirectoryStore{error: assert.AnError})
		// when
		list, err := service.FindAllCustomers(context.Background(), "", 0, 20)
		// then
		assert.Error(t, err)
		assert.Nil(t, list)
	})
}

func Test_DirectoryService_Suppliers(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	createdAt := time.Now()

	t.Run("Success - supplier created", func(t *testing.T) {
		// given
		mockStore := &mockDirectoryStore{
			supplier: &store.Supplier{ID: mockID, Name: "Distribuidora Norte", Company: "Norte SA", CreatedAt: createdAt},
		}
		service := NewService(mockStore)
		// when
		created, err := service.CreateSupplier(context.Background(), SupplierCreateDto{Name: "Distribuidora Norte", Company: "Norte SA"})
		// then
		require.NoError(t, err)
		assert.Equal(t, mockID.String(), created.ID)
		assert.Equal(t, "Norte SA", created.Company)
	})

	t.Run("Error - supplier not found on update", func(t *testing.T) {
		// given
		service := NewService(&mockDirectoryStore{error: direrrors.ErrSupplierNotFound})
		// when
		updated, err := service.UpdateSupplier(context.Background(), mockID, SupplierCreateDto{Name: "Distribuidora Norte"})
		// then
		assert.ErrorIs(t, err, direrrors.ErrSupplierNotFound)
		assert.Nil(t, updated)
	})

	t.Run("Success - suppliers listed", func(t *testing.T) {
		// given
		mockStore := &mockDirectoryStore{
			suppliers: []store.Supplier{
				{ID: mockID, Name: "Distribuidora Norte", CreatedAt: createdAt},
				{ID: uuid.New(), Name: "Lacteos del Sur", CreatedAt: createdAt},
			},
		}
		service := NewService(mockStore)
		// when
		list, err := service.FindAllSuppliers(context.Background(), 0, 20)
		// then
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}
