// Package service provides the implementation of directory business logic.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mvelarde/puntoventa/internal/directory/store"
)

// DirectoryService defines the methods for managing customers and suppliers.
type DirectoryService interface {
	// FindCustomerByID retrieves a customer by its unique identifier.
	// Returns ErrCustomerNotFound if no customer exists with the given ID.
	FindCustomerByID(ctx context.Context, id uuid.UUID) (*CustomerDto, error)

	// FindAllCustomers returns customers ordered by name. When term is not
	// empty the list is filtered by a case-insensitive name search.
	FindAllCustomers(ctx context.Context, term string, offset, limit int32) ([]CustomerDto, error)

	// CreateCustomer adds a new customer.
	CreateCustomer(ctx context.Context, customer CustomerCreateDto) (*CustomerDto, error)

	// UpdateCustomer modifies an existing customer.
	UpdateCustomer(ctx context.Context, id uuid.UUID, customer CustomerCreateDto) (*CustomerDto, error)

	// DeleteCustomerByID removes a customer by its ID.
	DeleteCustomerByID(ctx context.Context, id uuid.UUID) error

	// FindSupplierByID retrieves a supplier by its unique identifier.
	// Returns ErrSupplierNotFound if no supplier exists with the given ID.
	FindSupplierByID(ctx context.Context, id uuid.UUID) (*SupplierDto, error)

	// FindAllSuppliers returns suppliers ordered by name.
	FindAllSuppliers(ctx context.Context, offset, limit int32) ([]SupplierDto, error)

	// CreateSupplier adds a new supplier.
	CreateSupplier(ctx context.Context, supplier SupplierCreateDto) (*SupplierDto, error)

	// UpdateSupplier modifies an existing supplier.
	UpdateSupplier(ctx context.Context, id uuid.UUID, supplier SupplierCreateDto) (*SupplierDto, error)

	// DeleteSupplierByID removes a supplier by its ID.
	DeleteSupplierByID(ctx context.Context, id uuid.UUID) error
}

// Service implements DirectoryService.
type Service struct {
	repository store.DirectoryStore
}

// NewService creates a new instance of DirectoryService with the provided repository.
func NewService(repo store.DirectoryStore) *Service {
	return &Service{
		repository: repo,
	}
}

// CustomerCreateDto represents the data transfer object for creating or
// updating a customer.
type CustomerCreateDto struct {
	Name    string `json:"name"    validate:"required,max=100"`
	City    string `json:"city"    validate:"max=100"`
	Phone   string `json:"phone"   validate:"max=30"`
	Email   string `json:"email"   validate:"omitempty,email"`
	Address string `json:"address" validate:"max=200"`
	Notes   string `json:"notes"   validate:"max=500"`
}

// CustomerDto represents the data transfer object for a customer.
type CustomerDto struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	City      string `json:"city,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

// SupplierCreateDto represents the data transfer object for creating or
// updating a supplier.
type SupplierCreateDto struct {
	Name    string `json:"name"    validate:"required,max=100"`
	City    string `json:"city"    validate:"max=100"`
	Company string `json:"company" validate:"max=100"`
	Phone   string `json:"phone"   validate:"max=30"`
	Email   string `json:"email"   validate:"omitempty,email"`
	Address string `json:"address" validate:"max=200"`
	Website string `json:"website" validate:"omitempty,url"`
	Notes   string `json:"notes"   validate:"max=500"`
}

// SupplierDto represents the data transfer object for a supplier.
type SupplierDto struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	City      string `json:"city,omitempty"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	Website   string `json:"website,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

// FindCustomerByID retrieves a customer by its ID.
func (s *Service) FindCustomerByID(ctx context.Context, id uuid.UUID) (*CustomerDto, error) {
	customer, err := s.repository.FindCustomerByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer by ID %s: %w", id, err)
	}
	return toCustomerDto(customer), nil
}

// FindAllCustomers retrieves a page of customers, optionally filtered by name.
func (s *Service) FindAllCustomers(ctx context.Context, term string, offset, limit int32) ([]CustomerDto, error) {
	var customers []store.Customer
	var err error
	if term != "" {
		customers, err = s.repository.SearchCustomersByName(ctx, term, offset, limit)
	} else {
		customers, err = s.repository.FindAllCustomers(ctx, offset, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customers: %w", err)
	}
	dtos := make([]CustomerDto, len(customers))
	for i, c := range customers {
		dtos[i] = *toCustomerDto(&c)
	}
	return dtos, nil
}

// CreateCustomer creates a new customer.
func (s *Service) CreateCustomer(ctx context.Context, customer CustomerCreateDto) (*CustomerDto, error) {
	created, err := s.repository.CreateCustomer(ctx, toCustomerParams(customer))
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return toCustomerDto(created), nil
}

// UpdateCustomer modifies an existing customer.
func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, customer CustomerCreateDto) (*CustomerDto, error) {
	updated, err := s.repository.UpdateCustomer(ctx, id, toCustomerParams(customer))
	if err != nil {
		return nil, fmt.Errorf("failed to update customer with ID %s: %w", id, err)
	}
	return toCustomerDto(updated), nil
}

// DeleteCustomerByID deletes a customer by its ID.
func (s *Service) DeleteCustomerByID(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteCustomerByID(ctx, id)
}

// FindSupplierByID retrieves a supplier by its ID.
func (s *Service) FindSupplierByID(ctx context.Context, id uuid.UUID) (*SupplierDto, error) {
	supplier, err := s.repository.FindSupplierByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier by ID %s: %w", id, err)
	}
	return toSupplierDto(supplier), nil
}

// FindAllSuppliers retrieves a page of suppliers ordered by name.
func (s *Service) FindAllSuppliers(ctx context.Context, offset, limit int32) ([]SupplierDto, error) {
	suppliers, err := s.repository.FindAllSuppliers(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch suppliers: %w", err)
	}
	dtos := make([]SupplierDto, len(suppliers))
	for i, sup := range suppliers {
		dtos[i] = *toSupplierDto(&sup)
	}
	return dtos, nil
}

// CreateSupplier creates a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, supplier SupplierCreateDto) (*SupplierDto, error) {
	created, err := s.repository.CreateSupplier(ctx, toSupplierParams(supplier))
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return toSupplierDto(created), nil
}

// UpdateSupplier modifies an existing supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id uuid.UUID, supplier SupplierCreateDto) (*SupplierDto, error) {
	updated, err := s.repository.UpdateSupplier(ctx, id, toSupplierParams(supplier))
	if err != nil {
		return nil, fmt.Errorf("failed to update supplier with ID %s: %w", id, err)
	}
	return toSupplierDto(updated), nil
}

// DeleteSupplierByID deletes a supplier by its ID.
func (s *Service) DeleteSupplierByID(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteSupplierByID(ctx, id)
}

func toCustomerParams(dto CustomerCreateDto) store.CustomerParams {
	return store.CustomerParams{
		Name:    dto.Name,
		City:    dto.City,
		Phone:   dto.Phone,
		Email:   dto.Email,
		Address: dto.Address,
		Notes:   dto.Notes,
	}
}

func toCustomerDto(customer *store.Customer) *CustomerDto {
	return &CustomerDto{
		ID:        customer.ID.String(),
		Name:      customer.Name,
		City:      customer.City,
		Phone:     customer.Phone,
		Email:     customer.Email,
		Address:   customer.Address,
		Notes:     customer.Notes,
		CreatedAt: customer.CreatedAt.Format(time.RFC3339),
	}
}

func toSupplierParams(dto SupplierCreateDto) store.SupplierParams {
	return store.SupplierParams{
		Name:    dto.Name,
		City:    dto.City,
		Company: dto.Company,
		Phone:   dto.Phone,
		Email:   dto.Email,
		Address: dto.Address,
		Website: dto.Website,
		Notes:   dto.Notes,
	}
}

func toSupplierDto(supplier *store.Supplier) *SupplierDto {
	return &SupplierDto{
		ID:        supplier.ID.String(),
		Name:      supplier.Name,
		City:      supplier.City,
		Company:   supplier.Company,
		Phone:     supplier.Phone,
		Email:     supplier.Email,
		Address:   supplier.Address,
		Website:   supplier.Website,
		Notes:     supplier.Notes,
		CreatedAt: supplier.CreatedAt.Format(time.RFC3339),
	}
}
