// Package store provides an interface for directory storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Customer is the storage model for a customer.
type Customer struct {
	ID        uuid.UUID
	Name      string
	City      string
	Phone     string
	Email     string
	Address   string
	Notes     string
	CreatedAt time.Time
}

// Supplier is the storage model for a supplier.
type Supplier struct {
	ID        uuid.UUID
	Name      string
	City      string
	Company   string
	Phone     string
	Email     string
	Address   string
	Website   string
	Notes     string
	CreatedAt time.Time
}

// CustomerParams carries the mutable attributes of a customer.
type CustomerParams struct {
	Name    string
	City    string
	Phone   string
	Email   string
	Address string
	Notes   string
}

// SupplierParams carries the mutable attributes of a supplier.
type SupplierParams struct {
	Name    string
	City    string
	Company string
	Phone   string
	Email   string
	Address string
	Website string
	Notes   string
}

// DirectoryStore is an interface for customer and supplier storage operations.
type DirectoryStore interface {
	// FindCustomerByID retrieves a single customer by its unique identifier.
	// Returns ErrCustomerNotFound if no customer exists with the given ID.
	FindCustomerByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindAllCustomers returns customers ordered by name with pagination.
	FindAllCustomers(ctx context.Context, offset, limit int32) ([]Customer, error)

	// SearchCustomersByName returns customers whose name contains the given
	// term, case-insensitive.
	SearchCustomersByName(ctx context.Context, term string, offset, limit int32) ([]Customer, error)

	// CreateCustomer adds a new customer.
	CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error)

	// UpdateCustomer modifies an existing customer.
	// Returns ErrCustomerNotFound if no customer exists with the given ID.
	UpdateCustomer(ctx context.Context, id uuid.UUID, params CustomerParams) (*Customer, error)

	// DeleteCustomerByID removes a customer by its unique identifier.
	DeleteCustomerByID(ctx context.Context, id uuid.UUID) error

	// FindSupplierByID retrieves a single supplier by its unique identifier.
	// Returns ErrSupplierNotFound if no supplier exists with the given ID.
	FindSupplierByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindAllSuppliers returns suppliers ordered by name with pagination.
	FindAllSuppliers(ctx context.Context, offset, limit int32) ([]Supplier, error)

	// CreateSupplier adds a new supplier.
	CreateSupplier(ctx context.Context, params SupplierParams) (*Supplier, error)

	// UpdateSupplier modifies an existing supplier.
	// Returns ErrSupplierNotFound if no supplier exists with the given ID.
	UpdateSupplier(ctx context.Context, id uuid.UUID, params SupplierParams) (*Supplier, error)

	// DeleteSupplierByID removes a supplier by its unique identifier.
	DeleteSupplierByID(ctx context.Context, id uuid.UUID) error
}
