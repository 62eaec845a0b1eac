// Package store provides an interface for catalog storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is the storage model for a catalog product. Optional attributes
// are pointers so an absent value survives the round trip to the database.
type Product struct {
	ID         uuid.UUID
	Name       string
	CategoryID *uuid.UUID
	BuyPrice   *int64
	SalePrice  int64
	OfferPrice *int64
	Quantity   int32
	MinStock   *int32
	Version    int32
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Category is the storage model for a product category.
type Category struct {
	ID        uuid.UUID
	Name      string
	Icon      string
	CreatedAt time.Time
}

// ProductParams carries the mutable attributes of a product for create and
// update operations.
type ProductParams struct {
	Name       string
	CategoryID *uuid.UUID
	BuyPrice   *int64
	SalePrice  int64
	OfferPrice *int64
	Quantity   int32
	MinStock   *int32
}

// CatalogStore is an interface for catalog storage operations.
// It abstracts the underlying data store, allowing for different implementations.
type CatalogStore interface {
	// FindProductByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindProductByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAllProducts returns products ordered by name with pagination.
	// Returns an empty slice if no products exist.
	FindAllProducts(ctx context.Context, offset, limit int32) ([]Product, error)

	// SearchProductsByName returns products whose name contains the given
	// term, case-insensitive, ordered by name.
	SearchProductsByName(ctx context.Context, term string, offset, limit int32) ([]Product, error)

	// CreateProduct adds a new product to the system.
	CreateProduct(ctx context.Context, params ProductParams) (*Product, error)

	// UpdateProduct modifies an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID and
	// ErrVersionConflict if the version is stale.
	UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams, version int32) (*Product, error)

	// DeleteProductByID removes a product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	DeleteProductByID(ctx context.Context, id uuid.UUID, version int32) error

	// FindCategoryByID retrieves a single category by its unique identifier.
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindAllCategories returns all categories ordered by name.
	FindAllCategories(ctx context.Context) ([]Category, error)

	// CreateCategory adds a new category.
	CreateCategory(ctx context.Context, name, icon string) (*Category, error)

	// UpdateCategory modifies an existing category.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	UpdateCategory(ctx context.Context, id uuid.UUID, name, icon string) (*Category, error)

	// DeleteCategoryByID removes a category by its unique identifier.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	DeleteCategoryByID(ctx context.Context, id uuid.UUID) error
}
