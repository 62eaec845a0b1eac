// Package service provides the implementation of catalog business logic.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mvelarde/puntoventa/internal/catalog/store"
)

// CatalogService defines the methods for managing products and categories.
// It abstracts the underlying business logic and data access.
type CatalogService interface {
	// FindProductByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindProductByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// FindAllProducts returns products ordered by name.
	// Returns an empty slice if no products exist.
	FindAllProducts(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// SearchProductsByName returns products whose name contains the term,
	// case-insensitive.
	SearchProductsByName(ctx context.Context, term string, offset, limit int32) ([]ProductDto, error)

	// CreateProduct adds a new product to the system.
	CreateProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// UpdateProduct modifies an existing product's details.
	// Returns ErrProductNotFound or ErrVersionConflict.
	UpdateProduct(ctx context.Context, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error)

	// DeleteProductByID removes a product by its ID and version.
	DeleteProductByID(ctx context.Context, id uuid.UUID, version int32) error

	// FindCategoryByID retrieves a category by its unique identifier.
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*CategoryDto, error)

	// FindAllCategories returns all categories ordered by name.
	FindAllCategories(ctx context.Context) ([]CategoryDto, error)

	// CreateCategory adds a new category.
	CreateCategory(ctx context.Context, category CategoryCreateDto) (*CategoryDto, error)

	// UpdateCategory modifies an existing category.
	UpdateCategory(ctx context.Context, id uuid.UUID, category CategoryCreateDto) (*CategoryDto, error)

	// DeleteCategoryByID removes a category by its ID.
	DeleteCategoryByID(ctx context.Context, id uuid.UUID) error
}

// Service implements CatalogService and provides methods to manage the catalog.
type Service struct {
	repository store.CatalogStore
}

// NewService creates a new instance of CatalogService with the provided repository.
func NewService(repo store.CatalogStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Prices are integer cents.
type ProductCreateDto struct {
	Name       string `json:"name"        validate:"required,max=100"`
	CategoryID string `json:"category_id" validate:"omitempty,uuid"`
	BuyPrice   *int64 `json:"buy_price"   validate:"omitempty,min=0"`
	SalePrice  int64  `json:"sale_price"  validate:"required,min=0"`
	OfferPrice *int64 `json:"offer_price" validate:"omitempty,min=0"`
	Quantity   int32  `json:"quantity"    validate:"min=0"`
	MinStock   *int32 `json:"min_stock"   validate:"omitempty,min=0"`
}

// ProductUpdateDto represents the data transfer object for updating a product.
// Version is required and used for optimistic concurrency control.
type ProductUpdateDto struct {
	Name       string `json:"name"        validate:"required,max=100"`
	CategoryID string `json:"category_id" validate:"omitempty,uuid"`
	BuyPrice   *int64 `json:"buy_price"   validate:"omitempty,min=0"`
	SalePrice  int64  `json:"sale_price"  validate:"required,min=0"`
	OfferPrice *int64 `json:"offer_price" validate:"omitempty,min=0"`
	Quantity   int32  `json:"quantity"    validate:"min=0"`
	MinStock   *int32 `json:"min_stock"   validate:"omitempty,min=0"`
	Version    int32  `json:"version"     validate:"required,min=1"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id,omitempty"`
	BuyPrice   *int64 `json:"buy_price,omitempty"`
	SalePrice  int64  `json:"sale_price"`
	OfferPrice *int64 `json:"offer_price,omitempty"`
	Quantity   int32  `json:"quantity"`
	MinStock   *int32 `json:"min_stock,omitempty"`
	Version    int32  `json:"version"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// CategoryCreateDto represents the data transfer object for creating or
// updating a category.
type CategoryCreateDto struct {
	Name string `json:"name" validate:"required,max=100"`
	Icon string `json:"icon" validate:"max=100"`
}

// CategoryDto represents the data transfer object for a category.
type CategoryDto struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	CreatedAt string `json:"created_at"`
}

// FindProductByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindProductByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toProductDto(product), nil
}

// FindAllProducts retrieves a page of products ordered by name.
func (s *Service) FindAllProducts(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindAllProducts(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toProductDtos(products), nil
}

// SearchProductsByName retrieves products matching the search term.
func (s *Service) SearchProductsByName(ctx context.Context, term string, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.SearchProductsByName(ctx, term, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return toProductDtos(products), nil
}

// CreateProduct creates a new product and returns it as a ProductDto.
func (s *Service) CreateProduct(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	params, err := toProductParams(product.Name, product.CategoryID, product.BuyPrice,
		product.SalePrice, product.OfferPrice, product.Quantity, product.MinStock)
	if err != nil {
		return nil, err
	}
	created, err := s.repository.CreateProduct(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toProductDto(created), nil
}

// UpdateProduct modifies an existing product's details and returns the updated product.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error) {
	params, err := toProductParams(product.Name, product.CategoryID, product.BuyPrice,
		product.SalePrice, product.OfferPrice, product.Quantity, product.MinStock)
	if err != nil {
		return nil, err
	}
	updated, err := s.repository.UpdateProduct(ctx, id, params, product.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	return toProductDto(updated), nil
}

// DeleteProductByID deletes a product by its ID and version.
func (s *Service) DeleteProductByID(ctx context.Context, id uuid.UUID, version int32) error {
	return s.repository.DeleteProductByID(ctx, id, version)
}

// FindCategoryByID retrieves a category by its ID.
func (s *Service) FindCategoryByID(ctx context.Context, id uuid.UUID) (*CategoryDto, error) {
	category, err := s.repository.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category by ID %s: %w", id, err)
	}
	return toCategoryDto(category), nil
}

// FindAllCategories retrieves all categories ordered by name.
func (s *Service) FindAllCategories(ctx context.Context) ([]CategoryDto, error) {
	categories, err := s.repository.FindAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	dtos := make([]CategoryDto, len(categories))
	for i, c := range categories {
		dtos[i] = *toCategoryDto(&c)
	}
	return dtos, nil
}

// CreateCategory creates a new category.
func (s *Service) CreateCategory(ctx context.Context, category CategoryCreateDto) (*CategoryDto, error) {
	created, err := s.repository.CreateCategory(ctx, category.Name, category.Icon)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return toCategoryDto(created), nil
}

// UpdateCategory modifies an existing category.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, category CategoryCreateDto) (*CategoryDto, error) {
	updated, err := s.repository.UpdateCategory(ctx, id, category.Name, category.Icon)
	if err != nil {
		return nil, fmt.Errorf("failed to update category with ID %s: %w", id, err)
	}
	return toCategoryDto(updated), nil
}

// DeleteCategoryByID deletes a category by its ID.
func (s *Service) DeleteCategoryByID(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteCategoryByID(ctx, id)
}

func toProductParams(name, categoryID string, buyPrice *int64, salePrice int64,
	offerPrice *int64, quantity int32, minStock *int32) (store.ProductParams, error) {
	params := store.ProductParams{
		Name:       name,
		BuyPrice:   buyPrice,
		SalePrice:  salePrice,
		OfferPrice: offerPrice,
		Quantity:   quantity,
		MinStock:   minStock,
	}
	if categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			return store.ProductParams{}, fmt.Errorf("invalid category ID %q: %w", categoryID, err)
		}
		params.CategoryID = &id
	}
	return params, nil
}

// toProductDto converts a store.Product to a ProductDto.
func toProductDto(product *store.Product) *ProductDto {
	dto := &ProductDto{
		ID:         product.ID.String(),
		Name:       product.Name,
		BuyPrice:   product.BuyPrice,
		SalePrice:  product.SalePrice,
		OfferPrice: product.OfferPrice,
		Quantity:   product.Quantity,
		MinStock:   product.MinStock,
		Version:    product.Version,
		CreatedAt:  product.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  product.UpdatedAt.Format(time.RFC3339),
	}
	if product.CategoryID != nil {
		dto.CategoryID = product.CategoryID.String()
	}
	return dto
}

func toProductDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i, p := range products {
		dtos[i] = *toProductDto(&p)
	}
	return dtos
}

// toCategoryDto converts a store.Category to a CategoryDto.
func toCategoryDto(category *store.Category) *CategoryDto {
	return &CategoryDto{
		ID:        category.ID.String(),
		Name:      category.Name,
		Icon:      category.Icon,
		CreatedAt: category.CreatedAt.Format(time.RFC3339),
	}
}
