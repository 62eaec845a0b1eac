package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	caterrors "github.com/mvelarde/puntoventa/internal/catalog/errors"
)

const productColumns = `id, name, category_id, buy_price, sale_price, offer_price, quantity, min_stock, version, created_at, updated_at`

// PgStore implements CatalogStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of CatalogStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.BuyPrice, &p.SalePrice,
		&p.OfferPrice, &p.Quantity, &p.MinStock, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// FindProductByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, caterrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAllProducts retrieves products ordered by name with pagination support.
func (p *PgStore) FindAllProducts(ctx context.Context, offset, limit int32) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// SearchProductsByName retrieves products matching the term, case-insensitive.
func (p *PgStore) SearchProductsByName(ctx context.Context, term string, offset, limit int32) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE name ILIKE '%' || $1 || '%' ORDER BY name LIMIT $2 OFFSET $3`,
		term, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

// CreateProduct adds a new product to the system.
func (p *PgStore) CreateProduct(ctx context.Context, params ProductParams) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO products (name, category_id, buy_price, sale_price, offer_price, quantity, min_stock)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+productColumns,
		params.Name, params.CategoryID, params.BuyPrice, params.SalePrice,
		params.OfferPrice, params.Quantity, params.MinStock)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct modifies an existing product's details guarded by its version.
// Returns ErrProductNotFound if the product does not exist and
// ErrVersionConflict if the row exists but the version is stale.
func (p *PgStore) UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams, version int32) (*Product, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, category_id = $3, buy_price = $4, sale_price = $5,
		     offer_price = $6, quantity = $7, min_stock = $8,
		     version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $9
		 RETURNING `+productColumns,
		id, params.Name, params.CategoryID, params.BuyPrice, params.SalePrice,
		params.OfferPrice, params.Quantity, params.MinStock, version)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing row from an optimistic lock failure.
			if _, findErr := p.FindProductByID(ctx, id); findErr != nil {
				return nil, findErr
			}
			return nil, caterrors.ErrVersionConflict
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProductByID removes a product by its unique identifier and version.
func (p *PgStore) DeleteProductByID(ctx context.Context, id uuid.UUID, version int32) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, findErr := p.FindProductByID(ctx, id); findErr != nil {
			return findErr
		}
		return caterrors.ErrVersionConflict
	}
	return nil
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindCategoryByID retrieves a category by its unique identifier.
func (p *PgStore) FindCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	row := p.db.QueryRow(ctx, `SELECT id, name, icon, created_at FROM categories WHERE id = $1`, id)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, caterrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}
	return category, nil
}

// FindAllCategories retrieves all categories ordered by name.
func (p *PgStore) FindAllCategories(ctx context.Context) ([]Category, error) {
	rows, err := p.db.Query(ctx, `SELECT id, name, icon, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to find all categories: %w", err)
	}
	defer rows.Close()
	categories := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// CreateCategory adds a new category.
func (p *PgStore) CreateCategory(ctx context.Context, name, icon string) (*Category, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO categories (name, icon) VALUES ($1, $2) RETURNING id, name, icon, created_at`, name, icon)
	category, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// UpdateCategory modifies an existing category.
func (p *PgStore) UpdateCategory(ctx context.Context, id uuid.UUID, name, icon string) (*Category, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE categories SET name = $2, icon = $3 WHERE id = $1 RETURNING id, name, icon, created_at`,
		id, name, icon)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, caterrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategoryByID removes a category by its unique identifier.
func (p *PgStore) DeleteCategoryByID(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return caterrors.ErrCategoryNotFound
	}
	return nil
}
