package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	direrrors "github.com/mvelarde/puntoventa/internal/directory/errors"
)

const customerColumns = `id, name, city, phone, email, address, notes, created_at`
const supplierColumns = `id, name, city, company, phone, email, address, website, notes, created_at`

// PgStore implements DirectoryStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of DirectoryStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.City, &c.Phone, &c.Email, &c.Address, &c.Notes, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanSupplier(row pgx.Row) (*Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.City, &s.Company, &s.Phone, &s.Email, &s.Address, &s.Website, &s.Notes, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindCustomerByID retrieves a customer by its unique identifier.
func (p *PgStore) FindCustomerByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	row := p.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, direrrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}
	return customer, nil
}

// FindAllCustomers returns a page of customers ordered by name.
func (p *PgStore) FindAllCustomers(ctx context.Context, offset, limit int32) ([]Customer, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY name OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return collectCustomers(rows)
}

// SearchCustomersByName returns customers whose name contains the term, case-insensitive.
func (p *PgStore) SearchCustomersByName(ctx context.Context, term string, offset, limit int32) ([]Customer, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE name ILIKE '%' || $1 || '%' ORDER BY name OFFSET $2 LIMIT $3`,
		term, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	return collectCustomers(rows)
}

func collectCustomers(rows pgx.Rows) ([]Customer, error) {
	defer rows.Close()
	customers := make([]Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// CreateCustomer adds a new customer.
func (p *PgStore) CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO customers (name, city, phone, email, address, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+customerColumns,
		params.Name, params.City, params.Phone, params.Email, params.Address, params.Notes)
	customer, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

// UpdateCustomer modifies an existing customer.
func (p *PgStore) UpdateCustomer(ctx context.Context, id uuid.UUID, params CustomerParams) (*Customer, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE customers
		 SET name = $2, city = $3, phone = $4, email = $5, address = $6, notes = $7
		 WHERE id = $1
		 RETURNING `+customerColumns,
		id, params.Name, params.City, params.Phone, params.Email, params.Address, params.Notes)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, direrrors.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

// DeleteCustomerByID removes a customer by its unique identifier.
func (p *PgStore) DeleteCustomerByID(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return direrrors.ErrCustomerNotFound
	}
	return nil
}

// FindSupplierByID retrieves a supplier by its unique identifier.
func (p *PgStore) FindSupplierByID(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	row := p.db.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
	supplier, err := scanSupplier(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, direrrors.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to find supplier by ID: %w", err)
	}
	return supplier, nil
}

// FindAllSuppliers returns a page of suppliers ordered by name.
func (p *PgStore) FindAllSuppliers(ctx context.Context, offset, limit int32) ([]Supplier, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+supplierColumns+` FROM suppliers ORDER BY name OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()
	suppliers := make([]Supplier, 0)
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, *s)
	}
	return suppliers, rows.Err()
}

// CreateSupplier adds a new supplier.
func (p *PgStore) CreateSupplier(ctx context.Context, params SupplierParams) (*Supplier, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO suppliers (name, city, company, phone, email, address, website, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+supplierColumns,
		params.Name, params.City, params.Company, params.Phone, params.Email, params.Address, params.Website, params.Notes)
	supplier, err := scanSupplier(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return supplier, nil
}

// UpdateSupplier modifies an existing supplier.
func (p *PgStore) UpdateSupplier(ctx context.Context, id uuid.UUID, params SupplierParams) (*Supplier, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE suppliers
		 SET name = $2, city = $3, company = $4, phone = $5, email = $6, address = $7, website = $8, notes = $9
		 WHERE id = $1
		 RETURNING `+supplierColumns,
		id, params.Name, params.City, params.Company, params.Phone, params.Email, params.Address, params.Website, params.Notes)
	supplier, err := scanSupplier(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, direrrors.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}

// DeleteSupplierByID removes a supplier by its unique identifier.
func (p *PgStore) DeleteSupplierByID(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return direrrors.ErrSupplierNotFound
	}
	return nil
}
