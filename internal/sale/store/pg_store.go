package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	salerrors "github.com/mvelarde/puntoventa/internal/sale/errors"
)

const saleColumns = `id, customer_id, customer_name, subtotal, discount, total, payment_method, status, created_at`
const saleItemColumns = `id, sale_id, product_id, product_name, quantity, unit_price, line_total`

// PgStore implements SaleStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of SaleStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// lockedProduct holds the row state read under FOR UPDATE.
type lockedProduct struct {
	id         uuid.UUID
	name       string
	salePrice  int64
	offerPrice *int64
	quantity   int32
	minStock   *int32
}

// lockProducts reads the referenced product rows inside tx, locking them in
// ascending ID order so concurrent commits over overlapping products cannot
// deadlock. All reads happen before any write.
func lockProducts(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*lockedProduct, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	rows, err := tx.Query(ctx,
		`SELECT id, name, sale_price, offer_price, quantity, min_stock
		 FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to lock product rows: %w", err)
	}
	defer rows.Close()

	locked := make(map[uuid.UUID]*lockedProduct, len(sorted))
	for rows.Next() {
		var p lockedProduct
		if err := rows.Scan(&p.id, &p.name, &p.salePrice, &p.offerPrice, &p.quantity, &p.minStock); err != nil {
			return nil, err
		}
		locked[p.id] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range sorted {
		if _, ok := locked[id]; !ok {
			return nil, fmt.Errorf("%w: %s", salerrors.ErrProductNotFound, id)
		}
	}
	return locked, nil
}

// CreateSale commits a sale atomically. The referenced product rows are
// locked in a stable order, every line is validated against the current
// stock, and only then are the decrements and inserts applied. A failed
// validation rolls the whole transaction back.
func (p *PgStore) CreateSale(ctx context.Context, params SaleParams, items []SaleItemParams) (*Sale, []SaleItem, []StockLevel, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Sum requested quantities per product: the same product may appear on
	// several lines and the stock guard applies to the combined amount.
	requested := make(map[uuid.UUID]int32)
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, seen := requested[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	locked, err := lockProducts(ctx, tx, ids)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, id := range ids {
		product := locked[id]
		if product.quantity < requested[id] {
			return nil, nil, nil, &salerrors.InsufficientStockError{
				ProductID:   id,
				ProductName: product.name,
				Available:   product.quantity,
				Requested:   requested[id],
			}
		}
	}

	for _, id := range ids {
		_, err = tx.Exec(ctx,
			`UPDATE products SET quantity = quantity - $2, updated_at = now() WHERE id = $1`,
			id, requested[id])
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	var subtotal int64
	lineTotals := make([]int64, len(items))
	unitPrices := make([]int64, len(items))
	for i, item := range items {
		product := locked[item.ProductID]
		unitPrice := product.salePrice
		if product.offerPrice != nil {
			unitPrice = *product.offerPrice
		}
		if item.UnitPrice != nil {
			unitPrice = *item.UnitPrice
		}
		unitPrices[i] = unitPrice
		lineTotals[i] = unitPrice * int64(item.Quantity)
		subtotal += lineTotals[i]
	}
	total := subtotal - params.Discount
	if total < 0 {
		total = 0
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO sales (customer_id, customer_name, subtotal, discount, total, payment_method)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+saleColumns,
		params.CustomerID, params.CustomerName, subtotal, params.Discount, total, params.PaymentMethod)
	sale, err := scanSale(row)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to insert sale: %w", err)
	}

	saleItems := make([]SaleItem, 0, len(items))
	for i, item := range items {
		row := tx.QueryRow(ctx,
			`INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING `+saleItemColumns,
			sale.ID, item.ProductID, locked[item.ProductID].name, item.Quantity, unitPrices[i], lineTotals[i])
		saleItem, err := scanSaleItem(row)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to insert sale item: %w", err)
		}
		saleItems = append(saleItems, *saleItem)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	levels := make([]StockLevel, 0, len(ids))
	for _, id := range ids {
		product := locked[id]
		levels = append(levels, StockLevel{
			ProductID: id,
			Name:      product.name,
			Quantity:  product.quantity - requested[id],
			MinStock:  product.minStock,
		})
	}
	return sale, saleItems, levels, nil
}

// FindByID retrieves a sale and its line items.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Sale, []SaleItem, error) {
	row := p.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, salerrors.ErrSaleNotFound
		}
		return nil, nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	items, err := p.findItemsBySaleID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sale, items, nil
}

func (p *PgStore) findItemsBySaleID(ctx context.Context, saleID uuid.UUID) ([]SaleItem, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+saleItemColumns+` FROM sale_items WHERE sale_id = $1`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale items: %w", err)
	}
	defer rows.Close()
	items := make([]SaleItem, 0)
	for rows.Next() {
		item, err := scanSaleItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// FindAll returns a page of sales ordered by creation time descending.
func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Sale, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()
	sales := make([]Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

// CancelSale flips the sale status to cancelled.
func (p *PgStore) CancelSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE sales SET status = $2 WHERE id = $1 AND status = $3 RETURNING `+saleColumns,
		id, StatusCancelled, StatusCompleted)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Zero rows means the sale is absent or already cancelled.
			var status string
			checkErr := p.db.QueryRow(ctx, `SELECT status FROM sales WHERE id = $1`, id).Scan(&status)
			if errors.Is(checkErr, pgx.ErrNoRows) {
				return nil, salerrors.ErrSaleNotFound
			}
			if checkErr != nil {
				return nil, fmt.Errorf("failed to check sale status: %w", checkErr)
			}
			return nil, salerrors.ErrSaleAlreadyCancelled
		}
		return nil, fmt.Errorf("failed to cancel sale: %w", err)
	}
	return sale, nil
}

// DeleteSale removes a sale and, via cascade, its items.
func (p *PgStore) DeleteSale(ctx context.Context, id uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salerrors.ErrSaleNotFound
	}
	return nil
}

func scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.CustomerID, &s.CustomerName, &s.Subtotal, &s.Discount,
		&s.Total, &s.PaymentMethod, &s.Status, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSaleItem(row pgx.Row) (*SaleItem, error) {
	var i SaleItem
	err := row.Scan(&i.ID, &i.SaleID, &i.ProductID, &i.ProductName, &i.Quantity, &i.UnitPrice, &i.LineTotal)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
