package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	reterrors "github.com/mvelarde/puntoventa/internal/returns/errors"
)

const returnColumns = `id, sale_id, return_type, reason, notes, total_refund, created_at`
const returnItemColumns = `id, return_id, product_id, product_name, quantity, unit_price, line_total`

// PgStore implements ReturnStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ReturnStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// saleLine is one line of the original sale, keyed by (product, unit price).
type saleLine struct {
	productID   uuid.UUID
	productName string
	quantity    int32
	unitPrice   int64
}

type lineKey struct {
	productID uuid.UUID
	unitPrice int64
}

// lockSale reads the sale row under FOR UPDATE so concurrent returns against
// the same sale serialize, keeping the cumulative quantity check sound.
func lockSale(ctx context.Context, tx pgx.Tx, saleID uuid.UUID) (status string, total int64, err error) {
	err = tx.QueryRow(ctx,
		`SELECT status, total FROM sales WHERE id = $1 FOR UPDATE`, saleID).Scan(&status, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, reterrors.ErrSaleNotFound
		}
		return "", 0, fmt.Errorf("failed to lock sale row: %w", err)
	}
	return status, total, nil
}

func loadSaleLines(ctx context.Context, tx pgx.Tx, saleID uuid.UUID) ([]saleLine, error) {
	rows, err := tx.Query(ctx,
		`SELECT product_id, product_name, quantity, unit_price FROM sale_items WHERE sale_id = $1`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale items: %w", err)
	}
	defer rows.Close()
	lines := make([]saleLine, 0)
	for rows.Next() {
		var line saleLine
		if err := rows.Scan(&line.productID, &line.productName, &line.quantity, &line.unitPrice); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// restoreStock increments product quantities inside tx, touching the rows in
// ascending ID order. A missing product row aborts the transaction.
func restoreStock(ctx context.Context, tx pgx.Tx, increments map[uuid.UUID]int32) error {
	ids := make([]uuid.UUID, 0, len(increments))
	for id := range increments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		tag, err := tx.Exec(ctx,
			`UPDATE products SET quantity = quantity + $2, updated_at = now() WHERE id = $1`,
			id, increments[id])
		if err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", reterrors.ErrProductNotFound, id)
		}
	}
	return nil
}

func insertReturn(ctx context.Context, tx pgx.Tx, saleID uuid.UUID, returnType, reason, notes string, totalRefund int64) (*Return, error) {
	row := tx.QueryRow(ctx,
		`INSERT INTO returns (sale_id, return_type, reason, notes, total_refund)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
		 RETURNING `+returnColumns,
		saleID, returnType, reason, notes, totalRefund)
	ret, err := scanReturn(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert return: %w", err)
	}
	return ret, nil
}

func insertReturnItems(ctx context.Context, tx pgx.Tx, returnID uuid.UUID, lines []saleLine, quantities []int32) ([]ReturnItem, error) {
	items := make([]ReturnItem, 0, len(lines))
	for i, line := range lines {
		row := tx.QueryRow(ctx,
			`INSERT INTO return_items (return_id, product_id, product_name, quantity, unit_price, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING `+returnItemColumns,
			returnID, line.productID, line.productName, quantities[i], line.unitPrice,
			line.unitPrice*int64(quantities[i]))
		item, err := scanReturnItem(row)
		if err != nil {
			return nil, fmt.Errorf("failed to insert return item: %w", err)
		}
		items = append(items, *item)
	}
	return items, nil
}

// CreateFull cancels a sale, restores all stock and records a mirroring return.
func (p *PgStore) CreateFull(ctx context.Context, saleID uuid.UUID, reason, notes string) (*Return, []ReturnItem, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status, total, err := lockSale(ctx, tx, saleID)
	if err != nil {
		return nil, nil, err
	}
	if status == "cancelled" {
		return nil, nil, reterrors.ErrSaleAlreadyCancelled
	}

	lines, err := loadSaleLines(ctx, tx, saleID)
	if err != nil {
		return nil, nil, err
	}

	increments := make(map[uuid.UUID]int32)
	quantities := make([]int32, len(lines))
	for i, line := range lines {
		increments[line.productID] += line.quantity
		quantities[i] = line.quantity
	}
	if err := restoreStock(ctx, tx, increments); err != nil {
		return nil, nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE sales SET status = 'cancelled' WHERE id = $1`, saleID); err != nil {
		return nil, nil, fmt.Errorf("failed to cancel sale: %w", err)
	}

	ret, err := insertReturn(ctx, tx, saleID, TypeFull, reason, notes, total)
	if err != nil {
		return nil, nil, err
	}
	items, err := insertReturnItems(ctx, tx, ret.ID, lines, quantities)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit return: %w", err)
	}
	return ret, items, nil
}

// CreatePartial returns a subset of the sale's lines. Each requested line
// must match an original (product, unit price) pair, and the cumulative
// quantity over all prior returns for the sale must not exceed the sold
// quantity.
func (p *PgStore) CreatePartial(ctx context.Context, saleID uuid.UUID, requested []ReturnItemParams, reason, notes string) (*Return, []ReturnItem, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status, _, err := lockSale(ctx, tx, saleID)
	if err != nil {
		return nil, nil, err
	}
	if status == "cancelled" {
		return nil, nil, reterrors.ErrSaleAlreadyCancelled
	}

	lines, err := loadSaleLines(ctx, tx, saleID)
	if err != nil {
		return nil, nil, err
	}
	sold := make(map[lineKey]*saleLine, len(lines))
	for i := range lines {
		key := lineKey{lines[i].productID, lines[i].unitPrice}
		if existing, ok := sold[key]; ok {
			existing.quantity += lines[i].quantity
		} else {
			line := lines[i]
			sold[key] = &line
		}
	}

	prior, err := priorReturnedQuantities(ctx, tx, saleID)
	if err != nil {
		return nil, nil, err
	}

	increments := make(map[uuid.UUID]int32)
	returnLines := make([]saleLine, len(requested))
	quantities := make([]int32, len(requested))
	var totalRefund int64
	for i, req := range requested {
		key := lineKey{req.ProductID, req.UnitPrice}
		line, ok := sold[key]
		if !ok {
			return nil, nil, fmt.Errorf("%w: product %s at price %d", reterrors.ErrItemNotInSale, req.ProductID, req.UnitPrice)
		}
		if prior[key]+req.Quantity > line.quantity {
			return nil, nil, &reterrors.OverReturnError{
				ProductID:       req.ProductID,
				ProductName:     line.productName,
				Sold:            line.quantity,
				AlreadyReturned: prior[key],
				Requested:       req.Quantity,
			}
		}
		prior[key] += req.Quantity
		increments[req.ProductID] += req.Quantity
		returnLines[i] = *line
		quantities[i] = req.Quantity
		totalRefund += req.UnitPrice * int64(req.Quantity)
	}

	if err := restoreStock(ctx, tx, increments); err != nil {
		return nil, nil, err
	}

	ret, err := insertReturn(ctx, tx, saleID, TypePartial, reason, notes, totalRefund)
	if err != nil {
		return nil, nil, err
	}
	items, err := insertReturnItems(ctx, tx, ret.ID, returnLines, quantities)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit return: %w", err)
	}
	return ret, items, nil
}

// priorReturnedQuantities sums the quantities already returned against the
// sale, grouped by (product, unit price).
func priorReturnedQuantities(ctx context.Context, tx pgx.Tx, saleID uuid.UUID) (map[lineKey]int32, error) {
	rows, err := tx.Query(ctx,
		`SELECT ri.product_id, ri.unit_price, COALESCE(SUM(ri.quantity), 0)
		 FROM return_items ri
		 JOIN returns r ON r.id = ri.return_id
		 WHERE r.sale_id = $1
		 GROUP BY ri.product_id, ri.unit_price`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prior returns: %w", err)
	}
	defer rows.Close()
	prior := make(map[lineKey]int32)
	for rows.Next() {
		var key lineKey
		var quantity int32
		if err := rows.Scan(&key.productID, &key.unitPrice, &quantity); err != nil {
			return nil, err
		}
		prior[key] = quantity
	}
	return prior, rows.Err()
}

// FindByID retrieves a return and its line items.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Return, []ReturnItem, error) {
	row := p.db.QueryRow(ctx, `SELECT `+returnColumns+` FROM returns WHERE id = $1`, id)
	ret, err := scanReturn(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, reterrors.ErrReturnNotFound
		}
		return nil, nil, fmt.Errorf("failed to find return by ID: %w", err)
	}

	rows, err := p.db.Query(ctx,
		`SELECT `+returnItemColumns+` FROM return_items WHERE return_id = $1`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch return items: %w", err)
	}
	defer rows.Close()
	items := make([]ReturnItem, 0)
	for rows.Next() {
		item, err := scanReturnItem(rows)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, *item)
	}
	return ret, items, rows.Err()
}

// FindAll returns a page of returns ordered by creation time descending.
func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Return, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+returnColumns+` FROM returns ORDER BY created_at DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list returns: %w", err)
	}
	return collectReturns(rows)
}

// FindBySaleID returns all returns recorded against a sale, oldest first.
func (p *PgStore) FindBySaleID(ctx context.Context, saleID uuid.UUID) ([]Return, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+returnColumns+` FROM returns WHERE sale_id = $1 ORDER BY created_at`, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list returns for sale: %w", err)
	}
	return collectReturns(rows)
}

func collectReturns(rows pgx.Rows) ([]Return, error) {
	defer rows.Close()
	returns := make([]Return, 0)
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		returns = append(returns, *ret)
	}
	return returns, rows.Err()
}

func scanReturn(row pgx.Row) (*Return, error) {
	var r Return
	err := row.Scan(&r.ID, &r.SaleID, &r.ReturnType, &r.Reason, &r.Notes, &r.TotalRefund, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanReturnItem(row pgx.Row) (*ReturnItem, error) {
	var i ReturnItem
	err := row.Scan(&i.ID, &i.ReturnID, &i.ProductID, &i.ProductName, &i.Quantity, &i.UnitPrice, &i.LineTotal)
	if err != nil {
		return nil, err
	}
	return &i, nil
}
