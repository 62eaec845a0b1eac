package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements ReportStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ReportStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const completedInRange = `status = 'completed' AND created_at >= $1 AND created_at < $2`

// SalesInRange lists completed sales in [from, to), newest first.
func (s *PgStore) SalesInRange(ctx context.Context, from, to time.Time) ([]SaleRow, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, customer_name, total, payment_method, created_at
		 FROM sales WHERE `+completedInRange+` ORDER BY created_at DESC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]SaleRow, 0)
	for rows.Next() {
		var row SaleRow
		if err := rows.Scan(&row.ID, &row.CustomerName, &row.Total, &row.PaymentMethod, &row.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, row)
	}
	return sales, rows.Err()
}

// SalesByPeriod buckets completed sales with date_trunc. Period must be one
// of day, week or month; it is validated here because it is spliced into the
// query text.
func (s *PgStore) SalesByPeriod(ctx context.Context, period string, from, to time.Time) ([]PeriodBucket, error) {
	switch period {
	case "day", "week", "month":
	default:
		return nil, fmt.Errorf("unsupported period %q", period)
	}
	rows, err := s.db.Query(ctx,
		`SELECT date_trunc('`+period+`', created_at) AS bucket, SUM(total), COUNT(*)
		 FROM sales WHERE `+completedInRange+`
		 GROUP BY bucket ORDER BY bucket`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]PeriodBucket, 0)
	for rows.Next() {
		var b PeriodBucket
		if err := rows.Scan(&b.Period, &b.Total, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// TopProducts ranks products by units sold in the range.
func (s *PgStore) TopProducts(ctx context.Context, from, to time.Time, limit int32) ([]TopProduct, error) {
	rows, err := s.db.Query(ctx,
		`SELECT si.product_id, si.product_name, SUM(si.quantity)::int, SUM(si.line_total)
		 FROM sale_items si
		 JOIN sales s ON s.id = si.sale_id
		 WHERE s.`+completedInRange+`
		 GROUP BY si.product_id, si.product_name
		 ORDER BY SUM(si.quantity) DESC, SUM(si.line_total) DESC
		 LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]TopProduct, 0)
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Units, &p.Revenue); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Costs sums quantity times product buy price over the range. Priced is
// false when none of the sold products carries a buy price.
func (s *PgStore) Costs(ctx context.Context, from, to time.Time) (*CostAggregate, error) {
	var c CostAggregate
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(si.quantity::bigint * p.buy_price), 0),
		        COUNT(p.buy_price) > 0
		 FROM sale_items si
		 JOIN sales s ON s.id = si.sale_id
		 LEFT JOIN products p ON p.id = si.product_id
		 WHERE s.`+completedInRange, from, to).Scan(&c.Expenses, &c.Priced)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FrequentCustomers ranks registered customers by purchase count. Sales
// without a customer are excluded.
func (s *PgStore) FrequentCustomers(ctx context.Context, from, to time.Time, limit int32) ([]FrequentCustomer, error) {
	rows, err := s.db.Query(ctx,
		`SELECT s.customer_id, COALESCE(MAX(c.name), MAX(s.customer_name), ''),
		        COUNT(*)::int, SUM(s.total), MAX(s.created_at)
		 FROM sales s
		 LEFT JOIN customers c ON c.id = s.customer_id
		 WHERE s.`+completedInRange+` AND s.customer_id IS NOT NULL
		 GROUP BY s.customer_id
		 ORDER BY COUNT(*) DESC, SUM(s.total) DESC
		 LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]FrequentCustomer, 0)
	for rows.Next() {
		var fc FrequentCustomer
		if err := rows.Scan(&fc.CustomerID, &fc.Name, &fc.Purchases, &fc.TotalSpent, &fc.LastPurchase); err != nil {
			return nil, err
		}
		customers = append(customers, fc)
	}
	return customers, rows.Err()
}

// SalesByMethod aggregates completed sales per payment method.
func (s *PgStore) SalesByMethod(ctx context.Context, from, to time.Time) ([]MethodBucket, error) {
	rows, err := s.db.Query(ctx,
		`SELECT payment_method, SUM(total), COUNT(*)::int
		 FROM sales WHERE `+completedInRange+`
		 GROUP BY payment_method ORDER BY SUM(total) DESC`, from, to)
	if err != nil {
		return nil, err
	}
	return collectMethodBuckets(rows)
}

func collectMethodBuckets(rows pgx.Rows) ([]MethodBucket, error) {
	defer rows.Close()
	buckets := make([]MethodBucket, 0)
	for rows.Next() {
		var b MethodBucket
		if err := rows.Scan(&b.PaymentMethod, &b.Total, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
