package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements AlertStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of AlertStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// GetConfig reads the single configuration row, falling back to defaults
// when no row has been saved yet.
func (s *PgStore) GetConfig(ctx context.Context) (*AlertConfig, error) {
	var c AlertConfig
	err := s.db.QueryRow(ctx,
		`SELECT default_threshold, enabled, notify_dashboard, notify_menu, updated_at
		 FROM stock_alert_config WHERE id = 1`).
		Scan(&c.DefaultThreshold, &c.Enabled, &c.NotifyDashboard, &c.NotifyMenu, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &AlertConfig{
				DefaultThreshold: 10,
				Enabled:          true,
				NotifyDashboard:  true,
				NotifyMenu:       true,
				UpdatedAt:        time.Time{},
			}, nil
		}
		return nil, err
	}
	return &c, nil
}

// SaveConfig upserts the single configuration row.
func (s *PgStore) SaveConfig(ctx context.Context, config AlertConfig) (*AlertConfig, error) {
	var c AlertConfig
	err := s.db.QueryRow(ctx,
		`INSERT INTO stock_alert_config (id, default_threshold, enabled, notify_dashboard, notify_menu, updated_at)
		 VALUES (1, $1, $2, $3, $4, now())
		 ON CONFLICT (id) DO UPDATE SET
		   default_threshold = EXCLUDED.default_threshold,
		   enabled           = EXCLUDED.enabled,
		   notify_dashboard  = EXCLUDED.notify_dashboard,
		   notify_menu       = EXCLUDED.notify_menu,
		   updated_at        = now()
		 RETURNING default_threshold, enabled, notify_dashboard, notify_menu, updated_at`,
		config.DefaultThreshold, config.Enabled, config.NotifyDashboard, config.NotifyMenu).
		Scan(&c.DefaultThreshold, &c.Enabled, &c.NotifyDashboard, &c.NotifyMenu, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// LowStockProducts lists products at or below their effective threshold,
// critical ones first, then by ascending stock.
func (s *PgStore) LowStockProducts(ctx context.Context, defaultThreshold int32) ([]LowStockProduct, error) {
	rows, err := s.db.Query(ctx,
		`SELECT p.id, p.name, c.name, p.quantity, COALESCE(p.min_stock, $1)
		 FROM products p
		 LEFT JOIN categories c ON c.id = p.category_id
		 WHERE p.quantity <= COALESCE(p.min_stock, $1)
		 ORDER BY (p.quantity <= COALESCE(p.min_stock, $1) / 2) DESC, p.quantity ASC, p.name ASC`,
		defaultThreshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]LowStockProduct, 0)
	for rows.Next() {
		var p LowStockProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Category, &p.Quantity, &p.Threshold); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
