package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	closerrors "github.com/mvelarde/puntoventa/internal/closure/errors"
)

const closureColumns = `id, closure_date, closed_at, sales_total, sales_count,
	cash_total, cash_count, card_total, card_count,
	transfer_total, transfer_count, other_total, other_count,
	declared_cash, declared_card, declared_transfer, declared_other,
	total_declared, difference, notes`

// PgStore implements ClosureStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ClosureStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

func scanClosure(row pgx.Row) (*Closure, error) {
	var c Closure
	err := row.Scan(&c.ID, &c.ClosureDate, &c.ClosedAt, &c.SalesTotal, &c.SalesCount,
		&c.CashTotal, &c.CashCount, &c.CardTotal, &c.CardCount,
		&c.TransferTotal, &c.TransferCount, &c.OtherTotal, &c.OtherCount,
		&c.DeclaredCash, &c.DeclaredCard, &c.DeclaredTransfer, &c.DeclaredOther,
		&c.TotalDeclared, &c.Difference, &c.Notes)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectClosures(rows pgx.Rows) ([]Closure, error) {
	defer rows.Close()
	closures := make([]Closure, 0)
	for rows.Next() {
		c, err := scanClosure(rows)
		if err != nil {
			return nil, err
		}
		closures = append(closures, *c)
	}
	return closures, rows.Err()
}

const salesSummaryQuery = `
	SELECT COALESCE(SUM(total), 0), COUNT(*),
	       COALESCE(SUM(total) FILTER (WHERE payment_method = 'cash'), 0),
	       COUNT(*) FILTER (WHERE payment_method = 'cash'),
	       COALESCE(SUM(total) FILTER (WHERE payment_method = 'card'), 0),
	       COUNT(*) FILTER (WHERE payment_method = 'card'),
	       COALESCE(SUM(total) FILTER (WHERE payment_method = 'transfer'), 0),
	       COUNT(*) FILTER (WHERE payment_method = 'transfer'),
	       COALESCE(SUM(total) FILTER (WHERE payment_method = 'other'), 0),
	       COUNT(*) FILTER (WHERE payment_method = 'other')
	FROM sales
	WHERE status = 'completed' AND created_at::date = $1::date`

func salesSummaryTx(ctx context.Context, q pgx.Row) (*SalesSummary, error) {
	var s SalesSummary
	err := q.Scan(&s.SalesTotal, &s.SalesCount,
		&s.CashTotal, &s.CashCount, &s.CardTotal, &s.CardCount,
		&s.TransferTotal, &s.TransferCount, &s.OtherTotal, &s.OtherCount)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SalesSummary aggregates the completed sales of the given calendar date.
func (s *PgStore) SalesSummary(ctx context.Context, date time.Time) (*SalesSummary, error) {
	return salesSummaryTx(ctx, s.db.QueryRow(ctx, salesSummaryQuery, date))
}

// Create computes the sales summary for the requested date and stores it
// together with the declared amounts, all inside one transaction. The
// difference is total declared minus the sales total. A second closure for
// the same date hits the unique index and returns ErrClosureExists.
func (s *PgStore) Create(ctx context.Context, params ClosureParams) (*Closure, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	summary, err := salesSummaryTx(ctx, tx.QueryRow(ctx, salesSummaryQuery, params.ClosureDate))
	if err != nil {
		return nil, err
	}

	totalDeclared := params.DeclaredCash + params.DeclaredCard + params.DeclaredTransfer + params.DeclaredOther
	difference := totalDeclared - summary.SalesTotal

	row := tx.QueryRow(ctx,
		`INSERT INTO cash_closures
		   (closure_date, sales_total, sales_count,
		    cash_total, cash_count, card_total, card_count,
		    transfer_total, transfer_count, other_total, other_count,
		    declared_cash, declared_card, declared_transfer, declared_other,
		    total_declared, difference, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING `+closureColumns,
		params.ClosureDate, summary.SalesTotal, summary.SalesCount,
		summary.CashTotal, summary.CashCount, summary.CardTotal, summary.CardCount,
		summary.TransferTotal, summary.TransferCount, summary.OtherTotal, summary.OtherCount,
		params.DeclaredCash, params.DeclaredCard, params.DeclaredTransfer, params.DeclaredOther,
		totalDeclared, difference, params.Notes)

	closure, err := scanClosure(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, closerrors.ErrClosureExists
		}
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return closure, nil
}

// FindByID retrieves a closure by its unique identifier.
func (s *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Closure, error) {
	row := s.db.QueryRow(ctx, `SELECT `+closureColumns+` FROM cash_closures WHERE id = $1`, id)
	closure, err := scanClosure(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, closerrors.ErrClosureNotFound
		}
		return nil, err
	}
	return closure, nil
}

// FindAll retrieves closures ordered by closure date, newest first.
func (s *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Closure, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+closureColumns+` FROM cash_closures ORDER BY closure_date DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return collectClosures(rows)
}

// FindByRange retrieves closures whose date falls within [from, to].
func (s *PgStore) FindByRange(ctx context.Context, from, to time.Time) ([]Closure, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+closureColumns+` FROM cash_closures
		 WHERE closure_date BETWEEN $1::date AND $2::date
		 ORDER BY closure_date DESC`, from, to)
	if err != nil {
		return nil, err
	}
	return collectClosures(rows)
}
