package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	closerrors "github.com/mvelarde/puntoventa/internal/closure/errors"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "POS_SKIP_INTEGRATION_TESTS"

// ClosureStoreSuite is a test suite for the ClosureStore implementation.
type ClosureStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       ClosureStore
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts a PostgreSQL container and applies the migrations.
func (s *ClosureStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("pos_db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "../../../migrations")
	m, err := migrate.New("file://"+migrationsPath, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}

	s.store = NewPgStore(s.dbPool)
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ClosureStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest prepares the database for each test.
func (s *ClosureStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE cash_closures, sale_items, sales, products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate closure tables")
}

// TestClosureStoreIntegration runs the ClosureStore integration tests.
func TestClosureStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(ClosureStoreSuite))
}

// seedSale inserts a completed sale directly with the given total, payment
// method and creation timestamp.
func (s *ClosureStoreSuite) seedSale(total int64, method string, createdAt time.Time) {
	s.T().Helper()
	_, err := s.dbPool.Exec(s.ctx,
		`INSERT INTO sales (subtotal, discount, total, payment_method, status, created_at)
		 VALUES ($1, 0, $1, $2, 'completed', $3)`, total, method, createdAt)
	require.NoError(s.T(), err, "seedSale helper failed")
}

func (s *ClosureStoreSuite) seedCancelledSale(total int64, createdAt time.Time) {
	s.T().Helper()
	_, err := s.dbPool.Exec(s.ctx,
		`INSERT INTO sales (subtotal, discount, total, payment_method, status, created_at)
		 VALUES ($1, 0, $1, 'cash', 'cancelled', $2)`, total, createdAt)
	require.NoError(s.T(), err, "seedCancelledSale helper failed")
}

func (s *ClosureStoreSuite) TestSalesSummary() {
	s.SetupTest()
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	// given three completed sales on the day, one cancelled, one on another day
	s.seedSale(1000, "cash", day.Add(9*time.Hour))
	s.seedSale(2500, "cash", day.Add(12*time.Hour))
	s.seedSale(4000, "card", day.Add(18*time.Hour))
	s.seedCancelledSale(9999, day.Add(10*time.Hour))
	s.seedSale(7000, "cash", day.AddDate(0, 0, 1))

	// when
	summary, err := s.store.SalesSummary(s.ctx, day)

	// then cancelled and out-of-day sales are excluded
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(7500), summary.SalesTotal)
	require.Equal(s.T(), int32(3), summary.SalesCount)
	require.Equal(s.T(), int64(3500), summary.CashTotal)
	require.Equal(s.T(), int32(2), summary.CashCount)
	require.Equal(s.T(), int64(4000), summary.CardTotal)
	require.Equal(s.T(), int32(1), summary.CardCount)
	require.Equal(s.T(), int64(0), summary.TransferTotal)
}

func (s *ClosureStoreSuite) TestSalesSummary_EmptyDay() {
	s.SetupTest()

	summary, err := s.store.SalesSummary(s.ctx, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))

	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(0), summary.SalesTotal)
	require.Equal(s.T(), int32(0), summary.SalesCount)
}

func (s *ClosureStoreSuite) TestCreate_ComputesDifference() {
	s.SetupTest()
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	s.seedSale(5000, "cash", day.Add(10*time.Hour))
	s.seedSale(3000, "card", day.Add(15*time.Hour))

	// when closing with 100 less cash than sold
	closure, err := s.store.Create(s.ctx, ClosureParams{
		ClosureDate:  day,
		DeclaredCash: 4900,
		DeclaredCard: 3000,
	})

	// then the sales side comes from the day's sales
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(8000), closure.SalesTotal)
	require.Equal(s.T(), int32(2), closure.SalesCount)
	require.Equal(s.T(), int64(5000), closure.CashTotal)
	require.Equal(s.T(), int64(7900), closure.TotalDeclared)
	require.Equal(s.T(), int64(-100), closure.Difference)
}

func (s *ClosureStoreSuite) TestCreate_DuplicateDate() {
	s.SetupTest()
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	_, err := s.store.Create(s.ctx, ClosureParams{ClosureDate: day})
	require.NoError(s.T(), err)

	// when closing the same date again
	dup, err := s.store.Create(s.ctx, ClosureParams{ClosureDate: day})

	// then
	require.ErrorIs(s.T(), err, closerrors.ErrClosureExists)
	require.Nil(s.T(), dup)
}

func (s *ClosureStoreSuite) TestFindByRange() {
	s.SetupTest()
	for _, offset := range []int{1, 5, 10, 40} {
		day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset-1)
		_, err := s.store.Create(s.ctx, ClosureParams{ClosureDate: day})
		require.NoError(s.T(), err)
	}

	// when asking for August only
	closures, err := s.store.FindByRange(s.ctx,
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))

	// then ordered newest first
	require.NoError(s.T(), err)
	require.Len(s.T(), closures, 3)
	require.Equal(s.T(), "2026-08-10", closures[0].ClosureDate.Format("2006-01-02"))
	require.Equal(s.T(), "2026-08-01", closures[2].ClosureDate.Format("2006-01-02"))
}

func (s *ClosureStoreSuite) TestFindAll_Paginated() {
	s.SetupTest()
	for offset := range 3 {
		day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
		_, err := s.store.Create(s.ctx, ClosureParams{ClosureDate: day})
		require.NoError(s.T(), err)
	}

	closures, err := s.store.FindAll(s.ctx, 0, 2)

	require.NoError(s.T(), err)
	require.Len(s.T(), closures, 2)
	require.Equal(s.T(), "2026-08-12", closures[0].ClosureDate.Format("2006-01-02"))
}
