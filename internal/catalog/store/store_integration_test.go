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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	caterrors "github.com/mvelarde/puntoventa/internal/catalog/errors"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "POS_SKIP_INTEGRATION_TESTS"

// CatalogStoreSuite is a test suite for the CatalogStore implementation.
type CatalogStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       CatalogStore
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts a PostgreSQL container and applies the migrations.
func (s *CatalogStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "pos_db"
	dbUser := "user"
	dbPassword := "password"

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
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
	sourceURL := "file://" + migrationsPath
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for integration tests")

	s.store = NewPgStore(s.dbPool)
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *CatalogStoreSuite) TearDownSuite() {
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

// SetupTest prepares the database for each test by truncating the catalog tables.
func (s *CatalogStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products, categories RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate catalog tables")
}

// TestCatalogStoreIntegration runs the CatalogStore integration tests.
func TestCatalogStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(CatalogStoreSuite))
}

// createTestProduct is a helper function to create a product for testing purposes.
func (s *CatalogStoreSuite) createTestProduct(params ProductParams) *Product {
	s.T().Helper()
	product, err := s.store.CreateProduct(s.ctx, params)
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

func (s *CatalogStoreSuite) TestCreateProduct() {
	s.SetupTest()
	// given
	buyPrice := int64(800)
	minStock := int32(5)
	params := ProductParams{
		Name:      "Coffee 500g",
		BuyPrice:  &buyPrice,
		SalePrice: 1250,
		Quantity:  8,
		MinStock:  &minStock,
	}

	// when
	created := s.createTestProduct(params)

	// then
	require.NotZero(s.T(), created.ID, "Created product ID should not be zero")
	require.Equal(s.T(), params.Name, created.Name)
	require.Equal(s.T(), params.SalePrice, created.SalePrice)
	require.Equal(s.T(), params.Quantity, created.Quantity)
	require.NotNil(s.T(), created.BuyPrice)
	require.Equal(s.T(), buyPrice, *created.BuyPrice)
	require.NotNil(s.T(), created.MinStock)
	require.Equal(s.T(), minStock, *created.MinStock)
	require.Equal(s.T(), int32(1), created.Version, "Version should be 1 for newly created product")
	require.NotZero(s.T(), created.CreatedAt, "CreatedAt should be set")
}

func (s *CatalogStoreSuite) TestFindProductByID() {
	s.SetupTest()
	// given
	created := s.createTestProduct(ProductParams{Name: "Milk 1L", SalePrice: 300, Quantity: 12})

	// when
	fetched, err := s.store.FindProductByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "FindProductByID should not return an error")
	require.Equal(s.T(), created.ID, fetched.ID)
	require.Equal(s.T(), created.Name, fetched.Name)
	require.Equal(s.T(), created.SalePrice, fetched.SalePrice)
	require.WithinDuration(s.T(), created.CreatedAt, fetched.CreatedAt, time.Second)
}

func (s *CatalogStoreSuite) TestFindProductByID_NotFound() {
	s.SetupTest()
	// given (no products created)

	// when
	_, err := s.store.FindProductByID(s.ctx, uuid.New())

	// then
	require.ErrorIs(s.T(), err, caterrors.ErrProductNotFound)
}

func (s *CatalogStoreSuite) TestSearchProductsByName() {
	s.SetupTest()
	// given
	s.createTestProduct(ProductParams{Name: "Coffee 500g", SalePrice: 1250, Quantity: 8})
	s.createTestProduct(ProductParams{Name: "Instant coffee 200g", SalePrice: 900, Quantity: 4})
	s.createTestProduct(ProductParams{Name: "Milk 1L", SalePrice: 300, Quantity: 12})

	// when
	found, err := s.store.SearchProductsByName(s.ctx, "coffee", 0, 10)

	// then
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 2, "Search should match case-insensitively")
	require.Equal(s.T(), "Coffee 500g", found[0].Name, "Results should be ordered by name")
}

func (s *CatalogStoreSuite) TestUpdateProduct() {
	s.SetupTest()
	// given
	created := s.createTestProduct(ProductParams{Name: "Rice 1kg", SalePrice: 450, Quantity: 30})

	// when
	updated, err := s.store.UpdateProduct(s.ctx, created.ID,
		ProductParams{Name: "Rice 1kg", SalePrice: 500, Quantity: 25}, created.Version)

	// then
	require.NoError(s.T(), err, "UpdateProduct should not return an error")
	require.Equal(s.T(), int64(500), updated.SalePrice)
	require.Equal(s.T(), int32(25), updated.Quantity)
	require.Equal(s.T(), created.Version+1, updated.Version, "Version should be incremented")
}

func (s *CatalogStoreSuite) TestUpdateProduct_VersionConflict() {
	s.SetupTest()
	// given
	created := s.createTestProduct(ProductParams{Name: "Rice 1kg", SalePrice: 450, Quantity: 30})

	// when
	_, err := s.store.UpdateProduct(s.ctx, created.ID,
		ProductParams{Name: "Rice 1kg", SalePrice: 500, Quantity: 25}, created.Version+5)

	// then
	require.ErrorIs(s.T(), err, caterrors.ErrVersionConflict)
}

func (s *CatalogStoreSuite) TestDeleteProduct() {
	s.SetupTest()
	// given
	created := s.createTestProduct(ProductParams{Name: "Rice 1kg", SalePrice: 450, Quantity: 30})

	// when
	err := s.store.DeleteProductByID(s.ctx, created.ID, created.Version)

	// then
	require.NoError(s.T(), err)
	_, err = s.store.FindProductByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, caterrors.ErrProductNotFound)
}

func (s *CatalogStoreSuite) TestCategories() {
	s.SetupTest()
	// given
	created, err := s.store.CreateCategory(s.ctx, "Beverages", "local_cafe")
	require.NoError(s.T(), err)
	require.NotZero(s.T(), created.ID)

	// when
	updated, err := s.store.UpdateCategory(s.ctx, created.ID, "Drinks", "local_bar")

	// then
	require.NoError(s.T(), err)
	require.Equal(s.T(), "Drinks", updated.Name)
	require.Equal(s.T(), "local_bar", updated.Icon)

	all, err := s.store.FindAllCategories(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 1)

	require.NoError(s.T(), s.store.DeleteCategoryByID(s.ctx, created.ID))
	_, err = s.store.FindCategoryByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, caterrors.ErrCategoryNotFound)
}
