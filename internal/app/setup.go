// Package app contains the application setup for the POS service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	catalogsvc "github.com/mvelarde/puntoventa/internal/catalog/service"
	catalogstore "github.com/mvelarde/puntoventa/internal/catalog/store"
	catalogrest "github.com/mvelarde/puntoventa/internal/catalog/transport/rest"
	closuresvc "github.com/mvelarde/puntoventa/internal/closure/service"
	closurestore "github.com/mvelarde/puntoventa/internal/closure/store"
	closurerest "github.com/mvelarde/puntoventa/internal/closure/transport/rest"
	"github.com/mvelarde/puntoventa/internal/config"
	directorysvc "github.com/mvelarde/puntoventa/internal/directory/service"
	directorystore "github.com/mvelarde/puntoventa/internal/directory/store"
	directoryrest "github.com/mvelarde/puntoventa/internal/directory/transport/rest"
	reportsvc "github.com/mvelarde/puntoventa/internal/report/service"
	reportstore "github.com/mvelarde/puntoventa/internal/report/store"
	reportrest "github.com/mvelarde/puntoventa/internal/report/transport/rest"
	returnsvc "github.com/mvelarde/puntoventa/internal/returns/service"
	returnstore "github.com/mvelarde/puntoventa/internal/returns/store"
	returnrest "github.com/mvelarde/puntoventa/internal/returns/transport/rest"
	salesvc "github.com/mvelarde/puntoventa/internal/sale/service"
	salestore "github.com/mvelarde/puntoventa/internal/sale/store"
	salerest "github.com/mvelarde/puntoventa/internal/sale/transport/rest"
	alertsvc "github.com/mvelarde/puntoventa/internal/stockalert/service"
	alertstore "github.com/mvelarde/puntoventa/internal/stockalert/store"
	alertrest "github.com/mvelarde/puntoventa/internal/stockalert/transport/rest"
	"github.com/mvelarde/puntoventa/pkg/auth"
	"github.com/mvelarde/puntoventa/pkg/messaging"
	"github.com/mvelarde/puntoventa/pkg/server"
	"github.com/mvelarde/puntoventa/pkg/web"
)

type Dependencies struct {
	CatalogService   catalogsvc.CatalogService
	DirectoryService directorysvc.DirectoryService
	SaleService      salesvc.SaleService
	ReturnService    returnsvc.ReturnService
	ClosureService   closuresvc.ClosureService
	AlertService     alertsvc.AlertService
	ReportService    reportsvc.ReportService
	Verifier         auth.Verifier
	Logger           *slog.Logger
}

// SetupDependencies wires the stores and services of every module. The alert
// service doubles as the stock policy consulted by sale commits.
func SetupDependencies(dbPool *pgxpool.Pool, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	alertService := alertsvc.NewService(alertstore.NewPgStore(dbPool))

	return &Dependencies{
		CatalogService:   catalogsvc.NewService(catalogstore.NewPgStore(dbPool)),
		DirectoryService: directorysvc.NewService(directorystore.NewPgStore(dbPool)),
		SaleService:      salesvc.NewService(salestore.NewPgStore(dbPool), publisher, alertService, logger),
		ReturnService:    returnsvc.NewService(returnstore.NewPgStore(dbPool)),
		ClosureService:   closuresvc.NewService(closurestore.NewPgStore(dbPool)),
		AlertService:     alertService,
		ReportService:    reportsvc.NewService(reportstore.NewPgStore(dbPool), alertService),
		Logger:           logger,
	}
}

// SetupHttpHandler initializes the HTTP router and routes for the POS service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	if deps.Verifier != nil {
		mux.Use(web.AuthMiddleware(deps.Verifier))
	}
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the POS service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	catalogrest.NewHandler(deps.CatalogService, deps.Logger).RegisterRoutes(mux)
	directoryrest.NewHandler(deps.DirectoryService, deps.Logger).RegisterRoutes(mux)
	salerest.NewHandler(deps.SaleService, deps.Logger).RegisterRoutes(mux)
	returnrest.NewHandler(deps.ReturnService, deps.Logger).RegisterRoutes(mux)
	closurerest.NewHandler(deps.ClosureService, deps.Logger).RegisterRoutes(mux)
	alertrest.NewHandler(deps.AlertService, deps.Logger).RegisterRoutes(mux)
	reportrest.NewHandler(deps.ReportService, deps.Logger).RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the HTTP server for the POS service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
