// Package rest provides HTTP handlers for reporting operations.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mvelarde/puntoventa/internal/report/service"
	"github.com/mvelarde/puntoventa/pkg/web"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service service.ReportService
	logger  *slog.Logger
}

// NewHandler creates a new instance of the report API with the provided service.
func NewHandler(service service.ReportService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest.report"),
	}
}

// RegisterRoutes registers the HTTP routes for reports.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/sales", h.SalesInRange)
		r.Get("/full", h.FullReport)
		r.Get("/dashboard", h.Dashboard)
	})
}

// SalesInRange lists completed sales between the from and to dates.
func (h *Handler) SalesInRange(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	from, ok := web.ParseDate(r, w, mLogger, "from")
	if !ok {
		return
	}
	to, ok := web.ParseDate(r, w, mLogger, "to")
	if !ok {
		return
	}
	sales, err := h.service.SalesInRange(r.Context(), from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error listing sales in range", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to list sales")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, sales)
}

// FullReport builds the aggregated report. The period parameter selects the
// bucket size and defaults to day.
func (h *Handler) FullReport(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	from, ok := web.ParseDate(r, w, mLogger, "from")
	if !ok {
		return
	}
	to, ok := web.ParseDate(r, w, mLogger, "to")
	if !ok {
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "day"
	}
	switch period {
	case "day", "week", "month":
	default:
		web.RespondError(w, mLogger, http.StatusBadRequest, "period must be one of day, week, month")
		return
	}
	report, err := h.service.FullReport(r.Context(), period, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error building report", "period", period, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to build report")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, report)
}

// Dashboard builds today's snapshot.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error building dashboard", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to build dashboard")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, dashboard)
}

func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		return h.logger.With("request_id", reqID)
	}
	return h.logger
}
