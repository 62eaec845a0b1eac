// Package rest provides HTTP handlers for cash closure operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	closerrors "github.com/mvelarde/puntoventa/internal/closure/errors"
	"github.com/mvelarde/puntoventa/internal/closure/service"
	"github.com/mvelarde/puntoventa/pkg/web"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service  service.ClosureService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the closure API with the provided service.
func NewHandler(service service.ClosureService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.closure"),
	}
}

// RegisterRoutes registers the HTTP routes for cash closures.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/closures", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Get("/summary", h.SalesSummary)
		r.Get("/{id}", h.FindByID)
	})
}

// SalesSummary previews the day's completed sales totals before closing.
func (h *Handler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	date, ok := web.ParseDate(r, w, mLogger, "date")
	if !ok {
		return
	}
	summary, err := h.service.SalesSummary(r.Context(), date.Format(dateLayout))
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error summarizing sales", "date", date, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to summarize sales")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, summary)
}

// Create records a cash closure for a date.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var createDto service.ClosureCreateDto
	if err := json.NewDecoder(r.Body).Decode(&createDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, createDto) {
		return
	}
	created, err := h.service.Create(r.Context(), createDto)
	if err != nil {
		if errors.Is(err, closerrors.ErrClosureExists) {
			mLogger.WarnContext(r.Context(), "Closure already exists", "date", createDto.ClosureDate)
			web.RespondError(w, mLogger, http.StatusConflict, fmt.Sprintf("Closure for %s already exists", createDto.ClosureDate))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating closure", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create closure")
		return
	}
	mLogger.InfoContext(r.Context(), "Closure created successfully", "ID", created.ID, "date", created.ClosureDate, "difference", created.Difference)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// FindByID retrieves a closure by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, closerrors.ErrClosureNotFound) {
			mLogger.WarnContext(r.Context(), "Closure not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Closure with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving closure", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve closure with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves closures. With from and to parameters set, all closures
// in that date range are returned; otherwise a limit/offset page.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	if r.URL.Query().Get("from") != "" || r.URL.Query().Get("to") != "" {
		from, ok := web.ParseDate(r, w, mLogger, "from")
		if !ok {
			return
		}
		to, ok := web.ParseDate(r, w, mLogger, "to")
		if !ok {
			return
		}
		list, err := h.service.FindByRange(r.Context(), from.Format(dateLayout), to.Format(dateLayout))
		if err != nil {
			mLogger.ErrorContext(r.Context(), "Error retrieving closures by range", "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch closures")
			return
		}
		web.RespondJSON(w, mLogger, http.StatusOK, list)
		return
	}

	limit, ok := web.ParseValidateGt(r, w, mLogger, "limit", 0)
	if !ok {
		return
	}
	offset, ok := web.ParseValidateGte(r, w, mLogger, "offset", 0)
	if !ok {
		return
	}
	list, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving closure list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch closures")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, payload any) bool {
	if err := h.validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorMessages := make(map[string]string)
			for _, fieldError := range validationErrors {
				errorMessages[fieldError.Field()] = fmt.Sprintf("failed on the '%s' rule", fieldError.Tag())
			}
			mLogger.WarnContext(r.Context(), "Validation failed", "errors", errorMessages)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorMessages})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}

func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		return h.logger.With("request_id", reqID)
	}
	return h.logger
}
