// Package rest provides HTTP handlers for sale operations.
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
	salerrors "github.com/mvelarde/puntoventa/internal/sale/errors"
	"github.com/mvelarde/puntoventa/internal/sale/service"
	"github.com/mvelarde/puntoventa/pkg/web"
)

type Handler struct {
	service  service.SaleService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the sale API with the provided service.
func NewHandler(service service.SaleService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.sale"),
	}
}

// RegisterRoutes registers the HTTP routes for sales.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/sales", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Post("/cancel", h.Cancel)
			r.Delete("/", h.Delete)
		})
	})
}

// Create commits a new sale.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var createDto service.SaleCreateDto
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
		var stockErr *salerrors.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			mLogger.WarnContext(r.Context(), "Sale rejected, insufficient stock",
				"product_id", stockErr.ProductID, "available", stockErr.Available, "requested", stockErr.Requested)
			web.RespondJSON(w, mLogger, http.StatusConflict, map[string]any{
				"error":        stockErr.Error(),
				"product_id":   stockErr.ProductID.String(),
				"product_name": stockErr.ProductName,
				"available":    stockErr.Available,
				"requested":    stockErr.Requested,
			})
		case errors.Is(err, salerrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Sale rejected, product not found", "error", err)
			web.RespondError(w, mLogger, http.StatusNotFound, "A referenced product was not found")
		default:
			mLogger.ErrorContext(r.Context(), "Error committing sale", "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create sale")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Sale committed", "ID", created.ID, "Total", created.Total)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// FindByID retrieves a sale with its line items.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, salerrors.ErrSaleNotFound) {
			mLogger.WarnContext(r.Context(), "Sale not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Sale with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving sale", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve sale with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves a page of sales.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
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
		mLogger.ErrorContext(r.Context(), "Error retrieving sale list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch sales")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Cancel flips the sale status to cancelled. Stock restoration goes through
// the returns flow.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	cancelled, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, salerrors.ErrSaleNotFound):
			mLogger.WarnContext(r.Context(), "Sale not found for cancel", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Sale with ID %s not found", id))
		case errors.Is(err, salerrors.ErrSaleAlreadyCancelled):
			mLogger.WarnContext(r.Context(), "Sale already cancelled", "ID", id)
			web.RespondError(w, mLogger, http.StatusConflict, fmt.Sprintf("Sale with ID %s is already cancelled", id))
		default:
			mLogger.ErrorContext(r.Context(), "Error cancelling sale", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to cancel sale with ID %s", id))
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Sale cancelled", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, cancelled)
}

// Delete removes a sale without restoring stock.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, salerrors.ErrSaleNotFound) {
			mLogger.WarnContext(r.Context(), "Sale not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Sale with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting sale", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete sale with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Sale deleted", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// validateStruct runs struct validation and writes the error response on
// failure. Returns true when the payload is valid.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, payload any) bool {
	if err := h.validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
