// Package rest provides HTTP handlers for return operations.
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
	"github.com/google/uuid"
	reterrors "github.com/mvelarde/puntoventa/internal/returns/errors"
	"github.com/mvelarde/puntoventa/internal/returns/service"
	"github.com/mvelarde/puntoventa/pkg/web"
)

type Handler struct {
	service  service.ReturnService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the returns API with the provided service.
func NewHandler(service service.ReturnService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.returns"),
	}
}

// RegisterRoutes registers the HTTP routes for returns.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/returns", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/full", h.CreateFull)
		r.Post("/partial", h.CreatePartial)
		r.Get("/{id}", h.FindByID)
	})
}

// CreateFull cancels a sale and restores all of its stock.
func (h *Handler) CreateFull(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var createDto service.ReturnFullCreateDto
	if err := json.NewDecoder(r.Body).Decode(&createDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, createDto) {
		return
	}

	created, err := h.service.CreateFull(r.Context(), createDto)
	if err != nil {
		h.respondReturnError(w, r, mLogger, err, "Failed to create full return")
		return
	}
	mLogger.InfoContext(r.Context(), "Full return created", "ID", created.ID, "SaleID", created.SaleID)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// CreatePartial returns a subset of a sale's lines.
func (h *Handler) CreatePartial(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var createDto service.ReturnPartialCreateDto
	if err := json.NewDecoder(r.Body).Decode(&createDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, createDto) {
		return
	}

	created, err := h.service.CreatePartial(r.Context(), createDto)
	if err != nil {
		h.respondReturnError(w, r, mLogger, err, "Failed to create partial return")
		return
	}
	mLogger.InfoContext(r.Context(), "Partial return created", "ID", created.ID, "SaleID", created.SaleID, "Refund", created.TotalRefund)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// FindByID retrieves a return with its line items.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, reterrors.ErrReturnNotFound) {
			mLogger.WarnContext(r.Context(), "Return not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Return with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving return", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve return with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves returns. With the sale_id parameter set, all returns for
// that sale are listed; otherwise a limit/offset page across all returns.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	if saleIDParam := r.URL.Query().Get("sale_id"); saleIDParam != "" {
		saleID, err := uuid.Parse(saleIDParam)
		if err != nil {
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid sale_id: %s", saleIDParam))
			return
		}
		list, err := h.service.FindBySaleID(r.Context(), saleID)
		if err != nil {
			mLogger.ErrorContext(r.Context(), "Error retrieving returns for sale", "SaleID", saleID, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch returns")
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
		mLogger.ErrorContext(r.Context(), "Error retrieving return list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch returns")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// respondReturnError maps the return commit error taxonomy to HTTP statuses.
func (h *Handler) respondReturnError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, fallback string) {
	var overErr *reterrors.OverReturnError
	switch {
	case errors.Is(err, reterrors.ErrSaleNotFound):
		mLogger.WarnContext(r.Context(), "Return rejected, sale not found", "error", err)
		web.RespondError(w, mLogger, http.StatusNotFound, "Sale not found")
	case errors.Is(err, reterrors.ErrSaleAlreadyCancelled):
		mLogger.WarnContext(r.Context(), "Return rejected, sale already cancelled", "error", err)
		web.RespondError(w, mLogger, http.StatusConflict, "Sale is already cancelled")
	case errors.Is(err, reterrors.ErrItemNotInSale):
		mLogger.WarnContext(r.Context(), "Return rejected, item not in sale", "error", err)
		web.RespondError(w, mLogger, http.StatusUnprocessableEntity, "An item does not belong to the sale")
	case errors.As(err, &overErr):
		mLogger.WarnContext(r.Context(), "Return rejected, over-return",
			"product_id", overErr.ProductID, "sold", overErr.Sold,
			"already_returned", overErr.AlreadyReturned, "requested", overErr.Requested)
		web.RespondJSON(w, mLogger, http.StatusConflict, map[string]any{
			"error":            overErr.Error(),
			"product_id":       overErr.ProductID.String(),
			"product_name":     overErr.ProductName,
			"sold":             overErr.Sold,
			"already_returned": overErr.AlreadyReturned,
			"requested":        overErr.Requested,
		})
	case errors.Is(err, reterrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Return rejected, product not found", "error", err)
		web.RespondError(w, mLogger, http.StatusNotFound, "A referenced product was not found")
	default:
		mLogger.ErrorContext(r.Context(), "Error processing return", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fallback)
	}
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
