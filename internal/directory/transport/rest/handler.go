// Package rest provides HTTP handlers for customer and supplier operations.
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
	direrrors "github.com/mvelarde/puntoventa/internal/directory/errors"
	"github.com/mvelarde/puntoventa/internal/directory/service"
	"github.com/mvelarde/puntoventa/pkg/web"
)

type Handler struct {
	service  service.DirectoryService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the directory API with the provided service.
func NewHandler(service service.DirectoryService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.directory"),
	}
}

// RegisterRoutes registers the HTTP routes for customers and suppliers.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/customers", func(r chi.Router) {
		r.Get("/", h.FindAllCustomers)
		r.Post("/", h.CreateCustomer)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindCustomerByID)
			r.Put("/", h.UpdateCustomer)
			r.Delete("/", h.DeleteCustomerByID)
		})
	})

	r.Route("/api/v1/suppliers", func(r chi.Router) {
		r.Get("/", h.FindAllSuppliers)
		r.Post("/", h.CreateSupplier)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindSupplierByID)
			r.Put("/", h.UpdateSupplier)
			r.Delete("/", h.DeleteSupplierByID)
		})
	})
}

// FindCustomerByID retrieves a customer by its ID.
func (h *Handler) FindCustomerByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindCustomerByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, direrrors.ErrCustomerNotFound) {
			mLogger.WarnContext(r.Context(), "Customer not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Customer with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving customer", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve customer with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAllCustomers retrieves a page of customers. When the q parameter is
// present the list is filtered by a case-insensitive name search.
func (h *Handler) FindAllCustomers(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := web.ParseValidateGt(r, w, mLogger, "limit", 0)
	if !ok {
		return
	}
	offset, ok := web.ParseValidateGte(r, w, mLogger, "offset", 0)
	if !ok {
		return
	}
	list, err := h.service.FindAllCustomers(r.Context(), r.URL.Query().Get("q"), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving customer list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch customers")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// CreateCustomer handles the creation of a new customer.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var createDto service.CustomerCreateDto
	if err := json.NewDecoder(r.Body).Decode(&createDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, createDto) {
		return
	}
	newCustomer, err := h.service.CreateCustomer(r.Context(), createDto)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating customer", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create customer")
		return
	}
	mLogger.InfoContext(r.Context(), "Customer created successfully", "ID", newCustomer.ID, "Name", newCustomer.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, newCustomer)
}

// UpdateCustomer modifies an existing customer.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var updateDto service.CustomerCreateDto
	if err := json.NewDecoder(r.Body).Decode(&updateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, updateDto) {
		return
	}
	updated, err := h.service.UpdateCustomer(r.Context(), id, updateDto)
	if err != nil {
		if errors.Is(err, direrrors.ErrCustomerNotFound) {
			mLogger.WarnContext(r.Context(), "Customer not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Customer with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating customer", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update customer with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteCustomerByID deletes a customer by its ID.
func (h *Handler) DeleteCustomerByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.DeleteCustomerByID(r.Context(), id); err != nil {
		if errors.Is(err, direrrors.ErrCustomerNotFound) {
			mLogger.WarnContext(r.Context(), "Customer not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Customer with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting customer", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete customer with ID %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FindSupplierByID retrieves a supplier by its ID.
func (h *Handler) FindSupplierByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindSupplierByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, direrrors.ErrSupplierNotFound) {
			mLogger.WarnContext(r.Context(), "Supplier not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Supplier with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving supplier", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve supplier with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAllSuppliers retrieves a page of suppliers.
func (h *Handler) FindAllSuppliers(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := web.ParseValidateGt(r, w, mLogger, "limit", 0)
	if !ok {
		return
	}
	offset, ok := web.ParseValidateGte(r, w, mLogger, "offset", 0)
	if !ok {
		return
	}
	list, err := h.service.FindAllSuppliers(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving supplier list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch suppliers")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// CreateSupplier handles the creation of a new supplier.
func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var createDto service.SupplierCreateDto
	if err := json.NewDecoder(r.Body).Decode(&createDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, createDto) {
		return
	}
	newSupplier, err := h.service.CreateSupplier(r.Context(), createDto)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating supplier", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create supplier")
		return
	}
	mLogger.InfoContext(r.Context(), "Supplier created successfully", "ID", newSupplier.ID, "Name", newSupplier.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, newSupplier)
}

// UpdateSupplier modifies an existing supplier.
func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var updateDto service.SupplierCreateDto
	if err := json.NewDecoder(r.Body).Decode(&updateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, updateDto) {
		return
	}
	updated, err := h.service.UpdateSupplier(r.Context(), id, updateDto)
	if err != nil {
		if errors.Is(err, direrrors.ErrSupplierNotFound) {
			mLogger.WarnContext(r.Context(), "Supplier not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Supplier with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating supplier", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update supplier with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteSupplierByID deletes a supplier by its ID.
func (h *Handler) DeleteSupplierByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.DeleteSupplierByID(r.Context(), id); err != nil {
		if errors.Is(err, direrrors.ErrSupplierNotFound) {
			mLogger.WarnContext(r.Context(), "Supplier not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Supplier with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting supplier", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete supplier with ID %s", id))
		return
	}
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
