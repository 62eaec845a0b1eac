// Package rest provides HTTP handlers for stock alert operations.
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
	"github.com/mvelarde/puntoventa/internal/stockalert/service"
	"github.com/mvelarde/puntoventa/pkg/web"
)

type Handler struct {
	service  service.AlertService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the stock alert API with the provided service.
func NewHandler(service service.AlertService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest.stockalert"),
	}
}

// RegisterRoutes registers the HTTP routes for stock alerts.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/stock-alerts", func(r chi.Router) {
		r.Get("/", h.ListAlerts)
		r.Get("/config", h.GetConfig)
		r.Put("/config", h.SaveConfig)
	})
}

// ListAlerts returns the current low-stock alerts.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	alerts, err := h.service.ListAlerts(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error listing stock alerts", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to list stock alerts")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, alerts)
}

// GetConfig returns the alert configuration.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	config, err := h.service.GetConfig(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error loading alert config", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to load alert config")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, config)
}

// SaveConfig stores the alert configuration.
func (h *Handler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var updateDto service.ConfigUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&updateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, updateDto) {
		return
	}
	saved, err := h.service.SaveConfig(r.Context(), updateDto)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error saving alert config", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to save alert config")
		return
	}
	mLogger.InfoContext(r.Context(), "Alert config saved", "threshold", saved.DefaultThreshold, "enabled", saved.Enabled)
	web.RespondJSON(w, mLogger, http.StatusOK, saved)
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
