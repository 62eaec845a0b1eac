// Package errors provides custom error types for catalog operations.
package errors

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	// ErrVersionConflict is returned when an update carries a stale product version.
	ErrVersionConflict = errors.New("product version conflict")
)
