// Package errors defines domain-specific error types for the directory module.
package errors

import "errors"

var (
	// ErrCustomerNotFound indicates that the requested customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrSupplierNotFound indicates that the requested supplier does not exist.
	ErrSupplierNotFound = errors.New("supplier not found")
)
