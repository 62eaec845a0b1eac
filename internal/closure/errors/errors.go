// Package errors defines domain errors for cash closures.
package errors

import "errors"

var (
	// ErrClosureExists is returned when a closure already exists for the date.
	ErrClosureExists = errors.New("closure already exists for this date")
	// ErrClosureNotFound is returned when a closure cannot be found.
	ErrClosureNotFound = errors.New("closure not found")
)
