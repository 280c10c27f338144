// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"
	"fmt"
)

var ErrProductNotFound = errors.New("product not found")
var ErrNoProducts = errors.New("no products found")
var ErrValidation = errors.New("validation failed")
var ErrInvalidAction = errors.New("invalid action")
var ErrStorage = errors.New("storage failure")

// ValidationError reports a missing or malformed field in a product payload.
// Message is safe to return to the caller as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports that no product matches the given identifier.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Product with ID %d does not exist", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// EmptyResultError reports a list or filter query that matched nothing.
// Category is empty for an unfiltered list.
type EmptyResultError struct {
	Category string
}

func (e *EmptyResultError) Error() string {
	if e.Category == "" {
		return "No products found"
	}
	return fmt.Sprintf("No products found in category '%s'", e.Category)
}

func (e *EmptyResultError) Is(target error) bool {
	return target == ErrNoProducts
}

// InvalidActionError reports an unrecognized operation name.
type InvalidActionError struct {
	Action string
}

func (e *InvalidActionError) Error() string {
	return "Invalid action"
}

func (e *InvalidActionError) Is(target error) bool {
	return target == ErrInvalidAction
}

// StorageError wraps any failure of the backing store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
