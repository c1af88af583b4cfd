package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageUnavailable indicates the conversation store cannot be reached
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrOracleUnavailable indicates the language oracle failed after retries
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrCatalogUnavailable indicates the compound catalog could not be loaded
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStorageUnavailable checks if error is a storage unavailable error
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
