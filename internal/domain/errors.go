package domain

import (
	"errors"
	"fmt"
)

// ErrTemplateNotFound is returned when no template is stored under the id
type ErrTemplateNotFound struct {
	ID string
}

func (e *ErrTemplateNotFound) Error() string {
	return fmt.Sprintf("template not found with ID: %s", e.ID)
}

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}

// IsValidationError reports whether err, or anything it wraps, is a ValidationError
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err, or anything it wraps, is an ErrTemplateNotFound
func IsNotFound(err error) bool {
	var nf *ErrTemplateNotFound
	return errors.As(err, &nf)
}
