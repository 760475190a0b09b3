package services

import (
	"errors"

	"socialfeed/app/models"

	"github.com/go-playground/validator/v10"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError is caller input that breaks a model rule. Message is safe
// to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(message string) error {
	return &ValidationError{Message: message}
}

// asValidationError converts model validation failures into ValidationError
// and passes every other error through.
func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verrs),
		errors.Is(err, models.ErrEmptyPost),
		errors.Is(err, models.ErrEmptyComment):
		return newValidationError(models.ValidationMessage(err))
	default:
		return err
	}
}
