package service

import "errors"

var ErrValidation = errors.New("validation error")

// ErrNoCandidates is returned when a random batch has no spaces to pick from.
var ErrNoCandidates = errors.New("No suitable parking spaces found for simulation.")

// ValidationError carries a message meant to be shown to the caller as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}
