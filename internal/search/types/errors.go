package types

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField           = errors.New("missing required field")
	ErrInvalidIdentifier      = errors.New("invalid identifier")
	ErrUnsupportedBackend     = errors.New("unsupported search backend")
	ErrBackend                = errors.New("database search failed")
	ErrInsufficientPrivileges = errors.New("insufficient privileges")
	ErrUnknownPreset          = errors.New("unknown search preset")
)

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field   string
	Message string
	Err     error // ErrMissingField or ErrInvalidIdentifier
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// MissingField builds a ValidationError for an absent field.
func MissingField(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: ErrMissingField}
}

// InvalidIdentifier builds a ValidationError for an unsafe identifier.
func InvalidIdentifier(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: ErrInvalidIdentifier}
}

// BackendError wraps a driver failure. It matches ErrBackend and unwraps to the driver error.
type BackendError struct {
	Kind string
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", ErrBackend.Error(), e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

// NewBackendError wraps err, leaving nil untouched.
func NewBackendError(kind string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Kind: kind, Err: err}
}
