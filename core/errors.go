package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to a single named field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a business-rule or input error safe to show to API
// clients. Fields, when present, carries per-field failures.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals that the process can no longer serve requests and must
// terminate.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
