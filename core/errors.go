package core

import "github.com/pkg/errors"

// FieldError ties a business-rule failure to the request field that caused
// it, e.g. a duplicate course code or an already-enrolled student.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries per-field business-rule failures raised by the
// domain services. The HTTP layer renders it as a 400 with an errors map,
// distinct from the 422 produced by struct-tag validation.
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

// FieldMap flattens the field errors for the response envelope.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	flds := make(map[string]string, len(err.Fields))
	for _, fErr := range err.Fields {
		flds[fErr.Field] = fErr.Error
	}
	return flds
}

// shutdown signals an unrecoverable condition, e.g. the store going away
// under a live server. The HTTP error handler triggers a graceful stop
// when it catches one.
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
