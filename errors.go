package rowmap

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeConstruction    ErrorType = "construction"
	ErrorTypeFieldAccess     ErrorType = "field_access"
	ErrorTypeUnsupportedType ErrorType = "unsupported_type"
	ErrorTypeValidation      ErrorType = "validation"
)

// Error codes
const (
	ErrCodeNotAStruct       = "NOT_A_STRUCT"
	ErrCodeInitializeFailed = "INITIALIZE_FAILED"
	ErrCodeInvalidRecord    = "INVALID_RECORD"
	ErrCodeFieldReadFailed  = "FIELD_READ_FAILED"
	ErrCodeFieldWriteFailed = "FIELD_WRITE_FAILED"
	ErrCodeUnsupportedType  = "UNSUPPORTED_TYPE"
	ErrCodeSchemaValidation = "SCHEMA_VALIDATION_FAILED"
)

// MapperError is the error returned by mapping operations.
type MapperError struct {
	Type       ErrorType      `json:"type"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	RecordType string         `json:"recordType,omitempty"`
	Field      string         `json:"field,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *MapperError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	switch {
	case e.RecordType != "" && e.Field != "":
		return fmt.Sprintf("[%s:%s] %s.%s: %s", e.Type, e.Code, e.RecordType, e.Field, msg)
	case e.Field != "":
		return fmt.Sprintf("[%s:%s] field '%s': %s", e.Type, e.Code, e.Field, msg)
	case e.RecordType != "":
		return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, e.RecordType, msg)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, msg)
}

func (e *MapperError) Unwrap() error {
	return e.Cause
}

// WithDetails adds details to a MapperError
func (e *MapperError) WithDetails(details map[string]any) *MapperError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail adds a single detail to a MapperError
func (e *MapperError) WithDetail(key string, value any) *MapperError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *MapperError) WithCause(cause error) *MapperError {
	e.Cause = cause
	return e
}

func (e *MapperError) WithField(field string) *MapperError {
	e.Field = field
	return e
}

func (e *MapperError) WithRecordType(recordType string) *MapperError {
	e.RecordType = recordType
	return e
}

func NewConstructionError(code, message string) *MapperError {
	return &MapperError{Type: ErrorTypeConstruction, Code: code, Message: message}
}

func NewFieldAccessError(code, field, message string) *MapperError {
	return &MapperError{Type: ErrorTypeFieldAccess, Code: code, Field: field, Message: message}
}

func NewUnsupportedTypeError(field, message string) *MapperError {
	return &MapperError{Type: ErrorTypeUnsupportedType, Code: ErrCodeUnsupportedType, Field: field, Message: message}
}

func NewValidationError(message string) *MapperError {
	return &MapperError{Type: ErrorTypeValidation, Code: ErrCodeSchemaValidation, Message: message}
}

// IsErrorType reports whether err wraps a MapperError of type t.
func IsErrorType(err error, t ErrorType) bool {
	var me *MapperError
	if errors.As(err, &me) {
		return me.Type == t
	}
	return false
}
