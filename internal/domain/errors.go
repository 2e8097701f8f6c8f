package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for errors that abort a run rather than a single item
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConversion ErrorType = "conversion"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeStorage    ErrorType = "storage"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func ConversionError(message string, err error) *DomainError {
	return NewError(ErrorTypeConversion, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

func StorageError(message string, err error) *DomainError {
	return NewError(ErrorTypeStorage, message, err)
}

// ErrorKind classifies an expected, user-facing failure of one work item.
type ErrorKind string

const (
	KindInvalidParameter ErrorKind = "InvalidParameter"
	KindInputNotFound    ErrorKind = "InputNotFound"
	KindOperationFailed  ErrorKind = "OperationFailed"
)

// OperationError is the structured failure carried by OperationResult and
// ValidationOutcome. Suggestions are ordered remediation hints.
type OperationError struct {
	Kind        ErrorKind `json:"kind"`
	Message     string    `json:"message"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

func (e *OperationError) Error() string {
	if len(e.Suggestions) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(e.Suggestions, "; "))
}

// NewOperationError creates an operation error of the given kind.
func NewOperationError(kind ErrorKind, message string, suggestions ...string) *OperationError {
	return &OperationError{
		Kind:        kind,
		Message:     message,
		Suggestions: append([]string(nil), suggestions...),
	}
}

func InvalidParameter(message string, suggestions ...string) *OperationError {
	return NewOperationError(KindInvalidParameter, message, suggestions...)
}

func InputNotFound(message string, suggestions ...string) *OperationError {
	return NewOperationError(KindInputNotFound, message, suggestions...)
}

func OperationFailed(message string, suggestions ...string) *OperationError {
	return NewOperationError(KindOperationFailed, message, suggestions...)
}

// AsOperationError returns err as an *OperationError. Errors that are not
// already operation errors are reported as OperationFailed with the given hints.
func AsOperationError(err error, suggestions ...string) *OperationError {
	if err == nil {
		return nil
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr
	}
	return OperationFailed(err.Error(), suggestions...)
}
