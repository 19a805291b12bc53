// Package errors provides the structured error type used across unidom.
//
// Every failure that crosses a package boundary is an *UnidomError carrying
// a type, a stable code, and where available the component and file that
// caused it. Callers match on codes with HasErrorCode or errors.Is against a
// sentinel built with the same type and code.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeBuild      ErrorType = "build"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// UnidomError is a structured error type with context.
type UnidomError struct {
	Type      ErrorType
	Code      string
	Message   string
	Cause     error
	Context   map[string]interface{}
	Component string
	FilePath  string
}

// Error implements the error interface.
func (e *UnidomError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *UnidomError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *UnidomError) Is(target error) bool {
	var t *UnidomError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *UnidomError) WithContext(key string, value interface{}) *UnidomError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithFile adds file location information.
func (e *UnidomError) WithFile(filePath string) *UnidomError {
	e.FilePath = filePath

	return e
}

// WithComponent adds component context.
func (e *UnidomError) WithComponent(component string) *UnidomError {
	e.Component = component

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *UnidomError {
	return &UnidomError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewBuildError creates a build error.
func NewBuildError(code, message string, cause error) *UnidomError {
	return &UnidomError{
		Type:    ErrorTypeBuild,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *UnidomError {
	return &UnidomError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *UnidomError {
	return &UnidomError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *UnidomError {
	return &UnidomError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error codes.
const (
	ErrCodeRootNotFound       = "ERR_ROOT_NOT_FOUND"
	ErrCodeRootElement        = "ERR_ROOT_ELEMENT"
	ErrCodeFileRead           = "ERR_FILE_READ"
	ErrCodeFileWrite          = "ERR_FILE_WRITE"
	ErrCodeMarkupParse        = "ERR_MARKUP_PARSE"
	ErrCodeTemplateNotFound   = "ERR_TEMPLATE_NOT_FOUND"
	ErrCodeTemplateArity      = "ERR_TEMPLATE_ARITY"
	ErrCodeUnbalancedClosure  = "ERR_UNBALANCED_CLOSURE"
	ErrCodeDuplicateComponent = "ERR_DUPLICATE_COMPONENT"
	ErrCodeScriptSyntax       = "ERR_SCRIPT_SYNTAX"
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeInternalError      = "ERR_INTERNAL"
)

// IsBuildError checks if an error is build-related.
func IsBuildError(err error) bool {
	return HasErrorType(err, ErrorTypeBuild)
}

// HasErrorType reports whether any error in the chain has the given type.
func HasErrorType(err error, errType ErrorType) bool {
	var ue *UnidomError
	if errors.As(err, &ue) {
		return ue.Type == errType
	}

	return false
}

// HasErrorCode reports whether any error in the chain carries code.
func HasErrorCode(err error, code string) bool {
	for err != nil {
		var ue *UnidomError
		if !errors.As(err, &ue) {
			return false
		}
		if ue.Code == code {
			return true
		}
		err = ue.Cause
	}

	return false
}

// Wrap wraps an existing error with structured information. Wrapping an
// *UnidomError keeps its component and file.
func Wrap(err error, errType ErrorType, code, message string) *UnidomError {
	if err == nil {
		return nil
	}

	wrapped := &UnidomError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}

	var ue *UnidomError
	if errors.As(err, &ue) {
		wrapped.Component = ue.Component
		wrapped.FilePath = ue.FilePath
	}

	return wrapped
}
