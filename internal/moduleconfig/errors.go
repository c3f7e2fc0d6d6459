package moduleconfig

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeParse indicates a snapshot or patch document could not be decoded
	ErrTypeParse ErrorType = iota
	// ErrTypeValidation indicates a field value failed validation
	ErrTypeValidation
	// ErrTypeModuleMismatch indicates a patch was offered for a different module's slot
	ErrTypeModuleMismatch
	// ErrTypeUnknownModule indicates a module name this package does not model
	ErrTypeUnknownModule
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeModuleMismatch:
		return "Module Mismatch"
	case ErrTypeUnknownModule:
		return "Unknown Module"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ConfigError represents an error raised while handling module configuration
type ConfigError struct {
	Type    ErrorType // Category of error
	Module  Name      // Module the error relates to (if known)
	Field   string    // Offending field (validation errors only)
	Message string    // Human-readable error message
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeParse,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a validation error for a single field
func NewValidationError(module Name, field, message string) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeValidation,
		Module:  module,
		Field:   field,
		Message: message,
	}
}

// NewModuleMismatchError reports an attempt to write got's patch into want's slot
func NewModuleMismatchError(want, got Name) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeModuleMismatch,
		Module:  want,
		Message: fmt.Sprintf("patch for module %q cannot be applied to module %q", got, want),
	}
}

// NewUnknownModuleError reports a module name this package does not model
func NewUnknownModuleError(module Name) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeUnknownModule,
		Module:  module,
		Message: fmt.Sprintf("unknown module %q", module),
	}
}

func errorType(err error) (ErrorType, bool) {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Type, true
	}
	return 0, false
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeParse
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeValidation
}

// IsModuleMismatch checks if an error reports a cross-module write
func IsModuleMismatch(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeModuleMismatch
}

// IsUnknownModule checks if an error reports an unmodelled module
func IsUnknownModule(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeUnknownModule
}
