package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidIR indicates an IR document the emitters cannot render.
	ErrInvalidIR = errors.New("via: invalid IR document")
	// ErrEmission indicates a failed output write.
	ErrEmission = errors.New("via: emission failed")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("via: missing configuration")
)

// EmissionError represents a failure while staging or committing
// generated output. The batch write is aborted as a whole; the output
// root is left as it was.
type EmissionError struct {
	Op      string // Operation (e.g., "render", "stage", "commit")
	Path    string // Offending path, relative to the output root when known
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *EmissionError) Error() string {
	var b strings.Builder
	b.WriteString("via: emission error")
	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (path: %s)", e.Path)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *EmissionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for EmissionError.
func (e *EmissionError) Is(target error) bool {
	return target == ErrEmission
}

// NewEmissionError creates a new EmissionError.
func NewEmissionError(op, path, message string, cause error) *EmissionError {
	return &EmissionError{
		Op:      op,
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("via: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("via: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// IsEmissionError reports whether the error is an EmissionError.
func IsEmissionError(err error) bool {
	var emitErr *EmissionError
	return errors.As(err, &emitErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}
