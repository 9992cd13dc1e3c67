package gen

import (
	"errors"

	"github.com/rs/zerolog"
)

// Option configures the emitters.
type Option func(*Config) error

// WithModule sets the module path of the generated backend code.
// For example: "github.com/org/project/gen".
func WithModule(module string) Option {
	return func(c *Config) error {
		if module == "" {
			return NewConfigError("Module", nil, "module path cannot be empty")
		}
		c.Module = module
		return nil
	}
}

// WithHeader sets the marker comment added at the top of each
// generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		if header == "" {
			return NewConfigError("Header", nil, "header cannot be empty")
		}
		c.Header = header
		return nil
	}
}

// WithWorkers bounds the number of parallel render workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "worker count must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Config) error {
		c.Logger = log
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
