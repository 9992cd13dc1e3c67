// Package gen holds the emission layer shared by the code generators:
// the emitter contract, the collected file set, the staged atomic
// writer and the emission error types. Emitters render an IR document
// into a FileSet; the Writer commits the whole set under the output
// root in one swap so a failed run never leaves a half-written tree.
package gen

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/vialang/via/compiler/ir"
)

// DefaultHeader is the comment placed at the top of every generated file.
const DefaultHeader = "Code generated by via. DO NOT EDIT."

// DefaultModule is the module path of the generated backend when the
// configuration does not name one.
const DefaultModule = "viagen"

// An Emitter renders one artifact family from an IR document into a
// file set. Emitters for different families may run concurrently on
// the same FileSet as long as their output paths do not overlap.
type Emitter interface {
	// Name identifies the emitter in logs and errors.
	Name() string
	// Emit renders doc into set. The document is read-only.
	Emit(ctx context.Context, doc *ir.Document, set *FileSet) error
}

// Config carries the settings shared by all emitters.
type Config struct {
	// Module is the module path of the generated backend code.
	Module string
	// Header is the generated-code marker comment.
	Header string
	// Workers bounds per-resource render parallelism.
	Workers int
	// Logger receives debug output. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// NewConfig creates a Config with defaults applied, then the options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Module:  DefaultModule,
		Header:  DefaultHeader,
		Workers: runtime.GOMAXPROCS(0),
		Logger:  zerolog.Nop(),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig is like NewConfig but panics on an invalid option.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ValidateDocument checks the structural preconditions every emitter
// relies on. Emitters call it before rendering.
func ValidateDocument(doc *ir.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidIR)
	}
	if doc.Version != ir.Version {
		return fmt.Errorf("%w: unsupported document version %q", ErrInvalidIR, doc.Version)
	}
	for _, r := range doc.Resources {
		if r.Name == "" {
			return fmt.Errorf("%w: resource with empty name", ErrInvalidIR)
		}
		if r.Model == nil {
			return fmt.Errorf("%w: resource %s has no model", ErrInvalidIR, r.Name)
		}
	}
	return nil
}
