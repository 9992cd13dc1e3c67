// Package golang renders the backend module from an IR document: one
// model file and one controller file per resource, the route
// aggregation file, and the generated module's go.mod manifest. All
// Go source is assembled with jennifer and formatted on the way into
// the file set.
package golang

import (
	"bytes"
	"context"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/vialang/via/compiler/gen"
	"github.com/vialang/via/compiler/ir"
	"github.com/vialang/via/compiler/names"
	"github.com/vialang/via/schema/kind"
)

// Import paths referenced by the generated code.
const (
	runtimePkg = "github.com/vialang/via"
	chiPkg     = "github.com/go-chi/chi/v5"
	goccyPkg   = "github.com/goccy/go-json"
	uuidPkg    = "github.com/google/uuid"
)

// Emitter renders the backend module.
type Emitter struct {
	cfg *gen.Config
}

// New creates a backend emitter. A nil config selects the defaults.
func New(cfg *gen.Config) *Emitter {
	if cfg == nil {
		cfg = gen.MustNewConfig()
	}
	return &Emitter{cfg: cfg}
}

// Name implements gen.Emitter.
func (e *Emitter) Name() string { return "golang" }

// Emit implements gen.Emitter. Per-resource files render in parallel;
// the aggregation files render once per run.
func (e *Emitter) Emit(ctx context.Context, doc *ir.Document, set *gen.FileSet) error {
	if err := gen.ValidateDocument(doc); err != nil {
		return err
	}
	module := e.moduleName(doc)
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(e.cfg.Workers)
	for _, r := range doc.Resources {
		r := r
		grp.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := e.emitModel(r, set); err != nil {
				return err
			}
			return e.emitController(r, module, set)
		})
	}
	grp.Go(func() error { return e.emitRoutes(doc, module, set) })
	grp.Go(func() error { return e.emitModelsDoc(doc, set) })
	grp.Go(func() error { return e.emitManifest(doc, module, set) })
	if err := grp.Wait(); err != nil {
		return err
	}
	e.cfg.Logger.Debug().Int("resources", len(doc.Resources)).Msg("backend module emitted")
	return nil
}

// moduleName resolves the generated module path, preferring the one
// recorded in the document over the configured fallback.
func (e *Emitter) moduleName(doc *ir.Document) string {
	if doc.Module != "" {
		return doc.Module
	}
	return e.cfg.Module
}

// newFile creates a jennifer file with the generated-code header.
func (e *Emitter) newFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment(e.cfg.Header)
	f.ImportAlias(goccyPkg, "json")
	return f
}

// addFile renders f and records it under rel, formatted.
func (e *Emitter) addFile(set *gen.FileSet, rel string, f *jen.File) error {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return gen.NewEmissionError("render", rel, "render generated source", err)
	}
	return set.AddGoSource(rel, buf.Bytes())
}

func (e *Emitter) modelsPath() string      { return "models" }
func (e *Emitter) controllersPath() string { return "controllers" }

// goIdent converts an IR name to an exported Go identifier, upgrading
// acronym segments ("authorId" becomes "AuthorID").
func goIdent(name string) string {
	return names.Pascal(names.Snake(name))
}

// scalarType returns the Go type for a field kind.
func scalarType(k kind.Kind) jen.Code {
	switch k {
	case kind.String, kind.Text:
		return jen.String()
	case kind.Bool:
		return jen.Bool()
	case kind.Int, kind.BigInt:
		return jen.Int64()
	case kind.Float:
		return jen.Float64()
	case kind.DateTime, kind.Date:
		return jen.Qual("time", "Time")
	case kind.UUID:
		return jen.Qual(uuidPkg, "UUID")
	case kind.JSON:
		return jen.Qual(goccyPkg, "RawMessage")
	case kind.Bytes:
		return jen.Index().Byte()
	default:
		return jen.Any()
	}
}

// optionalType returns the Go type for a nullable or optional value of
// the given kind. Slice-backed kinds stay bare since nil already means
// absent; primitives use the pointer spelling directly to keep struct
// rendering tight.
func optionalType(k kind.Kind) jen.Code {
	switch k {
	case kind.String, kind.Text:
		return jen.Id("*string")
	case kind.Bool:
		return jen.Id("*bool")
	case kind.Int, kind.BigInt:
		return jen.Id("*int64")
	case kind.Float:
		return jen.Id("*float64")
	case kind.DateTime, kind.Date:
		return jen.Op("*").Qual("time", "Time")
	case kind.UUID:
		return jen.Op("*").Qual(uuidPkg, "UUID")
	case kind.JSON:
		return jen.Qual(goccyPkg, "RawMessage")
	case kind.Bytes:
		return jen.Index().Byte()
	default:
		return jen.Any()
	}
}

func fieldType(k kind.Kind, optional bool) jen.Code {
	if optional {
		return optionalType(k)
	}
	return scalarType(k)
}

// jsonTag builds the struct tag for a field. Hidden fields are tagged
// out of serialization entirely.
func jsonTag(name string, optional, serialize bool) map[string]string {
	if !serialize {
		return map[string]string{"json": "-"}
	}
	if optional {
		return map[string]string{"json": name + ",omitempty"}
	}
	return map[string]string{"json": name}
}
