// Package ts renders TypeScript declarations from an IR document: one
// module per resource describing the client-visible payload and the
// request params shapes, plus an index barrel. Output is plain text in
// two-space indentation; nothing here shells out to a TypeScript
// toolchain.
package ts

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vialang/via/compiler/gen"
	"github.com/vialang/via/compiler/ir"
	"github.com/vialang/via/compiler/names"
	"github.com/vialang/via/schema/kind"
)

// Emitter renders the client type declarations.
type Emitter struct {
	cfg *gen.Config
}

// New creates a declarations emitter. A nil config selects the defaults.
func New(cfg *gen.Config) *Emitter {
	if cfg == nil {
		cfg = gen.MustNewConfig()
	}
	return &Emitter{cfg: cfg}
}

// Name implements gen.Emitter.
func (e *Emitter) Name() string { return "ts" }

// Emit implements gen.Emitter.
func (e *Emitter) Emit(ctx context.Context, doc *ir.Document, set *gen.FileSet) error {
	if err := gen.ValidateDocument(doc); err != nil {
		return err
	}
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
			return e.emitResource(r, set)
		})
	}
	grp.Go(func() error { return e.emitIndex(doc, set) })
	if err := grp.Wait(); err != nil {
		return err
	}
	e.cfg.Logger.Debug().Int("resources", len(doc.Resources)).Msg("type declarations emitted")
	return nil
}

// emitResource renders ts/<resource>.ts. Payload interfaces carry only
// the client-visible fields; association lists never materialize.
func (e *Emitter) emitResource(r *ir.Resource, set *gen.FileSet) error {
	p := newPrinter(e.cfg.Header)
	p.blank()
	p.linef("/** %s is the client payload for the %s resource (from %s). */", r.Name, r.Name, r.Source)
	p.linef("export interface %s {", r.Name)
	p.in()
	client := make(map[string]bool, len(r.Model.ClientFields))
	for _, name := range r.Model.ClientFields {
		client[name] = true
	}
	for _, f := range r.Model.Fields {
		if !client[f.Name] {
			continue
		}
		p.line(payloadLine(f.Name, tsType(f.Kind), f.Nullable))
	}
	for _, a := range r.Model.Associations {
		switch {
		case len(a.Candidates) > 0:
			p.line(payloadLine(a.Name, polyType(a), a.Optional))
		case a.Kind == ir.AssocBelongsTo:
			p.line(payloadLine(a.ForeignKey, tsType(a.IDKind), a.Optional))
		}
	}
	p.out()
	p.line("}")

	if c := r.Controller; c != nil {
		if c.Create != nil {
			e.emitParams(p, r.Name+"CreateParams", "accepted input of the "+r.Name+" create action", c.Create)
		}
		if c.Update != nil {
			e.emitParams(p, r.Name+"UpdateParams", "partial update shape for "+r.Name+"; absent fields are left unchanged", c.Update)
		}
	}
	return set.Add("ts/"+names.Snake(r.Name)+".ts", p.bytes())
}

func (e *Emitter) emitParams(p *printer, name, doc string, params []*ir.Param) {
	p.blank()
	p.linef("/** %s is the %s. */", name, doc)
	p.linef("export interface %s {", name)
	p.in()
	for _, param := range params {
		if param.Required {
			p.linef("%s: %s;", param.Name, tsType(param.Kind))
		} else {
			p.linef("%s?: %s;", param.Name, tsType(param.Kind))
		}
	}
	p.out()
	p.line("}")
}

// emitIndex renders ts/index.ts re-exporting every resource module in
// input order.
func (e *Emitter) emitIndex(doc *ir.Document, set *gen.FileSet) error {
	p := newPrinter(e.cfg.Header)
	if len(doc.Resources) > 0 {
		p.blank()
	}
	for _, r := range doc.Resources {
		p.linef("export * from %q;", "./"+names.Snake(r.Name))
	}
	return set.Add("ts/index.ts", p.bytes())
}

// payloadLine renders one interface member. Nullable members are both
// optional and null-bearing, matching the backend's omitempty pointer
// fields.
func payloadLine(name, typ string, nullable bool) string {
	if !nullable {
		return name + ": " + typ + ";"
	}
	if typ == "unknown" {
		return name + "?: " + typ + ";"
	}
	return name + "?: " + typ + " | null;"
}

// polyType renders the discriminated reference for a polymorphic
// belongs_to: an inline object whose type member is the union of the
// candidate resource names.
func polyType(a *ir.Association) string {
	quoted := make([]string, len(a.Candidates))
	for i, c := range a.Candidates {
		quoted[i] = `"` + c + `"`
	}
	return "{ type: " + strings.Join(quoted, " | ") + "; id: " + tsType(a.IDKind) + " }"
}

// tsType maps an IR kind to its wire representation. Temporal values
// travel as ISO 8601 strings and bytes as base64 strings.
func tsType(k kind.Kind) string {
	switch k {
	case kind.String, kind.Text, kind.UUID:
		return "string"
	case kind.Int, kind.BigInt, kind.Float:
		return "number"
	case kind.Bool:
		return "boolean"
	case kind.DateTime, kind.Date:
		return "string"
	case kind.Bytes:
		return "string"
	case kind.JSON:
		return "unknown"
	default:
		return "unknown"
	}
}
