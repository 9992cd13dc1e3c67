// Package resolve turns parsed syntax trees into a checked graph of
// resources. Resolution runs in three phases: NewTable registers every
// resource name in the batch, File resolves the resources of one parsed
// file against that table, and Finalize runs the checks that need the
// whole batch. Problems are collected as diagnostics rather than
// returned as errors, so one pass reports everything it can find.
package resolve

import (
	"fmt"
	gotoken "go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vialang/via/compiler/ast"
	"github.com/vialang/via/compiler/diagnostic"
	"github.com/vialang/via/compiler/names"
	"github.com/vialang/via/compiler/token"
	"github.com/vialang/via/schema/kind"
)

// Table is the batch-wide name table. It is built in one serial pass over
// every parsed file before per-file resolution runs, so associations can
// target resources declared anywhere in the batch.
type Table struct {
	resources map[string]*Resource
}

// NewTable registers every resource declared in files and reports
// redeclarations. The table hands out one shared *Resource shell per
// name; File fills the shells in later, which keeps association targets
// stable pointers across the whole batch.
func NewTable(files []*ast.File, diags *diagnostic.List) *Table {
	t := &Table{resources: make(map[string]*Resource)}
	for _, f := range files {
		for _, rd := range f.Resources {
			if rd.Name == "" {
				continue // the parser already reported the missing name
			}
			if prev, ok := t.resources[rd.Name]; ok {
				diags.Consistencyf(f.Path, rd.Pos.Line, rd.Pos.Column,
					"resource %q redeclared, first declared in %s", rd.Name, prev.File)
				continue
			}
			checkResourceName(f.Path, rd, diags)
			t.resources[rd.Name] = &Resource{Name: rd.Name, File: f.Path, Pos: rd.Pos}
		}
	}
	return t
}

// Lookup returns the registered resource with the given name.
func (t *Table) Lookup(name string) (*Resource, bool) {
	r, ok := t.resources[name]
	return r, ok
}

// checkResourceName rejects names that cannot become Go type names or
// generated file names.
func checkResourceName(file string, rd *ast.Resource, diags *diagnostic.List) {
	name := rd.Name
	switch first, _ := utf8.DecodeRuneInString(name); {
	case !gotoken.IsIdentifier(name):
		diags.Resolutionf(file, rd.Pos.Line, rd.Pos.Column,
			"resource name %q is not a valid identifier", name)
	case !unicode.IsUpper(first):
		diags.Resolutionf(file, rd.Pos.Line, rd.Pos.Column,
			"resource name %q must start with an upper-case letter", name)
	}
}

// Resolve runs the whole pipeline serially: build the name table, resolve
// each file, then run the batch-level checks. The generate coordinator
// calls the three phases itself so the per-file step can run in parallel.
func Resolve(files []*ast.File, diags *diagnostic.List) *Graph {
	t := NewTable(files, diags)
	g := &Graph{}
	for _, f := range files {
		g.Resources = append(g.Resources, File(f, t, diags)...)
	}
	Finalize(g, diags)
	return g
}

// File resolves every resource declared in f against the table and
// returns them in declaration order. It only mutates resources declared
// in f itself, so distinct files can be resolved concurrently as long as
// each gets its own diagnostic list.
func File(f *ast.File, t *Table, diags *diagnostic.List) []*Resource {
	var out []*Resource
	for _, rd := range f.Resources {
		shell, ok := t.resources[rd.Name]
		if !ok || shell.File != f.Path || shell.Pos != rd.Pos {
			continue // redeclaration, reported by NewTable
		}
		resolveResource(shell, rd, t, diags)
		out = append(out, shell)
	}
	return out
}

// Finalize runs the checks that need the whole batch resolved. Today that
// is one rule: the candidates of a polymorphic belongs_to must agree on
// the kind of their id field, so the discriminated reference has a single
// id type.
func Finalize(g *Graph, diags *diagnostic.List) {
	for _, r := range g.Resources {
		if r.Model == nil {
			continue
		}
		for _, a := range r.Model.Associations {
			if !a.Polymorphic() {
				continue
			}
			base, baseKind := a.Candidates[0], idKind(a.Candidates[0])
			for _, cand := range a.Candidates[1:] {
				k := idKind(cand)
				if !baseKind.Valid() || !k.Valid() || k == baseKind {
					continue
				}
				diags.Consistencyf(r.File, a.Pos.Line, a.Pos.Column,
					"candidates of polymorphic belongs_to %q disagree on their id type: %s uses %s, %s uses %s",
					a.Name, base.Name, baseKind, cand.Name, k)
			}
		}
	}
}

func idKind(r *Resource) kind.Kind {
	if r.Model == nil {
		return kind.Invalid
	}
	if id := r.Model.ID(); id != nil {
		return id.Kind
	}
	return kind.Invalid
}

func resolveResource(r *Resource, rd *ast.Resource, t *Table, diags *diagnostic.List) {
	if rd.Model == nil {
		diags.Resolutionf(r.File, rd.Pos.Line, rd.Pos.Column,
			"resource %q has no model block", r.Name)
	} else {
		r.Model = resolveModel(r, rd.Model, t, diags)
	}
	if rd.Controller != nil {
		r.Controller = resolveController(r, rd.Controller, diags)
	}
}

func resolveModel(r *Resource, md *ast.Model, t *Table, diags *diagnostic.List) *Model {
	m := &Model{fields: make(map[string]*Field, len(md.Fields)+3)}

	var declared []*Field
	for _, fd := range md.Fields {
		f := resolveField(r, fd, diags)
		if f == nil {
			continue
		}
		if _, ok := m.fields[f.Name]; ok {
			diags.Consistencyf(r.File, fd.Pos.Line, fd.Pos.Column,
				"field %q redeclared in resource %q", f.Name, r.Name)
			continue
		}
		m.fields[f.Name] = f
		declared = append(declared, f)
	}

	// The implicit id goes first and the implicit timestamps last; a field
	// the user declared under one of those names keeps its declared
	// position and is not treated as implicit.
	if _, ok := m.fields[FieldID]; !ok {
		id := &Field{Name: FieldID, Kind: kind.Int, Serialize: true, Implicit: true}
		m.fields[FieldID] = id
		m.Fields = append(m.Fields, id)
	}
	m.Fields = append(m.Fields, declared...)
	for _, name := range []string{FieldCreatedAt, FieldUpdatedAt} {
		if _, ok := m.fields[name]; !ok {
			ts := &Field{Name: name, Kind: kind.DateTime, Serialize: true, Implicit: true}
			m.fields[name] = ts
			m.Fields = append(m.Fields, ts)
		}
	}

	for _, ad := range md.Associations {
		if ad.Name == "" {
			continue
		}
		a := resolveAssociation(r, ad, t, diags)
		if a == nil {
			continue
		}
		if _, ok := m.assoc(a.Name); ok {
			diags.Consistencyf(r.File, ad.Pos.Line, ad.Pos.Column,
				"association %q redeclared in resource %q", a.Name, r.Name)
			continue
		}
		if _, ok := m.fields[a.Name]; ok {
			diags.Consistencyf(r.File, ad.Pos.Line, ad.Pos.Column,
				"association %q collides with a field of the same name", a.Name)
			continue
		}
		if a.Kind == ast.BelongsTo {
			checkForeignKeys(r, m, a, diags)
		}
		m.Associations = append(m.Associations, a)
	}
	return m
}

func (m *Model) assoc(name string) (*Association, bool) {
	for _, a := range m.Associations {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// checkForeignKeys rejects declared fields that collide with the scalar
// columns a belongs_to expands to in the generated model.
func checkForeignKeys(r *Resource, m *Model, a *Association, diags *diagnostic.List) {
	keys := []string{a.ForeignKey()}
	if a.Polymorphic() {
		keys = append(keys, a.TypeKey())
	}
	for _, key := range keys {
		if _, ok := m.fields[key]; ok {
			diags.Consistencyf(r.File, a.Pos.Line, a.Pos.Column,
				"field %q collides with a column generated by belongs_to %q", key, a.Name)
		}
	}
}

func resolveField(r *Resource, fd *ast.Field, diags *diagnostic.List) *Field {
	if fd.Name == "" {
		return nil // the parser already reported the missing name
	}
	f := &Field{
		Name:      fd.Name,
		Nullable:  fd.Optional,
		Serialize: fd.Serialize == nil || *fd.Serialize,
		Pos:       fd.Pos,
	}
	k, ok := kind.Lookup(fd.Type)
	if !ok {
		diags.Add(diagnostic.Diagnostic{
			Kind:    diagnostic.KindResolution,
			File:    r.File,
			Line:    fd.Pos.Line,
			Column:  fd.Pos.Column,
			Message: fmt.Sprintf("unknown type %q for field %q", fd.Type, fd.Name),
			Hint:    "known types: " + strings.Join(kind.Names(), ", "),
		})
		return nil
	}
	f.Kind = k
	if f.Name == FieldID && f.Nullable {
		diags.Resolutionf(r.File, fd.Pos.Line, fd.Pos.Column, "id field cannot be optional")
		f.Nullable = false
	}
	if fd.Default != nil {
		resolveDefault(r, f, fd.Default, diags)
	}
	return f
}

// resolveDefault decodes a literal default and checks it against the
// field's kind. Note that a default never makes the field nullable.
func resolveDefault(r *Resource, f *Field, lit *token.Token, diags *diagnostic.List) {
	switch f.Kind {
	case kind.String, kind.Text:
		if lit.Type == token.STRING {
			f.HasDefault, f.Default = true, lit.Literal
			return
		}
	case kind.Bool:
		if lit.Type == token.TRUE || lit.Type == token.FALSE {
			f.HasDefault, f.Default = true, lit.Type == token.TRUE
			return
		}
	case kind.Int, kind.BigInt:
		if lit.Type == token.INT {
			n, err := strconv.ParseInt(lit.Literal, 10, 64)
			if err != nil {
				diags.Resolutionf(r.File, lit.Line, lit.Column,
					"integer default %s for field %q overflows int64", lit.Literal, f.Name)
				return
			}
			f.HasDefault, f.Default = true, n
			return
		}
	case kind.Float:
		if lit.Type == token.FLOAT || lit.Type == token.INT {
			n, err := strconv.ParseFloat(lit.Literal, 64)
			if err != nil {
				diags.Resolutionf(r.File, lit.Line, lit.Column,
					"number %s is not a valid float default for field %q", lit.Literal, f.Name)
				return
			}
			f.HasDefault, f.Default = true, n
			return
		}
	}
	diags.Resolutionf(r.File, lit.Line, lit.Column,
		"field %q has type %s, which cannot take %s as a default", f.Name, f.Kind, describeLiteral(lit))
}

func describeLiteral(lit *token.Token) string {
	switch lit.Type {
	case token.STRING:
		return fmt.Sprintf("string %q", lit.Literal)
	case token.INT, token.FLOAT:
		return "number " + lit.Literal
	case token.TRUE, token.FALSE:
		return "boolean " + lit.Literal
	}
	return strconv.Quote(lit.Literal)
}

func resolveAssociation(r *Resource, ad *ast.Association, t *Table, diags *diagnostic.List) *Association {
	a := &Association{Kind: ad.Kind, Name: ad.Name, Optional: ad.Optional, Pos: ad.Pos}
	if ad.Kind == ast.HasMany && ad.Optional {
		diags.Resolutionf(r.File, ad.Pos.Line, ad.Pos.Column,
			"has_many %q cannot be marked optional", ad.Name)
		a.Optional = false
	}

	if ad.Polymorphic() {
		if len(ad.Targets) == 0 {
			diags.Resolutionf(r.File, ad.Pos.Line, ad.Pos.Column,
				"polymorphic belongs_to %q has an empty candidate-type list", ad.Name)
			return nil
		}
		seen := make(map[string]bool, len(ad.Targets))
		for _, id := range ad.Targets {
			if seen[id.Name] {
				diags.Consistencyf(r.File, id.Pos.Line, id.Pos.Column,
					"duplicate candidate %q in belongs_to %q", id.Name, ad.Name)
				continue
			}
			seen[id.Name] = true
			target, ok := t.resources[id.Name]
			if !ok {
				diags.Resolutionf(r.File, id.Pos.Line, id.Pos.Column,
					"unknown resource %q in candidate-type list of belongs_to %q", id.Name, ad.Name)
				continue
			}
			a.Candidates = append(a.Candidates, target)
		}
		if len(a.Candidates) == 0 {
			return nil
		}
		return a
	}

	name := ad.Target
	if name == "" {
		name = names.Pascal(names.Singular(ad.Name))
	}
	target, ok := t.resources[name]
	if !ok {
		if ad.Target == "" {
			diags.Add(diagnostic.Diagnostic{
				Kind:    diagnostic.KindResolution,
				File:    r.File,
				Line:    ad.Pos.Line,
				Column:  ad.Pos.Column,
				Message: fmt.Sprintf("cannot resolve %s %q: no resource named %q in this batch", ad.Kind, ad.Name, name),
				Hint:    fmt.Sprintf("name the target explicitly: %s %s: <Resource>", ad.Kind, ad.Name),
			})
		} else {
			diags.Resolutionf(r.File, ad.Pos.Line, ad.Pos.Column,
				"unknown resource %q in %s %q", ad.Target, ad.Kind, ad.Name)
		}
		return nil
	}
	a.Target = target
	return a
}
