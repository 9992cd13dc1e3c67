// Package ir defines the intermediate representation written between the
// resolver and the code generators. The document is a pure function of the
// resolved graph: field order is declaration order, resource order is
// input-file order, and nothing in it depends on map iteration. Both
// emitters render from this one document, and it is also serialized to
// disk as a stable, versioned artifact for external tooling.
package ir

import (
	"github.com/vialang/via/compiler/ast"
	"github.com/vialang/via/compiler/resolve"
	"github.com/vialang/via/schema/kind"
)

// Version identifies the document schema. Bump it when a change would
// break an external consumer of the serialized form.
const Version = "1"

// Generation statuses carried by models and actions.
const (
	StatusGenerated  = "generated"
	StatusOverridden = "overridden"
	StatusEjected    = "ejected"
)

// Association kinds as serialized in the document.
const (
	AssocBelongsTo = "belongs_to"
	AssocHasMany   = "has_many"
)

type (
	// Document is the serialized snapshot of one generation batch.
	Document struct {
		Version string `json:"version" msgpack:"version"`
		// Module is the import path of the generated backend module.
		Module    string      `json:"module,omitempty" msgpack:"module,omitempty"`
		Resources []*Resource `json:"resources" msgpack:"resources"`
	}

	// Resource is the resolved shape of one resource declaration.
	Resource struct {
		Name       string      `json:"name" msgpack:"name"`
		Source     string      `json:"source" msgpack:"source"`
		Model      *Model      `json:"model" msgpack:"model"`
		Controller *Controller `json:"controller,omitempty" msgpack:"controller,omitempty"`
	}

	// Model carries the storage-visible field list and, separately, the
	// names of the client-visible subset, so no consumer has to re-derive
	// the visibility rule.
	Model struct {
		Fields       []*Field       `json:"fields" msgpack:"fields"`
		ClientFields []string       `json:"clientFields" msgpack:"clientFields"`
		Associations []*Association `json:"associations,omitempty" msgpack:"associations,omitempty"`
		Status       string         `json:"status" msgpack:"status"`
		Ref          string         `json:"ref,omitempty" msgpack:"ref,omitempty"`
	}

	// Field is one storage field. A field with HasDefault set and no
	// default entry defaults to the zero value of its kind; the entry is
	// omitted rather than serialized as an ambiguous null.
	Field struct {
		Name       string    `json:"name" msgpack:"name"`
		Kind       kind.Kind `json:"kind" msgpack:"kind"`
		Nullable   bool      `json:"nullable,omitempty" msgpack:"nullable,omitempty"`
		Serialize  bool      `json:"serialize" msgpack:"serialize"`
		HasDefault bool      `json:"hasDefault,omitempty" msgpack:"hasDefault,omitempty"`
		Default    any       `json:"default,omitempty" msgpack:"default,omitempty"`
		Implicit   bool      `json:"implicit,omitempty" msgpack:"implicit,omitempty"`
	}

	// Association is one resolved association. For a belongs_to the
	// foreign-key column name and the id kind it stores are precomputed;
	// polymorphic associations list candidate type names and carry the
	// discriminator column name as well.
	Association struct {
		Kind       string    `json:"kind" msgpack:"kind"`
		Name       string    `json:"name" msgpack:"name"`
		Optional   bool      `json:"optional,omitempty" msgpack:"optional,omitempty"`
		Target     string    `json:"target,omitempty" msgpack:"target,omitempty"`
		Candidates []string  `json:"candidates,omitempty" msgpack:"candidates,omitempty"`
		ForeignKey string    `json:"foreignKey,omitempty" msgpack:"foreignKey,omitempty"`
		TypeKey    string    `json:"typeKey,omitempty" msgpack:"typeKey,omitempty"`
		IDKind     kind.Kind `json:"idKind,omitempty" msgpack:"idKind,omitempty"`
	}

	// Controller is the resolved controller shape.
	Controller struct {
		Actions []*Action `json:"actions" msgpack:"actions"`
		Formats []string  `json:"formats" msgpack:"formats"`
		Create  []*Param  `json:"createParams,omitempty" msgpack:"createParams,omitempty"`
		Update  []*Param  `json:"updateParams,omitempty" msgpack:"updateParams,omitempty"`
	}

	// Action is one controller action with its generation status.
	Action struct {
		Name   string `json:"name" msgpack:"name"`
		Custom bool   `json:"custom,omitempty" msgpack:"custom,omitempty"`
		Status string `json:"status" msgpack:"status"`
		Ref    string `json:"ref,omitempty" msgpack:"ref,omitempty"`
	}

	// Param is one entry of a params profile.
	Param struct {
		Name     string    `json:"name" msgpack:"name"`
		Kind     kind.Kind `json:"kind" msgpack:"kind"`
		Nullable bool      `json:"nullable,omitempty" msgpack:"nullable,omitempty"`
		Required bool      `json:"required,omitempty" msgpack:"required,omitempty"`
	}
)

// Build assembles the document for a resolved graph. It never fails: the
// resolver has already rejected everything that could make the mapping
// ambiguous.
func Build(g *resolve.Graph, module string) *Document {
	doc := &Document{
		Version:   Version,
		Module:    module,
		Resources: make([]*Resource, 0, len(g.Resources)),
	}
	for _, r := range g.Resources {
		doc.Resources = append(doc.Resources, buildResource(r))
	}
	return doc
}

func buildResource(r *resolve.Resource) *Resource {
	out := &Resource{
		Name:   r.Name,
		Source: r.File,
		Model:  buildModel(r.Model),
	}
	if r.Controller != nil {
		out.Controller = buildController(r.Controller)
	}
	return out
}

func buildModel(m *resolve.Model) *Model {
	if m == nil {
		return nil
	}
	out := &Model{
		Fields:       make([]*Field, 0, len(m.Fields)),
		ClientFields: make([]string, 0, len(m.Fields)),
		Status:       m.Status.String(),
		Ref:          m.Ref,
	}
	for _, f := range m.Fields {
		out.Fields = append(out.Fields, &Field{
			Name:       f.Name,
			Kind:       f.Kind,
			Nullable:   f.Nullable,
			Serialize:  f.Serialize,
			HasDefault: f.HasDefault,
			Default:    f.Default,
			Implicit:   f.Implicit,
		})
		if f.Serialize {
			out.ClientFields = append(out.ClientFields, f.Name)
		}
	}
	for _, a := range m.Associations {
		out.Associations = append(out.Associations, buildAssociation(a))
	}
	return out
}

func buildAssociation(a *resolve.Association) *Association {
	out := &Association{
		Kind:     a.Kind.String(),
		Name:     a.Name,
		Optional: a.Optional,
	}
	switch {
	case a.Polymorphic():
		for _, c := range a.Candidates {
			out.Candidates = append(out.Candidates, c.Name)
		}
		out.ForeignKey = a.ForeignKey()
		out.TypeKey = a.TypeKey()
		out.IDKind = modelIDKind(a.Candidates[0])
	case a.Target != nil:
		out.Target = a.Target.Name
		if a.Kind == ast.BelongsTo {
			out.ForeignKey = a.ForeignKey()
			out.IDKind = modelIDKind(a.Target)
		}
	}
	return out
}

func modelIDKind(r *resolve.Resource) kind.Kind {
	if r.Model == nil {
		return kind.Invalid
	}
	if id := r.Model.ID(); id != nil {
		return id.Kind
	}
	return kind.Invalid
}

func buildController(c *resolve.Controller) *Controller {
	out := &Controller{
		Actions: make([]*Action, 0, len(c.Actions)),
		Formats: c.Formats,
	}
	for _, a := range c.Actions {
		out.Actions = append(out.Actions, &Action{
			Name:   a.Name,
			Custom: a.Custom,
			Status: a.Status.String(),
			Ref:    a.Ref,
		})
	}
	out.Create = buildParams(c.Create)
	out.Update = buildParams(c.Update)
	return out
}

func buildParams(params []*resolve.Param) []*Param {
	if params == nil {
		return nil
	}
	out := make([]*Param, 0, len(params))
	for _, p := range params {
		out = append(out, &Param{
			Name:     p.Field.Name,
			Kind:     p.Field.Kind,
			Nullable: p.Field.Nullable,
			Required: p.Required,
		})
	}
	return out
}
