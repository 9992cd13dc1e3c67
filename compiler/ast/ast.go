// Package ast declares the syntax tree for parsed .via source files.
//
// The tree is deliberately a closed set of plain structs, one per block kind
// of the grammar, rather than an interface hierarchy. Names and type
// spellings are kept as written in source; resolution happens later.
package ast

import "github.com/vialang/via/compiler/token"

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

// At returns the position of a token.
func At(tok token.Token) Pos {
	return Pos{Line: tok.Line, Column: tok.Column}
}

// File is one parsed .via source file.
type File struct {
	Path      string
	Resources []*Resource
}

// Resource is a top-level resource declaration. Model may be nil for a
// malformed file (the parser reports the error and keeps what it has).
// Controller is optional.
type Resource struct {
	Name       string
	Model      *Model
	Controller *Controller
	Pos        Pos
}

// Model is the model block of a resource.
type Model struct {
	Fields       []*Field
	Associations []*Association
	Pos          Pos
}

// Field is a single field declaration. Type is the raw DSL spelling,
// resolved to a canonical kind later. Serialize is nil when the attribute
// was not written; fields are visible by default.
type Field struct {
	Name      string
	Type      string
	Optional  bool
	Default   *token.Token // literal token, nil if absent
	Serialize *bool
	Pos       Pos
}

// AssocKind discriminates association declarations.
type AssocKind int

const (
	BelongsTo AssocKind = iota
	HasMany
)

// String returns the DSL spelling of the association kind.
func (k AssocKind) String() string {
	if k == HasMany {
		return "has_many"
	}
	return "belongs_to"
}

// Association is a belongs_to or has_many declaration. Target is the
// explicit target name, empty when it should be inferred from Name.
// Poly is set when the declaration carried a candidate-type list, even an
// empty one, so the resolver can reject empty lists instead of silently
// falling back to name inference.
type Association struct {
	Kind     AssocKind
	Name     string
	Optional bool
	Target   string
	Poly     bool
	Targets  []*Ident
	Pos      Pos
}

// Polymorphic reports whether the association was declared with a
// candidate-type list.
func (a *Association) Polymorphic() bool {
	return a.Poly
}

// Controller is the controller block of a resource.
type Controller struct {
	Params      []*Profile
	RespondWith []*Ident
	Actions     *Actions
	Ejections   []*Ejection
	Overrides   []*Override
	Pos         Pos
}

// ProfileKind discriminates params profiles.
type ProfileKind int

const (
	Editable ProfileKind = iota
	Create
	Update
)

// String returns the DSL spelling of the profile kind.
func (k ProfileKind) String() string {
	switch k {
	case Create:
		return "create"
	case Update:
		return "update"
	default:
		return "editable"
	}
}

// Profile is one params profile: the editable macro or an explicit
// create/update list.
type Profile struct {
	Kind    ProfileKind
	Entries []*Entry
	Pos     Pos
}

// Entry is a single field reference inside a params profile.
type Entry struct {
	Name     string
	Optional bool
	Pos      Pos
}

// Actions is the actions declaration. AutoCRUD and Names are mutually
// exclusive in well-formed source.
type Actions struct {
	AutoCRUD bool
	Names    []*Ident
	Pos      Pos
}

// Ejection marks a unit (an action name, or "model") as hand-owned at the
// location Ref, in path#Symbol form.
type Ejection struct {
	Unit string
	Ref  string
	Pos  Pos
}

// Override marks an action as overridden in place by hand-written code.
type Override struct {
	Unit string
	Pos  Pos
}

// Ident is a bare name with its source position.
type Ident struct {
	Name string
	Pos  Pos
}
