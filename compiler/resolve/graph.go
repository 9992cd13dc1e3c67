package resolve

import (
	"github.com/vialang/via/compiler/ast"
	"github.com/vialang/via/schema/kind"
)

// Names of the fields every model carries implicitly.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Canonical CRUD action names, in emission order.
var CrudActions = []string{"index", "show", "create", "update", "destroy"}

// Response formats a controller may declare.
const (
	FormatJSON = "json"
	FormatHTML = "html"
)

// Status tells the generators what to do with one generated unit: emit it,
// leave it alone because the user replaced it in place, or skip it because
// the user ejected it into a hand-written file.
type Status int

const (
	StatusGenerated Status = iota
	StatusOverridden
	StatusEjected
)

func (s Status) String() string {
	switch s {
	case StatusGenerated:
		return "generated"
	case StatusOverridden:
		return "overridden"
	case StatusEjected:
		return "ejected"
	}
	return "unknown"
}

// The following types form the resolved graph handed to the IR builder and
// the code generators. Everything here is fully checked: names are unique,
// kinds are canonical, and every association points at a resource that
// exists in the batch.
type (
	// Graph is one resolved batch of resources.
	Graph struct {
		Resources []*Resource
	}

	// Resource is one resolved resource declaration.
	Resource struct {
		// Name holds the resource name as declared, e.g. "Post".
		Name string
		// File is the source path the resource was declared in.
		File string
		// Model holds the resolved model. It is nil only when resolution
		// of the resource failed; a graph without errors never carries one.
		Model *Model
		// Controller holds the resolved controller, nil when the resource
		// declares none.
		Controller *Controller
		Pos        ast.Pos
	}

	// Model is the resolved model block of a resource.
	Model struct {
		// Fields holds all fields in emission order: the implicit id
		// first, declared fields in declaration order, and the implicit
		// timestamps last.
		Fields []*Field
		// Associations holds the resolved associations in declaration order.
		Associations []*Association
		// Status and Ref carry the ejection state of the model unit.
		Status Status
		Ref    string

		fields map[string]*Field
	}

	// Field is one resolved model field.
	Field struct {
		// Name holds the field name as declared, e.g. "publishedAt".
		Name string
		// Kind is the canonical scalar kind of the field.
		Kind kind.Kind
		// Nullable is set only by the declaration's "?" marker, never by
		// the presence of a default value.
		Nullable bool
		// Serialize reports whether the field appears in client-facing
		// output. It defaults to true.
		Serialize bool
		// HasDefault reports whether the declaration carried a literal
		// default. Default then holds the decoded value: string, int64,
		// float64, or bool.
		HasDefault bool
		Default    any
		// Implicit marks the injected id and timestamp fields.
		Implicit bool
		Pos      ast.Pos
	}

	// Association is one resolved belongs_to or has_many.
	Association struct {
		Kind     ast.AssocKind
		Name     string
		Optional bool
		// Target is the resolved target resource. It is nil for
		// polymorphic associations, which carry Candidates instead.
		Target     *Resource
		Candidates []*Resource
		Pos        ast.Pos
	}

	// Controller is the resolved controller block of a resource.
	Controller struct {
		// Actions holds the resolved actions in emission order.
		Actions []*Action
		// Formats holds the response formats in declaration order,
		// defaulting to json.
		Formats []string
		// Create and Update hold the strong-parameter profiles. A nil
		// profile means the resource declared no params block for it and
		// the action binds no payload.
		Create []*Param
		Update []*Param
		Pos    ast.Pos
	}

	// Action is one resolved controller action.
	Action struct {
		Name string
		// Custom marks actions outside the five CRUD verbs. They get a
		// handler but no generated route; mounting is the host's call.
		Custom bool
		// Status and Ref carry the ejection state of the action unit.
		Status Status
		Ref    string
		Pos    ast.Pos
	}

	// Param is one entry of a resolved strong-parameter profile.
	Param struct {
		// Field points into the owning model's field list.
		Field *Field
		// Required reports whether a request payload must carry the field.
		Required bool
	}
)

// Lookup returns the resource with the given name.
func (g *Graph) Lookup(name string) (*Resource, bool) {
	for _, r := range g.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// HasController reports whether the resource declares a controller block.
func (r *Resource) HasController() bool {
	return r.Controller != nil
}

// Field returns the model field with the given name.
func (m *Model) Field(name string) (*Field, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// ID returns the model's id field.
func (m *Model) ID() *Field {
	return m.fields[FieldID]
}

// ClientFields returns the fields visible to clients, preserving order.
// Fields declared with serialize: false are storage-only and excluded.
func (m *Model) ClientFields() []*Field {
	out := make([]*Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		if f.Serialize {
			out = append(out, f)
		}
	}
	return out
}

// BelongsTo returns the belongs_to associations, preserving order.
func (m *Model) BelongsTo() []*Association {
	return m.assocs(ast.BelongsTo)
}

// HasMany returns the has_many associations, preserving order.
func (m *Model) HasMany() []*Association {
	return m.assocs(ast.HasMany)
}

func (m *Model) assocs(k ast.AssocKind) []*Association {
	var out []*Association
	for _, a := range m.Associations {
		if a.Kind == k {
			out = append(out, a)
		}
	}
	return out
}

// Polymorphic reports whether the association was declared with a
// candidate-type list.
func (a *Association) Polymorphic() bool {
	return len(a.Candidates) > 0
}

// ForeignKey returns the name of the scalar column backing a belongs_to,
// e.g. "authorId" for belongs_to author.
func (a *Association) ForeignKey() string {
	return a.Name + "Id"
}

// TypeKey returns the name of the discriminator column of a polymorphic
// belongs_to, e.g. "commentableType".
func (a *Association) TypeKey() string {
	return a.Name + "Type"
}

// Action returns the controller action with the given name.
func (c *Controller) Action(name string) (*Action, bool) {
	for _, a := range c.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// HasFormat reports whether the controller responds with the given format.
func (c *Controller) HasFormat(format string) bool {
	for _, f := range c.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Generated reports whether the unit should be emitted by the generators.
func (a *Action) Generated() bool {
	return a.Status == StatusGenerated
}
