package ir

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vialang/via/compiler/ast"
	"github.com/vialang/via/compiler/diagnostic"
	"github.com/vialang/via/compiler/parser"
	"github.com/vialang/via/compiler/resolve"
	"github.com/vialang/via/schema/kind"
)

// buildSource parses, resolves and lowers a batch of sources keyed by path.
func buildSource(t *testing.T, module string, sources map[string]string) *Document {
	t.Helper()
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	diags := diagnostic.New()
	var files []*ast.File
	for _, p := range paths {
		f, fileDiags := parser.Parse(p, sources[p])
		diags.Merge(fileDiags)
		require.NotNil(t, f)
		files = append(files, f)
	}
	g := resolve.Resolve(files, diags)
	require.False(t, diags.HasErrors(), "unexpected diagnostics:\n%s", diags.Format())
	return Build(g, module)
}

const blogSource = `
resource Post {
  model {
    field title: string
    field body: text = "draft"
    field views: int = 0
    field rating?: float
    field secret: string { serialize: false }
    belongs_to author: User
    has_many comments
  }
  controller {
    params {
      editable { title, body, rating }
    }
    respond_with [json, html]
    actions [index, show, create, update, publish]
    eject update "app/handlers/post_update.go#UpdatePost"
    override show
  }
}

resource User {
  model {
    field email: string
  }
}

resource Comment {
  model {
    field message: text
    belongs_to post
    belongs_to commentable: [Post, User]
  }
}
`

func blogDocument(t *testing.T) *Document {
	t.Helper()
	return buildSource(t, "example.com/blogapp", map[string]string{"blog.via": blogSource})
}

func mustIRResource(t *testing.T, doc *Document, name string) *Resource {
	t.Helper()
	for _, r := range doc.Resources {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("resource %s not in document", name)
	return nil
}

func TestBuildDocument(t *testing.T) {
	doc := blogDocument(t)

	t.Run("header", func(t *testing.T) {
		assert.Equal(t, Version, doc.Version)
		assert.Equal(t, "example.com/blogapp", doc.Module)
	})

	t.Run("resource order follows input order", func(t *testing.T) {
		var names []string
		for _, r := range doc.Resources {
			names = append(names, r.Name)
		}
		assert.Equal(t, []string{"Post", "User", "Comment"}, names)
		assert.Equal(t, "blog.via", doc.Resources[0].Source)
	})

	post := mustIRResource(t, doc, "Post")

	t.Run("field order follows declaration order", func(t *testing.T) {
		var names []string
		for _, f := range post.Model.Fields {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"id", "title", "body", "views", "rating", "secret", "createdAt", "updatedAt"}, names)
	})

	t.Run("storage fields keep hidden columns", func(t *testing.T) {
		var secret *Field
		for _, f := range post.Model.Fields {
			if f.Name == "secret" {
				secret = f
			}
		}
		require.NotNil(t, secret)
		assert.False(t, secret.Serialize)
		assert.NotContains(t, post.Model.ClientFields, "secret")
		assert.Equal(t, []string{"id", "title", "body", "views", "rating", "createdAt", "updatedAt"}, post.Model.ClientFields)
	})

	t.Run("defaults", func(t *testing.T) {
		fields := map[string]*Field{}
		for _, f := range post.Model.Fields {
			fields[f.Name] = f
		}
		assert.True(t, fields["body"].HasDefault)
		assert.Equal(t, "draft", fields["body"].Default)
		assert.True(t, fields["views"].HasDefault)
		assert.Equal(t, int64(0), fields["views"].Default)
		assert.False(t, fields["title"].HasDefault)
		assert.True(t, fields["rating"].Nullable)
		assert.True(t, fields["id"].Implicit)
	})

	t.Run("belongs_to carries foreign key and id kind", func(t *testing.T) {
		require.Len(t, post.Model.Associations, 2)
		author := post.Model.Associations[0]
		assert.Equal(t, "belongs_to", author.Kind)
		assert.Equal(t, "User", author.Target)
		assert.Equal(t, "authorId", author.ForeignKey)
		assert.Equal(t, kind.Int, author.IDKind)
		assert.Empty(t, author.TypeKey)
	})

	t.Run("has_many carries no foreign key", func(t *testing.T) {
		comments := post.Model.Associations[1]
		assert.Equal(t, "has_many", comments.Kind)
		assert.Equal(t, "Comment", comments.Target)
		assert.Empty(t, comments.ForeignKey)
		assert.Equal(t, kind.Invalid, comments.IDKind)
	})

	t.Run("polymorphic belongs_to lists candidates", func(t *testing.T) {
		comment := mustIRResource(t, doc, "Comment")
		require.Len(t, comment.Model.Associations, 2)
		commentable := comment.Model.Associations[1]
		assert.Equal(t, []string{"Post", "User"}, commentable.Candidates)
		assert.Empty(t, commentable.Target)
		assert.Equal(t, "commentableId", commentable.ForeignKey)
		assert.Equal(t, "commentableType", commentable.TypeKey)
		assert.Equal(t, kind.Int, commentable.IDKind)
	})

	t.Run("actions and statuses", func(t *testing.T) {
		require.NotNil(t, post.Controller)
		var names []string
		statuses := map[string]string{}
		for _, a := range post.Controller.Actions {
			names = append(names, a.Name)
			statuses[a.Name] = a.Status
		}
		assert.Equal(t, []string{"index", "show", "create", "update", "publish"}, names)
		assert.Equal(t, "generated", statuses["index"])
		assert.Equal(t, "overridden", statuses["show"])
		assert.Equal(t, "ejected", statuses["update"])

		update := post.Controller.Actions[3]
		assert.Equal(t, "app/handlers/post_update.go#UpdatePost", update.Ref)
		publish := post.Controller.Actions[4]
		assert.True(t, publish.Custom)
	})

	t.Run("formats", func(t *testing.T) {
		assert.Equal(t, []string{"json", "html"}, post.Controller.Formats)
	})

	t.Run("params profiles", func(t *testing.T) {
		required := map[string]bool{}
		for _, p := range post.Controller.Create {
			required[p.Name] = p.Required
		}
		assert.Equal(t, map[string]bool{"title": true, "body": false, "rating": false}, required)

		for _, p := range post.Controller.Update {
			assert.False(t, p.Required, "update param %s must be optional", p.Name)
		}
		title := post.Controller.Create[0]
		assert.Equal(t, "title", title.Name)
		assert.Equal(t, kind.String, title.Kind)
	})

	t.Run("controller omitted when undeclared", func(t *testing.T) {
		user := mustIRResource(t, doc, "User")
		assert.Nil(t, user.Controller)
	})
}

func TestBuildUUIDKeys(t *testing.T) {
	doc := buildSource(t, "example.com/docs", map[string]string{"docs.via": `
resource Doc {
  model {
    field id: uuid
    field title: string
  }
}

resource Tag {
  model {
    field label: string
    belongs_to doc
  }
}
`})
	tag := mustIRResource(t, doc, "Tag")
	require.Len(t, tag.Model.Associations, 1)
	assert.Equal(t, kind.UUID, tag.Model.Associations[0].IDKind)

	docRes := mustIRResource(t, doc, "Doc")
	assert.Equal(t, kind.UUID, docRes.Model.Fields[0].Kind)
	assert.False(t, docRes.Model.Fields[0].Implicit)
}

func TestBuildEjectedModel(t *testing.T) {
	doc := buildSource(t, "example.com/app", map[string]string{"a.via": `
resource Audit {
  model {
    field note: string
  }
  controller {
    eject model "app/models/audit.go#Audit"
  }
}
`})
	audit := mustIRResource(t, doc, "Audit")
	assert.Equal(t, "ejected", audit.Model.Status)
	assert.Equal(t, "app/models/audit.go#Audit", audit.Model.Ref)
}

func TestBuildDeterministic(t *testing.T) {
	a := blogDocument(t)
	b := blogDocument(t)

	aj, err := MarshalJSON(a)
	require.NoError(t, err)
	bj, err := MarshalJSON(b)
	require.NoError(t, err)
	assert.Equal(t, aj, bj)

	am, err := MarshalMsgpack(a)
	require.NoError(t, err)
	bm, err := MarshalMsgpack(b)
	require.NoError(t, err)
	assert.Equal(t, am, bm)
}

func TestWireFormat(t *testing.T) {
	doc := &Document{
		Version: Version,
		Module:  "example.com/ping",
		Resources: []*Resource{
			{
				Name:   "Ping",
				Source: "ping.via",
				Model: &Model{
					Fields: []*Field{
						{Name: "id", Kind: kind.Int, Serialize: true, Implicit: true},
					},
					ClientFields: []string{"id"},
					Status:       "generated",
				},
			},
		},
	}
	b, err := MarshalJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, `{
  "version": "1",
  "module": "example.com/ping",
  "resources": [
    {
      "name": "Ping",
      "source": "ping.via",
      "model": {
        "fields": [
          {
            "name": "id",
            "kind": "int",
            "serialize": true,
            "implicit": true
          }
        ],
        "clientFields": [
          "id"
        ],
        "status": "generated"
      }
    }
  ]
}
`, string(b))
}

func TestRoundTrip(t *testing.T) {
	doc := blogDocument(t)

	t.Run("json", func(t *testing.T) {
		first, err := Encode(doc, "gen/via.ir.json")
		require.NoError(t, err)

		decoded, err := Decode(first, "gen/via.ir.json")
		require.NoError(t, err)
		assert.Equal(t, doc.Module, decoded.Module)
		require.Len(t, decoded.Resources, 3)

		post := mustIRResource(t, decoded, "Post")
		assert.Equal(t, kind.Text, post.Model.Fields[2].Kind)
		assert.EqualValues(t, 0, post.Model.Fields[3].Default)

		second, err := Encode(decoded, "gen/via.ir.json")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("msgpack", func(t *testing.T) {
		first, err := Encode(doc, "gen/via.ir.msgpack")
		require.NoError(t, err)

		decoded, err := Decode(first, "gen/via.ir.msgpack")
		require.NoError(t, err)
		post := mustIRResource(t, decoded, "Post")
		assert.Equal(t, "draft", post.Model.Fields[2].Default)
		assert.EqualValues(t, 0, post.Model.Fields[3].Default)

		second, err := Encode(decoded, "gen/via.ir.msgpack")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestCodecExtensions(t *testing.T) {
	doc := blogDocument(t)

	jb, err := Encode(doc, "out/via.ir.json")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), jb[0])

	mb, err := Encode(doc, "out/via.ir.msgpack")
	require.NoError(t, err)
	bb, err := Encode(doc, "out/via.ir.bin")
	require.NoError(t, err)
	assert.Equal(t, mb, bb)
	assert.NotEqual(t, jb, mb)

	_, err = Encode(doc, "out/via.ir.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")

	_, err = Decode(jb, "out/via.ir.xml")
	require.Error(t, err)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	doc := blogDocument(t)
	doc.Version = "99"
	b, err := MarshalJSON(doc)
	require.NoError(t, err)

	_, err = UnmarshalJSON(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported document version "99"`)
}
