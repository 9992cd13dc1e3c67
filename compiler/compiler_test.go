package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vialang/via/compiler/diagnostic"
	"github.com/vialang/via/compiler/ir"
	"github.com/vialang/via/schema/kind"
)

const blogSource = `
resource Post {
  model {
    field title: string
    field views: int = 0
    belongs_to author: User
  }
  controller {
    params {
      editable { title }
    }
    respond_with [json, html]
    actions [index, show, create, update]
  }
}

resource User {
  model {
    field email: string
  }
}
`

const ejectedSource = `
resource Post {
  model {
    field title: string
  }
  controller {
    params {
      editable { title }
    }
    actions [index, update]
    eject update "gen/handlers/post_update.go#UpdatePost"
  }
}
`

func writeProject(t *testing.T, sources map[string]string) Config {
	t.Helper()
	root := t.TempDir()
	for path, src := range sources {
		abs := filepath.Join(root, "app", filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(src), 0o644))
	}
	return Config{
		RootDir: root,
		IRPath:  "gen/via.ir.json",
		Module:  "example.com/blogapp",
		Logger:  zerolog.Nop(),
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return tree
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"blog.via": blogSource})

	res, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Post", "User"}, res.Resources)
	assert.False(t, res.DryRun)
	assert.Equal(t, filepath.Join(cfg.RootDir, "gen", "via.ir.json"), res.IRPath)
	assert.Contains(t, res.Files, "models/post.go")
	assert.Contains(t, res.Files, "via.ir.json")

	tree := readTree(t, filepath.Join(cfg.RootDir, "gen"))
	assert.Contains(t, tree, "controllers/post.go")
	assert.Contains(t, tree, "models/user.go")
	assert.Contains(t, tree, "models/models.go")
	assert.Contains(t, tree, "routes.go")
	assert.Contains(t, tree, "go.mod")
	assert.Contains(t, tree, "ts/post.ts")
	assert.Contains(t, tree, "ts/index.ts")
	assert.NotContains(t, tree, "controllers/user.go")

	assert.Contains(t, tree["models/post.go"], "type Post struct")
	assert.Contains(t, tree["go.mod"], "module example.com/blogapp")

	doc, err := ir.Decode([]byte(tree["via.ir.json"]), "via.ir.json")
	require.NoError(t, err)
	assert.Equal(t, "example.com/blogapp", doc.Module)
	require.Len(t, doc.Resources, 2)
}

func TestGenerateIdempotent(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"blog.via": blogSource})
	out := filepath.Join(cfg.RootDir, "gen")

	_, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	first := readTree(t, out)

	_, err = Generate(context.Background(), cfg)
	require.NoError(t, err)
	second := readTree(t, out)

	assert.Equal(t, first, second)
}

func TestGenerateRemovesStaleFiles(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"blog.via": blogSource})

	_, err := Generate(context.Background(), cfg)
	require.NoError(t, err)

	renamed := strings.ReplaceAll(blogSource, "Post", "Article")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.RootDir, "app", "blog.via"), []byte(renamed), 0o644))

	res, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Article", "User"}, res.Resources)

	tree := readTree(t, filepath.Join(cfg.RootDir, "gen"))
	assert.Contains(t, tree, "models/article.go")
	assert.NotContains(t, tree, "models/post.go")
	assert.NotContains(t, tree, "controllers/post.go")
	assert.NotContains(t, tree, "ts/post.ts")
}

const fidelitySource = `
resource Post {
  model {
    field title: string
    field rating?: float
    field internalNotes: text {serialize: false}
    belongs_to author: User
  }
}

resource User {
  model {
    field email: string
  }
}
`

// TestGenerateFieldFidelity pins the per-field agreement between the
// three artifacts of one run: the IR snapshot, the Go model, and the
// TypeScript declaration.
func TestGenerateFieldFidelity(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"post.via": fidelitySource})

	_, err := Generate(context.Background(), cfg)
	require.NoError(t, err)

	tree := readTree(t, filepath.Join(cfg.RootDir, "gen"))
	doc, err := ir.Decode([]byte(tree["via.ir.json"]), "via.ir.json")
	require.NoError(t, err)

	post := doc.Resources[0]
	require.Equal(t, "Post", post.Name)
	fields := make(map[string]*ir.Field)
	for _, f := range post.Model.Fields {
		fields[f.Name] = f
	}

	model, decl := tree["models/post.go"], tree["ts/post.ts"]

	tests := []struct {
		name     string
		kind     kind.Kind
		nullable bool
		visible  bool
		goField  string
		tsLine   string
	}{
		{
			name:    "title",
			kind:    kind.String,
			visible: true,
			goField: "Title\\s+string\\s+`json:\"title\"`",
			tsLine:  "  title: string;",
		},
		{
			name:     "rating",
			kind:     kind.Float,
			nullable: true,
			visible:  true,
			goField:  "Rating\\s+\\*float64\\s+`json:\"rating,omitempty\"`",
			tsLine:   "  rating?: number | null;",
		},
		{
			name:    "internalNotes",
			kind:    kind.Text,
			visible: false,
			goField: "InternalNotes\\s+string\\s+`json:\"-\"`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fields[tt.name]
			require.NotNil(t, f, "field %s missing from the IR", tt.name)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.nullable, f.Nullable)
			assert.Equal(t, tt.visible, f.Serialize)
			assert.Equal(t, tt.visible, slices.Contains(post.Model.ClientFields, tt.name))

			assert.Regexp(t, tt.goField, model)
			if tt.tsLine == "" {
				assert.NotContains(t, decl, tt.name)
			} else {
				assert.Contains(t, decl, tt.tsLine)
			}
		})
	}

	// The belongs_to foreign key rides along under the same contract.
	assert.Regexp(t, "AuthorID\\s+int64\\s+`json:\"authorId\"`", model)
	assert.Contains(t, decl, "  authorId: number;")
}

func TestGenerateDiagnostics(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{
		"bad.via": "resource Post {\n  model {\n    belongs_to author: Ghost\n  }\n}\n",
	})

	_, err := Generate(context.Background(), cfg)
	require.Error(t, err)
	var list *diagnostic.List
	require.ErrorAs(t, err, &list)
	assert.Contains(t, list.Format(), "bad.via")

	_, statErr := os.Stat(filepath.Join(cfg.RootDir, "gen"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "output root must not be created for a failing batch")
}

func TestGenerateKeepsOutputOnFailure(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"blog.via": blogSource})
	out := filepath.Join(cfg.RootDir, "gen")

	_, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	before := readTree(t, out)

	broken := "resource Post {\n  model {\n    field title: wat\n  }\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.RootDir, "app", "blog.via"), []byte(broken), 0o644))

	_, err = Generate(context.Background(), cfg)
	require.Error(t, err)

	assert.Equal(t, before, readTree(t, out), "failed runs must leave the previous output intact")
}

func TestGenerateEjectionSafety(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"post.via": ejectedSource})

	_, err := Generate(context.Background(), cfg)
	require.NoError(t, err)

	handler := filepath.Join(cfg.RootDir, "gen", "handlers", "post_update.go")
	hand := "package handlers\n\n// hand-maintained, never regenerated\n"
	require.NoError(t, os.MkdirAll(filepath.Dir(handler), 0o755))
	require.NoError(t, os.WriteFile(handler, []byte(hand), 0o644))

	_, err = Generate(context.Background(), cfg)
	require.NoError(t, err)

	got, err := os.ReadFile(handler)
	require.NoError(t, err)
	assert.Equal(t, hand, string(got), "regeneration must not rewrite an ejected file")

	tree := readTree(t, filepath.Join(cfg.RootDir, "gen"))
	assert.Contains(t, tree["controllers/post.go"], "ejected to gen/handlers/post_update.go#UpdatePost")
}

func TestGenerateDryRun(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"blog.via": blogSource})
	cfg.DryRun = true

	res, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Contains(t, res.Files, "models/post.go")
	assert.Contains(t, res.Files, "ts/index.ts")

	_, statErr := os.Stat(filepath.Join(cfg.RootDir, "gen"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "dry runs must not write")
}

func TestGenerateSnapshotOutsideRoot(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"blog.via": blogSource})
	cfg.IRPath = "via.ir.json"

	_, err := Generate(context.Background(), cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(cfg.RootDir, "via.ir.json"))
	require.NoError(t, err)
	doc, err := ir.Decode(data, "via.ir.json")
	require.NoError(t, err)
	require.Len(t, doc.Resources, 2)

	assert.NotContains(t, readTree(t, filepath.Join(cfg.RootDir, "gen")), "via.ir.json")
}

func TestGenerateSnapshotMsgpack(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"blog.via": blogSource})
	cfg.IRPath = "gen/via.ir.bin"

	_, err := Generate(context.Background(), cfg)
	require.NoError(t, err)

	tree := readTree(t, filepath.Join(cfg.RootDir, "gen"))
	require.Contains(t, tree, "via.ir.bin")
	doc, err := ir.Decode([]byte(tree["via.ir.bin"]), "via.ir.bin")
	require.NoError(t, err)
	assert.Equal(t, "example.com/blogapp", doc.Module)
}

func TestGenerateEmptyBatch(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app"), 0o755))
	cfg := Config{RootDir: root, Logger: zerolog.Nop()}

	res, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, res.Resources)

	tree := readTree(t, filepath.Join(root, "gen"))
	assert.Contains(t, tree, "go.mod")
	assert.Contains(t, tree, "routes.go")
	assert.Contains(t, tree, "ts/index.ts")
	assert.Contains(t, tree["go.mod"], "module viagen")
}

func TestGenerateCanceled(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"blog.via": blogSource})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, cfg)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCheck(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"blog.via": blogSource})

	names, err := Check(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Post", "User"}, names)

	_, statErr := os.Stat(filepath.Join(cfg.RootDir, "gen"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "check must not write")
}

func TestCheckDiagnostics(t *testing.T) {
	t.Parallel()
	cfg := writeProject(t, map[string]string{"bad.via": "resource {\n}\n"})

	_, err := Check(context.Background(), cfg)
	require.Error(t, err)
	var list *diagnostic.List
	require.ErrorAs(t, err, &list)
	assert.True(t, list.HasErrors())
}
