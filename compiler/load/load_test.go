package load

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, src := range files {
		abs := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(src), 0o644))
	}
	return root
}

func TestDiscover(t *testing.T) {
	t.Parallel()
	root := writeSources(t, map[string]string{
		"blog/post.via":    "resource Post {\n}\n",
		"blog/comment.via": "resource Comment {\n}\n",
		"user.via":         "resource User {\n}\n",
		"notes.md":         "not a definition\n",
		".cache/junk.via":  "resource Junk {\n}\n",
	})

	sources, err := Discover(root)
	require.NoError(t, err)

	var paths []string
	for _, src := range sources {
		paths = append(paths, src.Path)
	}
	assert.Equal(t, []string{"blog/comment.via", "blog/post.via", "user.via"}, paths)
	for _, src := range sources {
		assert.True(t, filepath.IsAbs(src.Abs), "source %s should carry an absolute location", src.Path)
	}
}

func TestDiscoverEmptyRoot(t *testing.T) {
	t.Parallel()
	sources, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestDiscoverMissingRoot(t *testing.T) {
	t.Parallel()
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover sources")
}

func TestParse(t *testing.T) {
	t.Parallel()
	root := writeSources(t, map[string]string{
		"post.via": "resource Post {\n  field title: string\n}\n",
		"user.via": "resource User {\n  field name: string\n}\n",
	})
	sources, err := Discover(root)
	require.NoError(t, err)

	files, diags, err := Parse(context.Background(), sources, 2)
	require.NoError(t, err)
	require.False(t, diags.HasErrors(), diags.Format())
	require.Len(t, files, 2)

	// Output order follows source order, not completion order.
	assert.Equal(t, "post.via", files[0].Path)
	assert.Equal(t, "user.via", files[1].Path)
	require.Len(t, files[0].Resources, 1)
	assert.Equal(t, "Post", files[0].Resources[0].Name)
}

func TestParseCollectsDiagnostics(t *testing.T) {
	t.Parallel()
	root := writeSources(t, map[string]string{
		"bad.via":  "resource {\n}\n",
		"good.via": "resource Post {\n}\n",
	})
	sources, err := Discover(root)
	require.NoError(t, err)

	files, diags, err := Parse(context.Background(), sources, 0)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.True(t, diags.HasErrors())
	assert.Contains(t, diags.Format(), "bad.via")
}

func TestParseDropsUnclosedFile(t *testing.T) {
	t.Parallel()
	root := writeSources(t, map[string]string{
		"broken.via": "resource Post {\n  model {\n",
		"good.via":   "resource User {\n}\n",
	})
	sources, err := Discover(root)
	require.NoError(t, err)

	files, diags, err := Parse(context.Background(), sources, 0)
	require.NoError(t, err)
	require.Len(t, files, 1, "a file with no tree must not reach the resolver")
	assert.Equal(t, "good.via", files[0].Path)
	assert.True(t, diags.HasErrors())
	assert.Contains(t, diags.Format(), "broken.via")
	assert.Contains(t, diags.Format(), `missing "}"`)
}

func TestParseCanceled(t *testing.T) {
	t.Parallel()
	root := writeSources(t, map[string]string{"post.via": "resource Post {\n}\n"})
	sources, err := Discover(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = Parse(ctx, sources, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	root := writeSources(t, map[string]string{
		"app/post.via": "resource Post {\n  field title: string\n}\n",
	})

	files, diags, err := Load(context.Background(), root, 0)
	require.NoError(t, err)
	require.False(t, diags.HasErrors(), diags.Format())
	require.Len(t, files, 1)
	assert.Equal(t, "app/post.via", files[0].Path)
}
