package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSet(t *testing.T) {
	t.Run("Add rejects duplicates", func(t *testing.T) {
		set := NewFileSet()
		require.NoError(t, set.Add("models/post.go", []byte("a")))
		err := set.Add("models/post.go", []byte("b"))
		require.Error(t, err)
		assert.True(t, IsEmissionError(err))
		assert.Contains(t, err.Error(), "duplicate output path")
	})

	t.Run("Add rejects escapes", func(t *testing.T) {
		set := NewFileSet()
		for _, p := range []string{"", "/etc/passwd", "../evil.go", "sub/../../evil.go"} {
			err := set.Add(p, []byte("x"))
			require.Error(t, err, "path %q must be rejected", p)
			assert.True(t, IsEmissionError(err))
		}
	})

	t.Run("Add normalizes paths", func(t *testing.T) {
		set := NewFileSet()
		require.NoError(t, set.Add("./ts/./post.ts", []byte("x")))
		_, ok := set.Bytes("ts/post.ts")
		assert.True(t, ok)
	})

	t.Run("Paths sorted", func(t *testing.T) {
		set := NewFileSet()
		require.NoError(t, set.Add("b.go", nil))
		require.NoError(t, set.Add("a/c.go", nil))
		require.NoError(t, set.Add("a/b.go", nil))
		assert.Equal(t, []string{"a/b.go", "a/c.go", "b.go"}, set.Paths())
	})

	t.Run("AddGoSource formats", func(t *testing.T) {
		set := NewFileSet()
		src := []byte("package x\nimport \"fmt\"\nfunc F( ) {fmt.Println( 1 )}\n")
		require.NoError(t, set.AddGoSource("x.go", src))
		data, ok := set.Bytes("x.go")
		require.True(t, ok)
		assert.Contains(t, string(data), "func F() {")
	})

	t.Run("AddGoSource rejects malformed source", func(t *testing.T) {
		set := NewFileSet()
		err := set.AddGoSource("x.go", []byte("package x\nfunc {"))
		require.Error(t, err)
		assert.True(t, IsEmissionError(err))
	})
}

func commitSet(t *testing.T, root string, files map[string]string, keep []string) error {
	t.Helper()
	set := NewFileSet()
	for p, data := range files {
		require.NoError(t, set.Add(p, []byte(data)))
	}
	return NewWriter(root, zerolog.Nop()).Commit(set, keep)
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
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
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestWriterCommit(t *testing.T) {
	t.Run("creates output tree", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "gen")
		err := commitSet(t, root, map[string]string{
			"models/post.go": "package models\n",
			"ts/post.ts":     "export interface Post {}\n",
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"models/post.go": "package models\n",
			"ts/post.ts":     "export interface Post {}\n",
		}, readTree(t, root))
	})

	t.Run("recommit is byte identical", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "gen")
		files := map[string]string{"models/post.go": "package models\n"}
		require.NoError(t, commitSet(t, root, files, nil))
		first := readTree(t, root)
		require.NoError(t, commitSet(t, root, files, nil))
		assert.Equal(t, first, readTree(t, root))
	})

	t.Run("stale files removed", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "gen")
		require.NoError(t, commitSet(t, root, map[string]string{"a.go": "a", "b.go": "b"}, nil))
		require.NoError(t, commitSet(t, root, map[string]string{"a.go": "a"}, nil))
		assert.Equal(t, map[string]string{"a.go": "a"}, readTree(t, root))
	})

	t.Run("kept files survive regeneration", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "gen")
		require.NoError(t, commitSet(t, root, map[string]string{
			"controllers/post.go": "stub",
			"models/post.go":      "model v1",
		}, nil))

		edited := filepath.Join(root, "controllers", "post.go")
		require.NoError(t, os.WriteFile(edited, []byte("hand written"), 0o644))

		require.NoError(t, commitSet(t, root, map[string]string{
			"controllers/post.go": "stub",
			"models/post.go":      "model v2",
		}, []string{"controllers/post.go"}))

		assert.Equal(t, map[string]string{
			"controllers/post.go": "hand written",
			"models/post.go":      "model v2",
		}, readTree(t, root))
	})

	t.Run("missing kept file skipped", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "gen")
		err := commitSet(t, root, map[string]string{"a.go": "a"}, []string{"not/yet/there.go"})
		require.NoError(t, err)
	})

	t.Run("escaping kept path rejected", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "gen")
		err := commitSet(t, root, map[string]string{"a.go": "a"}, []string{"../outside.go"})
		require.Error(t, err)
		assert.True(t, IsEmissionError(err))
	})

	t.Run("failed commit leaves root untouched", func(t *testing.T) {
		base := t.TempDir()
		root := filepath.Join(base, "gen")
		require.NoError(t, commitSet(t, root, map[string]string{"a.go": "original"}, nil))

		// "a" is staged as a file, so staging "a/b.go" cannot create
		// the directory and the whole commit must fail.
		err := commitSet(t, root, map[string]string{"a": "x", "a/b.go": "y"}, nil)
		require.Error(t, err)
		assert.True(t, IsEmissionError(err))
		assert.Equal(t, map[string]string{"a.go": "original"}, readTree(t, root))

		stale, err := filepath.Glob(filepath.Join(base, ".via-stage-*"))
		require.NoError(t, err)
		assert.Empty(t, stale, "staging directory must be cleaned up")
	})
}
