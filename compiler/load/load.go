// Package load discovers resource definition sources under a project
// root and parses them into syntax trees for the resolver.
package load

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vialang/via/compiler/ast"
	"github.com/vialang/via/compiler/diagnostic"
	"github.com/vialang/via/compiler/parser"
)

// Ext is the file extension resource definitions carry.
const Ext = ".via"

// A Source is one definition file found under the input root.
type Source struct {
	// Path is the root-relative, slash-separated path. Diagnostics and
	// the IR use it, so it must be stable across platforms.
	Path string

	// Abs locates the file on disk.
	Abs string
}

// Discover walks root recursively and returns every definition source
// sorted by Path. Hidden directories are skipped. A missing root is an
// error; a root with no sources is not.
func Discover(root string) ([]Source, error) {
	var sources []Source
	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != Ext {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sources = append(sources, Source{Path: filepath.ToSlash(rel), Abs: path})
		return nil
	}
	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, fmt.Errorf("load: discover sources under %s: %w", root, err)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

// Parse reads and parses the sources, fanning out across at most
// workers goroutines. Zero or negative workers means GOMAXPROCS.
// Files and merged diagnostics come back in source order no matter
// which worker finished first. A source with no tree at all (the
// parser's unclosed-block case) is dropped from the file list; its
// diagnostics are still merged.
func Parse(ctx context.Context, sources []Source, workers int) ([]*ast.File, *diagnostic.List, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	parsed := make([]*ast.File, len(sources))
	lists := make([]*diagnostic.List, len(sources))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i, src := range sources {
		i, src := i, src
		grp.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			data, err := os.ReadFile(src.Abs)
			if err != nil {
				return fmt.Errorf("load: read %s: %w", src.Path, err)
			}
			parsed[i], lists[i] = parser.Parse(src.Path, string(data))
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, nil, err
	}
	files := make([]*ast.File, 0, len(parsed))
	for _, f := range parsed {
		if f != nil {
			files = append(files, f)
		}
	}
	diags := diagnostic.New()
	for _, l := range lists {
		diags.Merge(l)
	}
	return files, diags, nil
}

// Load discovers and parses in one step.
func Load(ctx context.Context, root string, workers int) ([]*ast.File, *diagnostic.List, error) {
	sources, err := Discover(root)
	if err != nil {
		return nil, nil, err
	}
	return Parse(ctx, sources, workers)
}
