// Package compiler coordinates regeneration: it loads the definition
// sources, resolves them into a batch graph, lowers the graph to IR,
// fans the IR out to the code emitters and commits the whole output
// tree in one atomic swap.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vialang/via/compiler/diagnostic"
	"github.com/vialang/via/compiler/gen"
	"github.com/vialang/via/compiler/gen/golang"
	"github.com/vialang/via/compiler/gen/ts"
	"github.com/vialang/via/compiler/ir"
	"github.com/vialang/via/compiler/load"
	"github.com/vialang/via/compiler/resolve"
)

// Config carries the settings for one regeneration run. Relative paths
// are anchored at RootDir.
type Config struct {
	// RootDir is the project root. Relative AppDir, OutDir, IRPath and
	// ejection references resolve against it. Empty means the working
	// directory.
	RootDir string

	// AppDir is the input root searched for definition sources.
	// Defaults to "app".
	AppDir string

	// OutDir is the output root. Every commit replaces it wholesale,
	// so nothing but generated artifacts and ejected files should live
	// there. Defaults to "gen".
	OutDir string

	// IRPath is where the IR snapshot lands; its extension selects the
	// codec. Empty disables the snapshot.
	IRPath string

	// Module is the module path of the generated backend.
	Module string

	// Workers bounds parallel parsing and emission. Zero or negative
	// means GOMAXPROCS.
	Workers int

	// DryRun reports what would be written without touching the
	// output root.
	DryRun bool

	// Logger receives progress logs. The zero value discards them.
	Logger zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.RootDir == "" {
		c.RootDir = "."
	}
	if c.AppDir == "" {
		c.AppDir = "app"
	}
	if c.OutDir == "" {
		c.OutDir = "gen"
	}
	if c.Module == "" {
		c.Module = gen.DefaultModule
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	c.AppDir = c.anchor(c.AppDir)
	c.OutDir = c.anchor(c.OutDir)
	if c.IRPath != "" {
		c.IRPath = c.anchor(c.IRPath)
	}
	return c
}

func (c Config) anchor(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.RootDir, path)
}

// Result summarizes a finished run.
type Result struct {
	// Resources lists the resource names of the batch in input order.
	Resources []string

	// Files lists the generated paths relative to the output root.
	Files []string

	// IRPath is where the snapshot was (or would be) written. Empty
	// when the snapshot is disabled.
	IRPath string

	// DryRun reports whether the run skipped writing.
	DryRun bool
}

// Generate runs the full pipeline and swaps the regenerated tree into
// the output root. Syntax, resolution and consistency problems come
// back as a *diagnostic.List; the output root is only touched when the
// whole batch is clean and every emitter succeeded.
func Generate(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	doc, err := build(ctx, cfg)
	if err != nil {
		return nil, err
	}

	set := gen.NewFileSet()
	if err := emit(ctx, cfg, doc, set); err != nil {
		return nil, err
	}

	// A snapshot inside the output root rides the atomic swap with the
	// rest of the tree; one outside is written after a clean commit.
	var irData []byte
	irRel, irInside := "", false
	if cfg.IRPath != "" {
		if irData, err = ir.Encode(doc, cfg.IRPath); err != nil {
			return nil, err
		}
		if irRel, irInside = relInside(cfg.OutDir, cfg.IRPath); irInside {
			if err := set.Add(irRel, irData); err != nil {
				return nil, err
			}
		}
	}

	res := &Result{
		Resources: resourceNames(doc),
		Files:     set.Paths(),
		IRPath:    cfg.IRPath,
		DryRun:    cfg.DryRun,
	}
	if cfg.DryRun {
		return res, nil
	}

	if err := gen.NewWriter(cfg.OutDir, cfg.Logger).Commit(set, keepPaths(cfg, doc)); err != nil {
		return nil, err
	}
	if cfg.IRPath != "" && !irInside {
		if err := writeSnapshot(cfg.IRPath, irData); err != nil {
			return nil, err
		}
	}
	cfg.Logger.Info().
		Int("resources", len(res.Resources)).
		Int("files", len(res.Files)).
		Str("out", cfg.OutDir).
		Msg("generation complete")
	return res, nil
}

// Check runs discovery through resolution and reports the resource
// names without writing anything.
func Check(ctx context.Context, cfg Config) ([]string, error) {
	cfg = cfg.withDefaults()
	doc, err := build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return resourceNames(doc), nil
}

// build takes the batch from sources on disk to IR. The name table is
// built serially; per-file resolution then fans out, each file with its
// own diagnostic list, and the results are merged back in source order.
func build(ctx context.Context, cfg Config) (*ir.Document, error) {
	files, diags, err := load.Load(ctx, cfg.AppDir, cfg.Workers)
	if err != nil {
		return nil, err
	}

	table := resolve.NewTable(files, diags)
	resolved := make([][]*resolve.Resource, len(files))
	lists := make([]*diagnostic.List, len(files))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(cfg.Workers)
	for i, f := range files {
		i, f := i, f
		grp.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			lists[i] = diagnostic.New()
			resolved[i] = resolve.File(f, table, lists[i])
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	g := &resolve.Graph{}
	for i := range files {
		g.Resources = append(g.Resources, resolved[i]...)
		diags.Merge(lists[i])
	}
	resolve.Finalize(g, diags)
	diags.Sort()
	if err := diags.Err(); err != nil {
		return nil, err
	}
	return ir.Build(g, cfg.Module), nil
}

// emit runs every emitter against the shared file set.
func emit(ctx context.Context, cfg Config, doc *ir.Document, set *gen.FileSet) error {
	genCfg, err := gen.NewConfig(
		gen.WithModule(cfg.Module),
		gen.WithWorkers(cfg.Workers),
		gen.WithLogger(cfg.Logger),
	)
	if err != nil {
		return err
	}
	emitters := []gen.Emitter{golang.New(genCfg), ts.New(genCfg)}
	grp, ctx := errgroup.WithContext(ctx)
	for _, em := range emitters {
		em := em
		grp.Go(func() error {
			if err := em.Emit(ctx, doc, set); err != nil {
				return fmt.Errorf("%s emitter: %w", em.Name(), err)
			}
			return nil
		})
	}
	return grp.Wait()
}

// keepPaths lists the ejection targets that live inside the output
// root. The writer carries their on-disk bytes into every staged tree,
// so regeneration never rewrites a hand-owned file. Targets that do
// not exist yet are logged and skipped.
func keepPaths(cfg Config, doc *ir.Document) []string {
	seen := make(map[string]struct{})
	var keep []string
	for _, ref := range ejectionRefs(doc) {
		abs := cfg.anchor(ref)
		if _, err := os.Stat(abs); errors.Is(err, fs.ErrNotExist) {
			cfg.Logger.Warn().Str("path", ref).Msg("ejected file does not exist yet")
		}
		rel, ok := relInside(cfg.OutDir, abs)
		if !ok {
			continue
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		keep = append(keep, rel)
	}
	sort.Strings(keep)
	return keep
}

// ejectionRefs returns the file part of every ejection reference in
// the document, resource order, fragments stripped.
func ejectionRefs(doc *ir.Document) []string {
	var refs []string
	add := func(ref string) {
		if i := strings.IndexByte(ref, '#'); i >= 0 {
			ref = ref[:i]
		}
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	for _, r := range doc.Resources {
		if r.Model != nil && r.Model.Status == ir.StatusEjected {
			add(r.Model.Ref)
		}
		if r.Controller == nil {
			continue
		}
		for _, a := range r.Controller.Actions {
			if a.Status == ir.StatusEjected {
				add(a.Ref)
			}
		}
	}
	return refs
}

func resourceNames(doc *ir.Document) []string {
	names := make([]string, 0, len(doc.Resources))
	for _, r := range doc.Resources {
		names = append(names, r.Name)
	}
	return names
}

func writeSnapshot(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("compiler: create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("compiler: write snapshot: %w", err)
	}
	return nil
}

// relInside reports whether path falls inside root, and if so returns
// the root-relative slash path.
func relInside(root, path string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
