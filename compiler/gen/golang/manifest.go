package golang

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"golang.org/x/mod/modfile"

	"github.com/vialang/via"
	"github.com/vialang/via/compiler/gen"
	"github.com/vialang/via/compiler/ir"
	"github.com/vialang/via/schema/kind"
)

// Pinned versions for the generated module's manifest.
const (
	genGoVersion = "1.24"
	chiVersion   = "v5.1.0"
	goccyVersion = "v0.10.5"
	uuidVersion  = "v1.6.0"
)

// emitRoutes renders routes.go at the root of the generated module:
// a single registrar that mounts every generated controller.
func (e *Emitter) emitRoutes(doc *ir.Document, module string, set *gen.FileSet) error {
	f := e.newFile(packageName(module))
	f.PackageComment(fmt.Sprintf("Package %s is generated from resource definitions; edit the .via sources and regenerate.", packageName(module)))
	f.Comment("RegisterRoutes mounts every generated controller on r.")
	f.Func().Id("RegisterRoutes").Params(jen.Id("r").Qual(chiPkg, "Router")).BlockFunc(func(group *jen.Group) {
		for _, r := range doc.Resources {
			if r.Controller == nil {
				continue
			}
			group.Qual(module+"/controllers", "Register"+r.Name+"Routes").Call(jen.Id("r"))
		}
	})
	return e.addFile(set, "routes.go", f)
}

// emitModelsDoc renders models/models.go, the package doc listing
// where each model came from and which ones are hand-owned.
func (e *Emitter) emitModelsDoc(doc *ir.Document, set *gen.FileSet) error {
	f := e.newFile("models")
	f.PackageComment("Package models holds the data models and request params rendered from the resource definitions.")
	if len(doc.Resources) > 0 {
		f.PackageComment("")
		for _, r := range doc.Resources {
			if r.Model.Status == ir.StatusEjected {
				f.PackageComment(fmt.Sprintf("  - %s: hand-owned at %s", r.Name, r.Model.Ref))
				continue
			}
			f.PackageComment(fmt.Sprintf("  - %s (from %s)", r.Name, r.Source))
		}
	}
	return e.addFile(set, e.modelsPath()+"/models.go", f)
}

// emitManifest rewrites the generated module's go.mod from scratch on
// every run. Requirements are computed over all resources, ejected
// ones included, so the module keeps building while files are
// hand-owned.
func (e *Emitter) emitManifest(doc *ir.Document, module string, set *gen.FileSet) error {
	seed := "module " + module + "\n\ngo " + genGoVersion + "\n"
	mf, err := modfile.Parse("go.mod", []byte(seed), nil)
	if err != nil {
		return gen.NewEmissionError("manifest", "go.mod", "seed the module file", err)
	}
	for _, req := range manifestRequires(doc) {
		if err := mf.AddRequire(req.path, req.version); err != nil {
			return gen.NewEmissionError("manifest", "go.mod", "require "+req.path, err)
		}
	}
	data, err := mf.Format()
	if err != nil {
		return gen.NewEmissionError("manifest", "go.mod", "format the module file", err)
	}
	return set.Add("go.mod", data)
}

type requirement struct {
	path    string
	version string
}

// manifestRequires lists the third-party modules the generated code
// imports, sorted by path.
func manifestRequires(doc *ir.Document) []requirement {
	needs := make(map[string]string)
	mark := func(k kind.Kind) {
		switch k {
		case kind.UUID:
			needs[uuidPkg] = uuidVersion
		case kind.JSON:
			needs[goccyPkg] = goccyVersion
		}
	}
	for _, r := range doc.Resources {
		if r.Controller != nil {
			needs[chiPkg] = chiVersion
			needs[runtimePkg] = "v" + via.Version
		}
		for _, f := range r.Model.Fields {
			mark(f.Kind)
		}
		for _, a := range r.Model.Associations {
			if len(a.Candidates) > 0 {
				needs[runtimePkg] = "v" + via.Version
			}
			mark(a.IDKind)
		}
	}
	paths := make([]string, 0, len(needs))
	for path := range needs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	reqs := make([]requirement, 0, len(paths))
	for _, path := range paths {
		reqs = append(reqs, requirement{path: path, version: needs[path]})
	}
	return reqs
}

// packageName derives the root package identifier from the module
// path: the last path element with anything that cannot appear in an
// identifier stripped.
func packageName(module string) string {
	name := module
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	out := b.String()
	if out == "" || !unicode.IsLetter(rune(out[0])) {
		return "gen" + out
	}
	return out
}
