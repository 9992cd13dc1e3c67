package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/vialang/via/compiler/gen"
	"github.com/vialang/via/compiler/ir"
	"github.com/vialang/via/compiler/names"
)

// emitModel renders models/<resource>.go: the model struct plus the
// params structs of the resource's controller profiles. Ejected models
// are skipped entirely; their file is hand-owned.
func (e *Emitter) emitModel(r *ir.Resource, set *gen.FileSet) error {
	if r.Model.Status == ir.StatusEjected {
		return nil
	}
	f := e.newFile("models")

	f.Commentf("%s is the model for the %s resource declared in %s.", r.Name, r.Name, r.Source)
	f.Type().Id(r.Name).StructFunc(func(group *jen.Group) {
		for _, fd := range r.Model.Fields {
			group.Id(goIdent(fd.Name)).
				Add(fieldType(fd.Kind, fd.Nullable)).
				Tag(jsonTag(fd.Name, fd.Nullable, fd.Serialize))
		}
		for _, a := range r.Model.Associations {
			switch {
			case len(a.Candidates) > 0:
				group.Id(goIdent(a.Name)).
					Add(polyRefType(a)).
					Tag(jsonTag(a.Name, a.Optional, true))
			case a.Kind == ir.AssocBelongsTo:
				group.Id(goIdent(a.ForeignKey)).
					Add(fieldType(a.IDKind, a.Optional)).
					Tag(jsonTag(a.ForeignKey, a.Optional, true))
			}
		}
	})

	if c := r.Controller; c != nil {
		if c.Create != nil {
			f.Commentf("%sCreateParams carries the accepted input of the %s create action.", r.Name, r.Name)
			paramsStruct(f, r.Name+"CreateParams", c.Create)
		}
		if c.Update != nil {
			f.Commentf("%sUpdateParams carries the accepted input of the %s update action.", r.Name, r.Name)
			f.Comment("Every field is optional; absent fields are left unchanged.")
			paramsStruct(f, r.Name+"UpdateParams", c.Update)
		}
	}

	return e.addFile(set, e.modelsPath()+"/"+names.Snake(r.Name)+".go", f)
}

// polyRefType returns the via.PolyRef instantiation for a polymorphic
// association, pointered when the association is optional.
func polyRefType(a *ir.Association) jen.Code {
	ref := jen.Qual(runtimePkg, "PolyRef").Index(scalarType(a.IDKind))
	if a.Optional {
		return jen.Op("*").Add(ref)
	}
	return ref
}

func paramsStruct(f *jen.File, name string, params []*ir.Param) {
	f.Type().Id(name).StructFunc(func(group *jen.Group) {
		for _, p := range params {
			if p.Required {
				group.Id(goIdent(p.Name)).
					Add(scalarType(p.Kind)).
					Tag(map[string]string{"json": p.Name})
				continue
			}
			group.Id(goIdent(p.Name)).
				Add(optionalType(p.Kind)).
				Tag(map[string]string{"json": p.Name + ",omitempty"})
		}
	})
}
