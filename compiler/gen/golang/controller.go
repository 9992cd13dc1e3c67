package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/vialang/via/compiler/gen"
	"github.com/vialang/via/compiler/ir"
	"github.com/vialang/via/compiler/names"
	"github.com/vialang/via/schema/kind"
)

// The CRUD vocabulary and its REST mapping.
var crudRoutes = map[string]struct{ method, member string }{
	"index":   {"Get", ""},
	"show":    {"Get", "/{id}"},
	"create":  {"Post", ""},
	"update":  {"Patch", "/{id}"},
	"destroy": {"Delete", "/{id}"},
}

// emitController renders controllers/<resource>.go: the controller
// struct, one handler per generated action, markers for ejected and
// overridden actions, and the per-resource route registrar.
func (e *Emitter) emitController(r *ir.Resource, module string, set *gen.FileSet) error {
	c := r.Controller
	if c == nil {
		return nil
	}
	f := e.newFile("controllers")
	cname := r.Name + "Controller"
	recv := names.Receiver(cname)
	idKind := resourceIDKind(r)

	f.Commentf("%s serves the generated %s actions.", cname, r.Name)
	f.Type().Id(cname).Struct()

	for _, a := range c.Actions {
		switch a.Status {
		case ir.StatusEjected:
			f.Commentf("Action %s is ejected to %s; its implementation is hand-owned and never regenerated.", a.Name, a.Ref)
		case ir.StatusOverridden:
			f.Commentf("Action %s is overridden by a hand-written implementation and is not generated.", a.Name)
		default:
			e.emitAction(f, r, a, module, cname, recv, idKind)
		}
	}

	e.emitRegistrar(f, r, cname)
	return e.addFile(set, e.controllersPath()+"/"+names.Snake(r.Name)+".go", f)
}

func (e *Emitter) emitAction(f *jen.File, r *ir.Resource, a *ir.Action, module, cname, recv string, idKind kind.Kind) {
	method := goIdent(a.Name)
	body := func(group *jen.Group) {
		result := jen.Dict{
			jen.Id("Resource"): jen.Lit(r.Name),
			jen.Id("Action"):   jen.Lit(a.Name),
		}
		switch a.Name {
		case "index":
			// collection action, nothing to read
		case "show", "destroy":
			readID(group, idKind)
			result[jen.Id("ID")] = jen.Id("id")
		case "create":
			if r.Controller.Create != nil {
				bindParams(group, module, r.Name+"CreateParams")
				result[jen.Id("Payload")] = jen.Id("params")
			}
		case "update":
			readID(group, idKind)
			result[jen.Id("ID")] = jen.Id("id")
			if r.Controller.Update != nil {
				bindParams(group, module, r.Name+"UpdateParams")
				result[jen.Id("Payload")] = jen.Id("params")
			}
		}
		group.Return(jen.Id("ctx").Dot("Respond").Call(
			jen.Qual(runtimePkg, "ActionResult").Values(result),
		))
	}

	switch a.Name {
	case "index":
		f.Commentf("%s lists %s resources.", method, r.Name)
	case "show":
		f.Commentf("%s responds with one %s by id.", method, r.Name)
	case "create":
		f.Commentf("%s makes a new %s from the bound params.", method, r.Name)
	case "update":
		f.Commentf("%s applies a partial update to one %s.", method, r.Name)
	case "destroy":
		f.Commentf("%s removes one %s by id.", method, r.Name)
	default:
		f.Commentf("%s handles the custom %s action.", method, a.Name)
		f.Comment("Custom actions get no generated route; mount it on the host router.")
	}
	f.Func().
		Params(jen.Id(recv).Id(cname)).
		Id(method).
		Params(jen.Id("ctx").Op("*").Qual(runtimePkg, "Context")).
		Error().
		BlockFunc(body)
}

// readID emits the id extraction statements matched to the resource's
// id kind.
func readID(group *jen.Group, idKind kind.Kind) {
	switch idKind {
	case kind.Int, kind.BigInt:
		group.List(jen.Id("id"), jen.Err()).Op(":=").Id("ctx").Dot("ParamInt64").Call(jen.Lit("id"))
		group.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
	case kind.UUID:
		group.List(jen.Id("id"), jen.Err()).Op(":=").Id("ctx").Dot("ParamUUID").Call(jen.Lit("id"))
		group.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
	default:
		group.Id("id").Op(":=").Id("ctx").Dot("Param").Call(jen.Lit("id"))
	}
}

func bindParams(group *jen.Group, module, typeName string) {
	group.Var().Id("params").Qual(module+"/models", typeName)
	group.If(
		jen.Err().Op(":=").Id("ctx").Dot("Bind").Call(jen.Op("&").Id("params")),
		jen.Err().Op("!=").Nil(),
	).Block(jen.Return(jen.Err()))
}

// emitRegistrar renders Register<Resource>Routes. Only generated CRUD
// actions are mounted; ejected and overridden ones keep their routes
// out of the generated table.
func (e *Emitter) emitRegistrar(f *jen.File, r *ir.Resource, cname string) {
	c := r.Controller
	base := "/" + names.Snake(names.Plural(r.Name))

	var routed []*ir.Action
	for _, a := range c.Actions {
		if _, ok := crudRoutes[a.Name]; ok && a.Status == ir.StatusGenerated {
			routed = append(routed, a)
		}
	}

	f.Commentf("Register%sRoutes mounts the generated %s routes on r.", r.Name, r.Name)
	f.Func().Id("Register"+r.Name+"Routes").Params(jen.Id("r").Qual(chiPkg, "Router")).BlockFunc(func(group *jen.Group) {
		if len(routed) == 0 {
			return
		}
		group.Id("c").Op(":=").Id(cname).Values()
		for _, a := range routed {
			route := crudRoutes[a.Name]
			args := []jen.Code{jen.Id("c").Dot(goIdent(a.Name))}
			for _, format := range c.Formats {
				args = append(args, jen.Lit(format))
			}
			group.Id("r").Dot(route.method).Call(
				jen.Lit(base+route.member),
				jen.Qual(runtimePkg, "Handler").Call(args...),
			)
		}
	})
}

// resourceIDKind returns the scalar kind of the resource id column.
func resourceIDKind(r *ir.Resource) kind.Kind {
	for _, f := range r.Model.Fields {
		if f.Name == "id" {
			return f.Kind
		}
	}
	return kind.Int
}
