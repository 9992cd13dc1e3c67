package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vialang/via/compiler/ast"
	"github.com/vialang/via/compiler/diagnostic"
)

func resolveController(r *Resource, cd *ast.Controller, diags *diagnostic.List) *Controller {
	c := &Controller{Pos: cd.Pos}
	c.Actions = resolveActions(r, cd, diags)
	c.Formats = resolveFormats(r, cd.RespondWith, diags)
	resolveParams(r, c, cd.Params, diags)
	resolveEjections(r, c, cd, diags)
	return c
}

// resolveActions expands auto_crud (also the default when the block says
// nothing about actions) or validates a manual action list.
func resolveActions(r *Resource, cd *ast.Controller, diags *diagnostic.List) []*Action {
	ad := cd.Actions
	if ad == nil || ad.AutoCRUD {
		pos := cd.Pos
		if ad != nil {
			pos = ad.Pos
		}
		out := make([]*Action, len(CrudActions))
		for i, name := range CrudActions {
			out[i] = &Action{Name: name, Pos: pos}
		}
		return out
	}

	var out []*Action
	for _, id := range ad.Names {
		if id.Name == "model" {
			diags.Resolutionf(r.File, id.Pos.Line, id.Pos.Column,
				`cannot declare an action named "model"`)
			continue
		}
		if _, ok := lookupAction(out, id.Name); ok {
			diags.Consistencyf(r.File, id.Pos.Line, id.Pos.Column,
				"duplicate action %q in resource %q", id.Name, r.Name)
			continue
		}
		out = append(out, &Action{
			Name:   id.Name,
			Custom: !slices.Contains(CrudActions, id.Name),
			Pos:    id.Pos,
		})
	}
	return out
}

func lookupAction(actions []*Action, name string) (*Action, bool) {
	for _, a := range actions {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

func resolveFormats(r *Resource, ids []*ast.Ident, diags *diagnostic.List) []string {
	if len(ids) == 0 {
		return []string{FormatJSON}
	}
	var out []string
	for _, id := range ids {
		switch id.Name {
		case FormatJSON, FormatHTML:
			if slices.Contains(out, id.Name) {
				diags.Consistencyf(r.File, id.Pos.Line, id.Pos.Column,
					"duplicate response format %q", id.Name)
				continue
			}
			out = append(out, id.Name)
		default:
			diags.Add(diagnostic.Diagnostic{
				Kind:    diagnostic.KindResolution,
				File:    r.File,
				Line:    id.Pos.Line,
				Column:  id.Pos.Column,
				Message: fmt.Sprintf("unknown response format %q", id.Name),
				Hint:    "supported formats: html, json",
			})
		}
	}
	if len(out) == 0 {
		out = []string{FormatJSON}
	}
	return out
}

// profileEntry pairs a profile entry with the model field it names.
type profileEntry struct {
	entry *ast.Entry
	field *Field
}

// resolveParams derives the create and update parameter profiles. An
// explicit create or update block wins over the editable macro; the
// editable block supplies whichever side has no explicit block.
func resolveParams(r *Resource, c *Controller, profiles []*ast.Profile, diags *diagnostic.List) {
	var editable, create, update *ast.Profile
	for _, p := range profiles {
		dst := &editable
		switch p.Kind {
		case ast.Create:
			dst = &create
		case ast.Update:
			dst = &update
		}
		if *dst != nil {
			diags.Consistencyf(r.File, p.Pos.Line, p.Pos.Column,
				"duplicate %s block in resource %q", p.Kind, r.Name)
			continue
		}
		*dst = p
	}

	// Resolve each distinct block once so a typo in a shadowed editable
	// block is still reported exactly once.
	resolved := make(map[*ast.Profile][]profileEntry, 3)
	for _, p := range []*ast.Profile{editable, create, update} {
		if p != nil {
			resolved[p] = resolveEntries(r, p, diags)
		}
	}

	switch {
	case create != nil:
		c.Create = createParams(resolved[create], false)
	case editable != nil:
		c.Create = createParams(resolved[editable], true)
	}
	switch {
	case update != nil:
		c.Update = updateParams(resolved[update])
	case editable != nil:
		c.Update = updateParams(resolved[editable])
	}
}

func resolveEntries(r *Resource, prof *ast.Profile, diags *diagnostic.List) []profileEntry {
	if r.Model == nil {
		return nil // the missing model block is already reported
	}
	var out []profileEntry
	seen := make(map[string]bool, len(prof.Entries))
	for _, e := range prof.Entries {
		if e.Name == "" {
			continue
		}
		if seen[e.Name] {
			diags.Consistencyf(r.File, e.Pos.Line, e.Pos.Column,
				"duplicate field %q in %s block", e.Name, prof.Kind)
			continue
		}
		seen[e.Name] = true
		f, ok := r.Model.Field(e.Name)
		if !ok {
			d := diagnostic.Diagnostic{
				Kind:    diagnostic.KindResolution,
				File:    r.File,
				Line:    e.Pos.Line,
				Column:  e.Pos.Column,
				Message: fmt.Sprintf("unknown field %q in %s block of resource %q", e.Name, prof.Kind, r.Name),
			}
			if _, isAssoc := r.Model.assoc(e.Name); isAssoc {
				d.Hint = "associations cannot appear in params profiles"
			}
			diags.Add(d)
			continue
		}
		if f.Implicit {
			diags.Resolutionf(r.File, e.Pos.Line, e.Pos.Column,
				"cannot use implicit field %q in a %s block", e.Name, prof.Kind)
			continue
		}
		out = append(out, profileEntry{entry: e, field: f})
	}
	return out
}

// createParams computes the create profile. Under the editable macro a
// field is required only when it is non-nullable, has no default, and was
// not marked optional in the block; an explicit create block makes the
// "?" marker the only source of optionality.
func createParams(entries []profileEntry, macro bool) []*Param {
	out := make([]*Param, 0, len(entries))
	for _, e := range entries {
		required := !e.entry.Optional
		if macro {
			required = required && !e.field.Nullable && !e.field.HasDefault
		}
		out = append(out, &Param{Field: e.field, Required: required})
	}
	return out
}

// updateParams computes the update profile, where every field is optional
// so clients can patch any subset.
func updateParams(entries []profileEntry) []*Param {
	out := make([]*Param, 0, len(entries))
	for _, e := range entries {
		out = append(out, &Param{Field: e.field})
	}
	return out
}

func resolveEjections(r *Resource, c *Controller, cd *ast.Controller, diags *diagnostic.List) {
	for _, o := range cd.Overrides {
		applyStatus(r, c, o.Unit, StatusOverridden, "", o.Pos, diags)
	}
	for _, e := range cd.Ejections {
		if e.Ref == "" {
			diags.Resolutionf(r.File, e.Pos.Line, e.Pos.Column,
				"ejection reference for %q is empty", e.Unit)
			continue
		}
		if !validRef(e.Ref) {
			diags.Add(diagnostic.Diagnostic{
				Kind:    diagnostic.KindResolution,
				File:    r.File,
				Line:    e.Pos.Line,
				Column:  e.Pos.Column,
				Message: fmt.Sprintf("invalid ejection reference %q", e.Ref),
				Hint:    `write the reference as "path/to/file.go#Symbol"`,
			})
			continue
		}
		applyStatus(r, c, e.Unit, StatusEjected, e.Ref, e.Pos, diags)
	}
}

// validRef accepts references of the form path#Symbol with both halves
// present and exactly one separator.
func validRef(ref string) bool {
	i := strings.IndexByte(ref, '#')
	return i > 0 && i < len(ref)-1 && !strings.Contains(ref[i+1:], "#")
}

func applyStatus(r *Resource, c *Controller, unit string, status Status, ref string, pos ast.Pos, diags *diagnostic.List) {
	verb := "override"
	if status == StatusEjected {
		verb = "eject"
	}
	if unit == "model" {
		if r.Model == nil {
			return
		}
		if r.Model.Status != StatusGenerated {
			diags.Consistencyf(r.File, pos.Line, pos.Column,
				"model of resource %q is already %s", r.Name, r.Model.Status)
			return
		}
		r.Model.Status, r.Model.Ref = status, ref
		return
	}
	act, ok := c.Action(unit)
	if !ok {
		diags.Resolutionf(r.File, pos.Line, pos.Column,
			"cannot %s unknown action %q in resource %q", verb, unit, r.Name)
		return
	}
	if act.Status != StatusGenerated {
		diags.Consistencyf(r.File, pos.Line, pos.Column,
			"action %q of resource %q is already %s", unit, r.Name, act.Status)
		return
	}
	act.Status, act.Ref = status, ref
}
