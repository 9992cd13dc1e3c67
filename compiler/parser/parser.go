// Package parser builds the syntax tree for .via source files.
//
// The parser is recursive descent over the token stream. It never stops at
// the first problem: errors are collected into a diagnostic.List and the
// parser resynchronizes at the next block keyword, so one malformed field
// does not hide every error after it. The one fatal case is an unclosed
// brace at end of file, which yields no syntax tree at all.
//
// # Grammar
//
//	file        := resource*
//	resource    := "resource" Ident "{" model? controller? "}"
//	model       := "model" "{" (field | assoc)* "}"
//	field       := "field" ident "?"? ":" Ident ("=" literal)? attrs?
//	attrs       := "{" attr ("," attr)* "}"        // attr: serialize: bool
//	assoc       := ("belongs_to" | "has_many") ident "?"?
//	               (":" (Ident | "[" Ident ("," Ident)* "]"))?
//	controller  := "controller" "{" ctrlItem* "}"
//	ctrlItem    := params | respond | actions | eject | override
//	params      := "params" "{" profile* "}"
//	profile     := ("editable" | "create" | "update") "{" entry ("," entry)* "}"
//	entry       := ident "?"?
//	respond     := "respond_with" "[" Ident ("," Ident)* "]"
//	actions     := "actions" ("auto_crud" | "[" ident ("," ident)* "]")
//	eject       := "eject" (ident | "model") String  // String: "path#Symbol"
//	override    := "override" ident
//
// Literals are strings, integers, floats, true and false. Comments run
// from // or # to end of line. Commas between declarations are
// optional. Keywords double as names wherever a name is expected.
package parser

import (
	"github.com/vialang/via/compiler/ast"
	"github.com/vialang/via/compiler/diagnostic"
	"github.com/vialang/via/compiler/lexer"
	"github.com/vialang/via/compiler/token"
)

// Parser holds the parsing state for one source file.
type Parser struct {
	file     string
	tokens   []token.Token
	pos      int
	diags    *diagnostic.List
	unclosed bool // an unclosed brace reached end of file
}

// New creates a parser for the given source file. The path is used only for
// diagnostics.
func New(path, source string) *Parser {
	return &Parser{
		file:   path,
		tokens: lexer.New(source).Tokenize(),
		diags:  diagnostic.New(),
	}
}

// Parse is a convenience wrapper that parses source in one call.
// The returned file is nil when the source ends inside an unclosed block.
func Parse(path, source string) (*ast.File, *diagnostic.List) {
	p := New(path, source)
	f := p.ParseFile()
	return f, p.diags
}

// Diagnostics returns the diagnostics collected so far.
func (p *Parser) Diagnostics() *diagnostic.List {
	return p.diags
}

// ParseFile parses the whole token stream into an ast.File.
func (p *Parser) ParseFile() *ast.File {
	file := &ast.File{Path: p.file}
	for !p.check(token.EOF) {
		if p.check(token.RESOURCE) {
			if r := p.parseResource(); r != nil {
				file.Resources = append(file.Resources, r)
			}
			continue
		}
		p.errorf("unexpected %s at top level, expected a resource declaration", p.describe(p.current()))
		p.synchronize()
	}
	if p.unclosed {
		return nil
	}
	return file
}

// parseResource parses: resource <Name> { model? controller? }
func (p *Parser) parseResource() *ast.Resource {
	tok := p.expect(token.RESOURCE)
	name := p.expectName("resource name")
	r := &ast.Resource{Name: name.Literal, Pos: ast.At(tok)}

	open := p.expect(token.LBRACE)
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		switch p.current().Type {
		case token.MODEL:
			m := p.parseModel()
			if r.Model != nil {
				p.errorAt(m.Pos, "duplicate model block in resource %q", r.Name)
				continue
			}
			r.Model = m
		case token.CONTROLLER:
			c := p.parseController()
			if r.Controller != nil {
				p.errorAt(c.Pos, "duplicate controller block in resource %q", r.Name)
				continue
			}
			r.Controller = c
		case token.SEMICOLON, token.COMMA:
			p.advance()
		default:
			p.errorf("unexpected %s in resource %q, expected model or controller", p.describe(p.current()), r.Name)
			p.synchronize()
		}
	}
	p.closeBlock(open)
	return r
}

// parseModel parses: model { (field | belongs_to | has_many)* }
func (p *Parser) parseModel() *ast.Model {
	tok := p.expect(token.MODEL)
	m := &ast.Model{Pos: ast.At(tok)}

	open := p.expect(token.LBRACE)
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		switch p.current().Type {
		case token.FIELD:
			if f := p.parseField(); f != nil {
				m.Fields = append(m.Fields, f)
			}
		case token.BELONGS_TO, token.HAS_MANY:
			if a := p.parseAssociation(); a != nil {
				m.Associations = append(m.Associations, a)
			}
		case token.SEMICOLON, token.COMMA:
			p.advance()
		default:
			p.errorf("unexpected %s in model block, expected field, belongs_to, or has_many", p.describe(p.current()))
			p.synchronize()
		}
	}
	p.closeBlock(open)
	return m
}

// parseField parses: field <name>[?]: <Type> [= <literal>] [{ serialize: <bool> }]
func (p *Parser) parseField() *ast.Field {
	tok := p.expect(token.FIELD)
	name := p.expectName("field name")
	f := &ast.Field{Name: name.Literal, Pos: ast.At(tok)}

	f.Optional = p.match(token.QUESTION)
	p.expect(token.COLON)
	typ := p.expectName("type name")
	f.Type = typ.Literal

	if p.match(token.ASSIGN) {
		if lit := p.parseLiteral(); lit != nil {
			f.Default = lit
		}
	}
	if p.check(token.LBRACE) {
		p.parseFieldAttrs(f)
	}
	return f
}

// parseFieldAttrs parses the attribute block of a field declaration.
// The only attribute today is serialize: <bool>.
func (p *Parser) parseFieldAttrs(f *ast.Field) {
	open := p.expect(token.LBRACE)
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		attr := p.expectName("attribute name")
		p.expect(token.COLON)
		switch attr.Literal {
		case "serialize":
			val := p.current()
			switch val.Type {
			case token.TRUE, token.FALSE:
				p.advance()
				b := val.Type == token.TRUE
				f.Serialize = &b
			default:
				p.errorf("serialize expects true or false, found %s", p.describe(val))
				p.advance()
			}
		default:
			p.errorAt(ast.At(attr), "unknown field attribute %q", attr.Literal)
			p.parseLiteral()
		}
		p.match(token.COMMA)
	}
	p.closeBlock(open)
}

// parseAssociation parses:
//
//	belongs_to <name>[?] [: <Target> | : [A, B, ...]]
//	has_many <name> [: <Target>]
func (p *Parser) parseAssociation() *ast.Association {
	tok := p.advance()
	a := &ast.Association{Pos: ast.At(tok)}
	if tok.Type == token.HAS_MANY {
		a.Kind = ast.HasMany
	}

	name := p.expectName("association name")
	a.Name = name.Literal
	a.Optional = p.match(token.QUESTION)

	if !p.match(token.COLON) {
		return a
	}
	if p.check(token.LBRACKET) {
		list := p.parseNameList("candidate type")
		if a.Kind == ast.HasMany {
			p.errorAt(a.Pos, "has_many %q cannot take a candidate-type list, only belongs_to can be polymorphic", a.Name)
			return a
		}
		a.Poly = true
		a.Targets = list
		return a
	}
	target := p.expectName("target resource name")
	a.Target = target.Literal
	return a
}

// parseController parses: controller { (params | respond_with | actions | eject | override)* }
func (p *Parser) parseController() *ast.Controller {
	tok := p.expect(token.CONTROLLER)
	c := &ast.Controller{Pos: ast.At(tok)}

	open := p.expect(token.LBRACE)
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		switch p.current().Type {
		case token.PARAMS:
			c.Params = append(c.Params, p.parseParams()...)
		case token.RESPOND_WITH:
			p.parseRespondWith(c)
		case token.ACTIONS:
			act := p.parseActions()
			if c.Actions != nil {
				p.errorAt(act.Pos, "duplicate actions declaration")
				continue
			}
			c.Actions = act
		case token.EJECT:
			if e := p.parseEjection(); e != nil {
				c.Ejections = append(c.Ejections, e)
			}
		case token.OVERRIDE:
			if o := p.parseOverride(); o != nil {
				c.Overrides = append(c.Overrides, o)
			}
		case token.SEMICOLON, token.COMMA:
			p.advance()
		default:
			p.errorf("unexpected %s in controller block", p.describe(p.current()))
			p.synchronize()
		}
	}
	p.closeBlock(open)
	return c
}

// parseParams parses: params { (editable | create | update) { <entry>,* } ... }
func (p *Parser) parseParams() []*ast.Profile {
	p.expect(token.PARAMS)
	var profiles []*ast.Profile

	open := p.expect(token.LBRACE)
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		switch p.current().Type {
		case token.EDITABLE, token.CREATE, token.UPDATE:
			profiles = append(profiles, p.parseProfile())
		case token.SEMICOLON, token.COMMA:
			p.advance()
		default:
			p.errorf("unexpected %s in params block, expected editable, create, or update", p.describe(p.current()))
			p.synchronize()
		}
	}
	p.closeBlock(open)
	return profiles
}

// parseProfile parses one params profile: <kind> { <name>[?],* }
func (p *Parser) parseProfile() *ast.Profile {
	tok := p.advance()
	prof := &ast.Profile{Pos: ast.At(tok)}
	switch tok.Type {
	case token.CREATE:
		prof.Kind = ast.Create
	case token.UPDATE:
		prof.Kind = ast.Update
	default:
		prof.Kind = ast.Editable
	}

	open := p.expect(token.LBRACE)
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		name := p.expectName("field reference")
		if name.Type == token.ILLEGAL {
			p.synchronize()
			continue
		}
		entry := &ast.Entry{Name: name.Literal, Pos: ast.At(name)}
		entry.Optional = p.match(token.QUESTION)
		prof.Entries = append(prof.Entries, entry)
		p.match(token.COMMA)
	}
	p.closeBlock(open)
	return prof
}

// parseRespondWith parses: respond_with [ <fmt>,* ]
func (p *Parser) parseRespondWith(c *ast.Controller) {
	tok := p.expect(token.RESPOND_WITH)
	list := p.parseNameList("response format")
	if len(list) == 0 {
		p.errorAt(ast.At(tok), "respond_with list is empty")
		return
	}
	c.RespondWith = append(c.RespondWith, list...)
}

// parseActions parses: actions auto_crud | actions [ <name>,* ]
func (p *Parser) parseActions() *ast.Actions {
	tok := p.expect(token.ACTIONS)
	act := &ast.Actions{Pos: ast.At(tok)}

	if p.match(token.AUTO_CRUD) {
		act.AutoCRUD = true
		return act
	}
	if p.check(token.LBRACKET) {
		act.Names = p.parseNameList("action name")
		if len(act.Names) == 0 {
			p.errorAt(act.Pos, "actions list is empty")
		}
		return act
	}
	p.errorf("expected auto_crud or an action list, found %s", p.describe(p.current()))
	return act
}

// parseEjection parses: eject (<action> | model) "<path#Symbol>"
func (p *Parser) parseEjection() *ast.Ejection {
	tok := p.expect(token.EJECT)
	unit := p.expectName("action name or model")
	ref := p.expect(token.STRING)
	if ref.Type != token.STRING {
		return nil
	}
	return &ast.Ejection{Unit: unit.Literal, Ref: ref.Literal, Pos: ast.At(tok)}
}

// parseOverride parses: override <action>
func (p *Parser) parseOverride() *ast.Override {
	tok := p.expect(token.OVERRIDE)
	unit := p.expectName("action name")
	if unit.Type == token.ILLEGAL {
		return nil
	}
	return &ast.Override{Unit: unit.Literal, Pos: ast.At(tok)}
}

// parseNameList parses a bracketed, comma-separated name list: [ a, b, c ]
func (p *Parser) parseNameList(what string) []*ast.Ident {
	var names []*ast.Ident
	p.expect(token.LBRACKET)
	for !p.check(token.RBRACKET) && !p.check(token.EOF) {
		name := p.expectName(what)
		if name.Type == token.ILLEGAL {
			// Skip the rest of the list rather than resynchronizing
			// globally; the closing bracket is right there.
			for !p.check(token.RBRACKET) && !p.check(token.EOF) {
				p.advance()
			}
			break
		}
		names = append(names, &ast.Ident{Name: name.Literal, Pos: ast.At(name)})
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACKET)
	return names
}

// parseLiteral consumes one literal token (string, number, or boolean) and
// returns it, or reports an error and returns nil.
func (p *Parser) parseLiteral() *token.Token {
	tok := p.current()
	switch tok.Type {
	case token.STRING, token.INT, token.FLOAT, token.TRUE, token.FALSE:
		p.advance()
		return &tok
	default:
		p.errorf("expected a literal value, found %s", p.describe(tok))
		p.advance()
		return nil
	}
}
