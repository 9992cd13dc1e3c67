package parser

import (
	"fmt"

	"github.com/vialang/via/compiler/ast"
	"github.com/vialang/via/compiler/token"
)

// syncTokens are the tokens the parser can resynchronize to after an error.
// They all start a declaration or close a block.
var syncTokens = map[token.Type]bool{
	token.RESOURCE:     true,
	token.MODEL:        true,
	token.CONTROLLER:   true,
	token.FIELD:        true,
	token.BELONGS_TO:   true,
	token.HAS_MANY:     true,
	token.PARAMS:       true,
	token.RESPOND_WITH: true,
	token.ACTIONS:      true,
	token.EJECT:        true,
	token.OVERRIDE:     true,
	token.RBRACE:       true,
	token.EOF:          true,
}

// spellings gives the source spelling of token types used in expectations.
var spellings = map[token.Type]string{
	token.LBRACE:   `"{"`,
	token.RBRACE:   `"}"`,
	token.LBRACKET: `"["`,
	token.RBRACKET: `"]"`,
	token.COLON:    `":"`,
	token.COMMA:    `","`,
	token.ASSIGN:   `"="`,
	token.QUESTION: `"?"`,
	token.STRING:   "a string",
	token.IDENT:    "a name",
}

func spelling(tt token.Type) string {
	if s, ok := spellings[tt]; ok {
		return s
	}
	if tt.Keyword() {
		return fmt.Sprintf("%q", keywordSpelling(tt))
	}
	return tt.String()
}

func keywordSpelling(tt token.Type) string {
	switch tt {
	case token.RESOURCE:
		return "resource"
	case token.MODEL:
		return "model"
	case token.CONTROLLER:
		return "controller"
	case token.FIELD:
		return "field"
	case token.BELONGS_TO:
		return "belongs_to"
	case token.HAS_MANY:
		return "has_many"
	case token.PARAMS:
		return "params"
	case token.EDITABLE:
		return "editable"
	case token.CREATE:
		return "create"
	case token.UPDATE:
		return "update"
	case token.RESPOND_WITH:
		return "respond_with"
	case token.ACTIONS:
		return "actions"
	case token.AUTO_CRUD:
		return "auto_crud"
	case token.EJECT:
		return "eject"
	case token.OVERRIDE:
		return "override"
	case token.TRUE:
		return "true"
	case token.FALSE:
		return "false"
	default:
		return tt.String()
	}
}

// describe renders a token for an error message.
func (p *Parser) describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of file"
	case token.STRING:
		return fmt.Sprintf("string %q", tok.Literal)
	case token.INT, token.FLOAT:
		return fmt.Sprintf("number %q", tok.Literal)
	case token.ILLEGAL:
		if tok.Literal == "unterminated string" {
			return tok.Literal
		}
		return fmt.Sprintf("illegal character %q", tok.Literal)
	default:
		return fmt.Sprintf("%q", tok.Literal)
	}
}

// current returns the current token.
func (p *Parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

// advance moves past the current token and returns it.
func (p *Parser) advance() token.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// check reports whether the current token has the given type.
func (p *Parser) check(tt token.Type) bool {
	return p.current().Type == tt
}

// match consumes the current token if it has the given type.
func (p *Parser) match(tt token.Type) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise reports an
// expected-vs-found error and leaves the token in place.
func (p *Parser) expect(tt token.Type) token.Token {
	tok := p.current()
	if tok.Type != tt {
		p.errorf("expected %s, found %s", spelling(tt), p.describe(tok))
		return tok
	}
	return p.advance()
}

// expectName consumes a name token. Keywords double as names here, so an
// action can be called "update" and a field "create". On failure it reports
// an error and returns an ILLEGAL token at the offending position.
func (p *Parser) expectName(what string) token.Token {
	tok := p.current()
	if tok.Type.IdentLike() {
		return p.advance()
	}
	p.errorf("expected %s, found %s", what, p.describe(tok))
	return token.Token{Type: token.ILLEGAL, Line: tok.Line, Column: tok.Column}
}

// closeBlock consumes the closing brace of a block. Reaching end of file
// instead is fatal for the file: brace matching cannot recover.
func (p *Parser) closeBlock(open token.Token) {
	if p.match(token.RBRACE) {
		return
	}
	if p.check(token.EOF) {
		if !p.unclosed {
			p.errorf(`unexpected end of file, missing "}" for block opened at %d:%d`, open.Line, open.Column)
		}
		p.unclosed = true
		return
	}
	p.errorf(`expected "}", found %s`, p.describe(p.current()))
}

// synchronize skips tokens until a declaration keyword or block boundary.
// It always advances at least once so the parse loop makes progress.
func (p *Parser) synchronize() {
	p.advance()
	for !p.check(token.EOF) {
		if p.check(token.SEMICOLON) {
			p.advance()
			return
		}
		if syncTokens[p.current().Type] {
			return
		}
		p.advance()
	}
}

// errorf reports a syntax error at the current token.
func (p *Parser) errorf(format string, args ...any) {
	tok := p.current()
	p.diags.Syntaxf(p.file, tok.Line, tok.Column, format, args...)
}

// errorAt reports a syntax error at a known position.
func (p *Parser) errorAt(pos ast.Pos, format string, args ...any) {
	p.diags.Syntaxf(p.file, pos.Line, pos.Column, format, args...)
}
