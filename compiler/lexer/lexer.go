// Package lexer turns .via source text into tokens.
package lexer

import "github.com/vialang/via/compiler/token"

// Lexer scans via source text and produces tokens. It never fails; malformed
// input surfaces as ILLEGAL tokens carrying their source position.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number, 1-based
	column       int  // current column number, 1-based
}

// New creates a Lexer for the given source text.
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

// skipLineComment skips to the end of the current line. Both // and #
// comments end the same way.
func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() (string, token.Type) {
	position := l.position
	typ := token.INT
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		typ = token.FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position], typ
}

// readString reads a double-quoted string literal and returns its decoded
// contents. The opening quote is the current char when called. Reports false
// if the string is unterminated before end of line or input.
func (l *Lexer) readString() (string, bool) {
	var out []byte
	for {
		l.readChar()
		if l.ch == 0 || l.ch == '\n' {
			return "", false
		}
		if l.ch == '"' {
			return string(out), true
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			default:
				out = append(out, '\\', l.ch)
			}
			continue
		}
		out = append(out, l.ch)
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '{':
		tok.Type, tok.Literal = token.LBRACE, string(l.ch)
	case '}':
		tok.Type, tok.Literal = token.RBRACE, string(l.ch)
	case '[':
		tok.Type, tok.Literal = token.LBRACKET, string(l.ch)
	case ']':
		tok.Type, tok.Literal = token.RBRACKET, string(l.ch)
	case ':':
		tok.Type, tok.Literal = token.COLON, string(l.ch)
	case ',':
		tok.Type, tok.Literal = token.COMMA, string(l.ch)
	case ';':
		tok.Type, tok.Literal = token.SEMICOLON, string(l.ch)
	case '?':
		tok.Type, tok.Literal = token.QUESTION, string(l.ch)
	case '=':
		tok.Type, tok.Literal = token.ASSIGN, string(l.ch)
	case '#':
		l.skipLineComment()
		return l.NextToken()
	case '/':
		if l.peekChar() == '/' {
			l.skipLineComment()
			return l.NextToken()
		}
		tok.Type, tok.Literal = token.ILLEGAL, string(l.ch)
	case '"':
		str, ok := l.readString()
		if !ok {
			tok.Type, tok.Literal = token.ILLEGAL, "unterminated string"
			return tok
		}
		tok.Type, tok.Literal = token.STRING, str
	case 0:
		tok.Type, tok.Literal = token.EOF, ""
		return tok
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			tok.Type, tok.Literal = token.LookupIdent(ident), ident
			return tok
		}
		if isDigit(l.ch) {
			tok.Literal, tok.Type = l.readNumber()
			return tok
		}
		tok.Type, tok.Literal = token.ILLEGAL, string(l.ch)
	}

	l.readChar()
	return tok
}

// Tokenize returns all tokens from the input, ending with EOF.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
