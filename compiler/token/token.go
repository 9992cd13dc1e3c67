// Package token declares the lexical tokens of the via resource language.
package token

import "fmt"

// Type identifies the kind of a lexical token.
type Type int

const (
	// Special tokens
	ILLEGAL Type = iota
	EOF

	// Literals
	IDENT  // Post, title, auto detected identifiers
	STRING // "app/handlers/post.go#Show"
	INT    // 42
	FLOAT  // 3.14

	// Keywords
	RESOURCE
	MODEL
	CONTROLLER
	FIELD
	BELONGS_TO
	HAS_MANY
	PARAMS
	EDITABLE
	CREATE
	UPDATE
	RESPOND_WITH
	ACTIONS
	AUTO_CRUD
	EJECT
	OVERRIDE
	TRUE
	FALSE

	// Delimiters and operators
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COLON     // :
	COMMA     // ,
	SEMICOLON // ;
	QUESTION  // ?
	ASSIGN    // =
)

var names = [...]string{
	ILLEGAL:      "ILLEGAL",
	EOF:          "EOF",
	IDENT:        "IDENT",
	STRING:       "STRING",
	INT:          "INT",
	FLOAT:        "FLOAT",
	RESOURCE:     "RESOURCE",
	MODEL:        "MODEL",
	CONTROLLER:   "CONTROLLER",
	FIELD:        "FIELD",
	BELONGS_TO:   "BELONGS_TO",
	HAS_MANY:     "HAS_MANY",
	PARAMS:       "PARAMS",
	EDITABLE:     "EDITABLE",
	CREATE:       "CREATE",
	UPDATE:       "UPDATE",
	RESPOND_WITH: "RESPOND_WITH",
	ACTIONS:      "ACTIONS",
	AUTO_CRUD:    "AUTO_CRUD",
	EJECT:        "EJECT",
	OVERRIDE:     "OVERRIDE",
	TRUE:         "TRUE",
	FALSE:        "FALSE",
	LBRACE:       "LBRACE",
	RBRACE:       "RBRACE",
	LBRACKET:     "LBRACKET",
	RBRACKET:     "RBRACKET",
	COLON:        "COLON",
	COMMA:        "COMMA",
	SEMICOLON:    "SEMICOLON",
	QUESTION:     "QUESTION",
	ASSIGN:       "ASSIGN",
}

// String returns the name of the token type.
func (t Type) String() string {
	if t >= 0 && int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// A Token is a single lexical token with its source position.
// Line and Column are 1-based.
type Token struct {
	Type    Type
	Literal string
	Line    int
	Column  int
}

// keywords maps keyword spellings to their token types.
var keywords = map[string]Type{
	"resource":     RESOURCE,
	"model":        MODEL,
	"controller":   CONTROLLER,
	"field":        FIELD,
	"belongs_to":   BELONGS_TO,
	"has_many":     HAS_MANY,
	"params":       PARAMS,
	"editable":     EDITABLE,
	"create":       CREATE,
	"update":       UPDATE,
	"respond_with": RESPOND_WITH,
	"actions":      ACTIONS,
	"auto_crud":    AUTO_CRUD,
	"eject":        EJECT,
	"override":     OVERRIDE,
	"true":         TRUE,
	"false":        FALSE,
}

// LookupIdent returns the keyword type for ident, or IDENT if it is not a
// keyword. Keywords are matched case-sensitively; resource and field names
// like "Update" therefore stay plain identifiers.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Keyword reports whether the type is one of the language keywords.
func (t Type) Keyword() bool {
	return t >= RESOURCE && t <= FALSE
}

// IdentLike reports whether a token of this type can be used where a bare
// name is expected. Several keywords double as ordinary names in context
// (e.g. the create and update profile names, or an action called "update").
func (t Type) IdentLike() bool {
	return t == IDENT || t.Keyword()
}
