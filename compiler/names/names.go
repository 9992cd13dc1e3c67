// Package names holds the word-level naming helpers shared by the
// resolver and the code generators: case conversion between the DSL's
// camelCase and generated snake_case/PascalCase identifiers, plus the
// pluralization rules used to infer association targets and file names.
package names

import (
	"go/token"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

var (
	rules    = ruleset()
	acronyms = make(map[string]struct{})
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	for _, w := range []string{
		"ACL", "API", "ASCII", "CPU", "CSS", "CSV", "DB", "DNS", "EOF",
		"GB", "GUID", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "KB",
		"LHS", "MAC", "MB", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP",
		"SQL", "SSH", "SSO", "TCP", "TLS", "TTL", "UDP", "UI", "UID",
		"URI", "URL", "UTF8", "UUID", "VM", "XML", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// AddAcronym registers a word so case conversion keeps it fully
// upper-cased, e.g. AddAcronym("GRPC") makes Pascal("grpc_gateway")
// return "GRPCGateway".
func AddAcronym(word string) {
	acronyms[word] = struct{}{}
	rules.AddAcronym(word)
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}

// Snake converts the given identifier to snake_case, splitting on
// lower-to-upper transitions and on the last upper of an acronym run,
// so "UserID" becomes "user_id" and "HTTPCode" becomes "http_code".
func Snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// A word boundary sits before an upper-case letter that follows a
		// lower-case one, or before the last letter of an acronym run when
		// the next letter is lower-case.
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Pascal converts the given identifier to PascalCase, upgrading
// registered acronyms, so "user_id" becomes "UserID".
func Pascal(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	for i, w := range words {
		words[i] = pascalWord(w)
	}
	return strings.Join(words, "")
}

func pascalWord(w string) string {
	if upper := strings.ToUpper(w); isAcronym(upper) {
		return upper
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func isAcronym(upper string) bool {
	_, ok := acronyms[upper]
	return ok
}

// Camel converts the given identifier to camelCase. The first word is
// lower-cased even when it is a registered acronym ("http_code" becomes
// "httpCode").
func Camel(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	if len(words) == 0 {
		return s
	}
	b := strings.Builder{}
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(pascalWord(w))
	}
	return b.String()
}

// Receiver derives a short method-receiver name from a type name by
// joining the initials of its words: "UserQuery" yields "uq".
func Receiver(s string) string {
	s = strings.Trim(s, "[]*&0123456789")
	parts := strings.Split(Snake(s), "_")
	var b strings.Builder
	for _, p := range parts {
		if p != "" {
			b.WriteByte(p[0])
		}
	}
	r := b.String()
	if token.Lookup(r).IsKeyword() {
		r = "_" + r
	}
	return r
}

// Plural returns the plural form of name using plain suffix rules;
// names the rules cannot change get a "Slice" suffix so the result is
// always distinct from the input.
func Plural(name string) string {
	lower := strings.ToLower(name)
	if uncountable[lower] {
		return name + "Slice"
	}
	switch {
	case strings.HasSuffix(lower, "s"), strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"), strings.HasSuffix(lower, "ch"),
		strings.HasSuffix(lower, "sh"):
		return name + "es"
	case strings.HasSuffix(lower, "y") && len(name) > 1 && !isVowel(lower[len(lower)-2]):
		return name[:len(name)-1] + "ies"
	default:
		return name + "s"
	}
}

var uncountable = map[string]bool{
	"data":        true,
	"equipment":   true,
	"information": true,
	"metadata":    true,
	"series":      true,
	"species":     true,
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// Singular returns the singular form of name. Unlike Plural it uses
// the full inflection ruleset, since association names written by users
// carry natural-language plurals ("categories", "statuses").
func Singular(name string) string {
	return rules.Singularize(name)
}
