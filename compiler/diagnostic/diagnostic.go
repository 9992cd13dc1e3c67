// Package diagnostic collects and renders positioned compile errors.
//
// Every stage of the pipeline appends to a List instead of returning on the
// first problem, so a batch run reports all syntax, resolution, and
// consistency errors together. A non-empty List satisfies the error
// interface and is what the compiler returns to callers.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a diagnostic by the pipeline stage that produced it.
type Kind int

const (
	// KindSyntax marks lexer and parser errors.
	KindSyntax Kind = iota
	// KindResolution marks type, association, and params resolution errors.
	KindResolution
	// KindConsistency marks duplicate-name errors across a batch.
	KindConsistency
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindResolution:
		return "resolution"
	case KindConsistency:
		return "consistency"
	default:
		return "unknown"
	}
}

// A Diagnostic is a single positioned compile error.
// Line and Column are 1-based; zero means the position is unknown.
type Diagnostic struct {
	Kind    Kind
	File    string
	Line    int
	Column  int
	Message string
	Hint    string // optional suggestion
}

// String renders the diagnostic in error[file:line:col]: message form.
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.File != "" {
		fmt.Fprintf(&b, "error[%s:%d:%d]: %s", d.File, d.Line, d.Column, d.Message)
	} else {
		fmt.Fprintf(&b, "error[%d:%d]: %s", d.Line, d.Column, d.Message)
	}
	if d.Hint != "" {
		fmt.Fprintf(&b, "\n  hint: %s", d.Hint)
	}
	return b.String()
}

// List manages a collection of diagnostics.
type List struct {
	items []Diagnostic
}

// New creates an empty List.
func New() *List {
	return &List{}
}

// Add appends a diagnostic to the list.
func (l *List) Add(d Diagnostic) {
	l.items = append(l.items, d)
}

// Syntaxf appends a syntax diagnostic with a formatted message.
func (l *List) Syntaxf(file string, line, col int, format string, args ...any) {
	l.items = append(l.items, Diagnostic{
		Kind:    KindSyntax,
		File:    file,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	})
}

// Resolutionf appends a resolution diagnostic with a formatted message.
func (l *List) Resolutionf(file string, line, col int, format string, args ...any) {
	l.items = append(l.items, Diagnostic{
		Kind:    KindResolution,
		File:    file,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	})
}

// Consistencyf appends a consistency diagnostic with a formatted message.
func (l *List) Consistencyf(file string, line, col int, format string, args ...any) {
	l.items = append(l.items, Diagnostic{
		Kind:    KindConsistency,
		File:    file,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether the list contains any diagnostics.
func (l *List) HasErrors() bool {
	return len(l.items) > 0
}

// Len returns the number of diagnostics.
func (l *List) Len() int {
	return len(l.items)
}

// All returns every diagnostic in the list.
func (l *List) All() []Diagnostic {
	return l.items
}

// ByKind returns the diagnostics of the given kind.
func (l *List) ByKind(k Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range l.items {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Merge appends every diagnostic of other to l. A nil other is a no-op.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.items = append(l.items, other.items...)
}

// Sort orders diagnostics by file, line, column, then message, so aggregated
// batch output is stable regardless of the order files were processed in.
func (l *List) Sort() {
	sort.SliceStable(l.items, func(i, j int) bool {
		a, b := l.items[i], l.items[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Message < b.Message
	})
}

// Format renders all diagnostics, one per line, hints indented beneath.
func (l *List) Format() string {
	if len(l.items) == 0 {
		return ""
	}
	lines := make([]string, len(l.items))
	for i, d := range l.items {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Error implements the error interface so a List can be returned directly
// from the compiler entry points.
func (l *List) Error() string {
	switch len(l.items) {
	case 0:
		return "no diagnostics"
	case 1:
		return l.items[0].String()
	default:
		return fmt.Sprintf("%d errors:\n%s", len(l.items), l.Format())
	}
}

// Err returns the list as an error, or nil if it is empty.
func (l *List) Err() error {
	if l == nil || len(l.items) == 0 {
		return nil
	}
	return l
}
