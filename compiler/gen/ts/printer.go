package ts

import (
	"fmt"
	"strings"
)

// printer accumulates TypeScript source two-space indented.
type printer struct {
	sb     strings.Builder
	indent int
}

func newPrinter(header string) *printer {
	p := &printer{}
	p.line("// " + header)
	return p
}

func (p *printer) line(s string) {
	if s == "" {
		p.sb.WriteString("\n")
		return
	}
	p.sb.WriteString(strings.Repeat("  ", p.indent))
	p.sb.WriteString(s)
	p.sb.WriteString("\n")
}

func (p *printer) linef(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *printer) blank() {
	p.line("")
}

func (p *printer) in()  { p.indent++ }
func (p *printer) out() { p.indent-- }

func (p *printer) bytes() []byte {
	return []byte(p.sb.String())
}
