package format

import (
	"strings"
)

// Printer manages formatting state and output
type Printer struct {
	output  strings.Builder
	indent  int // Current indentation level
	linePos int // Current position in the current line
	flat    bool // Render lists and dictionaries on one line regardless of width
}

// NewPrinter creates a new Printer instance
func NewPrinter() *Printer {
	return &Printer{}
}

// String returns the formatted output
func (p *Printer) String() string {
	return p.output.String()
}

// write appends a string to the output and updates line position
func (p *Printer) write(s string) {
	p.output.WriteString(s)
	if idx := strings.LastIndex(s, "\n"); idx >= 0 {
		p.linePos = len(s) - idx - 1
	} else {
		p.linePos += len(s)
	}
}

// newline writes a newline character and resets line position
func (p *Printer) newline() {
	p.output.WriteString("\n")
	p.linePos = 0
}

// writeIndent writes the current indentation
func (p *Printer) writeIndent() {
	p.output.WriteString(strings.Repeat(IndentString, p.indent))
	p.linePos += p.indent * IndentWidth
}

func (p *Printer) indentInc() {
	p.indent++
}

func (p *Printer) indentDec() {
	if p.indent > 0 {
		p.indent--
	}
}

// fitsOnLine checks if a string would fit on the current line within the
// given width
func (p *Printer) fitsOnLine(s string, width int) bool {
	if strings.Contains(s, "\n") {
		return false
	}
	return p.linePos+len(s) <= width
}

// fitsInThreshold checks if a string fits within the given threshold
// regardless of the current position
func fitsInThreshold(s string, threshold int) bool {
	if strings.Contains(s, "\n") {
		return false
	}
	return len(s) <= threshold
}
