// Package diagnostics renders source.Error values for human consumption,
// including the offending source line and a caret under the span.
package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/ssz-lang/sszc/pkg/source"
)

// Printer renders diagnostics to a writer, deciding once (at construction)
// whether ANSI color is appropriate for that writer.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter constructs a printer for out. Color is enabled automatically
// when out is a terminal (matching the teacher pack's use of go-isatty to
// gate fatih/color output), and can be forced either way.
func NewPrinter(out io.Writer) *Printer {
	enabled := false

	if f, ok := out.(interface{ Fd() uintptr }); ok {
		enabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &Printer{out, enabled}
}

// WithColor forces color on or off, overriding terminal detection. Useful
// for tests and for --no-color style flags.
func (p *Printer) WithColor(enabled bool) *Printer {
	p.color = enabled
	return p
}

// Print renders one diagnostic: a header line ("file:line:col: Kind:
// message") followed by the offending source line and a caret marking the
// span's start column.
func (p *Printer) Print(err source.Error) {
	header := err.Error()
	if p.color {
		kind := err.Kind.String() + ":"
		header = strings.Replace(header, " "+kind, " "+color.New(color.FgRed, color.Bold).Sprint(kind), 1)
	}

	fmt.Fprintln(p.out, header)

	if err.File == nil {
		return
	}

	line := err.Line()
	col := line.Column(err.Span.Start())
	fmt.Fprintf(p.out, "  %s\n", line.String())

	caret := strings.Repeat(" ", col-1+2) + "^"
	if p.color {
		caret = color.New(color.FgYellow).Sprint(caret)
	}

	fmt.Fprintln(p.out, caret)
}

// PrintAll renders a batch of diagnostics in order, separated by a blank
// line, matching how the driver surfaces the first error onward.
func (p *Printer) PrintAll(errs []source.Error) {
	for i, err := range errs {
		if i > 0 {
			fmt.Fprintln(p.out)
		}

		p.Print(err)
	}
}
