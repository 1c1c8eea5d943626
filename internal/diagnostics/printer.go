package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
)

// Printer writes diagnostics to a destination, coloring the severity only
// when the destination is a terminal.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter creates a printer for w. Color is enabled when w is an
// *os.File attached to a terminal.
func NewPrinter(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{out: w, color: color}
}

// Print writes every diagnostic in the bag, one per line.
func (p *Printer) Print(bag *Bag) {
	for _, d := range bag.All() {
		p.printOne(d)
	}
}

func (p *Printer) printOne(d *Diagnostic) {
	loc := d.Token.Pos()
	if d.File != "" {
		loc = d.File + ":" + loc
	}

	sev := d.Severity.String()
	if p.color {
		switch d.Severity {
		case SeverityError:
			sev = colorRed + sev + colorReset
		case SeverityWarning:
			sev = colorYellow + sev + colorReset
		}
	}

	fmt.Fprintf(p.out, "%s: %s[%s]: %s\n", loc, sev, d.Code, d.Message)
}
