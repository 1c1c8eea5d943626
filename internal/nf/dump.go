package nf

import (
	"fmt"
	"strings"
)

// Dump renders the function's statement list in a readable, stable form.
// Intended for driver output and golden tests, not for backends.
func (f *Function) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "func %s:\n", f.Name)
	dumpStmts(&b, f.Body, 1)
	return b.String()
}

func dumpStmts(b *strings.Builder, stmts []Stmt, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, s := range stmts {
		switch stmt := s.(type) {
		case *Assign:
			fmt.Fprintf(b, "%s%s = %s\n", indent, stmt.Target, exprString(stmt.Value))
		case *Sequence:
			dumpStmts(b, stmt.Stmts, depth)
		case *Branch:
			fmt.Fprintf(b, "%sbranch %s ? %s : %s\n", indent, exprString(stmt.Cond), stmt.True, stmt.False)
		case *Loop:
			fmt.Fprintf(b, "%sloop header=%s body=%s exit=%s\n", indent, stmt.Header, stmt.Body, stmt.Exit)
		case *Return:
			if stmt.Value == nil {
				fmt.Fprintf(b, "%sreturn\n", indent)
			} else {
				fmt.Fprintf(b, "%sreturn %s\n", indent, exprString(stmt.Value))
			}
		case *Throw:
			fmt.Fprintf(b, "%sthrow %s\n", indent, exprString(stmt.Value))
		case *Label:
			fmt.Fprintf(b, "%s%s:\n", strings.Repeat("  ", depth-1), stmt.Name)
		case *Goto:
			fmt.Fprintf(b, "%sgoto %s\n", indent, stmt.Target)
		case *Try:
			fmt.Fprintf(b, "%stry:\n", indent)
			dumpStmts(b, stmt.Body, depth+1)
			for _, c := range stmt.Catches {
				fmt.Fprintf(b, "%scatch %s:\n", indent, c.Binding)
				dumpStmts(b, c.Body, depth+1)
			}
			if len(stmt.Finally) > 0 {
				fmt.Fprintf(b, "%sfinally:\n", indent)
				dumpStmts(b, stmt.Finally, depth+1)
			}
		case *RaiseContract:
			fmt.Fprintf(b, "%sraise %s violation in %s: %q\n", indent, stmt.Kind, stmt.Function, stmt.Condition)
		case *Trap:
			fmt.Fprintf(b, "%strap %q\n", indent, stmt.Reason)
		default:
			fmt.Fprintf(b, "%s?%T\n", indent, s)
		}
	}
}
