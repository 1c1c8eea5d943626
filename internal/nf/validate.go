package nf

import (
	"fmt"
)

// ValidateModule runs ValidateFunction over every function.
func ValidateModule(m *Module) error {
	for _, fn := range m.Functions {
		if err := ValidateFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFunction checks the three normal-form invariants for one
// function: every compound expression holds only atomic operands, every
// goto/branch label matches exactly one label, and every variable is
// assigned along every path before being read. A failure is an internal
// compiler fault, never a user diagnostic.
func ValidateFunction(f *Function) error {
	v := &validator{fn: f}

	body := flatten(f.Body)
	if err := v.checkAtomicity(body); err != nil {
		return err
	}
	if err := v.checkLabels(body); err != nil {
		return err
	}
	return v.checkDefiniteAssignment(body)
}

type validator struct {
	fn     *Function
	labels map[string]int
}

func (v *validator) fault(format string, args ...any) error {
	return &InternalError{Function: v.fn.Name, Detail: fmt.Sprintf(format, args...)}
}

// flatten inlines Sequence nodes into one ordered statement list. Try
// bodies stay nested; their contents are validated independently.
func flatten(stmts []Stmt) []Stmt {
	var out []Stmt
	for _, s := range stmts {
		if seq, ok := s.(*Sequence); ok {
			out = append(out, flatten(seq.Stmts)...)
			continue
		}
		out = append(out, s)
	}
	return out
}

// --- Operand atomicity ---

func (v *validator) checkAtomicity(body []Stmt) error {
	for _, s := range body {
		if err := v.checkStmtAtomicity(s); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) checkStmtAtomicity(s Stmt) error {
	switch stmt := s.(type) {
	case *Assign:
		return v.checkOperands(stmt.Value)
	case *Branch:
		if !IsAtomic(stmt.Cond) {
			return v.fault("branch condition %s is not atomic", exprString(stmt.Cond))
		}
		return nil
	case *Return:
		if stmt.Value == nil {
			return nil
		}
		if !IsAtomic(stmt.Value) {
			return v.fault("return value %s is not atomic", exprString(stmt.Value))
		}
		return nil
	case *Throw:
		if !IsAtomic(stmt.Value) {
			return v.fault("throw value %s is not atomic", exprString(stmt.Value))
		}
		return nil
	case *Try:
		for _, sub := range flatten(stmt.Body) {
			if err := v.checkStmtAtomicity(sub); err != nil {
				return err
			}
		}
		for _, c := range stmt.Catches {
			for _, sub := range flatten(c.Body) {
				if err := v.checkStmtAtomicity(sub); err != nil {
					return err
				}
			}
		}
		for _, sub := range flatten(stmt.Finally) {
			if err := v.checkStmtAtomicity(sub); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// checkOperands verifies a compound expression's operands are leaves.
// The expression itself may be compound: it sits on the right side of an
// assignment, the only place compounds are allowed.
func (v *validator) checkOperands(e Expr) error {
	switch x := e.(type) {
	case *Literal, *VarRef:
		return nil
	case *BinaryOp:
		if !IsAtomic(x.Left) || !IsAtomic(x.Right) {
			return v.fault("operand of %s is not atomic", exprString(x))
		}
		return nil
	case *UnaryOp:
		if !IsAtomic(x.Operand) {
			return v.fault("operand of %s is not atomic", exprString(x))
		}
		return nil
	case *Call:
		for _, a := range x.Args {
			if !IsAtomic(a) {
				return v.fault("argument of %s is not atomic", exprString(x))
			}
		}
		return nil
	case *Conversion:
		if !IsAtomic(x.Operand) {
			return v.fault("operand of %s is not atomic", exprString(x))
		}
		return nil
	default:
		return v.fault("unknown expression kind %T", e)
	}
}

// --- Label integrity ---

func (v *validator) checkLabels(body []Stmt) error {
	v.labels = make(map[string]int)
	for i, s := range body {
		if l, ok := s.(*Label); ok {
			if _, dup := v.labels[l.Name]; dup {
				return v.fault("label %s defined more than once", l.Name)
			}
			v.labels[l.Name] = i
		}
	}

	for _, s := range body {
		switch stmt := s.(type) {
		case *Goto:
			if _, ok := v.labels[stmt.Target]; !ok {
				return v.fault("goto targets undefined label %s", stmt.Target)
			}
		case *Branch:
			if _, ok := v.labels[stmt.True]; !ok {
				return v.fault("branch targets undefined label %s", stmt.True)
			}
			if _, ok := v.labels[stmt.False]; !ok {
				return v.fault("branch targets undefined label %s", stmt.False)
			}
		case *Loop:
			for _, name := range []string{stmt.Header, stmt.Body, stmt.Exit} {
				if _, ok := v.labels[name]; !ok {
					return v.fault("loop references undefined label %s", name)
				}
			}
		}
	}
	return nil
}

// --- Definite assignment ---

// checkDefiniteAssignment runs a forward dataflow pass over the label-
// resolved control-flow graph: the set of definitely assigned names at a
// statement is the intersection over its predecessors. Reads of any name
// outside that set are faults. Unreachable statements are skipped.
func (v *validator) checkDefiniteAssignment(body []Stmt) error {
	n := len(body)
	if n == 0 {
		return nil
	}

	entry := make(map[string]bool, len(v.fn.Params))
	for _, p := range v.fn.Params {
		entry[p.Name] = true
	}

	in := make([]map[string]bool, n)
	in[0] = entry

	work := []int{0}
	for len(work) > 0 {
		idx := work[len(work)-1]
		work = work[:len(work)-1]

		state := in[idx]
		if err := v.checkReads(body[idx], state); err != nil {
			return err
		}

		out := state
		if a, ok := body[idx].(*Assign); ok {
			out = copySet(state)
			out[a.Target] = true
		}

		for _, succ := range v.successors(body, idx) {
			if succ >= n {
				continue
			}
			if in[succ] == nil {
				in[succ] = copySet(out)
				work = append(work, succ)
			} else if shrinkTo(in[succ], out) {
				work = append(work, succ)
			}
		}
	}
	return nil
}

func (v *validator) successors(body []Stmt, idx int) []int {
	switch stmt := body[idx].(type) {
	case *Goto:
		return []int{v.labels[stmt.Target]}
	case *Branch:
		return []int{v.labels[stmt.True], v.labels[stmt.False]}
	case *Return, *Throw, *RaiseContract, *Trap:
		return nil
	default:
		return []int{idx + 1}
	}
}

func (v *validator) checkReads(s Stmt, assigned map[string]bool) error {
	check := func(e Expr) error {
		for _, name := range readNames(e) {
			if !assigned[name] {
				return v.fault("variable %s read before assignment on some path", name)
			}
		}
		return nil
	}

	switch stmt := s.(type) {
	case *Assign:
		return check(stmt.Value)
	case *Branch:
		return check(stmt.Cond)
	case *Return:
		if stmt.Value != nil {
			return check(stmt.Value)
		}
	case *Throw:
		return check(stmt.Value)
	}
	return nil
}

func readNames(e Expr) []string {
	switch x := e.(type) {
	case *Literal:
		return nil
	case *VarRef:
		return []string{x.Name}
	case *BinaryOp:
		return append(readNames(x.Left), readNames(x.Right)...)
	case *UnaryOp:
		return readNames(x.Operand)
	case *Call:
		var names []string
		for _, a := range x.Args {
			names = append(names, readNames(a)...)
		}
		return names
	case *Conversion:
		return readNames(x.Operand)
	default:
		return nil
	}
}

func copySet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

// shrinkTo intersects dst with src in place, reporting whether dst lost
// any member.
func shrinkTo(dst, src map[string]bool) bool {
	changed := false
	for k := range dst {
		if !src[k] {
			delete(dst, k)
			changed = true
		}
	}
	return changed
}
