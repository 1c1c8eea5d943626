// Package lowering translates a checked module into normal form: every
// implicit behavior of the surface language (evaluation order, short
// circuits, structured control flow, contracts, numeric coercions,
// overflow policy) becomes an explicit instruction. Lowering assumes a
// clean checker run; a malformed input is a caller bug, not a
// diagnostic.
package lowering

import (
	"fmt"

	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/checker"
	"github.com/juanmicrosoft/opal-sub016/internal/config"
	"github.com/juanmicrosoft/opal-sub016/internal/nf"
	"github.com/juanmicrosoft/opal-sub016/internal/symbols"
	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

// Lower translates mod into normal form under opts. Every emitted
// function is validated before it is returned; a validation failure is
// an internal fault and aborts the whole run.
func Lower(mod *ast.Module, res *checker.Result, opts Options) (*nf.Module, error) {
	out := &nf.Module{Name: mod.Name}

	records := make(map[string]*ast.RecordDecl, len(mod.Records))
	for _, rd := range mod.Records {
		records[rd.Name] = rd
	}

	for _, fd := range mod.Functions {
		sig, ok := res.Env.LookupFunction(fd.Name)
		if !ok {
			return nil, &nf.InternalError{Function: fd.Name, Detail: "function missing from checked environment"}
		}
		l := &lowerer{
			res:     res,
			opts:    opts,
			records: records,
			sig:     sig,
			decl:    fd,
			slots:   make(map[string]typesystem.Type),
			seen:    make(map[string]int),
		}
		fn, err := l.lowerFunction()
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, fn)
	}
	return out, nil
}

// loopFrame tracks the jump targets of the innermost enclosing loop.
type loopFrame struct {
	continueTo string
	breakTo    string
}

// varBinding maps a source variable name onto its normal-form slot.
type varBinding struct {
	slot string
	typ  typesystem.Type
}

// lowerer lowers one function. Temporaries get one assignment site each;
// the only slots written from more than one site are branch-join result
// slots and loop counters.
type lowerer struct {
	res     *checker.Result
	opts    Options
	records map[string]*ast.RecordDecl

	sig  *symbols.Signature
	decl *ast.FunctionDecl

	out       []nf.Stmt
	temps     int
	labels    int
	slots     map[string]typesystem.Type
	scopes    []map[string]varBinding
	seen      map[string]int
	loops     []loopFrame
	postLabel string
}

func (l *lowerer) emit(s nf.Stmt) {
	l.out = append(l.out, s)
}

func (l *lowerer) newTemp(t typesystem.Type) string {
	l.temps++
	name := fmt.Sprintf("_t%d", l.temps)
	l.slots[name] = t
	return name
}

func (l *lowerer) newLabel(prefix string) string {
	l.labels++
	return fmt.Sprintf("%s%d", prefix, l.labels)
}

func (l *lowerer) pushScope() {
	l.scopes = append(l.scopes, map[string]varBinding{})
}

func (l *lowerer) popScope() {
	l.scopes = l.scopes[:len(l.scopes)-1]
}

// define mints the slot for a source binding in the current scope. A
// binding that shadows an earlier one of the same name gets a numbered
// slot, so the outer variable's slot is never written through the inner
// name.
func (l *lowerer) define(name string, t typesystem.Type) string {
	n := l.seen[name]
	l.seen[name] = n + 1
	slot := name
	if n > 0 {
		slot = fmt.Sprintf("%s_%d", name, n)
	}
	l.slots[slot] = t
	l.scopes[len(l.scopes)-1][name] = varBinding{slot: slot, typ: t}
	return slot
}

// lookupVar resolves a source name to its innermost visible binding.
func (l *lowerer) lookupVar(name string) varBinding {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if b, ok := l.scopes[i][name]; ok {
			return b
		}
	}
	return varBinding{slot: name, typ: typesystem.ErrType}
}

func (l *lowerer) lowerFunction() (*nf.Function, error) {
	l.pushScope()
	params := make([]nf.Param, len(l.sig.Params))
	for i, pt := range l.sig.Params {
		params[i] = nf.Param{Name: l.define(l.sig.ParamNames[i], pt), Typ: pt}
	}
	ret := l.sig.Return
	isVoid := ret == typesystem.Void

	// Preconditions run before any body statement, in declaration order.
	if l.opts.Contracts != ContractsNone {
		for _, cl := range l.decl.Requires {
			l.lowerContract(cl, nf.Precondition)
		}
	}

	// With postconditions active, every return routes through a single
	// postcondition block that sees the result binding.
	needPost := l.opts.Contracts == ContractsAll && len(l.decl.Ensures) > 0
	if needPost {
		l.postLabel = l.newLabel("ensures")
		l.define(config.ResultBindingName, ret)
	}

	for _, stmt := range l.decl.Body {
		l.lowerStmt(stmt)
	}

	switch {
	case needPost:
		if isVoid {
			l.emit(&nf.Goto{Target: l.postLabel})
		} else {
			// A value-returning body must not fall off its end.
			l.emit(&nf.Trap{Reason: "function end without return"})
		}
		l.emit(&nf.Label{Name: l.postLabel})
		if isVoid {
			l.emit(&nf.Assign{Target: config.ResultBindingName, Value: &nf.Literal{Kind: nf.LitUnit, Typ: typesystem.Unit}})
		}
		for _, cl := range l.decl.Ensures {
			l.lowerContract(cl, nf.Postcondition)
		}
		if isVoid {
			l.emit(&nf.Return{})
		} else {
			l.emit(&nf.Return{Value: &nf.VarRef{Name: config.ResultBindingName, Typ: ret}})
		}
	case isVoid:
		l.emit(&nf.Return{})
	default:
		// Unreachable when every path returns; the validator skips it.
		l.emit(&nf.Trap{Reason: "function end without return"})
	}

	fn := &nf.Function{Name: l.sig.Name, Params: params, Result: ret, Body: l.out}
	if err := nf.ValidateFunction(fn); err != nil {
		return nil, err
	}
	return fn, nil
}

// lowerContract emits the check for one requires/ensures clause: branch
// on the condition, raise a contract signal on the false edge. The
// signal carries the clause's literal source text.
func (l *lowerer) lowerContract(cl *ast.ContractClause, kind nf.ContractKind) {
	cond := l.atomic(cl.Cond)
	okL := l.newLabel("contract_ok")
	failL := l.newLabel("contract_fail")
	l.emit(&nf.Branch{Cond: cond, True: okL, False: failL})
	l.emit(&nf.Label{Name: failL})
	l.emit(&nf.RaiseContract{
		Kind:      kind,
		Function:  l.sig.Name,
		Message:   cl.Message,
		Condition: cl.RawText,
	})
	l.emit(&nf.Label{Name: okL})
}

// atomic lowers e and guarantees the returned expression is a literal or
// variable reference, materializing a temporary when needed.
func (l *lowerer) atomic(e ast.Expression) nf.Expr {
	return l.materialize(l.lowerExpr(e))
}

func (l *lowerer) materialize(v nf.Expr) nf.Expr {
	if nf.IsAtomic(v) {
		return v
	}
	t := l.newTemp(v.Type())
	l.emit(&nf.Assign{Target: t, Value: v})
	return &nf.VarRef{Name: t, Typ: v.Type()}
}

// needsWiden reports whether assigning a got-typed value into a
// want-typed slot requires the int -> float conversion the checker
// allowed implicitly.
func needsWiden(got, want typesystem.Type) bool {
	return typesystem.IsInt(got) && typesystem.IsFloat(want)
}

// widenAtomic materializes an int -> float conversion of an atomic
// operand into a fresh temporary.
func (l *lowerer) widenAtomic(v nf.Expr) nf.Expr {
	t := l.newTemp(typesystem.Float)
	l.emit(&nf.Assign{Target: t, Value: &nf.Conversion{Operand: v, From: typesystem.Int, To: typesystem.Float}})
	return &nf.VarRef{Name: t, Typ: typesystem.Float}
}

// atomicAs lowers e to an atomic value of the wanted type, inserting the
// widening conversion when the checker accepted an int where a float is
// stored.
func (l *lowerer) atomicAs(e ast.Expression, want typesystem.Type) nf.Expr {
	v := l.atomic(e)
	if needsWiden(l.res.TypeOf(e), want) {
		return l.widenAtomic(v)
	}
	return v
}

// assignTo lowers e directly into the named slot. The value may be
// compound; only the widening conversion forces atomization first.
func (l *lowerer) assignTo(target string, want typesystem.Type, e ast.Expression) {
	if needsWiden(l.res.TypeOf(e), want) {
		v := l.atomic(e)
		l.emit(&nf.Assign{Target: target, Value: &nf.Conversion{Operand: v, From: typesystem.Int, To: typesystem.Float}})
		return
	}
	l.emit(&nf.Assign{Target: target, Value: l.lowerExpr(e)})
}

// checkedInt reports whether integer arithmetic must trap on overflow.
func (l *lowerer) checkedInt() bool {
	return l.opts.Overflow == OverflowTrap
}
