package lowering

import (
	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/nf"
	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

// loweredCase pairs a case's pattern and guard with a callback that
// emits its body into the current statement stream.
type loweredCase struct {
	pattern  ast.Pattern
	guard    ast.Expression
	emitBody func()
}

// lowerMatch emits a sequential test chain: the scrutinee is
// materialized once, each case tests in declaration order, the first hit
// wins, and a terminal trap backstops exhaustiveness the checker already
// proved. A case's payload extraction and body run only inside its own
// guarded region.
func (l *lowerer) lowerMatch(scrutinee ast.Expression, cases []loweredCase) {
	sv := l.atomic(scrutinee)
	st := typesystem.Resolve(l.res.TypeOf(scrutinee))

	endL := l.newLabel("match_end")
	failL := l.newLabel("match_fail")
	caseLabels := make([]string, len(cases))
	for i := range cases {
		caseLabels[i] = l.newLabel("match_case")
	}

	for i, cs := range cases {
		l.emit(&nf.Label{Name: caseLabels[i]})
		failTo := failL
		if i+1 < len(cases) {
			failTo = caseLabels[i+1]
		}
		// Pattern bindings scope over the guard and the body of their
		// own case only.
		l.pushScope()
		l.lowerPatternTest(cs.pattern, sv, st, failTo)
		if cs.guard != nil {
			g := l.atomic(cs.guard)
			okL := l.newLabel("guard_ok")
			l.emit(&nf.Branch{Cond: g, True: okL, False: failTo})
			l.emit(&nf.Label{Name: okL})
		}
		cs.emitBody()
		l.popScope()
		l.emit(&nf.Goto{Target: endL})
	}

	l.emit(&nf.Label{Name: failL})
	l.emit(&nf.Trap{Reason: "unreachable match arm"})
	l.emit(&nf.Label{Name: endL})
}

// branchTest branches to failTo unless cond holds; the match edge falls
// through.
func (l *lowerer) branchTest(cond nf.Expr, failTo string) {
	okL := l.newLabel("pat_ok")
	l.emit(&nf.Branch{Cond: cond, True: okL, False: failTo})
	l.emit(&nf.Label{Name: okL})
}

// lowerPatternTest emits the test for one pattern over an atomic
// scrutinee. Control falls through on a match, with the pattern's
// bindings assigned; a mismatch jumps to failTo.
func (l *lowerer) lowerPatternTest(p ast.Pattern, sv nf.Expr, st typesystem.Type, failTo string) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		// Matches anything, binds nothing.
	case *ast.VariablePattern:
		l.emit(&nf.Assign{Target: l.define(pat.Name, st), Value: sv})
	case *ast.LiteralPattern:
		lit := l.lowerExpr(pat.Lit)
		t := l.newTemp(typesystem.Bool)
		l.emit(&nf.Assign{Target: t, Value: &nf.BinaryOp{Op: "==", Left: sv, Right: lit, Typ: typesystem.Bool}})
		l.branchTest(&nf.VarRef{Name: t, Typ: typesystem.Bool}, failTo)
	case *ast.SomePattern:
		inner := optionInner(st)
		t := l.newTemp(typesystem.Bool)
		l.emit(&nf.Assign{Target: t, Value: &nf.Call{Callee: "option_is_some", Args: []nf.Expr{sv}, Typ: typesystem.Bool}})
		l.branchTest(&nf.VarRef{Name: t, Typ: typesystem.Bool}, failTo)
		l.lowerSubPattern(pat.Inner, "option_value", sv, inner, failTo)
	case *ast.NonePattern:
		t := l.newTemp(typesystem.Bool)
		l.emit(&nf.Assign{Target: t, Value: &nf.Call{Callee: "option_is_none", Args: []nf.Expr{sv}, Typ: typesystem.Bool}})
		l.branchTest(&nf.VarRef{Name: t, Typ: typesystem.Bool}, failTo)
	case *ast.OkPattern:
		okT, _ := resultSides(st)
		t := l.newTemp(typesystem.Bool)
		l.emit(&nf.Assign{Target: t, Value: &nf.Call{Callee: "result_is_ok", Args: []nf.Expr{sv}, Typ: typesystem.Bool}})
		l.branchTest(&nf.VarRef{Name: t, Typ: typesystem.Bool}, failTo)
		l.lowerSubPattern(pat.Inner, "result_value", sv, okT, failTo)
	case *ast.ErrPattern:
		_, errT := resultSides(st)
		t := l.newTemp(typesystem.Bool)
		l.emit(&nf.Assign{Target: t, Value: &nf.Call{Callee: "result_is_err", Args: []nf.Expr{sv}, Typ: typesystem.Bool}})
		l.branchTest(&nf.VarRef{Name: t, Typ: typesystem.Bool}, failTo)
		l.lowerSubPattern(pat.Inner, "result_error", sv, errT, failTo)
	case *ast.VariantPattern:
		l.lowerVariantTest(pat, sv, st, failTo)
	default:
		panic("lowering: unknown pattern kind")
	}
}

// lowerSubPattern extracts a wrapped payload via the given builtin and
// recurses into the inner pattern. A wildcard skips the extraction, so
// no payload temporary appears for cases that ignore it.
func (l *lowerer) lowerSubPattern(inner ast.Pattern, extractor string, sv nf.Expr, innerT typesystem.Type, failTo string) {
	if inner == nil {
		return
	}
	if _, ok := inner.(*ast.WildcardPattern); ok {
		return
	}
	t := l.newTemp(innerT)
	l.emit(&nf.Assign{Target: t, Value: &nf.Call{Callee: extractor, Args: []nf.Expr{sv}, Typ: innerT}})
	l.lowerPatternTest(inner, &nf.VarRef{Name: t, Typ: innerT}, innerT, failTo)
}

func (l *lowerer) lowerVariantTest(pat *ast.VariantPattern, sv nf.Expr, st typesystem.Type, failTo string) {
	union, ok := st.(*typesystem.Union)
	if !ok {
		panic("lowering: variant pattern on non-union scrutinee")
	}
	variant, ok := union.Variant(pat.Name)
	if !ok {
		panic("lowering: pattern names unknown variant " + pat.Name)
	}

	t := l.newTemp(typesystem.Bool)
	l.emit(&nf.Assign{Target: t, Value: &nf.Call{
		Callee: "variant_is",
		Args:   []nf.Expr{sv, nf.StringLit(pat.Name)},
		Typ:    typesystem.Bool,
	}})
	l.branchTest(&nf.VarRef{Name: t, Typ: typesystem.Bool}, failTo)

	for i, binding := range pat.Bindings {
		if binding == "_" || i >= len(variant.Fields) {
			continue
		}
		field := variant.Fields[i]
		l.emit(&nf.Assign{Target: l.define(binding, field.Type), Value: &nf.Call{
			Callee: "variant_field",
			Args:   []nf.Expr{sv, nf.StringLit(field.Name)},
			Typ:    field.Type,
		}})
	}
}

func optionInner(t typesystem.Type) typesystem.Type {
	if o, ok := typesystem.Resolve(t).(*typesystem.Option); ok {
		return typesystem.Resolve(o.Inner)
	}
	return typesystem.ErrType
}

func resultSides(t typesystem.Type) (okT, errT typesystem.Type) {
	if r, ok := typesystem.Resolve(t).(*typesystem.Result); ok {
		return typesystem.Resolve(r.Ok), typesystem.Resolve(r.Err)
	}
	return typesystem.ErrType, typesystem.ErrType
}
