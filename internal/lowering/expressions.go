package lowering

import (
	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/config"
	"github.com/juanmicrosoft/opal-sub016/internal/nf"
	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

// lowerExpr lowers e into a normal-form expression. The result may be
// compound; callers that need an operand go through atomic instead. Any
// side effects of subexpressions are already emitted, left to right, by
// the time lowerExpr returns.
func (l *lowerer) lowerExpr(e ast.Expression) nf.Expr {
	switch x := e.(type) {
	case *ast.IntLit:
		return nf.IntLit(x.Value)
	case *ast.FloatLit:
		return nf.FloatLit(x.Value)
	case *ast.BoolLit:
		return nf.BoolLit(x.Value)
	case *ast.StringLit:
		return nf.StringLit(x.Value)
	case *ast.UnitLit:
		return &nf.Literal{Kind: nf.LitUnit, Typ: typesystem.Unit}
	case *ast.Identifier:
		b := l.lookupVar(x.Name)
		return &nf.VarRef{Name: b.slot, Typ: b.typ}
	case *ast.BinaryExpr:
		return l.lowerBinary(x)
	case *ast.UnaryExpr:
		operand := l.atomic(x.Operand)
		return &nf.UnaryOp{Op: x.Op, Operand: operand, Typ: l.res.TypeOf(e)}
	case *ast.CallExpr:
		return l.lowerCall(x)
	case *ast.SomeExpr:
		v := l.atomic(x.Value)
		return &nf.Call{Callee: "option_some", Args: []nf.Expr{v}, Typ: l.res.TypeOf(e)}
	case *ast.NoneExpr:
		return &nf.Literal{Kind: nf.LitNone, Typ: l.res.TypeOf(e)}
	case *ast.OkExpr:
		v := l.atomic(x.Value)
		return &nf.Call{Callee: "result_ok", Args: []nf.Expr{v}, Typ: l.res.TypeOf(e)}
	case *ast.ErrExpr:
		v := l.atomic(x.Value)
		return &nf.Call{Callee: "result_err", Args: []nf.Expr{v}, Typ: l.res.TypeOf(e)}
	case *ast.RecordLit:
		return l.lowerRecordLit(x)
	case *ast.FieldAccess:
		target := l.atomic(x.Target)
		return &nf.Call{
			Callee: "record_get",
			Args:   []nf.Expr{target, nf.StringLit(x.Field)},
			Typ:    l.res.TypeOf(e),
		}
	case *ast.IndexExpr:
		return l.lowerIndex(x)
	case *ast.MatchExpr:
		return l.lowerMatchExpr(x)
	case *ast.TernaryExpr:
		return l.lowerTernary(x)
	case *ast.CoalesceExpr:
		return l.lowerCoalesce(x)
	case *ast.CastExpr:
		return l.lowerCast(x)
	default:
		panic("lowering: unknown expression kind")
	}
}

func isArithOp(op string) bool {
	switch op {
	case "+", "-", "*", "/", "%":
		return true
	}
	return false
}

func isCompareOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func (l *lowerer) lowerBinary(x *ast.BinaryExpr) nf.Expr {
	if x.Op == "&&" || x.Op == "||" {
		return l.lowerShortCircuit(x)
	}

	lt := typesystem.Resolve(l.res.TypeOf(x.Left))
	rt := typesystem.Resolve(l.res.TypeOf(x.Right))
	resType := l.res.TypeOf(x)

	// Left operand is fully materialized before the right one starts.
	left := l.atomic(x.Left)
	right := l.atomic(x.Right)

	// Mixed int/float operands widen the int side explicitly.
	if isArithOp(x.Op) || isCompareOp(x.Op) {
		if needsWiden(lt, rt) {
			left = l.widenAtomic(left)
		}
		if needsWiden(rt, lt) {
			right = l.widenAtomic(right)
		}
	}

	checked := isArithOp(x.Op) && typesystem.IsInt(resType) && l.checkedInt()
	return &nf.BinaryOp{Op: x.Op, Left: left, Right: right, Checked: checked, Typ: resType}
}

// lowerShortCircuit lowers && and || into a branch over a boolean result
// slot. The right operand's instructions are emitted only inside the
// guarded region, so they run exactly when the surface semantics say.
func (l *lowerer) lowerShortCircuit(x *ast.BinaryExpr) nf.Expr {
	slot := l.newTemp(typesystem.Bool)
	l.emit(&nf.Assign{Target: slot, Value: l.lowerExpr(x.Left)})

	rhsL := l.newLabel("sc_rhs")
	endL := l.newLabel("sc_end")
	cond := &nf.VarRef{Name: slot, Typ: typesystem.Bool}
	if x.Op == "&&" {
		l.emit(&nf.Branch{Cond: cond, True: rhsL, False: endL})
	} else {
		l.emit(&nf.Branch{Cond: cond, True: endL, False: rhsL})
	}
	l.emit(&nf.Label{Name: rhsL})
	l.emit(&nf.Assign{Target: slot, Value: l.lowerExpr(x.Right)})
	l.emit(&nf.Label{Name: endL})

	return &nf.VarRef{Name: slot, Typ: typesystem.Bool}
}

// paramTypesFor returns the declared parameter types of a named callee,
// whether it is a registered function or a union variant constructor.
func (l *lowerer) paramTypesFor(callee string) []typesystem.Type {
	if sig, ok := l.res.Env.LookupFunction(callee); ok {
		return sig.Params
	}
	for _, t := range l.res.Env.Types() {
		u, ok := t.(*typesystem.Union)
		if !ok {
			continue
		}
		if v, ok := u.Variant(callee); ok {
			params := make([]typesystem.Type, len(v.Fields))
			for i, f := range v.Fields {
				params[i] = f.Type
			}
			return params
		}
	}
	return nil
}

// lowerCall materializes every argument, in source order, before the
// call itself. Function calls and variant constructions share the named
// call form; the backend resolves the callee.
func (l *lowerer) lowerCall(x *ast.CallExpr) nf.Expr {
	params := l.paramTypesFor(x.Callee)
	args := make([]nf.Expr, len(x.Args))
	for i, a := range x.Args {
		if i < len(params) && needsWiden(l.res.TypeOf(a), params[i]) {
			args[i] = l.atomicAs(a, params[i])
		} else {
			args[i] = l.atomic(a)
		}
	}
	return &nf.Call{Callee: x.Callee, Args: args, Typ: l.res.TypeOf(x)}
}

// lowerRecordLit evaluates supplied fields in source order, fills
// omitted fields from their declared defaults, and builds the record
// with arguments in declaration order.
func (l *lowerer) lowerRecordLit(x *ast.RecordLit) nf.Expr {
	recType := typesystem.Resolve(l.res.TypeOf(x))
	rec, ok := recType.(*typesystem.Record)
	if !ok {
		panic("lowering: record literal without record type")
	}

	supplied := make(map[string]nf.Expr, len(x.Fields))
	for _, fi := range x.Fields {
		want := typesystem.Type(typesystem.ErrType)
		if ft, ok := rec.Field(fi.Name); ok {
			want = ft.Type
		}
		supplied[fi.Name] = l.atomicAs(fi.Value, want)
	}

	args := make([]nf.Expr, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		if v, ok := supplied[f.Name]; ok {
			args = append(args, v)
			continue
		}
		def := l.fieldDefault(x.TypeName, f.Name)
		if def == nil {
			panic("lowering: record literal missing field without default")
		}
		args = append(args, l.atomicAs(def, f.Type))
	}
	return &nf.Call{Callee: "make_" + rec.Name, Args: args, Typ: rec}
}

func (l *lowerer) fieldDefault(typeName, field string) ast.Expression {
	rd, ok := l.records[typeName]
	if !ok {
		return nil
	}
	for _, fd := range rd.Fields {
		if fd.Name == field {
			return fd.Default
		}
	}
	return nil
}

func (l *lowerer) lowerIndex(x *ast.IndexExpr) nf.Expr {
	target := l.atomic(x.Target)
	index := l.atomic(x.Index)

	callee := "list_get"
	if gi, ok := typesystem.Resolve(l.res.TypeOf(x.Target)).(*typesystem.GenericInstance); ok && gi.Base == config.MapTypeName {
		callee = "map_get"
	}
	return &nf.Call{Callee: callee, Args: []nf.Expr{target, index}, Typ: l.res.TypeOf(x)}
}

// lowerTernary branches into one of two assignments of a shared result
// slot; only the taken arm's instructions execute.
func (l *lowerer) lowerTernary(x *ast.TernaryExpr) nf.Expr {
	resType := l.res.TypeOf(x)
	slot := l.newTemp(resType)

	cond := l.atomic(x.Cond)
	thenL := l.newLabel("tern_then")
	elseL := l.newLabel("tern_else")
	endL := l.newLabel("tern_end")

	l.emit(&nf.Branch{Cond: cond, True: thenL, False: elseL})
	l.emit(&nf.Label{Name: thenL})
	l.assignTo(slot, resType, x.Then)
	l.emit(&nf.Goto{Target: endL})
	l.emit(&nf.Label{Name: elseL})
	l.assignTo(slot, resType, x.Else)
	l.emit(&nf.Label{Name: endL})

	return &nf.VarRef{Name: slot, Typ: resType}
}

// lowerCoalesce unwraps the left Option when present; the fallback is
// lowered only inside the none edge.
func (l *lowerer) lowerCoalesce(x *ast.CoalesceExpr) nf.Expr {
	resType := l.res.TypeOf(x)
	slot := l.newTemp(resType)

	left := l.atomic(x.Left)
	has := l.newTemp(typesystem.Bool)
	l.emit(&nf.Assign{Target: has, Value: &nf.Call{Callee: "option_is_some", Args: []nf.Expr{left}, Typ: typesystem.Bool}})

	someL := l.newLabel("coalesce_some")
	noneL := l.newLabel("coalesce_none")
	endL := l.newLabel("coalesce_end")

	l.emit(&nf.Branch{Cond: &nf.VarRef{Name: has, Typ: typesystem.Bool}, True: someL, False: noneL})
	l.emit(&nf.Label{Name: someL})
	l.emit(&nf.Assign{Target: slot, Value: &nf.Call{Callee: "option_value", Args: []nf.Expr{left}, Typ: resType}})
	l.emit(&nf.Goto{Target: endL})
	l.emit(&nf.Label{Name: noneL})
	l.assignTo(slot, resType, x.Right)
	l.emit(&nf.Label{Name: endL})

	return &nf.VarRef{Name: slot, Typ: resType}
}

// lowerCast emits an explicit Conversion node; a cast to the value's own
// type vanishes.
func (l *lowerer) lowerCast(x *ast.CastExpr) nf.Expr {
	from := typesystem.Resolve(l.res.TypeOf(x.Value))
	to := l.res.TypeOf(x)
	v := l.atomic(x.Value)
	if typesystem.Equal(from, to) {
		return v
	}
	return &nf.Conversion{Operand: v, From: from, To: to}
}

// lowerMatchExpr reuses the match-chain lowering; every arm assigns the
// shared result slot before jumping to the join point.
func (l *lowerer) lowerMatchExpr(x *ast.MatchExpr) nf.Expr {
	resType := l.res.TypeOf(x)
	slot := l.newTemp(resType)

	cases := make([]loweredCase, len(x.Cases))
	for i, mc := range x.Cases {
		value := mc.Value
		cases[i] = loweredCase{
			pattern: mc.Pattern,
			guard:   mc.Guard,
			emitBody: func() {
				l.assignTo(slot, resType, value)
			},
		}
	}
	l.lowerMatch(x.Scrutinee, cases)

	return &nf.VarRef{Name: slot, Typ: resType}
}
