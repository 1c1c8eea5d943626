package checker

import (
	"fmt"

	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/config"
	"github.com/juanmicrosoft/opal-sub016/internal/diagnostics"
	"github.com/juanmicrosoft/opal-sub016/internal/symbols"
	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

func isComparisonOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func isLogicalOp(op string) bool {
	return op == "&&" || op == "||"
}

func isArithmeticOp(op string) bool {
	switch op {
	case "+", "-", "*", "/", "%":
		return true
	}
	return false
}

// inferExpr computes a best-effort type for e, recording it so the
// lowering engine can read it back. Mistakes yield the error type plus a
// diagnostic; nothing throws for user-level errors.
func (c *Checker) inferExpr(e ast.Expression) typesystem.Type {
	t := c.inferExprUncached(e)
	if t == nil {
		panic(fmt.Sprintf("checker: nil type inferred for %T", e))
	}
	c.exprTypes[e] = t
	return t
}

func (c *Checker) inferExprUncached(e ast.Expression) typesystem.Type {
	switch expr := e.(type) {
	case *ast.IntLit:
		return typesystem.Int
	case *ast.FloatLit:
		return typesystem.Float
	case *ast.BoolLit:
		return typesystem.Bool
	case *ast.StringLit:
		return typesystem.String
	case *ast.UnitLit:
		return typesystem.Unit

	case *ast.Identifier:
		if t, ok := c.env.LookupVariable(expr.Name); ok {
			return t
		}
		c.report(diagnostics.ErrS001, expr, "undefined reference: "+expr.Name)
		return typesystem.ErrType

	case *ast.BinaryExpr:
		return c.inferBinary(expr)

	case *ast.UnaryExpr:
		return c.inferUnary(expr)

	case *ast.CallExpr:
		return c.inferCall(expr)

	case *ast.SomeExpr:
		return &typesystem.Option{Inner: c.inferExpr(expr.Value)}
	case *ast.NoneExpr:
		// The element type is a fresh variable until context constrains it.
		return &typesystem.Option{Inner: c.alloc.Fresh()}
	case *ast.OkExpr:
		return &typesystem.Result{Ok: c.inferExpr(expr.Value), Err: c.alloc.Fresh()}
	case *ast.ErrExpr:
		return &typesystem.Result{Ok: c.alloc.Fresh(), Err: c.inferExpr(expr.Value)}

	case *ast.RecordLit:
		return c.inferRecordLit(expr)

	case *ast.FieldAccess:
		return c.inferFieldAccess(expr)

	case *ast.IndexExpr:
		return c.inferIndex(expr)

	case *ast.MatchExpr:
		return c.inferMatchExpr(expr)

	case *ast.TernaryExpr:
		c.requireBoolCond(expr, expr.Cond)
		thenT := c.inferExpr(expr.Then)
		elseT := c.inferExpr(expr.Else)
		return c.unifyBranches(expr, thenT, elseT)

	case *ast.CoalesceExpr:
		return c.inferCoalesce(expr)

	case *ast.CastExpr:
		return c.inferCast(expr)

	default:
		panic(fmt.Sprintf("checker: unknown expression kind %T", e))
	}
}

func (c *Checker) inferBinary(expr *ast.BinaryExpr) typesystem.Type {
	left := c.inferExpr(expr.Left)
	right := c.inferExpr(expr.Right)

	switch {
	case isComparisonOp(expr.Op):
		// Comparisons always yield boolean.
		return typesystem.Bool

	case isLogicalOp(expr.Op):
		if !typesystem.IsBool(left) && !typesystem.IsError(left) {
			c.report(diagnostics.ErrS003, expr,
				"type mismatch: left operand of "+expr.Op+" must be bool, got "+left.String())
		}
		if !typesystem.IsBool(right) && !typesystem.IsError(right) {
			c.report(diagnostics.ErrS003, expr,
				"type mismatch: right operand of "+expr.Op+" must be bool, got "+right.String())
		}
		return typesystem.Bool

	case isArithmeticOp(expr.Op):
		if typesystem.IsNumeric(left) && typesystem.IsNumeric(right) {
			if typesystem.IsFloat(left) || typesystem.IsFloat(right) {
				return typesystem.Float
			}
			return typesystem.Int
		}
		// Suppress the diagnostic when either operand already failed, to
		// avoid cascades.
		if !typesystem.IsError(left) && !typesystem.IsError(right) {
			c.report(diagnostics.ErrS003, expr, fmt.Sprintf(
				"type mismatch: operator %s needs numeric operands, got %s and %s",
				expr.Op, left, right))
		}
		return typesystem.ErrType

	default:
		panic("checker: unknown binary operator " + expr.Op)
	}
}

func (c *Checker) inferUnary(expr *ast.UnaryExpr) typesystem.Type {
	operand := c.inferExpr(expr.Operand)

	switch expr.Op {
	case "-":
		if typesystem.IsNumeric(operand) {
			return typesystem.Resolve(operand)
		}
		if !typesystem.IsError(operand) {
			c.report(diagnostics.ErrS003, expr,
				"type mismatch: operator - needs a numeric operand, got "+operand.String())
		}
		return typesystem.ErrType
	case "!":
		if !typesystem.IsBool(operand) && !typesystem.IsError(operand) {
			c.report(diagnostics.ErrS003, expr,
				"type mismatch: operator ! needs a bool operand, got "+operand.String())
		}
		return typesystem.Bool
	default:
		panic("checker: unknown unary operator " + expr.Op)
	}
}

// inferCall resolves the callee as a registered function or a union
// variant constructor. Generic signatures are instantiated with fresh
// type variables per call site.
func (c *Checker) inferCall(expr *ast.CallExpr) typesystem.Type {
	if sig, ok := c.env.LookupFunction(expr.Callee); ok {
		return c.inferFunctionCall(expr, sig)
	}
	if union, variant, ok := c.lookupVariantCtor(expr.Callee); ok {
		return c.inferVariantCall(expr, union, variant)
	}

	for _, a := range expr.Args {
		c.inferExpr(a)
	}
	c.report(diagnostics.ErrS001, expr, "undefined reference: function "+expr.Callee)
	return typesystem.ErrType
}

func (c *Checker) inferFunctionCall(expr *ast.CallExpr, sig *symbols.Signature) typesystem.Type {
	// Instantiate the signature's type parameters with fresh variables so
	// distinct call sites never interfere.
	subst := make(typesystem.Subst)
	for _, tp := range sig.TypeParams {
		subst[tp.Name] = c.alloc.Fresh()
	}

	if len(expr.Args) != len(sig.Params) {
		c.report(diagnostics.ErrS004, expr, fmt.Sprintf(
			"function %s takes %d arguments, got %d",
			sig.Name, len(sig.Params), len(expr.Args)))
		for _, a := range expr.Args {
			c.inferExpr(a)
		}
		return typesystem.Substitute(sig.Return, subst)
	}

	for i, a := range expr.Args {
		want := typesystem.Substitute(sig.Params[i], subst)
		got := c.inferExpr(a)
		if !typesystem.Assignable(want, got) {
			c.report(diagnostics.ErrS003, a, fmt.Sprintf(
				"type mismatch: argument %d of %s expects %s, got %s",
				i+1, sig.Name, want, got))
		}
	}
	return typesystem.Substitute(sig.Return, subst)
}

// lookupVariantCtor finds the union declaring a variant constructor name.
func (c *Checker) lookupVariantCtor(name string) (*typesystem.Union, typesystem.UnionVariant, bool) {
	for _, t := range c.env.Types() {
		if u, ok := t.(*typesystem.Union); ok {
			if v, ok := u.Variant(name); ok {
				return u, v, true
			}
		}
	}
	return nil, typesystem.UnionVariant{}, false
}

func (c *Checker) inferVariantCall(expr *ast.CallExpr, union *typesystem.Union, variant typesystem.UnionVariant) typesystem.Type {
	if len(expr.Args) != len(variant.Fields) {
		c.report(diagnostics.ErrS004, expr, fmt.Sprintf(
			"variant %s.%s takes %d arguments, got %d",
			union.Name, variant.Name, len(variant.Fields), len(expr.Args)))
		for _, a := range expr.Args {
			c.inferExpr(a)
		}
		return union
	}

	for i, a := range expr.Args {
		got := c.inferExpr(a)
		want := variant.Fields[i].Type
		if !typesystem.Assignable(want, got) {
			c.report(diagnostics.ErrS003, a, fmt.Sprintf(
				"type mismatch: field %s of %s.%s expects %s, got %s",
				variant.Fields[i].Name, union.Name, variant.Name, want, got))
		}
	}
	return union
}

// inferRecordLit resolves the named record type, then checks each supplied
// field name exists and its value is assignable to the declared type.
func (c *Checker) inferRecordLit(expr *ast.RecordLit) typesystem.Type {
	t, ok := c.env.LookupType(expr.TypeName)
	if !ok {
		c.report(diagnostics.ErrS001, expr, "undefined reference: type "+expr.TypeName)
		for _, f := range expr.Fields {
			c.inferExpr(f.Value)
		}
		return typesystem.ErrType
	}
	rec, ok := typesystem.Resolve(t).(*typesystem.Record)
	if !ok {
		c.report(diagnostics.ErrS003, expr,
			"type mismatch: "+expr.TypeName+" is not a record type")
		for _, f := range expr.Fields {
			c.inferExpr(f.Value)
		}
		return typesystem.ErrType
	}

	supplied := make(map[string]bool, len(expr.Fields))
	for _, f := range expr.Fields {
		supplied[f.Name] = true
		got := c.inferExpr(f.Value)
		field, exists := rec.Field(f.Name)
		if !exists {
			c.report(diagnostics.ErrS001, f,
				"undefined reference: record "+rec.Name+" has no field "+f.Name)
			continue
		}
		if !typesystem.Assignable(field.Type, got) {
			c.report(diagnostics.ErrS003, f, fmt.Sprintf(
				"type mismatch: field %s of %s expects %s, got %s",
				f.Name, rec.Name, field.Type, got))
		}
	}

	// A field without a declared default must be supplied.
	for _, field := range rec.Fields {
		if supplied[field.Name] || field.HasDefault {
			continue
		}
		c.report(diagnostics.ErrS003, expr, fmt.Sprintf(
			"type mismatch: record literal for %s omits field %s, which has no default",
			rec.Name, field.Name))
	}
	return rec
}

// inferFieldAccess requires a record-typed target and an existing field.
func (c *Checker) inferFieldAccess(expr *ast.FieldAccess) typesystem.Type {
	target := c.inferExpr(expr.Target)
	if typesystem.IsError(target) {
		return typesystem.ErrType
	}

	rec, ok := typesystem.Resolve(target).(*typesystem.Record)
	if !ok {
		c.report(diagnostics.ErrS003, expr,
			"type mismatch: field access requires a record, got "+target.String())
		return typesystem.ErrType
	}

	field, exists := rec.Field(expr.Field)
	if !exists {
		c.report(diagnostics.ErrS001, expr,
			"undefined reference: record "+rec.Name+" has no field "+expr.Field)
		return typesystem.ErrType
	}
	return field.Type
}

func (c *Checker) inferIndex(expr *ast.IndexExpr) typesystem.Type {
	target := c.inferExpr(expr.Target)
	idxType := c.inferExpr(expr.Index)
	if typesystem.IsError(target) {
		return typesystem.ErrType
	}

	gen, ok := typesystem.Resolve(target).(*typesystem.GenericInstance)
	if !ok {
		c.report(diagnostics.ErrS003, expr,
			"type mismatch: indexing requires a collection, got "+target.String())
		return typesystem.ErrType
	}

	switch {
	case gen.Base == config.ListTypeName && len(gen.Args) == 1:
		if !typesystem.Assignable(typesystem.Int, idxType) {
			c.report(diagnostics.ErrS003, expr,
				"type mismatch: list index must be int, got "+idxType.String())
		}
		return gen.Args[0]
	case gen.Base == config.MapTypeName && len(gen.Args) == 2:
		if !typesystem.Assignable(gen.Args[0], idxType) {
			c.report(diagnostics.ErrS003, expr, fmt.Sprintf(
				"type mismatch: map key must be %s, got %s", gen.Args[0], idxType))
		}
		return gen.Args[1]
	default:
		c.report(diagnostics.ErrS003, expr,
			"type mismatch: cannot index "+gen.String())
		return typesystem.ErrType
	}
}

// inferMatchExpr unifies the types of every case's trailing return
// expression, reporting both types when two cases disagree rather than
// guessing.
func (c *Checker) inferMatchExpr(expr *ast.MatchExpr) typesystem.Type {
	scrutinee := c.inferExpr(expr.Scrutinee)

	var result typesystem.Type = typesystem.ErrType
	haveResult := false

	patterns := make([]ast.Pattern, 0, len(expr.Cases))
	guarded := make([]bool, 0, len(expr.Cases))
	for _, cs := range expr.Cases {
		c.env.EnterScope()
		c.checkPattern(cs.Pattern, scrutinee)
		if cs.Guard != nil {
			c.requireBoolCond(cs, cs.Guard)
		}
		armType := c.inferExpr(cs.Value)
		c.env.ExitScope()

		if !typesystem.IsError(armType) {
			if !haveResult {
				result = armType
				haveResult = true
			} else if !typesystem.Unify(result, armType) {
				c.report(diagnostics.ErrS003, cs, fmt.Sprintf(
					"type mismatch: match cases disagree: %s vs %s", result, armType))
			}
		}

		patterns = append(patterns, cs.Pattern)
		guarded = append(guarded, cs.Guard != nil)
	}

	c.checkExhaustive(expr, scrutinee, patterns, guarded)
	return result
}

func (c *Checker) unifyBranches(node ast.Node, a, b typesystem.Type) typesystem.Type {
	if typesystem.IsError(a) {
		return b
	}
	if typesystem.IsError(b) {
		return a
	}
	if !typesystem.Unify(a, b) {
		c.report(diagnostics.ErrS003, node, fmt.Sprintf(
			"type mismatch: branches disagree: %s vs %s", a, b))
		return typesystem.ErrType
	}
	return a
}

// inferCoalesce requires an Option on the left; the right operand supplies
// the fallback and must be assignable to the element type.
func (c *Checker) inferCoalesce(expr *ast.CoalesceExpr) typesystem.Type {
	left := c.inferExpr(expr.Left)
	right := c.inferExpr(expr.Right)

	if typesystem.IsError(left) {
		return right
	}

	opt, ok := typesystem.Resolve(left).(*typesystem.Option)
	if !ok {
		c.report(diagnostics.ErrS003, expr,
			"type mismatch: ?? requires an Option on the left, got "+left.String())
		return typesystem.ErrType
	}

	if !typesystem.Assignable(opt.Inner, right) && !typesystem.Unify(opt.Inner, right) {
		c.report(diagnostics.ErrS003, expr, fmt.Sprintf(
			"type mismatch: ?? fallback must be %s, got %s", opt.Inner, right))
	}
	return typesystem.Resolve(opt.Inner)
}

// inferCast checks an explicit source-level conversion. The permitted
// casts between primitives are numeric: int <-> float (plus identity).
func (c *Checker) inferCast(expr *ast.CastExpr) typesystem.Type {
	target := c.resolveTypeRef(expr.Target)
	value := c.inferExpr(expr.Value)

	if typesystem.IsError(target) || typesystem.IsError(value) {
		return target
	}
	if typesystem.Equal(target, value) {
		return target
	}
	if typesystem.IsNumeric(target) && typesystem.IsNumeric(value) {
		return target
	}

	c.report(diagnostics.ErrS003, expr, fmt.Sprintf(
		"type mismatch: cannot cast %s to %s", value, target))
	return typesystem.ErrType
}
