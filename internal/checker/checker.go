// Package checker performs semantic analysis on the input module tree:
// it verifies and infers types over two passes, producing best-effort
// type annotations and structured diagnostics. User mistakes never stop
// the walk; only internal invariant violations abort.
package checker

import (
	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/config"
	"github.com/juanmicrosoft/opal-sub016/internal/diagnostics"
	"github.com/juanmicrosoft/opal-sub016/internal/symbols"
	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

// Result is the checker's output: the populated environment and the
// inferred type of every expression, usable even when diagnostics were
// reported.
type Result struct {
	Env       *symbols.Environment
	ExprTypes map[ast.Expression]typesystem.Type
	// BindTypes records the declared (or inferred) type of every bind
	// statement, so the lowering engine can materialize coercions.
	BindTypes map[*ast.BindStmt]typesystem.Type
}

// TypeOf returns the recorded type for e, or the error type when the
// expression was never reached (itself a sign of earlier errors).
func (r *Result) TypeOf(e ast.Expression) typesystem.Type {
	if t, ok := r.ExprTypes[e]; ok {
		return t
	}
	return typesystem.ErrType
}

// Checker walks one module. It is single-use: one module, one bag, one
// environment, one type-variable allocator.
type Checker struct {
	env       *symbols.Environment
	bag       *diagnostics.Bag
	alloc     *typesystem.VarAllocator
	exprTypes map[ast.Expression]typesystem.Type
	bindTypes map[*ast.BindStmt]typesystem.Type

	current   *symbols.Signature
	loopDepth int
}

// Check runs both passes over mod, reporting into bag.
func Check(mod *ast.Module, bag *diagnostics.Bag) *Result {
	c := &Checker{
		env:       symbols.NewEnvironment(),
		bag:       bag,
		alloc:     typesystem.NewVarAllocator(),
		exprTypes: make(map[ast.Expression]typesystem.Type),
		bindTypes: make(map[*ast.BindStmt]typesystem.Type),
	}

	c.checkSemanticsVersion(mod)

	// Pass 1: register every type and function signature so mutually
	// referencing declarations resolve.
	c.registerTypes(mod)
	c.registerFunctions(mod)

	// Pass 2: check every function body.
	for _, fn := range mod.Functions {
		c.checkFunction(fn)
	}

	return &Result{Env: c.env, ExprTypes: c.exprTypes, BindTypes: c.bindTypes}
}

func (c *Checker) report(code diagnostics.Code, node ast.Node, msg string) {
	c.bag.Add(diagnostics.New(code, node.GetToken(), msg))
}

// registerTypes defines record and union shells first, then fills their
// fields, so fields may reference any user type regardless of order.
func (c *Checker) registerTypes(mod *ast.Module) {
	records := make([]*typesystem.Record, len(mod.Records))
	for i, rd := range mod.Records {
		if _, exists := c.env.LookupType(rd.Name); exists {
			c.report(diagnostics.ErrS002, rd, "duplicate definition of type "+rd.Name)
		}
		records[i] = &typesystem.Record{Name: rd.Name}
		c.env.DefineType(rd.Name, records[i])
	}

	unions := make([]*typesystem.Union, len(mod.Unions))
	for i, ud := range mod.Unions {
		if _, exists := c.env.LookupType(ud.Name); exists {
			c.report(diagnostics.ErrS002, ud, "duplicate definition of type "+ud.Name)
		}
		unions[i] = &typesystem.Union{Name: ud.Name}
		c.env.DefineType(ud.Name, unions[i])
	}

	for i, rd := range mod.Records {
		for _, fd := range rd.Fields {
			records[i].Fields = append(records[i].Fields, typesystem.RecordField{
				Name:       fd.Name,
				Type:       c.resolveTypeRef(fd.Type),
				HasDefault: fd.HasDefault(),
			})
		}
	}
	for i, ud := range mod.Unions {
		for _, vd := range ud.Variants {
			variant := typesystem.UnionVariant{Name: vd.Name}
			for _, fd := range vd.Fields {
				variant.Fields = append(variant.Fields, typesystem.RecordField{
					Name:       fd.Name,
					Type:       c.resolveTypeRef(fd.Type),
					HasDefault: fd.HasDefault(),
				})
			}
			unions[i].Variants = append(unions[i].Variants, variant)
		}
	}
}

// registerFunctions resolves each function's signature inside a scope that
// binds its type parameters, then registers it in the flat table.
func (c *Checker) registerFunctions(mod *ast.Module) {
	for _, fn := range mod.Functions {
		if _, exists := c.env.LookupFunction(fn.Name); exists {
			c.report(diagnostics.ErrS002, fn, "duplicate definition of function "+fn.Name)
		}

		c.env.EnterScope()
		sig := &symbols.Signature{Name: fn.Name, Decl: fn}
		for _, tp := range fn.TypeParams {
			param := &typesystem.TypeParam{Name: tp.Name, Constraints: tp.Constraints}
			sig.TypeParams = append(sig.TypeParams, param)
			c.env.DefineType(tp.Name, param)
		}
		for _, p := range fn.Params {
			sig.Params = append(sig.Params, c.resolveTypeRef(p.Type))
			sig.ParamNames = append(sig.ParamNames, p.Name)
		}
		if fn.ReturnType != nil {
			sig.Return = c.resolveTypeRef(fn.ReturnType)
		} else {
			sig.Return = typesystem.Void
		}
		c.env.ExitScope()

		c.env.DefineFunction(sig)
	}
}

// checkFunction re-enters a scope with type parameters and parameters
// bound, checks the contracts, then the body statement by statement.
func (c *Checker) checkFunction(fn *ast.FunctionDecl) {
	sig, ok := c.env.LookupFunction(fn.Name)
	if !ok {
		panic("checker: unregistered function " + fn.Name)
	}

	c.env.EnterScope()
	prev := c.current
	c.current = sig

	for _, tp := range sig.TypeParams {
		c.env.DefineType(tp.Name, tp)
	}
	for i, name := range sig.ParamNames {
		c.env.DefineVariable(name, sig.Params[i])
	}

	for _, req := range fn.Requires {
		c.checkContract(req, false)
	}

	for _, stmt := range fn.Body {
		c.checkStatement(stmt)
	}

	for _, ens := range fn.Ensures {
		c.checkContract(ens, true)
	}

	c.current = prev
	c.env.ExitScope()
}

// checkContract verifies one requires/ensures clause. Postconditions see
// the reserved result binding referring to the function's return value.
func (c *Checker) checkContract(clause *ast.ContractClause, post bool) {
	if clause.Cond == nil {
		c.report(diagnostics.ErrC001, clause, "contract clause has no condition")
		return
	}

	if post {
		c.env.EnterScope()
		c.env.DefineVariable(config.ResultBindingName, c.current.Return)
	}

	condType := c.inferExpr(clause.Cond)
	if !typesystem.IsBool(condType) && !typesystem.IsError(condType) {
		c.report(diagnostics.ErrC001, clause,
			"contract condition must be bool, got "+condType.String())
	}

	if post {
		c.env.ExitScope()
	}
}
