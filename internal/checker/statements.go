package checker

import (
	"fmt"

	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/config"
	"github.com/juanmicrosoft/opal-sub016/internal/diagnostics"
	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

func (c *Checker) checkStatement(s ast.Statement) {
	switch stmt := s.(type) {
	case *ast.BindStmt:
		c.checkBind(stmt)
	case *ast.AssignStmt:
		c.checkAssign(stmt)
	case *ast.IfStmt:
		c.checkIf(stmt)
	case *ast.WhileStmt:
		c.checkCondLoop(stmt, stmt.Cond, stmt.Body)
	case *ast.DoWhileStmt:
		c.checkCondLoop(stmt, stmt.Cond, stmt.Body)
	case *ast.ForStmt:
		c.checkFor(stmt)
	case *ast.MatchStmt:
		c.checkMatchStmt(stmt)
	case *ast.ReturnStmt:
		c.checkReturn(stmt)
	case *ast.BreakStmt:
		if c.loopDepth == 0 {
			c.report(diagnostics.ErrS004, stmt, "break outside of loop")
		}
	case *ast.ContinueStmt:
		if c.loopDepth == 0 {
			c.report(diagnostics.ErrS004, stmt, "continue outside of loop")
		}
	case *ast.ExprStmt:
		c.inferExpr(stmt.Expr)
	case *ast.CollectionStmt:
		c.checkCollectionStmt(stmt)
	case *ast.ForEachPairsStmt:
		c.checkForEachPairs(stmt)
	default:
		panic(fmt.Sprintf("checker: unknown statement kind %T", s))
	}
}

func (c *Checker) checkBlock(body []ast.Statement) {
	c.env.EnterScope()
	for _, s := range body {
		c.checkStatement(s)
	}
	c.env.ExitScope()
}

// checkBind infers the variable's type from its initializer, checks it
// against an explicit annotation (allowing only the directed int -> float
// coercion), or, lacking both, reports and falls back to the error type.
func (c *Checker) checkBind(stmt *ast.BindStmt) {
	var declared typesystem.Type

	switch {
	case stmt.TypeAnnotation != nil && stmt.Value != nil:
		declared = c.resolveTypeRef(stmt.TypeAnnotation)
		valType := c.inferExpr(stmt.Value)
		if !typesystem.Assignable(declared, valType) {
			c.report(diagnostics.ErrS003, stmt, fmt.Sprintf(
				"type mismatch: cannot bind %s value to %s variable %s",
				valType, declared, stmt.Name))
		}
	case stmt.Value != nil:
		declared = c.inferExpr(stmt.Value)
	case stmt.TypeAnnotation != nil:
		declared = c.resolveTypeRef(stmt.TypeAnnotation)
	default:
		c.report(diagnostics.ErrS003, stmt,
			"binding "+stmt.Name+" needs a type annotation or an initializer")
		declared = typesystem.ErrType
	}

	c.bindTypes[stmt] = declared
	c.env.DefineVariable(stmt.Name, declared)
}

func (c *Checker) checkAssign(stmt *ast.AssignStmt) {
	valType := c.inferExpr(stmt.Value)

	varType, ok := c.env.LookupVariable(stmt.Name)
	if !ok {
		c.report(diagnostics.ErrS001, stmt, "undefined reference: "+stmt.Name)
		return
	}
	if !typesystem.Assignable(varType, valType) {
		c.report(diagnostics.ErrS003, stmt, fmt.Sprintf(
			"type mismatch: cannot assign %s to %s variable %s",
			valType, varType, stmt.Name))
	}
}

func (c *Checker) requireBoolCond(node ast.Node, cond ast.Expression) {
	t := c.inferExpr(cond)
	if !typesystem.IsBool(t) && !typesystem.IsError(t) {
		c.report(diagnostics.ErrS003, node,
			"type mismatch: condition must be bool, got "+t.String())
	}
}

func (c *Checker) checkIf(stmt *ast.IfStmt) {
	// A non-bool condition is reported once; both branches are checked
	// regardless.
	c.requireBoolCond(stmt, stmt.Cond)
	c.checkBlock(stmt.Then)
	if len(stmt.Else) > 0 {
		c.checkBlock(stmt.Else)
	}
}

func (c *Checker) checkCondLoop(node ast.Node, cond ast.Expression, body []ast.Statement) {
	c.requireBoolCond(node, cond)
	c.loopDepth++
	c.checkBlock(body)
	c.loopDepth--
}

// checkFor requires integer header expressions, since the loop variable
// is an integer counter, and binds that variable in a fresh scope that
// ends with the loop body. Float bounds take a while loop instead.
func (c *Checker) checkFor(stmt *ast.ForStmt) {
	c.requireInt(stmt, "for-loop start", stmt.From)
	c.requireInt(stmt, "for-loop bound", stmt.To)
	if stmt.Step != nil {
		c.requireInt(stmt, "for-loop step", stmt.Step)
	}

	c.env.EnterScope()
	c.env.DefineVariable(stmt.Var, typesystem.Int)
	c.loopDepth++
	for _, s := range stmt.Body {
		c.checkStatement(s)
	}
	c.loopDepth--
	c.env.ExitScope()
}

func (c *Checker) requireInt(node ast.Node, what string, e ast.Expression) {
	t := c.inferExpr(e)
	if !typesystem.IsInt(typesystem.Resolve(t)) && !typesystem.IsError(t) {
		c.report(diagnostics.ErrS003, node,
			"type mismatch: "+what+" must be an integer, got "+t.String())
	}
}

func (c *Checker) checkReturn(stmt *ast.ReturnStmt) {
	if c.current == nil {
		panic("checker: return outside of function")
	}
	want := c.current.Return

	if stmt.Value == nil {
		if !typesystem.Equal(want, typesystem.Void) && !typesystem.IsError(want) {
			c.report(diagnostics.ErrS003, stmt,
				"type mismatch: function "+c.current.Name+" must return "+want.String())
		}
		return
	}

	got := c.inferExpr(stmt.Value)
	if typesystem.Equal(want, typesystem.Void) {
		c.report(diagnostics.ErrS003, stmt,
			"type mismatch: function "+c.current.Name+" returns no value")
		return
	}
	if !typesystem.Assignable(want, got) {
		c.report(diagnostics.ErrS003, stmt, fmt.Sprintf(
			"type mismatch: function %s returns %s, got %s", c.current.Name, want, got))
	}
}

// checkMatchStmt infers the scrutinee's type once, then checks every case
// in its own scope: pattern against the scrutinee type, optional bool
// guard, then the body. Exhaustiveness is verified afterwards.
func (c *Checker) checkMatchStmt(stmt *ast.MatchStmt) {
	scrutinee := c.inferExpr(stmt.Scrutinee)

	patterns := make([]ast.Pattern, 0, len(stmt.Cases))
	guarded := make([]bool, 0, len(stmt.Cases))
	for _, cs := range stmt.Cases {
		c.env.EnterScope()
		c.checkPattern(cs.Pattern, scrutinee)
		if cs.Guard != nil {
			c.requireBoolCond(cs, cs.Guard)
		}
		for _, s := range cs.Body {
			c.checkStatement(s)
		}
		c.env.ExitScope()

		patterns = append(patterns, cs.Pattern)
		guarded = append(guarded, cs.Guard != nil)
	}

	c.checkExhaustive(stmt, scrutinee, patterns, guarded)
}

// checkCollectionStmt looks up the named collection's declared generic
// type and verifies operand types against its element/key/value arguments.
func (c *Checker) checkCollectionStmt(stmt *ast.CollectionStmt) {
	collType, ok := c.env.LookupVariable(stmt.Collection)
	if !ok {
		c.report(diagnostics.ErrS001, stmt, "undefined reference: "+stmt.Collection)
		return
	}
	if typesystem.IsError(collType) {
		return
	}

	gen, ok := typesystem.Resolve(collType).(*typesystem.GenericInstance)
	if !ok {
		c.report(diagnostics.ErrS003, stmt, fmt.Sprintf(
			"type mismatch: %s is %s, not a collection", stmt.Collection, collType))
		return
	}

	switch gen.Base {
	case config.ListTypeName:
		c.checkListOp(stmt, gen)
	case config.MapTypeName:
		c.checkMapOp(stmt, gen)
	default:
		c.report(diagnostics.ErrS003, stmt, fmt.Sprintf(
			"type mismatch: %s does not support %s", gen, stmt.Op))
	}
}

func (c *Checker) checkListOp(stmt *ast.CollectionStmt, list *typesystem.GenericInstance) {
	if len(list.Args) != 1 {
		c.report(diagnostics.ErrS004, stmt, "List takes exactly one type argument")
		return
	}
	elem := list.Args[0]

	checkOperand := func(what string, e ast.Expression, want typesystem.Type) {
		got := c.inferExpr(e)
		if !typesystem.Assignable(want, got) {
			c.report(diagnostics.ErrS003, stmt, fmt.Sprintf(
				"type mismatch: %s %s expects %s, got %s", stmt.Op, what, want, got))
		}
	}

	switch stmt.Op {
	case ast.OpPush:
		checkOperand("value", stmt.Value, elem)
	case ast.OpRemove:
		checkOperand("index", stmt.Key, typesystem.Int)
	case ast.OpSetIndex:
		checkOperand("index", stmt.Key, typesystem.Int)
		checkOperand("value", stmt.Value, elem)
	case ast.OpInsert:
		checkOperand("index", stmt.Key, typesystem.Int)
		checkOperand("value", stmt.Value, elem)
	case ast.OpClear:
		// No operands.
	default:
		c.report(diagnostics.ErrS003, stmt, fmt.Sprintf(
			"type mismatch: %s does not support %s", list, stmt.Op))
	}
}

func (c *Checker) checkMapOp(stmt *ast.CollectionStmt, m *typesystem.GenericInstance) {
	if len(m.Args) != 2 {
		c.report(diagnostics.ErrS004, stmt, "Map takes exactly two type arguments")
		return
	}
	key, val := m.Args[0], m.Args[1]

	checkOperand := func(what string, e ast.Expression, want typesystem.Type) {
		got := c.inferExpr(e)
		if !typesystem.Assignable(want, got) {
			c.report(diagnostics.ErrS003, stmt, fmt.Sprintf(
				"type mismatch: %s %s expects %s, got %s", stmt.Op, what, want, got))
		}
	}

	switch stmt.Op {
	case ast.OpPut:
		checkOperand("key", stmt.Key, key)
		checkOperand("value", stmt.Value, val)
	case ast.OpRemove:
		checkOperand("key", stmt.Key, key)
	case ast.OpClear:
		// No operands.
	default:
		c.report(diagnostics.ErrS003, stmt, fmt.Sprintf(
			"type mismatch: %s does not support %s", m, stmt.Op))
	}
}

func (c *Checker) checkForEachPairs(stmt *ast.ForEachPairsStmt) {
	collType, ok := c.env.LookupVariable(stmt.Collection)
	if !ok {
		c.report(diagnostics.ErrS001, stmt, "undefined reference: "+stmt.Collection)
		collType = typesystem.ErrType
	}

	keyType := typesystem.Type(typesystem.ErrType)
	valType := typesystem.Type(typesystem.ErrType)
	if !typesystem.IsError(collType) {
		gen, isGen := typesystem.Resolve(collType).(*typesystem.GenericInstance)
		if isGen && gen.Base == config.MapTypeName && len(gen.Args) == 2 {
			keyType, valType = gen.Args[0], gen.Args[1]
		} else {
			c.report(diagnostics.ErrS003, stmt, fmt.Sprintf(
				"type mismatch: foreach-pairs expects a Map, got %s", collType))
		}
	}

	c.env.EnterScope()
	c.env.DefineVariable(stmt.KeyVar, keyType)
	c.env.DefineVariable(stmt.ValueVar, valType)
	c.loopDepth++
	for _, s := range stmt.Body {
		c.checkStatement(s)
	}
	c.loopDepth--
	c.env.ExitScope()
}
