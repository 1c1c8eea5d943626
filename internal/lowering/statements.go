package lowering

import (
	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/config"
	"github.com/juanmicrosoft/opal-sub016/internal/nf"
	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

func (l *lowerer) lowerStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BindStmt:
		l.lowerBind(s)
	case *ast.AssignStmt:
		b := l.lookupVar(s.Name)
		l.assignTo(b.slot, b.typ, s.Value)
	case *ast.IfStmt:
		l.lowerIf(s)
	case *ast.WhileStmt:
		l.lowerWhile(s)
	case *ast.DoWhileStmt:
		l.lowerDoWhile(s)
	case *ast.ForStmt:
		l.lowerFor(s)
	case *ast.MatchStmt:
		l.lowerMatchStmt(s)
	case *ast.ReturnStmt:
		l.lowerReturn(s)
	case *ast.BreakStmt:
		l.emit(&nf.Goto{Target: l.loops[len(l.loops)-1].breakTo})
	case *ast.ContinueStmt:
		l.emit(&nf.Goto{Target: l.loops[len(l.loops)-1].continueTo})
	case *ast.ExprStmt:
		l.lowerExprStmt(s)
	case *ast.CollectionStmt:
		l.lowerCollection(s)
	case *ast.ForEachPairsStmt:
		l.lowerForEachPairs(s)
	default:
		panic("lowering: unknown statement kind")
	}
}

func (l *lowerer) lowerBlock(stmts []ast.Statement) {
	for _, s := range stmts {
		l.lowerStmt(s)
	}
}

// lowerScopedBlock lowers a nested block in its own scope, so its binds
// shadow instead of overwriting.
func (l *lowerer) lowerScopedBlock(stmts []ast.Statement) {
	l.pushScope()
	l.lowerBlock(stmts)
	l.popScope()
}

func (l *lowerer) lowerBind(s *ast.BindStmt) {
	declared := l.res.BindTypes[s]
	// A bind without an initializer introduces the slot; the validator
	// holds reads until an assignment dominates them.
	if s.Value == nil {
		l.define(s.Name, declared)
		return
	}
	// The initializer is lowered against the enclosing bindings; the new
	// one becomes visible only afterward, so a shadowing bind can read
	// the variable it is about to hide.
	var v nf.Expr
	if needsWiden(l.res.TypeOf(s.Value), declared) {
		v = &nf.Conversion{Operand: l.atomic(s.Value), From: typesystem.Int, To: typesystem.Float}
	} else {
		v = l.lowerExpr(s.Value)
	}
	l.emit(&nf.Assign{Target: l.define(s.Name, declared), Value: v})
}

func (l *lowerer) lowerIf(s *ast.IfStmt) {
	cond := l.atomic(s.Cond)
	thenL := l.newLabel("if_then")
	endL := l.newLabel("if_end")

	if len(s.Else) == 0 {
		l.emit(&nf.Branch{Cond: cond, True: thenL, False: endL})
		l.emit(&nf.Label{Name: thenL})
		l.lowerScopedBlock(s.Then)
		l.emit(&nf.Label{Name: endL})
		return
	}

	elseL := l.newLabel("if_else")
	l.emit(&nf.Branch{Cond: cond, True: thenL, False: elseL})
	l.emit(&nf.Label{Name: thenL})
	l.lowerScopedBlock(s.Then)
	l.emit(&nf.Goto{Target: endL})
	l.emit(&nf.Label{Name: elseL})
	l.lowerScopedBlock(s.Else)
	l.emit(&nf.Label{Name: endL})
}

// lowerWhile re-lowers the condition at the header so its temporaries
// are re-evaluated on every iteration.
func (l *lowerer) lowerWhile(s *ast.WhileStmt) {
	header := l.newLabel("while_head")
	bodyL := l.newLabel("while_body")
	exit := l.newLabel("while_exit")

	l.emit(&nf.Loop{Header: header, Body: bodyL, Exit: exit})
	l.emit(&nf.Label{Name: header})
	cond := l.atomic(s.Cond)
	l.emit(&nf.Branch{Cond: cond, True: bodyL, False: exit})
	l.emit(&nf.Label{Name: bodyL})

	l.loops = append(l.loops, loopFrame{continueTo: header, breakTo: exit})
	l.lowerScopedBlock(s.Body)
	l.loops = l.loops[:len(l.loops)-1]

	l.emit(&nf.Goto{Target: header})
	l.emit(&nf.Label{Name: exit})
}

func (l *lowerer) lowerDoWhile(s *ast.DoWhileStmt) {
	testL := l.newLabel("do_test")
	bodyL := l.newLabel("do_body")
	exit := l.newLabel("do_exit")

	l.emit(&nf.Loop{Header: testL, Body: bodyL, Exit: exit})
	l.emit(&nf.Label{Name: bodyL})

	l.loops = append(l.loops, loopFrame{continueTo: testL, breakTo: exit})
	l.lowerScopedBlock(s.Body)
	l.loops = l.loops[:len(l.loops)-1]

	l.emit(&nf.Label{Name: testL})
	cond := l.atomic(s.Cond)
	l.emit(&nf.Branch{Cond: cond, True: bodyL, False: exit})
	l.emit(&nf.Label{Name: exit})
}

// lowerFor counts the loop variable upward; the bound and step are
// re-evaluated each iteration, continue jumps to the increment.
func (l *lowerer) lowerFor(s *ast.ForStmt) {
	l.pushScope()
	counter := l.define(s.Var, typesystem.Int)
	l.assignTo(counter, typesystem.Int, s.From)

	header := l.newLabel("for_head")
	bodyL := l.newLabel("for_body")
	incrL := l.newLabel("for_incr")
	exit := l.newLabel("for_exit")

	l.emit(&nf.Loop{Header: header, Body: bodyL, Exit: exit})
	l.emit(&nf.Label{Name: header})
	bound := l.atomic(s.To)
	cmp := l.newTemp(typesystem.Bool)
	l.emit(&nf.Assign{Target: cmp, Value: &nf.BinaryOp{
		Op:    "<=",
		Left:  &nf.VarRef{Name: counter, Typ: typesystem.Int},
		Right: bound,
		Typ:   typesystem.Bool,
	}})
	l.emit(&nf.Branch{Cond: &nf.VarRef{Name: cmp, Typ: typesystem.Bool}, True: bodyL, False: exit})
	l.emit(&nf.Label{Name: bodyL})

	l.loops = append(l.loops, loopFrame{continueTo: incrL, breakTo: exit})
	l.lowerScopedBlock(s.Body)
	l.loops = l.loops[:len(l.loops)-1]

	l.emit(&nf.Label{Name: incrL})
	var step nf.Expr = nf.IntLit(1)
	if s.Step != nil {
		step = l.atomic(s.Step)
	}
	l.emit(&nf.Assign{Target: counter, Value: &nf.BinaryOp{
		Op:      "+",
		Left:    &nf.VarRef{Name: counter, Typ: typesystem.Int},
		Right:   step,
		Checked: l.checkedInt(),
		Typ:     typesystem.Int,
	}})
	l.emit(&nf.Goto{Target: header})
	l.emit(&nf.Label{Name: exit})
	l.popScope()
}

func (l *lowerer) lowerMatchStmt(s *ast.MatchStmt) {
	cases := make([]loweredCase, len(s.Cases))
	for i, mc := range s.Cases {
		body := mc.Body
		cases[i] = loweredCase{
			pattern: mc.Pattern,
			guard:   mc.Guard,
			emitBody: func() {
				l.lowerBlock(body)
			},
		}
	}
	l.lowerMatch(s.Scrutinee, cases)
}

func (l *lowerer) lowerReturn(s *ast.ReturnStmt) {
	// With postconditions active, returns route through the shared
	// postcondition block after filling the result binding.
	if l.postLabel != "" {
		if s.Value != nil {
			l.assignTo(config.ResultBindingName, l.sig.Return, s.Value)
		}
		l.emit(&nf.Goto{Target: l.postLabel})
		return
	}
	if s.Value == nil {
		l.emit(&nf.Return{})
		return
	}
	l.emit(&nf.Return{Value: l.atomicAs(s.Value, l.sig.Return)})
}

func (l *lowerer) lowerExprStmt(s *ast.ExprStmt) {
	v := l.lowerExpr(s.Expr)
	// A bare atomic has no effect left to preserve.
	if !nf.IsAtomic(v) {
		t := l.newTemp(v.Type())
		l.emit(&nf.Assign{Target: t, Value: v})
	}
}

// lowerCollection turns a mutation statement into a builtin call whose
// unit result lands in a throwaway temporary.
func (l *lowerer) lowerCollection(s *ast.CollectionStmt) {
	cb := l.lookupVar(s.Collection)
	collType := typesystem.Resolve(cb.typ)
	gi, ok := collType.(*typesystem.GenericInstance)
	if !ok {
		panic("lowering: collection statement on non-collection")
	}
	isList := gi.Base == config.ListTypeName
	coll := &nf.VarRef{Name: cb.slot, Typ: collType}

	var callee string
	args := []nf.Expr{coll}
	switch s.Op {
	case ast.OpPush:
		callee = "list_push"
		args = append(args, l.atomicAs(s.Value, gi.Args[0]))
	case ast.OpPut:
		callee = "map_put"
		args = append(args, l.atomicAs(s.Key, gi.Args[0]), l.atomicAs(s.Value, gi.Args[1]))
	case ast.OpRemove:
		callee = "map_remove"
		if isList {
			callee = "list_remove"
		}
		args = append(args, l.atomic(s.Key))
	case ast.OpSetIndex:
		callee = "list_set"
		args = append(args, l.atomic(s.Key), l.atomicAs(s.Value, gi.Args[0]))
	case ast.OpInsert:
		callee = "list_insert"
		args = append(args, l.atomic(s.Key), l.atomicAs(s.Value, gi.Args[0]))
	case ast.OpClear:
		callee = "map_clear"
		if isList {
			callee = "list_clear"
		}
	default:
		panic("lowering: unknown collection op")
	}

	t := l.newTemp(typesystem.Unit)
	l.emit(&nf.Assign{Target: t, Value: &nf.Call{Callee: callee, Args: args, Typ: typesystem.Unit}})
}

// lowerForEachPairs linearizes map iteration into an indexed walk over
// the key list.
func (l *lowerer) lowerForEachPairs(s *ast.ForEachPairsStmt) {
	cb := l.lookupVar(s.Collection)
	collType := typesystem.Resolve(cb.typ)
	gi, ok := collType.(*typesystem.GenericInstance)
	if !ok || gi.Base != config.MapTypeName {
		panic("lowering: pairs iteration on non-map")
	}
	keyT, valT := gi.Args[0], gi.Args[1]
	coll := &nf.VarRef{Name: cb.slot, Typ: collType}

	keys := l.newTemp(&typesystem.GenericInstance{Base: config.ListTypeName, Args: []typesystem.Type{keyT}})
	l.emit(&nf.Assign{Target: keys, Value: &nf.Call{Callee: "map_keys", Args: []nf.Expr{coll}, Typ: l.slots[keys]}})
	count := l.newTemp(typesystem.Int)
	l.emit(&nf.Assign{Target: count, Value: &nf.Call{Callee: "list_len", Args: []nf.Expr{&nf.VarRef{Name: keys, Typ: l.slots[keys]}}, Typ: typesystem.Int}})
	idx := l.newTemp(typesystem.Int)
	l.emit(&nf.Assign{Target: idx, Value: nf.IntLit(0)})

	header := l.newLabel("pairs_head")
	bodyL := l.newLabel("pairs_body")
	incrL := l.newLabel("pairs_incr")
	exit := l.newLabel("pairs_exit")

	l.emit(&nf.Loop{Header: header, Body: bodyL, Exit: exit})
	l.emit(&nf.Label{Name: header})
	cmp := l.newTemp(typesystem.Bool)
	l.emit(&nf.Assign{Target: cmp, Value: &nf.BinaryOp{
		Op:    "<",
		Left:  &nf.VarRef{Name: idx, Typ: typesystem.Int},
		Right: &nf.VarRef{Name: count, Typ: typesystem.Int},
		Typ:   typesystem.Bool,
	}})
	l.emit(&nf.Branch{Cond: &nf.VarRef{Name: cmp, Typ: typesystem.Bool}, True: bodyL, False: exit})
	l.emit(&nf.Label{Name: bodyL})

	l.pushScope()
	keySlot := l.define(s.KeyVar, keyT)
	valSlot := l.define(s.ValueVar, valT)
	l.emit(&nf.Assign{Target: keySlot, Value: &nf.Call{
		Callee: "list_get",
		Args:   []nf.Expr{&nf.VarRef{Name: keys, Typ: l.slots[keys]}, &nf.VarRef{Name: idx, Typ: typesystem.Int}},
		Typ:    keyT,
	}})
	l.emit(&nf.Assign{Target: valSlot, Value: &nf.Call{
		Callee: "map_get",
		Args:   []nf.Expr{coll, &nf.VarRef{Name: keySlot, Typ: keyT}},
		Typ:    valT,
	}})

	l.loops = append(l.loops, loopFrame{continueTo: incrL, breakTo: exit})
	l.lowerBlock(s.Body)
	l.loops = l.loops[:len(l.loops)-1]
	l.popScope()

	l.emit(&nf.Label{Name: incrL})
	l.emit(&nf.Assign{Target: idx, Value: &nf.BinaryOp{
		Op:    "+",
		Left:  &nf.VarRef{Name: idx, Typ: typesystem.Int},
		Right: nf.IntLit(1),
		Typ:   typesystem.Int,
	}})
	l.emit(&nf.Goto{Target: header})
	l.emit(&nf.Label{Name: exit})
}
