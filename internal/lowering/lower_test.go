package lowering

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/checker"
	"github.com/juanmicrosoft/opal-sub016/internal/diagnostics"
	"github.com/juanmicrosoft/opal-sub016/internal/nf"
	"github.com/juanmicrosoft/opal-sub016/internal/token"
)

var nextLine int

func tk(lex string) token.Token {
	nextLine++
	return token.Token{Lexeme: lex, Line: nextLine, Column: 1}
}

func ident(name string) *ast.Identifier {
	return &ast.Identifier{Token: tk(name), Name: name}
}

func intLit(v int64) *ast.IntLit {
	return &ast.IntLit{Token: tk("int"), Value: v}
}

func tref(name string) *ast.TypeRef {
	return &ast.TypeRef{Token: tk(name), Name: name}
}

func binary(op string, left, right ast.Expression) *ast.BinaryExpr {
	return &ast.BinaryExpr{Token: tk(op), Op: op, Left: left, Right: right}
}

func param(name, typ string) *ast.ParamDecl {
	return &ast.ParamDecl{Token: tk(name), Name: name, Type: tref(typ)}
}

func fn(name string, params []*ast.ParamDecl, ret *ast.TypeRef, body ...ast.Statement) *ast.FunctionDecl {
	return &ast.FunctionDecl{Token: tk(name), Name: name, Params: params, ReturnType: ret, Body: body}
}

func ret(v ast.Expression) *ast.ReturnStmt {
	return &ast.ReturnStmt{Token: tk("return"), Value: v}
}

func module(fns ...*ast.FunctionDecl) *ast.Module {
	return &ast.Module{Name: "m", File: "m.opal", Functions: fns}
}

func lowerModule(t *testing.T, mod *ast.Module, opts Options) *nf.Module {
	t.Helper()
	bag := diagnostics.NewBag(mod.File)
	res := checker.Check(mod, bag)
	if bag.HasErrors() {
		t.Fatalf("module does not check: %v", bag.All())
	}
	out, err := Lower(mod, res, opts)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	return out
}

func lowerOne(t *testing.T, mod *ast.Module, name string, opts Options) *nf.Function {
	t.Helper()
	out := lowerModule(t, mod, opts)
	for _, f := range out.Functions {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("function %s not in lowered module", name)
	return nil
}

// callOrder lists the callees of call-valued assignments in emission
// order.
func callOrder(body []nf.Stmt) []string {
	var order []string
	for _, s := range body {
		if a, ok := s.(*nf.Assign); ok {
			if c, ok := a.Value.(*nf.Call); ok {
				order = append(order, c.Callee)
			}
		}
	}
	return order
}

// labelIndex finds the first label whose name starts with prefix.
func labelIndex(body []nf.Stmt, prefix string) int {
	for i, s := range body {
		if l, ok := s.(*nf.Label); ok && strings.HasPrefix(l.Name, prefix) {
			return i
		}
	}
	return -1
}

func intFn(name string) *ast.FunctionDecl {
	return fn(name, nil, tref("int"), ret(intLit(1)))
}

func TestCallArgumentsMaterializeInOrder(t *testing.T) {
	sum := fn("sum",
		[]*ast.ParamDecl{param("a", "int"), param("b", "int"), param("c", "int")},
		tref("int"),
		ret(binary("+", binary("+", ident("a"), ident("b")), ident("c"))),
	)
	use := fn("use", nil, tref("int"),
		ret(&ast.CallExpr{Token: tk("sum"), Callee: "sum", Args: []ast.Expression{
			&ast.CallExpr{Token: tk("first"), Callee: "first"},
			&ast.CallExpr{Token: tk("second"), Callee: "second"},
			&ast.CallExpr{Token: tk("third"), Callee: "third"},
		}}),
	)
	mod := module(intFn("first"), intFn("second"), intFn("third"), sum, use)

	lowered := lowerOne(t, mod, "use", DefaultOptions())
	got := callOrder(lowered.Body)
	want := []string{"first", "second", "third", "sum"}
	if len(got) != len(want) {
		t.Fatalf("call order %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call order %v, want %v", got, want)
		}
	}
}

func TestShortCircuitAndGuardsRightOperand(t *testing.T) {
	check := fn("check", []*ast.ParamDecl{param("x", "int")}, tref("bool"),
		ret(binary("&&",
			binary(">", ident("x"), intLit(0)),
			&ast.CallExpr{Token: tk("pricey"), Callee: "pricey", Args: []ast.Expression{ident("x")}},
		)),
	)
	pricey := fn("pricey", []*ast.ParamDecl{param("x", "int")}, tref("bool"),
		ret(binary("<", ident("x"), intLit(100))),
	)
	lowered := lowerOne(t, module(pricey, check), "check", DefaultOptions())

	rhs := labelIndex(lowered.Body, "sc_rhs")
	end := labelIndex(lowered.Body, "sc_end")
	if rhs < 0 || end < 0 || rhs >= end {
		t.Fatalf("missing short-circuit region, labels at %d and %d", rhs, end)
	}

	callAt := -1
	for i, s := range lowered.Body {
		if a, ok := s.(*nf.Assign); ok {
			if c, ok := a.Value.(*nf.Call); ok && c.Callee == "pricey" {
				callAt = i
			}
		}
	}
	if callAt < rhs || callAt > end {
		t.Fatalf("right operand call at %d, outside guarded region [%d, %d]", callAt, rhs, end)
	}
}

func TestShortCircuitOrSkipsOnTrue(t *testing.T) {
	either := fn("either", []*ast.ParamDecl{param("p", "bool"), param("q", "bool")}, tref("bool"),
		ret(binary("||", ident("p"), ident("q"))),
	)
	lowered := lowerOne(t, module(either), "either", DefaultOptions())

	for _, s := range lowered.Body {
		if b, ok := s.(*nf.Branch); ok {
			if !strings.HasPrefix(b.True, "sc_end") {
				t.Fatalf("|| must skip the right operand when true; branch goes to %s", b.True)
			}
			return
		}
	}
	t.Fatal("no branch emitted for ||")
}

func TestPreconditionChecksRunFirst(t *testing.T) {
	f := fn("root", []*ast.ParamDecl{param("x", "int")}, tref("int"), ret(ident("x")))
	f.Requires = []*ast.ContractClause{{
		Token:   tk("requires"),
		Cond:    binary(">", ident("x"), intLit(0)),
		RawText: "x > 0",
	}}
	lowered := lowerOne(t, module(f), "root", DefaultOptions())

	raiseAt := -1
	for i, s := range lowered.Body {
		if r, ok := s.(*nf.RaiseContract); ok {
			raiseAt = i
			if r.Kind != nf.Precondition {
				t.Fatalf("raise kind %s, want precondition", r.Kind)
			}
			if r.Condition != "x > 0" {
				t.Fatalf("raise carries condition %q, want the source text", r.Condition)
			}
			if r.Function != "root" {
				t.Fatalf("raise names function %q", r.Function)
			}
			break
		}
	}
	if raiseAt < 0 {
		t.Fatal("no precondition raise emitted")
	}

	// Nothing before the raise may belong to the body: the only return
	// must come later.
	for i := 0; i < raiseAt; i++ {
		if _, ok := lowered.Body[i].(*nf.Return); ok {
			t.Fatal("body return precedes the precondition check")
		}
	}
}

func TestPostconditionRoutesReturns(t *testing.T) {
	f := fn("abs", []*ast.ParamDecl{param("x", "int")}, tref("int"),
		&ast.IfStmt{
			Token: tk("if"),
			Cond:  binary("<", ident("x"), intLit(0)),
			Then: []ast.Statement{
				ret(&ast.UnaryExpr{Token: tk("-"), Op: "-", Operand: ident("x")}),
			},
		},
		ret(ident("x")),
	)
	f.Ensures = []*ast.ContractClause{{
		Token:   tk("ensures"),
		Cond:    binary(">=", ident("result"), intLit(0)),
		RawText: "result >= 0",
	}}
	lowered := lowerOne(t, module(f), "abs", DefaultOptions())

	ensuresAt := labelIndex(lowered.Body, "ensures")
	if ensuresAt < 0 {
		t.Fatal("no postcondition block emitted")
	}

	var raise *nf.RaiseContract
	gotos := 0
	for i, s := range lowered.Body {
		switch x := s.(type) {
		case *nf.Goto:
			if strings.HasPrefix(x.Target, "ensures") {
				gotos++
			}
		case *nf.RaiseContract:
			raise = x
		case *nf.Return:
			if i < ensuresAt {
				t.Fatal("return bypasses the postcondition block")
			}
			if x.Value == nil {
				t.Fatal("value-returning function lowered a bare return")
			}
			if v, ok := x.Value.(*nf.VarRef); !ok || v.Name != "result" {
				t.Fatalf("final return reads %v, want the result binding", x.Value)
			}
		}
	}
	if gotos != 2 {
		t.Fatalf("%d returns routed to the postcondition block, want 2", gotos)
	}
	if raise == nil || raise.Kind != nf.Postcondition {
		t.Fatal("no postcondition raise emitted")
	}
}

func TestContractModesPrune(t *testing.T) {
	build := func() *ast.Module {
		f := fn("f", []*ast.ParamDecl{param("x", "int")}, tref("int"), ret(ident("x")))
		f.Requires = []*ast.ContractClause{{Token: tk("requires"), Cond: binary(">", ident("x"), intLit(0)), RawText: "x > 0"}}
		f.Ensures = []*ast.ContractClause{{Token: tk("ensures"), Cond: binary(">", ident("result"), intLit(0)), RawText: "result > 0"}}
		return module(f)
	}
	kinds := func(body []nf.Stmt) (pre, post int) {
		for _, s := range body {
			if r, ok := s.(*nf.RaiseContract); ok {
				if r.Kind == nf.Precondition {
					pre++
				} else {
					post++
				}
			}
		}
		return
	}

	pre, post := kinds(lowerOne(t, build(), "f", Options{Contracts: ContractsAll, Overflow: OverflowTrap}).Body)
	if pre != 1 || post != 1 {
		t.Fatalf("all mode kept %d/%d checks, want 1/1", pre, post)
	}
	pre, post = kinds(lowerOne(t, build(), "f", Options{Contracts: ContractsPreconditions, Overflow: OverflowTrap}).Body)
	if pre != 1 || post != 0 {
		t.Fatalf("preconditions mode kept %d/%d checks, want 1/0", pre, post)
	}
	pre, post = kinds(lowerOne(t, build(), "f", Options{Contracts: ContractsNone, Overflow: OverflowTrap}).Body)
	if pre != 0 || post != 0 {
		t.Fatalf("none mode kept %d/%d checks, want 0/0", pre, post)
	}
}

func optionMatchModule() *ast.Module {
	m := &ast.MatchExpr{
		Token:     tk("match"),
		Scrutinee: ident("o"),
		Cases: []*ast.MatchExprCase{
			{
				Token:   tk("Some"),
				Pattern: &ast.SomePattern{Token: tk("Some"), Inner: &ast.VariablePattern{Token: tk("n"), Name: "n"}},
				Value:   ident("n"),
			},
			{
				Token:   tk("None"),
				Pattern: &ast.NonePattern{Token: tk("None")},
				Value:   intLit(0),
			},
		},
	}
	return module(fn("unwrap", []*ast.ParamDecl{param("o", "Option[int]")}, tref("int"), ret(m)))
}

func TestMatchExtractsPayloadOnlyInItsCase(t *testing.T) {
	lowered := lowerOne(t, optionMatchModule(), "unwrap", DefaultOptions())

	extractions := 0
	extractionAt := -1
	for i, s := range lowered.Body {
		if a, ok := s.(*nf.Assign); ok {
			if c, ok := a.Value.(*nf.Call); ok && c.Callee == "option_value" {
				extractions++
				extractionAt = i
			}
		}
	}
	if extractions != 1 {
		t.Fatalf("%d payload extractions, want exactly 1 (the Some case)", extractions)
	}

	// The extraction belongs to the first case's region: after the
	// is-some test, before the second case's label.
	secondCase := -1
	seen := 0
	for i, s := range lowered.Body {
		if l, ok := s.(*nf.Label); ok && strings.HasPrefix(l.Name, "match_case") {
			seen++
			if seen == 2 {
				secondCase = i
				break
			}
		}
	}
	if secondCase < 0 || extractionAt > secondCase {
		t.Fatalf("payload extraction at %d leaked past the Some case ending at %d", extractionAt, secondCase)
	}
}

func TestMatchChainEndsInTrap(t *testing.T) {
	lowered := lowerOne(t, optionMatchModule(), "unwrap", DefaultOptions())
	for _, s := range lowered.Body {
		if _, ok := s.(*nf.Trap); ok {
			return
		}
	}
	t.Fatal("lowered match has no terminal trap")
}

func TestOverflowPolicyMarksArithmetic(t *testing.T) {
	build := func() *ast.Module {
		return module(fn("double", []*ast.ParamDecl{param("x", "int")}, tref("int"),
			ret(binary("+", ident("x"), ident("x")))))
	}
	findAdd := func(body []nf.Stmt) *nf.BinaryOp {
		for _, s := range body {
			if a, ok := s.(*nf.Assign); ok {
				if b, ok := a.Value.(*nf.BinaryOp); ok && b.Op == "+" {
					return b
				}
			}
		}
		return nil
	}

	add := findAdd(lowerOne(t, build(), "double", Options{Contracts: ContractsAll, Overflow: OverflowTrap}).Body)
	if add == nil || !add.Checked {
		t.Fatal("trap mode must mark integer arithmetic checked")
	}
	add = findAdd(lowerOne(t, build(), "double", Options{Contracts: ContractsAll, Overflow: OverflowWrap}).Body)
	if add == nil || add.Checked {
		t.Fatal("wrap mode must not mark integer arithmetic checked")
	}
}

func TestImplicitWideningIsExplicit(t *testing.T) {
	mod := module(fn("widen", []*ast.ParamDecl{param("x", "int")}, tref("float"),
		ret(ident("x"))))
	lowered := lowerOne(t, mod, "widen", DefaultOptions())

	for _, s := range lowered.Body {
		if a, ok := s.(*nf.Assign); ok {
			if _, ok := a.Value.(*nf.Conversion); ok {
				return
			}
		}
	}
	t.Fatal("int -> float return lowered without a conversion node")
}

func TestCastLowersToConversion(t *testing.T) {
	mod := module(fn("narrow", []*ast.ParamDecl{param("x", "float")}, tref("int"),
		ret(&ast.CastExpr{Token: tk("as"), Value: ident("x"), Target: tref("int")})))
	lowered := lowerOne(t, mod, "narrow", DefaultOptions())

	for _, s := range lowered.Body {
		if a, ok := s.(*nf.Assign); ok {
			if c, ok := a.Value.(*nf.Conversion); ok {
				if c.To.String() != "int" {
					t.Fatalf("cast converts to %s, want int", c.To)
				}
				return
			}
		}
	}
	t.Fatal("float -> int cast lowered without a conversion node")
}

func TestWhileConditionReevaluatedAtHeader(t *testing.T) {
	mod := module(fn("countdown", []*ast.ParamDecl{param("n", "int")}, nil,
		&ast.BindStmt{Token: tk("i"), Name: "i", Value: ident("n")},
		&ast.WhileStmt{
			Token: tk("while"),
			Cond:  binary(">", ident("i"), intLit(0)),
			Body: []ast.Statement{
				&ast.AssignStmt{Token: tk("i"), Name: "i", Value: binary("-", ident("i"), intLit(1))},
			},
		},
	))
	lowered := lowerOne(t, mod, "countdown", DefaultOptions())

	header := labelIndex(lowered.Body, "while_head")
	bodyL := labelIndex(lowered.Body, "while_body")
	if header < 0 || bodyL < 0 {
		t.Fatal("while loop lost its labels")
	}
	// The comparison temp must sit between the header label and the
	// body label so each iteration re-evaluates it.
	found := false
	for i := header; i < bodyL; i++ {
		if a, ok := lowered.Body[i].(*nf.Assign); ok {
			if b, ok := a.Value.(*nf.BinaryOp); ok && b.Op == ">" {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("loop condition not evaluated in the header region")
	}
}

func TestBreakAndContinueResolveToLoopLabels(t *testing.T) {
	mod := module(fn("scan", []*ast.ParamDecl{param("n", "int")}, nil,
		&ast.ForStmt{
			Token: tk("for"),
			Var:   "i",
			From:  intLit(0),
			To:    ident("n"),
			Body: []ast.Statement{
				&ast.IfStmt{
					Token: tk("if"),
					Cond:  binary("==", ident("i"), intLit(3)),
					Then:  []ast.Statement{&ast.ContinueStmt{Token: tk("continue")}},
				},
				&ast.IfStmt{
					Token: tk("if"),
					Cond:  binary("==", ident("i"), intLit(7)),
					Then:  []ast.Statement{&ast.BreakStmt{Token: tk("break")}},
				},
			},
		},
	))
	// Validation inside Lower already proves the goto targets exist.
	lowered := lowerOne(t, mod, "scan", DefaultOptions())

	toIncr, toExit := false, false
	for _, s := range lowered.Body {
		if g, ok := s.(*nf.Goto); ok {
			if strings.HasPrefix(g.Target, "for_incr") {
				toIncr = true
			}
			if strings.HasPrefix(g.Target, "for_exit") {
				toExit = true
			}
		}
	}
	if !toIncr {
		t.Fatal("continue did not route to the increment")
	}
	if !toExit {
		t.Fatal("break did not route to the loop exit")
	}
}

func TestTernaryAssignsSlotOnBothArms(t *testing.T) {
	mod := module(fn("pick", []*ast.ParamDecl{param("p", "bool")}, tref("int"),
		ret(&ast.TernaryExpr{Token: tk("?"), Cond: ident("p"), Then: intLit(1), Else: intLit(2)})))
	lowered := lowerOne(t, mod, "pick", DefaultOptions())

	slots := map[string]int{}
	for _, s := range lowered.Body {
		if a, ok := s.(*nf.Assign); ok {
			if lit, ok := a.Value.(*nf.Literal); ok && lit.Kind == nf.LitInt {
				slots[a.Target]++
			}
		}
	}
	for _, n := range slots {
		if n == 2 {
			return
		}
	}
	t.Fatalf("no shared result slot assigned on both arms: %v", slots)
}

func TestCoalesceFallbackOnlyOnNoneEdge(t *testing.T) {
	mod := module(
		fn("fallback", nil, tref("int"), ret(intLit(9))),
		fn("orelse", []*ast.ParamDecl{param("o", "Option[int]")}, tref("int"),
			ret(&ast.CoalesceExpr{
				Token: tk("??"),
				Left:  ident("o"),
				Right: &ast.CallExpr{Token: tk("fallback"), Callee: "fallback"},
			})),
	)
	lowered := lowerOne(t, mod, "orelse", DefaultOptions())

	noneL := labelIndex(lowered.Body, "coalesce_none")
	endL := labelIndex(lowered.Body, "coalesce_end")
	callAt := -1
	for i, s := range lowered.Body {
		if a, ok := s.(*nf.Assign); ok {
			if c, ok := a.Value.(*nf.Call); ok && c.Callee == "fallback" {
				callAt = i
			}
		}
	}
	if noneL < 0 || endL < 0 || callAt < noneL || callAt > endL {
		t.Fatalf("fallback call at %d, outside none edge [%d, %d]", callAt, noneL, endL)
	}
}

func bind(name, typ string, value ast.Expression) *ast.BindStmt {
	return &ast.BindStmt{Token: tk(name), Name: name, TypeAnnotation: tref(typ), Value: value}
}

func TestShadowingBindLeavesOuterSlotAlone(t *testing.T) {
	mod := module(fn("f", []*ast.ParamDecl{param("p", "bool")}, tref("int"),
		bind("x", "int", intLit(1)),
		&ast.IfStmt{
			Token: tk("if"),
			Cond:  ident("p"),
			Then:  []ast.Statement{bind("x", "int", intLit(2))},
		},
		ret(ident("x")),
	))
	lowered := lowerOne(t, mod, "f", DefaultOptions())

	// The inner bind hides the outer x without mutating it, so its
	// assignment must land in a slot of its own.
	writes := map[string]int{}
	for _, s := range lowered.Body {
		if a, ok := s.(*nf.Assign); ok {
			writes[a.Target]++
		}
	}
	if writes["x"] != 1 {
		t.Fatalf("outer slot x written %d times, want 1", writes["x"])
	}

	for _, s := range lowered.Body {
		if r, ok := s.(*nf.Return); ok && r.Value != nil {
			if v, ok := r.Value.(*nf.VarRef); !ok || v.Name != "x" {
				t.Fatalf("post-if return reads %#v, want the outer slot x", r.Value)
			}
			return
		}
	}
	t.Fatal("no value return emitted")
}

func TestLoopVariableShadowsOuterBinding(t *testing.T) {
	mod := module(fn("f", nil, tref("int"),
		bind("x", "int", intLit(10)),
		&ast.ForStmt{
			Token: tk("for"),
			Var:   "x",
			From:  intLit(0),
			To:    intLit(3),
			Body:  []ast.Statement{&ast.ExprStmt{Token: tk("x"), Expr: ident("x")}},
		},
		ret(ident("x")),
	))
	lowered := lowerOne(t, mod, "f", DefaultOptions())

	counterWrites := 0
	for _, s := range lowered.Body {
		if a, ok := s.(*nf.Assign); ok && a.Target == "x_1" {
			counterWrites++
		}
	}
	if counterWrites == 0 {
		t.Fatal("loop counter reusing an outer name did not get its own slot")
	}
	for _, s := range lowered.Body {
		if r, ok := s.(*nf.Return); ok && r.Value != nil {
			if v, ok := r.Value.(*nf.VarRef); !ok || v.Name != "x" {
				t.Fatalf("return after the loop reads %#v, want the outer slot x", r.Value)
			}
		}
	}
}

func TestMatchBindingShadowsParameter(t *testing.T) {
	m := &ast.MatchStmt{
		Token:     tk("match"),
		Scrutinee: ident("o"),
		Cases: []*ast.MatchCase{
			{
				Token:   tk("Some"),
				Pattern: &ast.SomePattern{Token: tk("Some"), Inner: &ast.VariablePattern{Token: tk("n"), Name: "n"}},
				Body:    []ast.Statement{ret(ident("n"))},
			},
			{
				Token:   tk("None"),
				Pattern: &ast.NonePattern{Token: tk("None")},
				Body:    []ast.Statement{ret(ident("n"))},
			},
		},
	}
	mod := module(fn("pick",
		[]*ast.ParamDecl{param("n", "int"), param("o", "Option[int]")},
		tref("int"), m))
	lowered := lowerOne(t, mod, "pick", DefaultOptions())

	reads := map[string]bool{}
	for _, s := range lowered.Body {
		if r, ok := s.(*nf.Return); ok && r.Value != nil {
			if v, ok := r.Value.(*nf.VarRef); ok {
				reads[v.Name] = true
			}
		}
	}
	if !reads["n_1"] {
		t.Fatal("the Some arm must read its own payload slot, not the parameter")
	}
	if !reads["n"] {
		t.Fatal("the None arm must still read the parameter's slot")
	}
}

// genBlock builds a random well-typed block of nested structured
// control flow. The interesting output is the label graph the lowerer
// builds for it, not the computation.
func genBlock(r *rand.Rand, depth int, inLoop bool, nextVar *int) []ast.Statement {
	var out []ast.Statement
	for n := 1 + r.Intn(3); n > 0; n-- {
		kind := r.Intn(6)
		if depth <= 0 {
			kind = 0
		}
		switch kind {
		case 0:
			*nextVar++
			name := fmt.Sprintf("v%d", *nextVar)
			out = append(out, bind(name, "int", binary("+", ident("a"), intLit(int64(r.Intn(10))))))
		case 1:
			out = append(out, &ast.IfStmt{
				Token: tk("if"),
				Cond:  ident("p"),
				Then:  genBlock(r, depth-1, inLoop, nextVar),
				Else:  genBlock(r, depth-1, inLoop, nextVar),
			})
		case 2:
			out = append(out, &ast.WhileStmt{
				Token: tk("while"),
				Cond:  ident("p"),
				Body:  genBlock(r, depth-1, true, nextVar),
			})
		case 3:
			out = append(out, &ast.ForStmt{
				Token: tk("for"),
				Var:   "i",
				From:  intLit(0),
				To:    intLit(3),
				Body:  genBlock(r, depth-1, true, nextVar),
			})
		case 4:
			out = append(out, &ast.MatchStmt{
				Token:     tk("match"),
				Scrutinee: ident("o"),
				Cases: []*ast.MatchCase{
					{
						Token:   tk("Some"),
						Pattern: &ast.SomePattern{Token: tk("Some"), Inner: &ast.VariablePattern{Token: tk("w"), Name: "w"}},
						Body:    genBlock(r, depth-1, inLoop, nextVar),
					},
					{
						Token:   tk("None"),
						Pattern: &ast.NonePattern{Token: tk("None")},
						Body:    genBlock(r, depth-1, inLoop, nextVar),
					},
				},
			})
		case 5:
			if !inLoop {
				out = append(out, bind(fmt.Sprintf("u%d", n), "int", intLit(int64(n))))
				break
			}
			if r.Intn(2) == 0 {
				out = append(out, &ast.BreakStmt{Token: tk("break")})
			} else {
				out = append(out, &ast.ContinueStmt{Token: tk("continue")})
			}
		}
	}
	return out
}

// checkLabelGraph re-proves, independently of the validator, that every
// jump target in the function matches exactly one label.
func checkLabelGraph(t *testing.T, seed int64, f *nf.Function) {
	t.Helper()
	labels := map[string]int{}
	var targets []string
	var walk func([]nf.Stmt)
	walk = func(stmts []nf.Stmt) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *nf.Label:
				labels[st.Name]++
			case *nf.Goto:
				targets = append(targets, st.Target)
			case *nf.Branch:
				targets = append(targets, st.True, st.False)
			case *nf.Loop:
				targets = append(targets, st.Header, st.Body, st.Exit)
			case *nf.Sequence:
				walk(st.Stmts)
			}
		}
	}
	walk(f.Body)
	for name, count := range labels {
		if count != 1 {
			t.Fatalf("seed %d: label %s defined %d times", seed, name, count)
		}
	}
	for _, target := range targets {
		if labels[target] != 1 {
			t.Fatalf("seed %d: jump target %s matches %d labels", seed, target, labels[target])
		}
	}
}

func TestRandomControlFlowKeepsLabelsIntact(t *testing.T) {
	for seed := int64(0); seed < 60; seed++ {
		r := rand.New(rand.NewSource(seed))
		nextVar := 0
		body := genBlock(r, 3, false, &nextVar)
		mod := module(fn("gen",
			[]*ast.ParamDecl{param("a", "int"), param("p", "bool"), param("o", "Option[int]")},
			nil, body...))

		bag := diagnostics.NewBag(mod.File)
		res := checker.Check(mod, bag)
		if bag.HasErrors() {
			t.Fatalf("seed %d: generated module does not check: %v", seed, bag.All())
		}
		// Lower validates each function, so atomicity and definite
		// assignment are already proved here.
		out, err := Lower(mod, res, DefaultOptions())
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for _, f := range out.Functions {
			checkLabelGraph(t, seed, f)
		}
	}
}
