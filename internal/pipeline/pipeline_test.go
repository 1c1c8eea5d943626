package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/lowering"
	"github.com/juanmicrosoft/opal-sub016/internal/sigstore"
	"github.com/juanmicrosoft/opal-sub016/internal/token"
)

func tk(lex string, line int) token.Token {
	return token.Token{Lexeme: lex, Line: line, Column: 1}
}

func addModule() *ast.Module {
	add := &ast.FunctionDecl{
		Token: tk("add", 1),
		Name:  "add",
		Params: []*ast.ParamDecl{
			{Token: tk("a", 1), Name: "a", Type: &ast.TypeRef{Token: tk("int", 1), Name: "int"}},
			{Token: tk("b", 1), Name: "b", Type: &ast.TypeRef{Token: tk("int", 1), Name: "int"}},
		},
		ReturnType: &ast.TypeRef{Token: tk("int", 1), Name: "int"},
		Body: []ast.Statement{
			&ast.ReturnStmt{Token: tk("return", 2), Value: &ast.BinaryExpr{
				Token: tk("+", 2),
				Op:    "+",
				Left:  &ast.Identifier{Token: tk("a", 2), Name: "a"},
				Right: &ast.Identifier{Token: tk("b", 2), Name: "b"},
			}},
		},
	}
	return &ast.Module{Name: "calc", File: "calc.opal", Semantics: "1.4", Functions: []*ast.FunctionDecl{add}}
}

func brokenModule() *ast.Module {
	bad := &ast.FunctionDecl{
		Token:      tk("bad", 1),
		Name:       "bad",
		ReturnType: &ast.TypeRef{Token: tk("int", 1), Name: "int"},
		Body: []ast.Statement{
			&ast.ReturnStmt{Token: tk("return", 2), Value: &ast.Identifier{Token: tk("ghost", 2), Name: "ghost"}},
		},
	}
	return &ast.Module{Name: "calc", File: "calc.opal", Functions: []*ast.FunctionDecl{bad}}
}

func TestPipelineEndToEnd(t *testing.T) {
	store, err := sigstore.Open(filepath.Join(t.TempDir(), "sig.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	mod := addModule()
	ctx := NewContext(mod.File, mod)
	p := New(
		&CheckProcessor{},
		&LowerProcessor{Opts: lowering.DefaultOptions()},
		&StoreProcessor{Store: store},
	)
	ctx = p.Run(ctx)

	if ctx.Fault != nil {
		t.Fatalf("fault: %v", ctx.Fault)
	}
	if ctx.Bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", ctx.Bag.All())
	}
	if ctx.NF == nil || len(ctx.NF.Functions) != 1 {
		t.Fatal("pipeline produced no lowered module")
	}
	if ctx.NF.Functions[0].Name != "add" {
		t.Fatalf("lowered function %q, want add", ctx.NF.Functions[0].Name)
	}

	sigs, err := store.Signatures("calc")
	if err != nil {
		t.Fatal(err)
	}
	if len(sigs) != 1 || sigs[0].Name != "add" || sigs[0].Return != "int" {
		t.Fatalf("published signatures %v", sigs)
	}
}

func TestPipelineSkipsLoweringOnErrors(t *testing.T) {
	mod := brokenModule()
	ctx := NewContext(mod.File, mod)
	p := New(
		&CheckProcessor{},
		&LowerProcessor{Opts: lowering.DefaultOptions()},
	)
	ctx = p.Run(ctx)

	if ctx.Fault != nil {
		t.Fatalf("user errors must not fault: %v", ctx.Fault)
	}
	if !ctx.Bag.HasErrors() {
		t.Fatal("broken module produced no diagnostics")
	}
	if ctx.NF != nil {
		t.Fatal("lowering ran over a module with errors")
	}
}

func TestStoreProcessorWithholdsBrokenModule(t *testing.T) {
	store, err := sigstore.Open(filepath.Join(t.TempDir(), "sig.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	mod := brokenModule()
	ctx := NewContext(mod.File, mod)
	ctx = New(&CheckProcessor{}, &StoreProcessor{Store: store}).Run(ctx)

	if ctx.Fault != nil {
		t.Fatalf("fault: %v", ctx.Fault)
	}
	sigs, err := store.Signatures("calc")
	if err != nil {
		t.Fatal(err)
	}
	if len(sigs) != 0 {
		t.Fatalf("broken module published signatures: %v", sigs)
	}
}

func TestRunIDsAreDistinct(t *testing.T) {
	a := NewContext("a.opal", addModule())
	b := NewContext("b.opal", addModule())
	if a.RunID == b.RunID {
		t.Fatal("two contexts share a run identity")
	}
}
