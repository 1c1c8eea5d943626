package main

import (
	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/config"
	"github.com/juanmicrosoft/opal-sub016/internal/token"
)

func tk(lex string, line, col int) token.Token {
	return token.Token{Lexeme: lex, Line: line, Column: col}
}

func ident(name string, line, col int) *ast.Identifier {
	return &ast.Identifier{Token: tk(name, line, col), Name: name}
}

func typeRef(name string, line, col int) *ast.TypeRef {
	return &ast.TypeRef{Token: tk(name, line, col), Name: name}
}

// demoModule is the built-in showcase: a contracted clamp and an Option
// matcher, enough to light up every pipeline stage.
func demoModule() *ast.Module {
	clamp := &ast.FunctionDecl{
		Token: tk("clamp", 1, 1),
		Name:  "clamp",
		Params: []*ast.ParamDecl{
			{Token: tk("v", 1, 10), Name: "v", Type: typeRef("int", 1, 12)},
			{Token: tk("lo", 1, 17), Name: "lo", Type: typeRef("int", 1, 20)},
			{Token: tk("hi", 1, 25), Name: "hi", Type: typeRef("int", 1, 28)},
		},
		ReturnType: typeRef("int", 1, 33),
		Requires: []*ast.ContractClause{{
			Token: tk("requires", 2, 3),
			Cond: &ast.BinaryExpr{
				Token: tk("<=", 2, 15),
				Op:    "<=",
				Left:  ident("lo", 2, 12),
				Right: ident("hi", 2, 18),
			},
			RawText: "lo <= hi",
		}},
		Ensures: []*ast.ContractClause{{
			Token: tk("ensures", 3, 3),
			Cond: &ast.BinaryExpr{
				Token: tk("&&", 3, 25),
				Op:    "&&",
				Left: &ast.BinaryExpr{
					Token: tk(">=", 3, 18),
					Op:    ">=",
					Left:  ident("result", 3, 11),
					Right: ident("lo", 3, 21),
				},
				Right: &ast.BinaryExpr{
					Token: tk("<=", 3, 35),
					Op:    "<=",
					Left:  ident("result", 3, 28),
					Right: ident("hi", 3, 38),
				},
			},
			RawText: "result >= lo && result <= hi",
		}},
		Body: []ast.Statement{
			&ast.IfStmt{
				Token: tk("if", 4, 3),
				Cond: &ast.BinaryExpr{
					Token: tk("<", 4, 8),
					Op:    "<",
					Left:  ident("v", 4, 6),
					Right: ident("lo", 4, 10),
				},
				Then: []ast.Statement{
					&ast.ReturnStmt{Token: tk("return", 4, 15), Value: ident("lo", 4, 22)},
				},
			},
			&ast.IfStmt{
				Token: tk("if", 5, 3),
				Cond: &ast.BinaryExpr{
					Token: tk(">", 5, 8),
					Op:    ">",
					Left:  ident("v", 5, 6),
					Right: ident("hi", 5, 10),
				},
				Then: []ast.Statement{
					&ast.ReturnStmt{Token: tk("return", 5, 15), Value: ident("hi", 5, 22)},
				},
			},
			&ast.ReturnStmt{Token: tk("return", 6, 3), Value: ident("v", 6, 10)},
		},
	}

	describe := &ast.FunctionDecl{
		Token: tk("describe", 9, 1),
		Name:  "describe",
		Params: []*ast.ParamDecl{
			{Token: tk("o", 9, 13), Name: "o", Type: typeRef("Option[int]", 9, 15)},
		},
		ReturnType: typeRef("string", 9, 28),
		Body: []ast.Statement{
			&ast.ReturnStmt{
				Token: tk("return", 10, 3),
				Value: &ast.MatchExpr{
					Token:     tk("match", 10, 10),
					Scrutinee: ident("o", 10, 16),
					Cases: []*ast.MatchExprCase{
						{
							Token:   tk("Some", 11, 5),
							Pattern: &ast.SomePattern{Token: tk("Some", 11, 5), Inner: &ast.VariablePattern{Token: tk("n", 11, 10), Name: "n"}},
							Value:   &ast.StringLit{Token: tk("\"present\"", 11, 16), Value: "present"},
						},
						{
							Token:   tk("None", 12, 5),
							Pattern: &ast.NonePattern{Token: tk("None", 12, 5)},
							Value:   &ast.StringLit{Token: tk("\"empty\"", 12, 13), Value: "empty"},
						},
					},
				},
			},
		},
	}

	return &ast.Module{
		Name:      "demo",
		File:      "demo" + config.SourceFileExt,
		Semantics: config.SemanticsVersion,
		Functions: []*ast.FunctionDecl{clamp, describe},
	}
}
