package ast

import (
	"github.com/juanmicrosoft/opal-sub016/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	GetToken() token.Token
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Pattern is a Node usable on the left side of a match case.
type Pattern interface {
	Node
	patternNode()
}

// Module is the root node of every tree the parser hands us.
// Semantics, when non-empty, is the "major.minor" semantics version the
// module declares it targets.
type Module struct {
	Name      string
	File      string
	Semantics string
	Records   []*RecordDecl
	Unions    []*UnionDecl
	Functions []*FunctionDecl
}

// TypeRef is an unresolved type name as written in source, e.g. "int",
// "Option[string]" or "Map<string, int>". The checker resolves it.
type TypeRef struct {
	Token token.Token
	Name  string
}

func (tr *TypeRef) GetToken() token.Token {
	if tr == nil {
		return token.Token{}
	}
	return tr.Token
}

// RecordDecl declares a named record type with ordered fields.
type RecordDecl struct {
	Token  token.Token
	Name   string
	Fields []*FieldDecl
}

func (rd *RecordDecl) GetToken() token.Token {
	if rd == nil {
		return token.Token{}
	}
	return rd.Token
}

// FieldDecl is one field of a record or union variant.
type FieldDecl struct {
	Token   token.Token
	Name    string
	Type    *TypeRef
	Default Expression // nil when the field has no default
}

func (fd *FieldDecl) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// HasDefault reports whether the field declares a default value.
func (fd *FieldDecl) HasDefault() bool {
	return fd != nil && fd.Default != nil
}

// UnionDecl declares a named union with payload-carrying variants.
type UnionDecl struct {
	Token    token.Token
	Name     string
	Variants []*VariantDecl
}

func (ud *UnionDecl) GetToken() token.Token {
	if ud == nil {
		return token.Token{}
	}
	return ud.Token
}

// VariantDecl is one variant of a union declaration.
type VariantDecl struct {
	Token  token.Token
	Name   string
	Fields []*FieldDecl
}

func (vd *VariantDecl) GetToken() token.Token {
	if vd == nil {
		return token.Token{}
	}
	return vd.Token
}

// TypeParamDecl introduces a type parameter on a function declaration,
// optionally constrained by named traits.
type TypeParamDecl struct {
	Token       token.Token
	Name        string
	Constraints []string
}

func (tp *TypeParamDecl) GetToken() token.Token {
	if tp == nil {
		return token.Token{}
	}
	return tp.Token
}

// ParamDecl is one typed function parameter.
type ParamDecl struct {
	Token token.Token
	Name  string
	Type  *TypeRef
}

func (pd *ParamDecl) GetToken() token.Token {
	if pd == nil {
		return token.Token{}
	}
	return pd.Token
}

// ContractClause is one requires/ensures clause. RawText keeps the literal
// source condition so a violation signal can carry it verbatim.
type ContractClause struct {
	Token   token.Token
	Cond    Expression
	Message string // optional explanatory message, "" when absent
	RawText string
}

func (cc *ContractClause) GetToken() token.Token {
	if cc == nil {
		return token.Token{}
	}
	return cc.Token
}

// FunctionDecl declares a function: type parameters, typed parameters, an
// optional return type (nil means void), contracts, and a body.
type FunctionDecl struct {
	Token      token.Token
	Name       string
	TypeParams []*TypeParamDecl
	Params     []*ParamDecl
	ReturnType *TypeRef
	Requires   []*ContractClause
	Ensures    []*ContractClause
	Body       []Statement
}

func (fd *FunctionDecl) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}
