package ast

import (
	"github.com/juanmicrosoft/opal-sub016/internal/token"
)

// WildcardPattern matches anything and binds nothing.
type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) patternNode() {}
func (wp *WildcardPattern) GetToken() token.Token {
	if wp == nil {
		return token.Token{}
	}
	return wp.Token
}

// VariablePattern matches anything and binds the scrutinee to Name.
type VariablePattern struct {
	Token token.Token
	Name  string
}

func (vp *VariablePattern) patternNode() {}
func (vp *VariablePattern) GetToken() token.Token {
	if vp == nil {
		return token.Token{}
	}
	return vp.Token
}

// LiteralPattern matches when the scrutinee equals the literal.
type LiteralPattern struct {
	Token token.Token
	Lit   Expression
}

func (lp *LiteralPattern) patternNode() {}
func (lp *LiteralPattern) GetToken() token.Token {
	if lp == nil {
		return token.Token{}
	}
	return lp.Token
}

// SomePattern matches a non-empty Option and recurses into the payload.
type SomePattern struct {
	Token token.Token
	Inner Pattern
}

func (sp *SomePattern) patternNode() {}
func (sp *SomePattern) GetToken() token.Token {
	if sp == nil {
		return token.Token{}
	}
	return sp.Token
}

// NonePattern matches an empty Option.
type NonePattern struct {
	Token token.Token
}

func (np *NonePattern) patternNode() {}
func (np *NonePattern) GetToken() token.Token {
	if np == nil {
		return token.Token{}
	}
	return np.Token
}

// OkPattern matches a successful Result and recurses into the value.
type OkPattern struct {
	Token token.Token
	Inner Pattern
}

func (op *OkPattern) patternNode() {}
func (op *OkPattern) GetToken() token.Token {
	if op == nil {
		return token.Token{}
	}
	return op.Token
}

// ErrPattern matches a failed Result and recurses into the error value.
type ErrPattern struct {
	Token token.Token
	Inner Pattern
}

func (ep *ErrPattern) patternNode() {}
func (ep *ErrPattern) GetToken() token.Token {
	if ep == nil {
		return token.Token{}
	}
	return ep.Token
}

// VariantPattern matches one variant of a union scrutinee, binding the
// variant's fields positionally to Bindings.
type VariantPattern struct {
	Token    token.Token
	Name     string
	Bindings []string
}

func (vp *VariantPattern) patternNode() {}
func (vp *VariantPattern) GetToken() token.Token {
	if vp == nil {
		return token.Token{}
	}
	return vp.Token
}
