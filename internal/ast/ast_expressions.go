package ast

import (
	"github.com/juanmicrosoft/opal-sub016/internal/token"
)

// IntLit is an integer literal.
type IntLit struct {
	Token token.Token
	Value int64
}

func (il *IntLit) expressionNode() {}
func (il *IntLit) GetToken() token.Token {
	if il == nil {
		return token.Token{}
	}
	return il.Token
}

// FloatLit is a floating point literal.
type FloatLit struct {
	Token token.Token
	Value float64
}

func (fl *FloatLit) expressionNode() {}
func (fl *FloatLit) GetToken() token.Token {
	if fl == nil {
		return token.Token{}
	}
	return fl.Token
}

// BoolLit is true or false.
type BoolLit struct {
	Token token.Token
	Value bool
}

func (bl *BoolLit) expressionNode() {}
func (bl *BoolLit) GetToken() token.Token {
	if bl == nil {
		return token.Token{}
	}
	return bl.Token
}

// StringLit is a string literal.
type StringLit struct {
	Token token.Token
	Value string
}

func (sl *StringLit) expressionNode() {}
func (sl *StringLit) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

// UnitLit is the unit value.
type UnitLit struct {
	Token token.Token
}

func (ul *UnitLit) expressionNode() {}
func (ul *UnitLit) GetToken() token.Token {
	if ul == nil {
		return token.Token{}
	}
	return ul.Token
}

// Identifier references a variable by name.
type Identifier struct {
	Token token.Token
	Name  string
}

func (id *Identifier) expressionNode() {}
func (id *Identifier) GetToken() token.Token {
	if id == nil {
		return token.Token{}
	}
	return id.Token
}

// BinaryExpr applies a binary operator. Operators are the source-level
// spellings: + - * / % == != < <= > >= && ||.
type BinaryExpr struct {
	Token token.Token
	Op    string
	Left  Expression
	Right Expression
}

func (be *BinaryExpr) expressionNode() {}
func (be *BinaryExpr) GetToken() token.Token {
	if be == nil {
		return token.Token{}
	}
	return be.Token
}

// UnaryExpr applies a unary operator: "-" (numeric negate) or "!" (not).
type UnaryExpr struct {
	Token   token.Token
	Op      string
	Operand Expression
}

func (ue *UnaryExpr) expressionNode() {}
func (ue *UnaryExpr) GetToken() token.Token {
	if ue == nil {
		return token.Token{}
	}
	return ue.Token
}

// CallExpr calls a named function or union variant constructor.
type CallExpr struct {
	Token  token.Token
	Callee string
	Args   []Expression
}

func (ce *CallExpr) expressionNode() {}
func (ce *CallExpr) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// SomeExpr wraps a value into an Option.
type SomeExpr struct {
	Token token.Token
	Value Expression
}

func (se *SomeExpr) expressionNode() {}
func (se *SomeExpr) GetToken() token.Token {
	if se == nil {
		return token.Token{}
	}
	return se.Token
}

// NoneExpr is the empty Option; its element type is a fresh type variable
// until context constrains it.
type NoneExpr struct {
	Token token.Token
}

func (ne *NoneExpr) expressionNode() {}
func (ne *NoneExpr) GetToken() token.Token {
	if ne == nil {
		return token.Token{}
	}
	return ne.Token
}

// OkExpr wraps a success value into a Result.
type OkExpr struct {
	Token token.Token
	Value Expression
}

func (oe *OkExpr) expressionNode() {}
func (oe *OkExpr) GetToken() token.Token {
	if oe == nil {
		return token.Token{}
	}
	return oe.Token
}

// ErrExpr wraps an error value into a Result.
type ErrExpr struct {
	Token token.Token
	Value Expression
}

func (ee *ErrExpr) expressionNode() {}
func (ee *ErrExpr) GetToken() token.Token {
	if ee == nil {
		return token.Token{}
	}
	return ee.Token
}

// FieldInit supplies one field of a record literal.
type FieldInit struct {
	Token token.Token
	Name  string
	Value Expression
}

func (fi *FieldInit) GetToken() token.Token {
	if fi == nil {
		return token.Token{}
	}
	return fi.Token
}

// RecordLit constructs a value of a named record type.
type RecordLit struct {
	Token    token.Token
	TypeName string
	Fields   []*FieldInit
}

func (rl *RecordLit) expressionNode() {}
func (rl *RecordLit) GetToken() token.Token {
	if rl == nil {
		return token.Token{}
	}
	return rl.Token
}

// FieldAccess reads a field of a record-typed expression.
type FieldAccess struct {
	Token  token.Token
	Target Expression
	Field  string
}

func (fa *FieldAccess) expressionNode() {}
func (fa *FieldAccess) GetToken() token.Token {
	if fa == nil {
		return token.Token{}
	}
	return fa.Token
}

// IndexExpr reads an element of a List or Map by index/key.
type IndexExpr struct {
	Token  token.Token
	Target Expression
	Index  Expression
}

func (ie *IndexExpr) expressionNode() {}
func (ie *IndexExpr) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// MatchExprCase is one case of a match expression; Value is the case's
// trailing result expression.
type MatchExprCase struct {
	Token   token.Token
	Pattern Pattern
	Guard   Expression
	Value   Expression
}

func (mc *MatchExprCase) GetToken() token.Token {
	if mc == nil {
		return token.Token{}
	}
	return mc.Token
}

// MatchExpr is match in expression position: every case yields a value and
// all case types must agree.
type MatchExpr struct {
	Token     token.Token
	Scrutinee Expression
	Cases     []*MatchExprCase
}

func (me *MatchExpr) expressionNode() {}
func (me *MatchExpr) GetToken() token.Token {
	if me == nil {
		return token.Token{}
	}
	return me.Token
}

// TernaryExpr is cond ? then : else.
type TernaryExpr struct {
	Token token.Token
	Cond  Expression
	Then  Expression
	Else  Expression
}

func (te *TernaryExpr) expressionNode() {}
func (te *TernaryExpr) GetToken() token.Token {
	if te == nil {
		return token.Token{}
	}
	return te.Token
}

// CoalesceExpr is left ?? right: unwraps an Option on the left or falls
// back to the right operand, which is only evaluated when left is None.
type CoalesceExpr struct {
	Token token.Token
	Left  Expression
	Right Expression
}

func (ce *CoalesceExpr) expressionNode() {}
func (ce *CoalesceExpr) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// CastExpr is an explicit source-level conversion: value as Type.
type CastExpr struct {
	Token  token.Token
	Value  Expression
	Target *TypeRef
}

func (ce *CastExpr) expressionNode() {}
func (ce *CastExpr) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}
