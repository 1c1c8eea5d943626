// Package nf defines the normal-form intermediate representation: the
// backend-independent output of lowering in which evaluation order,
// control flow, and contract checks are explicit, inspectable
// instructions. Nodes are produced once by the lowering engine and are
// read-only to every downstream consumer.
package nf

import (
	"fmt"
	"strings"

	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

// Expr is a normal-form expression. Compound expressions may hold only
// atomic operands (literals and variable references); the validator
// rejects anything else.
type Expr interface {
	Type() typesystem.Type
	nfExpr()
}

// LiteralKind discriminates literal payloads.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitString
	LitUnit
	LitNone
)

// Literal is an atomic constant.
type Literal struct {
	Kind     LiteralKind
	IntVal   int64
	FloatVal float64
	BoolVal  bool
	StrVal   string
	Typ      typesystem.Type
}

func (l *Literal) nfExpr()                {}
func (l *Literal) Type() typesystem.Type { return l.Typ }

func (l *Literal) String() string {
	switch l.Kind {
	case LitInt:
		return fmt.Sprintf("%d", l.IntVal)
	case LitFloat:
		return fmt.Sprintf("%g", l.FloatVal)
	case LitBool:
		return fmt.Sprintf("%t", l.BoolVal)
	case LitString:
		return fmt.Sprintf("%q", l.StrVal)
	case LitUnit:
		return "unit"
	case LitNone:
		return "none"
	default:
		return "?"
	}
}

// IntLit builds an int literal.
func IntLit(v int64) *Literal {
	return &Literal{Kind: LitInt, IntVal: v, Typ: typesystem.Int}
}

// FloatLit builds a float literal.
func FloatLit(v float64) *Literal {
	return &Literal{Kind: LitFloat, FloatVal: v, Typ: typesystem.Float}
}

// BoolLit builds a bool literal.
func BoolLit(v bool) *Literal {
	return &Literal{Kind: LitBool, BoolVal: v, Typ: typesystem.Bool}
}

// StringLit builds a string literal.
func StringLit(v string) *Literal {
	return &Literal{Kind: LitString, StrVal: v, Typ: typesystem.String}
}

// VarRef is an atomic reference to a variable or temporary.
type VarRef struct {
	Name string
	Typ  typesystem.Type
}

func (v *VarRef) nfExpr()                {}
func (v *VarRef) Type() typesystem.Type { return v.Typ }
func (v *VarRef) String() string        { return v.Name }

// BinaryOp applies an operator to two atomic operands. Checked marks
// integer arithmetic that must trap on overflow; under wrapping mode the
// lowering clears it.
type BinaryOp struct {
	Op      string
	Left    Expr
	Right   Expr
	Checked bool
	Typ     typesystem.Type
}

func (b *BinaryOp) nfExpr()                {}
func (b *BinaryOp) Type() typesystem.Type { return b.Typ }

// UnaryOp applies a unary operator to an atomic operand.
type UnaryOp struct {
	Op      string
	Operand Expr
	Typ     typesystem.Type
}

func (u *UnaryOp) nfExpr()                {}
func (u *UnaryOp) Type() typesystem.Type { return u.Typ }

// Call invokes a function or backend builtin with atomic arguments.
type Call struct {
	Callee string
	Args   []Expr
	Typ    typesystem.Type
}

func (c *Call) nfExpr()                {}
func (c *Call) Type() typesystem.Type { return c.Typ }

// Conversion converts an atomic operand between numeric types. Implicit
// int -> float coercions the checker allowed are still materialized as
// explicit Conversion nodes; float -> int appears only where the source
// carried an explicit cast.
type Conversion struct {
	Operand Expr
	From    typesystem.Type
	To      typesystem.Type
}

func (c *Conversion) nfExpr()                {}
func (c *Conversion) Type() typesystem.Type { return c.To }

// IsAtomic reports whether e may appear as a compound node's operand.
func IsAtomic(e Expr) bool {
	switch e.(type) {
	case *Literal, *VarRef:
		return true
	default:
		return false
	}
}

// Stmt is a normal-form statement.
type Stmt interface {
	nfStmt()
}

// Assign evaluates a compound or atomic expression into a named slot.
// Temporaries are single-assignment by construction of the lowering.
type Assign struct {
	Target string
	Value  Expr
}

func (a *Assign) nfStmt() {}

// Sequence groups statements in order.
type Sequence struct {
	Stmts []Stmt
}

func (s *Sequence) nfStmt() {}

// Branch jumps to True when the atomic boolean condition holds, else to
// False. Both labels must exist exactly once in the same function.
type Branch struct {
	Cond  Expr
	True  string
	False string
}

func (b *Branch) nfStmt() {}

// Loop annotates a loop's header, body, and exit labels so a backend can
// recover the shape without pattern-matching gotos.
type Loop struct {
	Header string
	Body   string
	Exit   string
}

func (l *Loop) nfStmt() {}

// Return leaves the function; Value is nil for void returns.
type Return struct {
	Value Expr
}

func (r *Return) nfStmt() {}

// Throw raises a user-level error value.
type Throw struct {
	Value Expr
}

func (t *Throw) nfStmt() {}

// Label names a join point.
type Label struct {
	Name string
}

func (l *Label) nfStmt() {}

// Goto transfers control to the statement after the matching Label.
type Goto struct {
	Target string
}

func (g *Goto) nfStmt() {}

// Catch is one handler of a Try.
type Catch struct {
	Binding string
	Body    []Stmt
}

// Try runs Body with handlers and an optional finalizer.
type Try struct {
	Body    []Stmt
	Catches []Catch
	Finally []Stmt
}

func (t *Try) nfStmt() {}

// ContractKind tags a contract-violation signal.
type ContractKind int

const (
	Precondition ContractKind = iota
	Postcondition
)

func (k ContractKind) String() string {
	switch k {
	case Precondition:
		return "precondition"
	case Postcondition:
		return "postcondition"
	default:
		return "unknown"
	}
}

// RaiseContract raises a contract-violation signal: a runtime-observable
// outcome distinct from compile-time diagnostics, carrying the owning
// function's identifier, the clause's optional message, and the literal
// source condition text.
type RaiseContract struct {
	Kind      ContractKind
	Function  string
	Message   string
	Condition string
}

func (r *RaiseContract) nfStmt() {}

// Trap marks a point control must never reach, e.g. falling off a match
// chain the checker proved exhaustive.
type Trap struct {
	Reason string
}

func (t *Trap) nfStmt() {}

// Param is a function parameter in normal form.
type Param struct {
	Name string
	Typ  typesystem.Type
}

// Function is one lowered function: an ordered statement list satisfying
// the validity invariants.
type Function struct {
	Name   string
	Params []Param
	Result typesystem.Type
	Body   []Stmt
}

// Module is the lowered output for one input module.
type Module struct {
	Name      string
	Functions []*Function
}

// InternalError reports a broken normal-form invariant: a compiler bug,
// not a user error. Producers must abort rather than emit malformed
// output.
type InternalError struct {
	Function string
	Detail   string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal fault in %s: %s", e.Function, e.Detail)
}

func exprString(e Expr) string {
	switch x := e.(type) {
	case *Literal:
		return x.String()
	case *VarRef:
		return x.Name
	case *BinaryOp:
		op := x.Op
		if x.Checked {
			op += ".checked"
		}
		return fmt.Sprintf("(%s %s %s)", exprString(x.Left), op, exprString(x.Right))
	case *UnaryOp:
		return fmt.Sprintf("(%s%s)", x.Op, exprString(x.Operand))
	case *Call:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = exprString(a)
		}
		return fmt.Sprintf("%s(%s)", x.Callee, strings.Join(args, ", "))
	case *Conversion:
		return fmt.Sprintf("conv[%s->%s](%s)", x.From, x.To, exprString(x.Operand))
	default:
		return "?"
	}
}
