package ast

import (
	"github.com/juanmicrosoft/opal-sub016/internal/token"
)

// BindStmt introduces a variable. Exactly one of TypeAnnotation/Value may be
// nil; when both are present the value must be assignable to the annotation.
type BindStmt struct {
	Token          token.Token
	Name           string
	TypeAnnotation *TypeRef
	Value          Expression
}

func (bs *BindStmt) statementNode() {}
func (bs *BindStmt) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

// AssignStmt assigns a new value to an existing variable.
type AssignStmt struct {
	Token token.Token
	Name  string
	Value Expression
}

func (as *AssignStmt) statementNode() {}
func (as *AssignStmt) GetToken() token.Token {
	if as == nil {
		return token.Token{}
	}
	return as.Token
}

// IfStmt is a two-armed conditional; Else may be empty.
type IfStmt struct {
	Token token.Token
	Cond  Expression
	Then  []Statement
	Else  []Statement
}

func (is *IfStmt) statementNode() {}
func (is *IfStmt) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	Token token.Token
	Cond  Expression
	Body  []Statement
}

func (ws *WhileStmt) statementNode() {}
func (ws *WhileStmt) GetToken() token.Token {
	if ws == nil {
		return token.Token{}
	}
	return ws.Token
}

// DoWhileStmt is a post-tested loop: the body always runs at least once.
type DoWhileStmt struct {
	Token token.Token
	Body  []Statement
	Cond  Expression
}

func (dw *DoWhileStmt) statementNode() {}
func (dw *DoWhileStmt) GetToken() token.Token {
	if dw == nil {
		return token.Token{}
	}
	return dw.Token
}

// ForStmt is a counted loop. Step may be nil (defaults to 1). The loop
// variable is an integer bound in a scope that spans only the loop.
type ForStmt struct {
	Token token.Token
	Var   string
	From  Expression
	To    Expression
	Step  Expression
	Body  []Statement
}

func (fs *ForStmt) statementNode() {}
func (fs *ForStmt) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// MatchCase is one case of a match statement: pattern, optional boolean
// guard, and a body checked in its own scope.
type MatchCase struct {
	Token   token.Token
	Pattern Pattern
	Guard   Expression
	Body    []Statement
}

func (mc *MatchCase) GetToken() token.Token {
	if mc == nil {
		return token.Token{}
	}
	return mc.Token
}

// MatchStmt dispatches on a scrutinee; cases are tried in declaration order.
type MatchStmt struct {
	Token     token.Token
	Scrutinee Expression
	Cases     []*MatchCase
}

func (ms *MatchStmt) statementNode() {}
func (ms *MatchStmt) GetToken() token.Token {
	if ms == nil {
		return token.Token{}
	}
	return ms.Token
}

// ReturnStmt returns from the enclosing function; Value is nil for void.
type ReturnStmt struct {
	Token token.Token
	Value Expression
}

func (rs *ReturnStmt) statementNode() {}
func (rs *ReturnStmt) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// BreakStmt exits the innermost loop.
type BreakStmt struct {
	Token token.Token
}

func (bs *BreakStmt) statementNode() {}
func (bs *BreakStmt) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

// ContinueStmt jumps to the innermost loop's next iteration.
type ContinueStmt struct {
	Token token.Token
}

func (cs *ContinueStmt) statementNode() {}
func (cs *ContinueStmt) GetToken() token.Token {
	if cs == nil {
		return token.Token{}
	}
	return cs.Token
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	Token token.Token
	Expr  Expression
}

func (es *ExprStmt) statementNode() {}
func (es *ExprStmt) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// CollectionOp enumerates the built-in collection mutation statements.
type CollectionOp int

const (
	OpPush     CollectionOp = iota // list.push(value)
	OpPut                          // map.put(key, value)
	OpRemove                       // map.remove(key) / list.remove(index)
	OpSetIndex                     // list[index] = value
	OpInsert                       // list.insert(index, value)
	OpClear                        // collection.clear()
)

func (op CollectionOp) String() string {
	switch op {
	case OpPush:
		return "push"
	case OpPut:
		return "put"
	case OpRemove:
		return "remove"
	case OpSetIndex:
		return "set-index"
	case OpInsert:
		return "insert"
	case OpClear:
		return "clear"
	default:
		return "unknown"
	}
}

// CollectionStmt mutates a named collection. Which of Key/Value are set
// depends on Op: push uses Value; put uses Key and Value; remove uses Key;
// set-index and insert use Key (the index) and Value; clear uses neither.
type CollectionStmt struct {
	Token      token.Token
	Op         CollectionOp
	Collection string
	Key        Expression
	Value      Expression
}

func (cs *CollectionStmt) statementNode() {}
func (cs *CollectionStmt) GetToken() token.Token {
	if cs == nil {
		return token.Token{}
	}
	return cs.Token
}

// ForEachPairsStmt iterates a map's key/value pairs, binding both in a
// fresh scope per iteration.
type ForEachPairsStmt struct {
	Token      token.Token
	Collection string
	KeyVar     string
	ValueVar   string
	Body       []Statement
}

func (fp *ForEachPairsStmt) statementNode() {}
func (fp *ForEachPairsStmt) GetToken() token.Token {
	if fp == nil {
		return token.Token{}
	}
	return fp.Token
}
