package token

import "fmt"

// Token identifies a source location plus the lexeme that produced a node.
// The external parser fills these in; everything downstream only reads them.
type Token struct {
	Lexeme string
	Line   int
	Column int
}

// Pos renders the location as "line:column" for diagnostics.
func (t Token) Pos() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}

// IsZero reports whether the token carries no position information.
func (t Token) IsZero() bool {
	return t.Line == 0 && t.Column == 0 && t.Lexeme == ""
}
