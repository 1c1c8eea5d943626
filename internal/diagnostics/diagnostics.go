package diagnostics

import (
	"fmt"

	"github.com/juanmicrosoft/opal-sub016/internal/token"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Code is a stable diagnostic code. Codes are partitioned by family and
// never renumbered across releases: S = semantic (undefined reference,
// duplicate definition, type mismatch), C = contract declarations,
// M = match exhaustiveness, V = semantics versioning.
type Code struct {
	ID       string
	Severity Severity
}

var (
	// Semantic family.
	ErrS001 = Code{ID: "S001", Severity: SeverityError} // undefined reference
	ErrS002 = Code{ID: "S002", Severity: SeverityError} // duplicate definition
	ErrS003 = Code{ID: "S003", Severity: SeverityError} // type mismatch
	ErrS004 = Code{ID: "S004", Severity: SeverityError} // invalid operand

	// Contract family.
	ErrC001 = Code{ID: "C001", Severity: SeverityError} // invalid contract declaration

	// Match family.
	ErrM001 = Code{ID: "M001", Severity: SeverityError} // non-exhaustive match
	ErrM002 = Code{ID: "M002", Severity: SeverityError} // pattern/scrutinee mismatch

	// Semantics-version family.
	WarnV001 = Code{ID: "V001", Severity: SeverityWarning} // newer minor version
	ErrV002  = Code{ID: "V002", Severity: SeverityError}   // incompatible major version
)

// Diagnostic is one reported finding: stable code, severity, message and
// source span. Diagnostics are values collected in a Bag, never thrown.
type Diagnostic struct {
	Code     string
	Severity Severity
	Message  string
	Token    token.Token
	File     string
}

// New creates a diagnostic for the given code and location.
func New(code Code, tok token.Token, message string) *Diagnostic {
	return &Diagnostic{
		Code:     code.ID,
		Severity: code.Severity,
		Message:  message,
		Token:    tok,
	}
}

func (d *Diagnostic) String() string {
	loc := d.Token.Pos()
	if d.File != "" {
		loc = d.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s[%s]: %s", loc, d.Severity, d.Code, d.Message)
}
