package pipeline

import (
	"github.com/google/uuid"

	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/checker"
	"github.com/juanmicrosoft/opal-sub016/internal/diagnostics"
	"github.com/juanmicrosoft/opal-sub016/internal/nf"
)

// Context carries one module through the stages. User-level findings
// accumulate in Bag; Fault is reserved for broken internal invariants
// and stops the run.
type Context struct {
	RunID    uuid.UUID
	FilePath string
	Module   *ast.Module

	Bag   *diagnostics.Bag
	Check *checker.Result
	NF    *nf.Module

	Fault error
}

// NewContext prepares a context for one module. Every run gets its own
// identity so logs and stores can correlate artifacts.
func NewContext(filePath string, mod *ast.Module) *Context {
	return &Context{
		RunID:    uuid.New(),
		FilePath: filePath,
		Module:   mod,
		Bag:      diagnostics.NewBag(filePath),
	}
}
