package symbols

import (
	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

// Signature is a registered function signature. ParamNames parallel Params;
// Decl points back at the declaration for body checking and lowering.
type Signature struct {
	Name       string
	TypeParams []*typesystem.TypeParam
	Params     []typesystem.Type
	ParamNames []string
	Return     typesystem.Type
	Decl       *ast.FunctionDecl
}

// frame is one lexical scope in the environment's arena. Frames link to
// their parent by index; popping never frees a frame, so a snapshot of the
// arena stays valid for any future speculative checking.
type frame struct {
	parent     int
	vars       map[string]typesystem.Type
	typeParams map[string]typesystem.Type
}

// Environment is the scope-stack symbol table for one module pass: an
// arena of scope frames for variables and type parameters, plus flat
// tables for user/global types and function signatures. It is owned by a
// single traversal and is not safe for concurrent use.
type Environment struct {
	frames  []frame
	current int
	types   map[string]typesystem.Type
	funcs   map[string]*Signature
}

// NewEnvironment creates an environment with only the root scope.
func NewEnvironment() *Environment {
	return &Environment{
		frames: []frame{{
			parent:     -1,
			vars:       make(map[string]typesystem.Type),
			typeParams: make(map[string]typesystem.Type),
		}},
		current: 0,
		types:   make(map[string]typesystem.Type),
		funcs:   make(map[string]*Signature),
	}
}

// EnterScope pushes a fresh variable + type-parameter frame.
func (e *Environment) EnterScope() {
	e.frames = append(e.frames, frame{
		parent:     e.current,
		vars:       make(map[string]typesystem.Type),
		typeParams: make(map[string]typesystem.Type),
	})
	e.current = len(e.frames) - 1
}

// ExitScope pops the current frame. Popping the root scope is a compiler
// bug, not a user error.
func (e *Environment) ExitScope() {
	if e.frames[e.current].parent < 0 {
		panic("symbols: ExitScope on root scope")
	}
	e.current = e.frames[e.current].parent
}

// Depth returns the number of scopes on the stack, root included.
func (e *Environment) Depth() int {
	d := 0
	for i := e.current; i >= 0; i = e.frames[i].parent {
		d++
	}
	return d
}

// DefineVariable binds name in the current scope, shadowing any outer
// binding of the same name.
func (e *Environment) DefineVariable(name string, t typesystem.Type) {
	e.frames[e.current].vars[name] = t
}

// LookupVariable scans innermost to outermost. Absence is a distinct
// result, never a nil masquerading as a type.
func (e *Environment) LookupVariable(name string) (typesystem.Type, bool) {
	for i := e.current; i >= 0; i = e.frames[i].parent {
		if t, ok := e.frames[i].vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// DefineType registers a type. Type parameters go to the current scope's
// table so they shadow and restore correctly; everything else goes to the
// global table and stays visible for the whole pass.
func (e *Environment) DefineType(name string, t typesystem.Type) {
	if _, ok := t.(*typesystem.TypeParam); ok {
		e.frames[e.current].typeParams[name] = t
		return
	}
	e.types[name] = t
}

// LookupType checks scoped type parameters first, then the global table.
func (e *Environment) LookupType(name string) (typesystem.Type, bool) {
	for i := e.current; i >= 0; i = e.frames[i].parent {
		if t, ok := e.frames[i].typeParams[name]; ok {
			return t, true
		}
	}
	if t, ok := e.types[name]; ok {
		return t, true
	}
	return nil, false
}

// DefineFunction registers a signature by name, last write wins.
// Multi-declaration conflicts are the checker's concern, not ours.
func (e *Environment) DefineFunction(sig *Signature) {
	e.funcs[sig.Name] = sig
}

// LookupFunction returns the registered signature for name, if any.
func (e *Environment) LookupFunction(name string) (*Signature, bool) {
	sig, ok := e.funcs[name]
	return sig, ok
}

// Functions returns every registered signature. Iteration order is
// unspecified; callers that need determinism sort by name.
func (e *Environment) Functions() map[string]*Signature {
	return e.funcs
}

// Types returns the global type table.
func (e *Environment) Types() map[string]typesystem.Type {
	return e.types
}
