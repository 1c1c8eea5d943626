package typesystem

import "fmt"

// TypeVar is a placeholder type used during inference. It is a two-state
// value: unresolved, or resolved to exactly one concrete type. Equality
// uses identity until resolution and defers to the resolved type after.
type TypeVar struct {
	id       int
	resolved Type
}

func (v *TypeVar) typeNode() {}

func (v *TypeVar) String() string {
	if v.resolved != nil {
		return v.resolved.String()
	}
	return fmt.Sprintf("t%d", v.id)
}

// ID returns the variable's allocator-assigned identity.
func (v *TypeVar) ID() int { return v.id }

// Resolved returns the resolution, if any.
func (v *TypeVar) Resolved() (Type, bool) {
	return v.resolved, v.resolved != nil
}

// ErrAlreadyResolved is returned by Resolve on a second resolution attempt.
type ErrAlreadyResolved struct {
	Var      *TypeVar
	Existing Type
}

func (e *ErrAlreadyResolved) Error() string {
	return fmt.Sprintf("type variable t%d already resolved to %s", e.Var.id, e.Existing.String())
}

// Resolve fixes the variable to t. Resolving twice is an internal fault
// surfaced as a typed error rather than a runtime surprise.
func (v *TypeVar) Resolve(t Type) error {
	if v.resolved != nil {
		return &ErrAlreadyResolved{Var: v, Existing: v.resolved}
	}
	if t == nil {
		return fmt.Errorf("type variable t%d: cannot resolve to nil", v.id)
	}
	v.resolved = t
	return nil
}

// Resolve follows resolved type variables until reaching a concrete type
// or an unresolved variable.
func Resolve(t Type) Type {
	for {
		v, ok := t.(*TypeVar)
		if !ok || v.resolved == nil {
			return t
		}
		t = v.resolved
	}
}

// VarAllocator hands out fresh type variables for one checking session.
// It is threaded through explicitly so concurrent module passes owned by
// a surrounding driver never share identities.
type VarAllocator struct {
	next int
}

// NewVarAllocator creates an allocator starting at identity 1.
func NewVarAllocator() *VarAllocator {
	return &VarAllocator{next: 1}
}

// Fresh allocates an unresolved type variable with a session-unique id.
func (a *VarAllocator) Fresh() *TypeVar {
	v := &TypeVar{id: a.next}
	a.next++
	return v
}
