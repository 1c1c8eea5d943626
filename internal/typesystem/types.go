package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all types in our system. The set of
// implementations is closed; every dispatch site switches over all of them
// and treats an unknown kind as an internal fault.
type Type interface {
	String() string
	typeNode()
}

// Primitive is a built-in scalar type. Instances are singletons; equality
// is by name. The only directed coercion between primitives is Int -> Float.
type Primitive struct {
	Name string
}

var (
	Void   = &Primitive{Name: "void"}
	Int    = &Primitive{Name: "int"}
	Float  = &Primitive{Name: "float"}
	Bool   = &Primitive{Name: "bool"}
	String = &Primitive{Name: "string"}
	Unit   = &Primitive{Name: "unit"}
)

func (p *Primitive) typeNode()      {}
func (p *Primitive) String() string { return p.Name }

// Option wraps an inner type: present (Some) or absent (None).
type Option struct {
	Inner Type
}

func (o *Option) typeNode()      {}
func (o *Option) String() string { return fmt.Sprintf("Option[%s]", o.Inner.String()) }

// Result carries either a success value or an error value.
type Result struct {
	Ok  Type
	Err Type
}

func (r *Result) typeNode() {}
func (r *Result) String() string {
	return fmt.Sprintf("Result[%s, %s]", r.Ok.String(), r.Err.String())
}

// RecordField is one declared field of a record or union variant.
type RecordField struct {
	Name       string
	Type       Type
	HasDefault bool
}

// Record is a named record type with an ordered field list.
type Record struct {
	Name   string
	Fields []RecordField
}

func (r *Record) typeNode()      {}
func (r *Record) String() string { return r.Name }

// Field returns the declared field with the given name, if any.
func (r *Record) Field(name string) (RecordField, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return RecordField{}, false
}

// UnionVariant is one named variant of a union, with its payload fields.
type UnionVariant struct {
	Name   string
	Fields []RecordField
}

// Union is a named union of payload-carrying variants.
type Union struct {
	Name     string
	Variants []UnionVariant
}

func (u *Union) typeNode()      {}
func (u *Union) String() string { return u.Name }

// Variant returns the named variant, if the union declares it.
func (u *Union) Variant(name string) (UnionVariant, bool) {
	for _, v := range u.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return UnionVariant{}, false
}

// Function is a function type: ordered parameter types and a return type.
type Function struct {
	Params []Type
	Return Type
}

func (f *Function) typeNode() {}
func (f *Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Return.String())
}

// GenericInstance is an applied collection-like generic, e.g. List[int]
// or Map[string, float]. Option and Result have dedicated representations
// and never appear as GenericInstance.
type GenericInstance struct {
	Base string
	Args []Type
}

func (g *GenericInstance) typeNode() {}
func (g *GenericInstance) String() string {
	parts := make([]string, len(g.Args))
	for i, a := range g.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", g.Base, strings.Join(parts, ", "))
}

// TypeParam is a declared type parameter, scoped to the declaration that
// introduces it.
type TypeParam struct {
	Name        string
	Constraints []string
}

func (t *TypeParam) typeNode()      {}
func (t *TypeParam) String() string { return t.Name }

// ErrorType is the unit "unknown type". Every compatibility check absorbs
// it so one mistake does not cascade into spurious follow-on diagnostics.
type ErrorType struct{}

var ErrType = &ErrorType{}

func (e *ErrorType) typeNode()      {}
func (e *ErrorType) String() string { return "<error>" }

// IsError reports whether t is the error type, looking through resolved
// type variables.
func IsError(t Type) bool {
	_, ok := Resolve(t).(*ErrorType)
	return ok
}

// IsNumeric reports whether t is int or float.
func IsNumeric(t Type) bool {
	p, ok := Resolve(t).(*Primitive)
	return ok && (p.Name == Int.Name || p.Name == Float.Name)
}

// IsBool reports whether t is the boolean primitive.
func IsBool(t Type) bool {
	p, ok := Resolve(t).(*Primitive)
	return ok && p.Name == Bool.Name
}

// IsFloat reports whether t is the float primitive.
func IsFloat(t Type) bool {
	p, ok := Resolve(t).(*Primitive)
	return ok && p.Name == Float.Name
}

// IsInt reports whether t is the int primitive.
func IsInt(t Type) bool {
	p, ok := Resolve(t).(*Primitive)
	return ok && p.Name == Int.Name
}
