package typesystem

// Equal reports pure structural equality. Unresolved type variables compare
// by identity; resolved ones compare by their resolution. No coercions and
// no error absorption: <error> equals only <error>.
func Equal(a, b Type) bool {
	a, b = Resolve(a), Resolve(b)

	if av, ok := a.(*TypeVar); ok {
		bv, ok := b.(*TypeVar)
		return ok && av == bv
	}

	switch at := a.(type) {
	case *Primitive:
		bt, ok := b.(*Primitive)
		return ok && at.Name == bt.Name
	case *Option:
		bt, ok := b.(*Option)
		return ok && Equal(at.Inner, bt.Inner)
	case *Result:
		bt, ok := b.(*Result)
		return ok && Equal(at.Ok, bt.Ok) && Equal(at.Err, bt.Err)
	case *Record:
		bt, ok := b.(*Record)
		return ok && at.Name == bt.Name
	case *Union:
		bt, ok := b.(*Union)
		return ok && at.Name == bt.Name
	case *Function:
		bt, ok := b.(*Function)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Equal(at.Return, bt.Return)
	case *GenericInstance:
		bt, ok := b.(*GenericInstance)
		if !ok || at.Base != bt.Base || len(at.Args) != len(bt.Args) {
			return false
		}
		for i := range at.Args {
			if !Equal(at.Args[i], bt.Args[i]) {
				return false
			}
		}
		return true
	case *TypeParam:
		bt, ok := b.(*TypeParam)
		return ok && at.Name == bt.Name
	case *ErrorType:
		_, ok := b.(*ErrorType)
		return ok
	default:
		return false
	}
}

// Unify makes two types equal where possible, resolving unresolved type
// variables on either side. The error type is absorbed: unifying with
// <error> always succeeds so one mistake does not cascade.
func Unify(a, b Type) bool {
	a, b = Resolve(a), Resolve(b)

	if IsError(a) || IsError(b) {
		return true
	}

	if av, ok := a.(*TypeVar); ok {
		if bv, ok := b.(*TypeVar); ok && av == bv {
			return true
		}
		return av.Resolve(b) == nil
	}
	if bv, ok := b.(*TypeVar); ok {
		return bv.Resolve(a) == nil
	}

	switch at := a.(type) {
	case *Option:
		bt, ok := b.(*Option)
		return ok && Unify(at.Inner, bt.Inner)
	case *Result:
		bt, ok := b.(*Result)
		return ok && Unify(at.Ok, bt.Ok) && Unify(at.Err, bt.Err)
	case *Function:
		bt, ok := b.(*Function)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Unify(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Unify(at.Return, bt.Return)
	case *GenericInstance:
		bt, ok := b.(*GenericInstance)
		if !ok || at.Base != bt.Base || len(at.Args) != len(bt.Args) {
			return false
		}
		for i := range at.Args {
			if !Unify(at.Args[i], bt.Args[i]) {
				return false
			}
		}
		return true
	default:
		return Equal(a, b)
	}
}

// Assignable reports whether a value of type src may be bound to a slot of
// type dst. It absorbs the error type on either side, unifies unresolved
// type variables, and permits exactly one directed primitive coercion:
// int -> float. Container element types are invariant.
func Assignable(dst, src Type) bool {
	dst, src = Resolve(dst), Resolve(src)

	if IsError(dst) || IsError(src) {
		return true
	}

	if _, ok := dst.(*TypeVar); ok {
		return Unify(dst, src)
	}
	if _, ok := src.(*TypeVar); ok {
		return Unify(dst, src)
	}

	if d, ok := dst.(*Primitive); ok {
		s, ok := src.(*Primitive)
		if !ok {
			return false
		}
		if d.Name == s.Name {
			return true
		}
		return d.Name == Float.Name && s.Name == Int.Name
	}

	return Unify(dst, src)
}
