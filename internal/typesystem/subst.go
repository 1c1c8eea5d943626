package typesystem

// Subst maps type-parameter names to types.
type Subst map[string]Type

// Substitute replaces type parameters by name throughout t. Used when a
// generic function signature is instantiated at a call site.
func Substitute(t Type, s Subst) Type {
	if t == nil || len(s) == 0 {
		return t
	}

	switch tt := Resolve(t).(type) {
	case *TypeParam:
		if repl, ok := s[tt.Name]; ok {
			return repl
		}
		return tt
	case *Option:
		return &Option{Inner: Substitute(tt.Inner, s)}
	case *Result:
		return &Result{Ok: Substitute(tt.Ok, s), Err: Substitute(tt.Err, s)}
	case *Function:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = Substitute(p, s)
		}
		return &Function{Params: params, Return: Substitute(tt.Return, s)}
	case *GenericInstance:
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = Substitute(a, s)
		}
		return &GenericInstance{Base: tt.Base, Args: args}
	default:
		return t
	}
}
