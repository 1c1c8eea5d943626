package checker

import (
	"strings"

	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/config"
	"github.com/juanmicrosoft/opal-sub016/internal/diagnostics"
	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

var primitivesByName = map[string]*typesystem.Primitive{
	"void":   typesystem.Void,
	"int":    typesystem.Int,
	"float":  typesystem.Float,
	"bool":   typesystem.Bool,
	"string": typesystem.String,
	"unit":   typesystem.Unit,
}

// resolveTypeRef resolves a source-level type name to a Type. Generic
// names may use either bracketed (List[int]) or angle-bracketed
// (List<int>) syntax, with nesting-aware argument splitting. Option and
// Result are special-cased to their dedicated representations; other
// applied names become generic instances. Unresolvable names report an
// undefined reference and yield the error type.
func (c *Checker) resolveTypeRef(ref *ast.TypeRef) typesystem.Type {
	if ref == nil {
		return typesystem.Void
	}
	return c.resolveTypeName(ref, strings.TrimSpace(ref.Name))
}

func (c *Checker) resolveTypeName(ref *ast.TypeRef, name string) typesystem.Type {
	base, args, applied, ok := splitGeneric(name)
	if !ok {
		c.report(diagnostics.ErrS001, ref, "malformed type name: "+name)
		return typesystem.ErrType
	}

	if applied {
		resolved := make([]typesystem.Type, len(args))
		for i, a := range args {
			resolved[i] = c.resolveTypeName(ref, a)
		}

		switch base {
		case config.OptionTypeName:
			if len(resolved) != 1 {
				c.report(diagnostics.ErrS004, ref, "Option takes exactly one type argument")
				return typesystem.ErrType
			}
			return &typesystem.Option{Inner: resolved[0]}
		case config.ResultTypeName:
			if len(resolved) != 2 {
				c.report(diagnostics.ErrS004, ref, "Result takes exactly two type arguments")
				return typesystem.ErrType
			}
			return &typesystem.Result{Ok: resolved[0], Err: resolved[1]}
		default:
			return &typesystem.GenericInstance{Base: base, Args: resolved}
		}
	}

	if p, ok := primitivesByName[name]; ok {
		return p
	}
	if t, ok := c.env.LookupType(name); ok {
		return t
	}

	c.report(diagnostics.ErrS001, ref, "undefined reference: type "+name)
	return typesystem.ErrType
}

// splitGeneric splits "Base[a, b]" or "Base<a, b>" into the base name and
// top-level argument strings, tracking bracket nesting of both kinds.
// applied is false for a plain name; ok is false when brackets are
// unbalanced or trailing characters follow the closing bracket.
func splitGeneric(name string) (base string, args []string, applied, ok bool) {
	open := strings.IndexAny(name, "[<")
	if open < 0 {
		return name, nil, false, true
	}

	closing := byte(']')
	if name[open] == '<' {
		closing = '>'
	}
	if name[len(name)-1] != closing {
		return "", nil, false, false
	}

	base = strings.TrimSpace(name[:open])
	inner := name[open+1 : len(name)-1]

	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[', '<':
			depth++
		case ']', '>':
			depth--
			if depth < 0 {
				return "", nil, false, false
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, false, false
	}
	last := strings.TrimSpace(inner[start:])
	if last == "" && len(args) == 0 {
		return "", nil, false, false
	}
	args = append(args, last)
	return base, args, true, true
}
