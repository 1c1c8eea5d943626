package checker

import (
	"fmt"

	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/diagnostics"
	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

// checkPattern type-checks a pattern against the scrutinee type,
// recursively: wildcards match anything, variable patterns bind the
// scrutinee type, literals require literal compatibility, and the
// Some/None/Ok/Err/variant patterns require the corresponding scrutinee
// shape and recurse into the wrapped pattern. An error-typed scrutinee is
// absorbed: bindings still happen (as the error type) and nothing is
// reported, so one mistake does not cascade.
func (c *Checker) checkPattern(p ast.Pattern, scrutinee typesystem.Type) {
	scrutinee = typesystem.Resolve(scrutinee)
	errScrutinee := typesystem.IsError(scrutinee)

	switch pat := p.(type) {
	case *ast.WildcardPattern:
		// Matches anything.

	case *ast.VariablePattern:
		c.env.DefineVariable(pat.Name, scrutinee)

	case *ast.LiteralPattern:
		litType := c.inferExpr(pat.Lit)
		if !errScrutinee && !typesystem.Assignable(scrutinee, litType) {
			c.report(diagnostics.ErrM002, pat, fmt.Sprintf(
				"pattern literal has type %s, scrutinee is %s", litType, scrutinee))
		}

	case *ast.SomePattern:
		if errScrutinee {
			c.checkPattern(pat.Inner, typesystem.ErrType)
			return
		}
		opt, ok := scrutinee.(*typesystem.Option)
		if !ok {
			c.report(diagnostics.ErrM002, pat,
				"Some pattern requires an Option scrutinee, got "+scrutinee.String())
			c.checkPattern(pat.Inner, typesystem.ErrType)
			return
		}
		c.checkPattern(pat.Inner, opt.Inner)

	case *ast.NonePattern:
		if errScrutinee {
			return
		}
		if _, ok := scrutinee.(*typesystem.Option); !ok {
			c.report(diagnostics.ErrM002, pat,
				"None pattern requires an Option scrutinee, got "+scrutinee.String())
		}

	case *ast.OkPattern:
		if errScrutinee {
			c.checkPattern(pat.Inner, typesystem.ErrType)
			return
		}
		res, ok := scrutinee.(*typesystem.Result)
		if !ok {
			c.report(diagnostics.ErrM002, pat,
				"Ok pattern requires a Result scrutinee, got "+scrutinee.String())
			c.checkPattern(pat.Inner, typesystem.ErrType)
			return
		}
		c.checkPattern(pat.Inner, res.Ok)

	case *ast.ErrPattern:
		if errScrutinee {
			c.checkPattern(pat.Inner, typesystem.ErrType)
			return
		}
		res, ok := scrutinee.(*typesystem.Result)
		if !ok {
			c.report(diagnostics.ErrM002, pat,
				"Err pattern requires a Result scrutinee, got "+scrutinee.String())
			c.checkPattern(pat.Inner, typesystem.ErrType)
			return
		}
		c.checkPattern(pat.Inner, res.Err)

	case *ast.VariantPattern:
		c.checkVariantPattern(pat, scrutinee, errScrutinee)

	default:
		panic(fmt.Sprintf("checker: unknown pattern kind %T", p))
	}
}

func (c *Checker) checkVariantPattern(pat *ast.VariantPattern, scrutinee typesystem.Type, errScrutinee bool) {
	if errScrutinee {
		for _, b := range pat.Bindings {
			c.env.DefineVariable(b, typesystem.ErrType)
		}
		return
	}

	union, ok := scrutinee.(*typesystem.Union)
	if !ok {
		c.report(diagnostics.ErrM002, pat, fmt.Sprintf(
			"variant pattern %s requires a union scrutinee, got %s", pat.Name, scrutinee))
		for _, b := range pat.Bindings {
			c.env.DefineVariable(b, typesystem.ErrType)
		}
		return
	}

	variant, ok := union.Variant(pat.Name)
	if !ok {
		c.report(diagnostics.ErrM002, pat, fmt.Sprintf(
			"union %s has no variant %s", union.Name, pat.Name))
		for _, b := range pat.Bindings {
			c.env.DefineVariable(b, typesystem.ErrType)
		}
		return
	}

	if len(pat.Bindings) != len(variant.Fields) {
		c.report(diagnostics.ErrM002, pat, fmt.Sprintf(
			"variant %s.%s has %d fields, pattern binds %d",
			union.Name, variant.Name, len(variant.Fields), len(pat.Bindings)))
	}
	for i, b := range pat.Bindings {
		t := typesystem.Type(typesystem.ErrType)
		if i < len(variant.Fields) {
			t = variant.Fields[i].Type
		}
		c.env.DefineVariable(b, t)
	}
}
