package checker

import (
	"sort"
	"strings"

	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/diagnostics"
	"github.com/juanmicrosoft/opal-sub016/internal/typesystem"
)

// checkExhaustive proves case coverage structurally over the scrutinee's
// variant universe. A wildcard or variable pattern without a guard covers
// everything; a guarded case never counts as covering. Scrutinee types
// without an enumerable universe (int, string, records, collections)
// simply require a default case.
func (c *Checker) checkExhaustive(node ast.Node, scrutinee typesystem.Type, patterns []ast.Pattern, guarded []bool) {
	scrutinee = typesystem.Resolve(scrutinee)
	if typesystem.IsError(scrutinee) {
		return
	}

	for i, p := range patterns {
		if guarded[i] {
			continue
		}
		if isIrrefutable(p) {
			return
		}
	}

	var missing []string
	switch t := scrutinee.(type) {
	case *typesystem.Option:
		missing = missingFrom([]string{"Some", "None"}, coveredOptionResult(patterns, guarded))
	case *typesystem.Result:
		missing = missingFrom([]string{"Ok", "Err"}, coveredOptionResult(patterns, guarded))
	case *typesystem.Union:
		universe := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			universe[i] = v.Name
		}
		missing = missingFrom(universe, coveredVariants(patterns, guarded))
	case *typesystem.Primitive:
		if t.Name == typesystem.Bool.Name {
			missing = missingFrom([]string{"true", "false"}, coveredBools(patterns, guarded))
			break
		}
		missing = []string{"_"}
	default:
		missing = []string{"_"}
	}

	if len(missing) == 0 {
		return
	}

	sort.Strings(missing)
	c.report(diagnostics.ErrM001, node,
		"non-exhaustive match: missing "+strings.Join(missing, ", "))
}

// isIrrefutable reports whether a pattern matches every value of its
// scrutinee type.
func isIrrefutable(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.VariablePattern:
		return true
	default:
		return false
	}
}

// coveredOptionResult collects Some/None/Ok/Err coverage. A wrapper
// pattern only covers its variant when its inner pattern is irrefutable:
// Some(5) does not cover Some.
func coveredOptionResult(patterns []ast.Pattern, guarded []bool) map[string]bool {
	covered := make(map[string]bool)
	for i, p := range patterns {
		if guarded[i] {
			continue
		}
		switch pat := p.(type) {
		case *ast.SomePattern:
			if isIrrefutable(pat.Inner) {
				covered["Some"] = true
			}
		case *ast.NonePattern:
			covered["None"] = true
		case *ast.OkPattern:
			if isIrrefutable(pat.Inner) {
				covered["Ok"] = true
			}
		case *ast.ErrPattern:
			if isIrrefutable(pat.Inner) {
				covered["Err"] = true
			}
		}
	}
	return covered
}

func coveredVariants(patterns []ast.Pattern, guarded []bool) map[string]bool {
	covered := make(map[string]bool)
	for i, p := range patterns {
		if guarded[i] {
			continue
		}
		if pat, ok := p.(*ast.VariantPattern); ok {
			covered[pat.Name] = true
		}
	}
	return covered
}

func coveredBools(patterns []ast.Pattern, guarded []bool) map[string]bool {
	covered := make(map[string]bool)
	for i, p := range patterns {
		if guarded[i] {
			continue
		}
		if pat, ok := p.(*ast.LiteralPattern); ok {
			if lit, ok := pat.Lit.(*ast.BoolLit); ok {
				if lit.Value {
					covered["true"] = true
				} else {
					covered["false"] = true
				}
			}
		}
	}
	return covered
}

func missingFrom(universe []string, covered map[string]bool) []string {
	var missing []string
	for _, name := range universe {
		if !covered[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
