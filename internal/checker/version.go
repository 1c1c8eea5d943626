package checker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/juanmicrosoft/opal-sub016/internal/ast"
	"github.com/juanmicrosoft/opal-sub016/internal/config"
	"github.com/juanmicrosoft/opal-sub016/internal/diagnostics"
	"github.com/juanmicrosoft/opal-sub016/internal/token"
)

// checkSemanticsVersion compares the module's declared target semantics
// version against the version this checker implements. Same major with a
// newer minor degrades to a warning; a different major is a hard error.
// Checking still proceeds either way so other diagnostics surface.
func (c *Checker) checkSemanticsVersion(mod *ast.Module) {
	if mod.Semantics == "" {
		return
	}

	declMajor, declMinor, err := parseSemantics(mod.Semantics)
	if err != nil {
		c.bag.Add(diagnostics.New(diagnostics.ErrV002, token.Token{},
			fmt.Sprintf("cannot parse declared semantics version %q", mod.Semantics)))
		return
	}
	supMajor, supMinor, err := parseSemantics(config.SemanticsVersion)
	if err != nil {
		panic("checker: bad built-in semantics version " + config.SemanticsVersion)
	}

	switch {
	case declMajor != supMajor:
		c.bag.Add(diagnostics.New(diagnostics.ErrV002, token.Token{},
			fmt.Sprintf("module targets semantics %s; this checker implements %s (incompatible major version)",
				mod.Semantics, config.SemanticsVersion)))
	case declMinor > supMinor:
		c.bag.Add(diagnostics.New(diagnostics.WarnV001, token.Token{},
			fmt.Sprintf("module targets semantics %s, newer than the supported %s; unknown constructs may be misjudged",
				mod.Semantics, config.SemanticsVersion)))
	}
}

func parseSemantics(v string) (major, minor int, err error) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("semantics version %q is not major.minor", v)
	}
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}
