package sigstore

import (
	"sort"

	"github.com/juanmicrosoft/opal-sub016/internal/symbols"
)

// Collect flattens a checked environment's function signatures into
// storable form, sorted by name.
func Collect(module string, env *symbols.Environment) []FunctionSig {
	funcs := env.Functions()
	sigs := make([]FunctionSig, 0, len(funcs))
	for name, sig := range funcs {
		params := make([]string, len(sig.Params))
		for i, p := range sig.Params {
			params[i] = p.String()
		}
		ret := "void"
		if sig.Return != nil {
			ret = sig.Return.String()
		}
		sigs = append(sigs, FunctionSig{
			Module: module,
			Name:   name,
			Params: params,
			Return: ret,
		})
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].Name < sigs[j].Name })
	return sigs
}
