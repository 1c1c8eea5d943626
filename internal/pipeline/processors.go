package pipeline

import (
	"fmt"

	"github.com/juanmicrosoft/opal-sub016/internal/checker"
	"github.com/juanmicrosoft/opal-sub016/internal/lowering"
	"github.com/juanmicrosoft/opal-sub016/internal/sigstore"
)

// CheckProcessor runs semantic analysis. Checker panics are internal
// bugs; they surface as faults instead of crashing the driver.
type CheckProcessor struct{}

func (p *CheckProcessor) Process(ctx *Context) *Context {
	defer func() {
		if r := recover(); r != nil {
			ctx.Fault = fmt.Errorf("checker fault: %v", r)
		}
	}()
	ctx.Check = checker.Check(ctx.Module, ctx.Bag)
	return ctx
}

// LowerProcessor lowers the module to normal form. It declines to run
// over a module with errors: lowering demands clean input.
type LowerProcessor struct {
	Opts lowering.Options
}

func (p *LowerProcessor) Process(ctx *Context) *Context {
	if ctx.Bag.HasErrors() || ctx.Check == nil {
		return ctx
	}
	defer func() {
		if r := recover(); r != nil {
			ctx.Fault = fmt.Errorf("lowering fault: %v", r)
		}
	}()
	nfMod, err := lowering.Lower(ctx.Module, ctx.Check, p.Opts)
	if err != nil {
		ctx.Fault = err
		return ctx
	}
	ctx.NF = nfMod
	return ctx
}

// StoreProcessor publishes the checked module's signatures so later
// runs can check dependents against them. Errors in the module mean
// there is nothing trustworthy to publish.
type StoreProcessor struct {
	Store *sigstore.Store
}

func (p *StoreProcessor) Process(ctx *Context) *Context {
	if p.Store == nil || ctx.Check == nil || ctx.Bag.HasErrors() {
		return ctx
	}
	sigs := sigstore.Collect(ctx.Module.Name, ctx.Check.Env)
	if err := p.Store.RecordModule(ctx.Module.Name, ctx.Module.Semantics, ctx.RunID, sigs); err != nil {
		ctx.Fault = err
	}
	return ctx
}
