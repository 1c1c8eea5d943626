// Package pipeline chains the analysis stages over a shared context.
// Stages keep running after user diagnostics so one pass reports
// everything; only an internal fault short-circuits.
package pipeline

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline is an ordered sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the stages in order. Diagnostics never stop the chain;
// each stage decides for itself whether prior errors make its work
// meaningless. A fault stops everything.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		if ctx.Fault != nil {
			return ctx
		}
	}
	return ctx
}
