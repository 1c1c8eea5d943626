// Command opal-check runs the semantic pipeline (check, lower, publish
// signatures) over a module and prints the diagnostics and the lowered
// normal form. Until a surface parser lands, the module is the built-in
// showcase; the plumbing is the real one.
package main

import (
	"fmt"
	"os"

	"github.com/juanmicrosoft/opal-sub016/internal/diagnostics"
	"github.com/juanmicrosoft/opal-sub016/internal/lowering"
	"github.com/juanmicrosoft/opal-sub016/internal/pipeline"
	"github.com/juanmicrosoft/opal-sub016/internal/sigstore"
)

const optionsFile = "opal.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "opal-check:", err)
		os.Exit(2)
	}
}

func run() error {
	opts, err := lowering.LoadOptions(optionsFile)
	if err != nil {
		return err
	}

	store, err := sigstore.Open("signatures.db")
	if err != nil {
		return err
	}
	defer store.Close()

	mod := demoModule()
	ctx := pipeline.NewContext(mod.File, mod)
	p := pipeline.New(
		&pipeline.CheckProcessor{},
		&pipeline.LowerProcessor{Opts: opts},
		&pipeline.StoreProcessor{Store: store},
	)
	ctx = p.Run(ctx)

	if ctx.Fault != nil {
		return ctx.Fault
	}

	diagnostics.NewPrinter(os.Stderr).Print(ctx.Bag)
	if ctx.Bag.HasErrors() {
		os.Exit(1)
	}

	if ctx.NF != nil {
		for _, fn := range ctx.NF.Functions {
			fmt.Println(fn.Dump())
		}
	}
	return nil
}
