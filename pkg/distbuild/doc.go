// Package distbuild is the embeddable entry point to the build orchestrator.
//
// It wraps configuration loading and the stage pipeline behind a small fluent
// API, for callers that want to drive builds from their own tooling rather
// than through the distctl command.
//
// # Basic Usage
//
//	import "github.com/distbuild/distctl/pkg/distbuild"
//
//	run, err := distbuild.New().
//		WithConfigFiles("distctl.yaml").
//		WithTarget("all").
//		Prepare(log)
//	if err != nil {
//		return err
//	}
//	if err := run.Execute(ctx); err != nil {
//		return err
//	}
//	for _, a := range run.Artifacts() {
//		fmt.Println(a.Bundle)
//	}
package distbuild
