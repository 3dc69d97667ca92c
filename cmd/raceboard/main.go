package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/dhkang-dev/raceboard/cmd/raceboard/commands"
	"github.com/dhkang-dev/raceboard/internal/packager"
	"github.com/dhkang-dev/raceboard/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("raceboard"),
		kong.Description("Race log analysis, Grafana dashboard uploads, and release packaging."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{}, &cli)
	if err != nil {
		// The packaging tool's exit code passes through unchanged so CI can
		// tell its failures apart from ours.
		if code := packager.ExitCode(err); code > 0 {
			ctx.Errorf("%v", err)
			os.Exit(code)
		}
	}
	ctx.FatalIfErrorf(err)
}
