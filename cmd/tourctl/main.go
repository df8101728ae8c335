package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"tourreport/internal/cli"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""
)

type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`
	Commands
}

func main() {
	cli.LoadEnvFile()

	var app CLI
	ctx := kong.Parse(&app,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("tourctl"),
		kong.Description("Inspect and export saved tour reports."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func buildVersion() string {
	if Version == "" {
		Version = "dev"
	}
	if CommitSHA == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, CommitSHA)
}
