package main

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"
	"go.uber.org/automaxprocs/maxprocs"

	"git.home.luguber.info/inful/notionsync/cmd/notionsync/commands"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/version"
)

func main() {
	var cli commands.CLI
	kctx := kong.Parse(&cli,
		kong.Name("notionsync"),
		kong.Description("Sync Notion database pages into HTML blog posts."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		slog.Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		slog.Debug("Failed to set GOMAXPROCS", "error", err)
	}

	if err := kctx.Run(&commands.Global{Logger: slog.Default()}, &cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
