// Package commands implements the notionsync CLI commands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"git.home.luguber.info/inful/notionsync/internal/config"
)

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"notionsync.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Sync    SyncCmd    `cmd:"" help:"Run one sync (scheduled, webhook or manual)"`
	Daemon  DaemonCmd  `cmd:"" help:"Run the scheduler and webhook server"`
	Convert ConvertCmd `cmd:"" help:"Render a JSON block dump to HTML offline"`
	Pages   PagesCmd   `cmd:"" help:"List every page of the Notion database"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Setup   SetupCmd   `cmd:"" help:"Enter the Notion token and database id interactively"`
	Check   CheckCmd   `cmd:"" help:"Check written posts for broken CTA links and remote images"`
}

// AfterApply runs after flag parsing and sets up logging until a configuration
// is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig loads the configuration file, or builds one from the environment
// when the file does not exist, and applies its logging settings.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(root.Config)
	if err != nil {
		return nil, err
	}
	configureLogging(os.Stderr, cfg.Monitoring.Logging, root.Verbose)
	return cfg, nil
}

func configureLogging(w io.Writer, lc config.MonitoringLogging, verbose bool) {
	level := lc.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if lc.Format == config.LogFormatJSON {
		h = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
