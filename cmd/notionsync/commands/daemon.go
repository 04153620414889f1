package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/notionsync/internal/daemon"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct{}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := root.Config
	if _, err := os.Stat(configPath); err != nil {
		configPath = ""
	}
	slog.Info("Starting daemon mode", "config", configPath)
	if err := daemon.New(configPath, cfg, daemon.OpenSyncer).Run(ctx); err != nil {
		return err
	}
	slog.Info("Daemon stopped")
	return nil
}
