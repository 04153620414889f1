package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/syncer"
)

// SyncCmd implements the 'sync' command. Flags win over the environment.
type SyncCmd struct {
	Mode       string `short:"m" help:"Sync mode: scheduled, webhook or manual" env:"SYNC_MODE" default:"manual"`
	PageID     string `help:"Page id for webhook mode" env:"PAGE_ID"`
	PageStatus string `help:"Page status for webhook mode" env:"PAGE_STATUS"`
	DryRun     bool   `help:"Render without writing files, state, events or commits"`
}

func (s *SyncCmd) Run(_ *Global, root *CLI) error {
	mode, err := config.ParseSyncMode(s.Mode)
	if err != nil {
		return err
	}
	req := syncer.Request{Mode: mode, PageID: s.PageID, PageStatus: s.PageStatus}
	if err := req.Validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := []syncer.Option{syncer.WithDryRun(s.DryRun)}
	if mode == config.SyncModeManual && isTerminal(os.Stderr) && !root.Verbose {
		opts = append(opts, syncer.WithProgress(syncer.NewTerminalProgress(os.Stderr)))
	}
	sy, err := syncer.Open(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = sy.Close() }()

	rep, err := sy.Run(ctx, req)
	if err != nil {
		return err
	}
	printReport(rep)
	return nil
}

func printReport(rep syncer.Report) {
	prefix := ""
	if rep.DryRun {
		prefix = "[dry run] "
	}
	fmt.Printf("%s%s sync %s: %d written, %d skipped, %d deleted, %d failed\n",
		prefix, rep.Mode, rep.RunID, rep.Written, rep.Skipped, rep.Deleted, rep.Failed)
	for _, f := range rep.Files {
		fmt.Printf("  %s\n", f)
	}
	if rep.Commit != "" {
		fmt.Printf("committed %s\n", rep.Commit)
	}
}
