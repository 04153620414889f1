package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/notionsync/internal/notion"
	"git.home.luguber.info/inful/notionsync/internal/retry"
)

// PagesCmd implements the 'pages' command.
type PagesCmd struct{}

func (p *PagesCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	client := notion.New(cfg.Notion, notion.WithRetryPolicy(retry.FromConfig(cfg.Retry)))
	pages, err := client.QueryAll(context.Background())
	if err != nil {
		return err
	}
	listPages(os.Stdout, pages, cfg.Notion.DefaultContentType)
	return nil
}

func listPages(w io.Writer, pages []notion.Page, defaultContentType string) {
	_, _ = fmt.Fprintf(w, "%d pages\n", len(pages))
	for _, page := range pages {
		props := notion.ExtractProperties(page, defaultContentType)
		category := props.Category
		if category == "" {
			category = "-"
		}
		_, _ = fmt.Fprintf(w, "[%s] %q | slug: %s | category: %s\n", props.Status, props.Title, props.Slug, category)
	}
}
