package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/linkcheck"
	"git.home.luguber.info/inful/notionsync/internal/posts"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Path string `help:"Posts directory (defaults to output.posts_dir)" type:"path"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	dir := c.Path
	if dir == "" {
		dir = cfg.Output.PostsDir
	}
	return checkPosts(os.Stdout, posts.NewStore(dir), cfg.Output.ImagesPublicPath, cfg.Output.ImagesDir)
}

// checkPosts prints one line per post and every problem found. It fails when any
// post has a problem or references a missing local image.
func checkPosts(w io.Writer, store *posts.Store, publicPath, imagesDir string) error {
	entries, err := store.List()
	if err != nil {
		return err
	}

	problems := 0
	for _, e := range entries {
		body, err := store.ReadBody(e.Path)
		if err != nil {
			return err
		}
		rep, err := linkcheck.AnalyzeString(body)
		if err != nil {
			return errors.ValidationError("failed to parse post body").WithCause(err).WithContext("path", e.Path).Build()
		}
		missing := rep.MissingLocalImages(publicPath, imagesDir)
		_, _ = fmt.Fprintf(w, "%s: %d CTAs, %d links, %d local images, %d remote images\n",
			e.Key(), len(rep.CTAs), len(rep.Links), len(rep.LocalImages), len(rep.RemoteImages))
		for _, p := range rep.Problems {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", p.Reason, p.URL)
		}
		for _, m := range missing {
			_, _ = fmt.Fprintf(w, "  missing local image: %s\n", m.URL)
		}
		problems += len(rep.Problems) + len(missing)
	}

	_, _ = fmt.Fprintf(w, "%d posts checked, %d problems\n", len(entries), problems)
	if problems > 0 {
		return errors.ValidationError("link check found problems").WithContext("count", problems).Build()
	}
	return nil
}
