package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/content"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/notion"
	"git.home.luguber.info/inful/notionsync/internal/render"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	Input  string `short:"i" help:"JSON file with a block list (Notion API shape); - reads stdin" required:""`
	Images string `help:"JSON object mapping image block ids to local paths" type:"existingfile"`
	Output string `short:"o" help:"Write HTML to this file instead of stdout"`
}

func (c *ConvertCmd) Run(_ *Global, root *CLI) error {
	data, err := c.readInput()
	if err != nil {
		return err
	}
	blocks, err := notion.DecodeBlocks(data)
	if err != nil {
		return err
	}

	images := content.ImageLocations{}
	if c.Images != "" {
		raw, err := os.ReadFile(c.Images)
		if err != nil {
			return errors.FileSystemError("failed to read image map").WithCause(err).WithContext("path", c.Images).Build()
		}
		if err := json.Unmarshal(raw, &images); err != nil {
			return errors.ValidationError("invalid image map").WithCause(err).WithContext("path", c.Images).Build()
		}
	}

	html := render.New(render.Options{CTAColumnKeywords: renderKeywords(root)}).Document(blocks, images)
	return c.write(html + "\n")
}

func (c *ConvertCmd) readInput() ([]byte, error) {
	if c.Input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.FileSystemError("failed to read stdin").WithCause(err).Build()
		}
		return data, nil
	}
	data, err := os.ReadFile(c.Input)
	if err != nil {
		return nil, errors.FileSystemError("failed to read input").WithCause(err).WithContext("path", c.Input).Build()
	}
	return data, nil
}

func (c *ConvertCmd) write(html string) error {
	if c.Output == "" {
		_, err := fmt.Print(html)
		return err
	}
	if err := os.WriteFile(c.Output, []byte(html), 0o644); err != nil {
		return errors.FileSystemError("failed to write output").WithCause(err).WithContext("path", c.Output).Build()
	}
	return nil
}

// renderKeywords reads the CTA column keywords from the configuration file when
// one is present; convert works offline without Notion credentials.
func renderKeywords(root *CLI) []string {
	if _, err := os.Stat(root.Config); err == nil {
		if cfg, err := config.Load(root.Config); err == nil {
			return cfg.Render.CTAColumnKeywords
		}
	}
	return config.Example().Render.CTAColumnKeywords
}
