// Package render converts a Notion block tree into the HTML body of a recommendation
// article. Generic blocks get a fixed default markup; six heading-triggered sections
// (criteria, top picks, comparison, reviews, FAQ, conclusion) are reshaped into the
// site's component markup.
//
// Rendering is pure: no I/O, no shared mutable state, and unknown shapes are omitted
// instead of failing.
package render

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/notionsync/internal/content"
)

// DefaultCTAColumnKeywords select the comparison table column rendered as buttons.
var DefaultCTAColumnKeywords = []string{"CTA", "최저가"}

// Options configures a Renderer.
type Options struct {
	// CTAColumnKeywords are matched case-insensitively against table header text.
	CTAColumnKeywords []string
}

// Renderer is safe for concurrent use.
type Renderer struct {
	ctaColumn *regexp.Regexp
	patterns  []sectionPattern
}

// New builds a Renderer; empty options fall back to the defaults.
func New(opts Options) *Renderer {
	keywords := opts.CTAColumnKeywords
	if len(keywords) == 0 {
		keywords = DefaultCTAColumnKeywords
	}
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	if len(quoted) == 0 {
		for _, k := range DefaultCTAColumnKeywords {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	return &Renderer{
		ctaColumn: regexp.MustCompile(`(?i)` + strings.Join(quoted, "|")),
		patterns:  sectionPatterns,
	}
}

var defaultRenderer = New(Options{})

// Document renders blocks with the default options.
func Document(blocks []content.Block, images content.ImageLocations) string {
	return defaultRenderer.Document(blocks, images)
}

// Document renders the top-level block sequence into one HTML string.
func (r *Renderer) Document(blocks []content.Block, images content.ImageLocations) string {
	return Assemble(r.Sections(blocks, images))
}

// Assemble joins fragments with newlines, wrapping each maximal run of bare list
// items in a single <ul>.
func Assemble(fragments []string) string {
	out := make([]string, 0, len(fragments)+2)
	inList := false
	for _, f := range fragments {
		isItem := strings.HasPrefix(f, "<li>")
		if isItem && !inList {
			out = append(out, "<ul>")
		}
		if !isItem && inList {
			out = append(out, "</ul>")
		}
		inList = isItem
		out = append(out, f)
	}
	if inList {
		out = append(out, "</ul>")
	}
	return strings.Join(out, "\n")
}
