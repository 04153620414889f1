package content

import "strings"

// TextRun is one annotated span of rich text.
type TextRun struct {
	Text          string
	Bold          bool
	Italic        bool
	Strikethrough bool
	Code          bool
	// Href is the resolved link of the run.
	Href string
	// LinkURL is the raw text.link.url, set even when Href is empty.
	LinkURL string
}

// RichText is an ordered sequence of runs.
type RichText []TextRun

// Plain concatenates the plain text of all runs.
func (r RichText) Plain() string {
	if len(r) == 1 {
		return r[0].Text
	}
	var b strings.Builder
	for _, run := range r {
		b.WriteString(run.Text)
	}
	return b.String()
}

// FirstLink returns the first run link, preferring Href over LinkURL per run.
func (r RichText) FirstLink() string {
	for _, run := range r {
		if run.Href != "" {
			return run.Href
		}
		if run.LinkURL != "" {
			return run.LinkURL
		}
	}
	return ""
}

// FirstHref returns the first run Href, ignoring LinkURL.
func (r RichText) FirstHref() string {
	for _, run := range r {
		if run.Href != "" {
			return run.Href
		}
	}
	return ""
}

// Plain is a convenience constructor for a single unannotated run.
func Plain(s string) RichText {
	return RichText{{Text: s}}
}
