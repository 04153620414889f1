package render

import (
	"strings"

	"git.home.luguber.info/inful/notionsync/internal/content"
)

// Inline renders rich text runs as inline HTML. Runs with no text are dropped;
// annotations wrap in the order strong, em, del, code and a link wraps everything.
func Inline(rt content.RichText) string {
	var b strings.Builder
	for _, run := range rt {
		s := escapeHTML(run.Text)
		if s == "" {
			continue
		}
		if run.Bold {
			s = "<strong>" + s + "</strong>"
		}
		if run.Italic {
			s = "<em>" + s + "</em>"
		}
		if run.Strikethrough {
			s = "<del>" + s + "</del>"
		}
		if run.Code {
			s = "<code>" + s + "</code>"
		}
		if run.Href != "" {
			s = `<a href="` + escapeAttr(run.Href) + `">` + s + "</a>"
		}
		b.WriteString(s)
	}
	return b.String()
}
