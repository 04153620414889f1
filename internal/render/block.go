package render

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/notionsync/internal/content"
)

var (
	paragraphCTA     = regexp.MustCompile(`👉\s*<a href="(.+?)">(.+?)</a>`)
	headingIDSpace   = regexp.MustCompile(`\s+`)
	headingIDInvalid = regexp.MustCompile(`[^\w가-힣-]`)
)

// Block renders a single block with its default markup. An empty result means the
// block is omitted from the document.
func (r *Renderer) Block(b content.Block, images content.ImageLocations) string {
	switch p := b.Payload.(type) {
	case content.Paragraph:
		return renderParagraph(p.Text)
	case content.Heading:
		return renderHeading(p)
	case content.BulletedItem:
		return "<li>" + Inline(p.Text) + "</li>"
	case content.NumberedItem:
		return "<li>" + Inline(p.Text) + "</li>"
	case content.ToDo:
		checked := ""
		if p.Checked {
			checked = "checked"
		}
		return `<li><input type="checkbox" ` + checked + ` disabled> ` + Inline(p.Text) + "</li>"
	case content.Toggle:
		return r.renderToggle(b, p, images)
	case content.Code:
		return `<pre><code class="language-` + p.Language + `">` + escapeHTML(p.Text.Plain()) + "</code></pre>"
	case content.Quote:
		return "<blockquote><p>" + Inline(p.Text) + "</p></blockquote>"
	case content.Callout:
		icon := p.Icon
		if icon == "" {
			icon = "💡"
		}
		return "<blockquote><p>" + icon + " " + Inline(p.Text) + "</p></blockquote>"
	case content.Divider:
		return "<hr>"
	case content.Image:
		return renderImage(b.ID, p, images)
	case content.Bookmark:
		if p.URL == "" {
			return ""
		}
		return `<a href="` + escapeAttr(p.URL) + `">` + escapeHTML(p.URL) + "</a>"
	case content.Embed:
		if p.URL == "" {
			return ""
		}
		return `<a href="` + escapeAttr(p.URL) + `">임베드</a>`
	case content.Table:
		return r.Table(b)
	case content.ColumnList:
		return r.renderColumns(b, images)
	default:
		return ""
	}
}

func renderParagraph(rt content.RichText) string {
	inline := Inline(rt)
	if inline == "" {
		return ""
	}
	if m := paragraphCTA.FindStringSubmatch(inline); m != nil {
		href := cleanCTAURL(unescapeAttr(m[1]))
		return `<div style="text-align:center;margin:20px 0;"><a href="` + escapeAttr(href) +
			`" class="cta-btn" rel="nofollow noopener" target="_blank">` + m[2] + "</a></div>"
	}
	return "<p>" + inline + "</p>"
}

func renderHeading(h content.Heading) string {
	inline := Inline(h.Text)
	switch h.Level {
	case 1:
		return "<h2>" + inline + "</h2>"
	case 2:
		return `<h3 id="` + headingID(h.Text.Plain()) + `">` + inline + "</h3>"
	default:
		return "<h4>" + inline + "</h4>"
	}
}

// headingID derives an anchor id that keeps Hangul syllables.
func headingID(text string) string {
	id := headingIDSpace.ReplaceAllString(text, "-")
	id = headingIDInvalid.ReplaceAllString(id, "")
	return strings.ToLower(id)
}

func (r *Renderer) renderToggle(b content.Block, p content.Toggle, images content.ImageLocations) string {
	var sb strings.Builder
	sb.WriteString("<details class=\"faq-item\">\n<summary class=\"faq-question\">")
	sb.WriteString(Inline(p.Text))
	sb.WriteString("</summary>\n")
	if len(b.Children) > 0 {
		sb.WriteString(`<div class="faq-answer-inner">`)
		sb.WriteString(r.joinChildren(b.Children, images))
		sb.WriteString("</div>")
	}
	sb.WriteString("\n</details>")
	return sb.String()
}

func renderImage(id string, p content.Image, images content.ImageLocations) string {
	src := p.URL()
	if local, ok := images[id]; ok {
		src = local
	}
	alt := p.Caption.Plain()
	if alt == "" {
		alt = "image"
	}
	return `<img src="` + escapeAttr(src) + `" alt="` + escapeAttr(alt) +
		`" loading="lazy" decoding="async" style="max-width:100%;border-radius:8px;">`
}

func (r *Renderer) renderColumns(b content.Block, images content.ImageLocations) string {
	cols := make([]string, 0, len(b.Children))
	for _, col := range b.Children {
		cols = append(cols, r.joinChildren(col.Children, images))
	}
	return strings.Join(cols, "\n")
}

// joinChildren renders children and joins the non-empty results with newlines.
func (r *Renderer) joinChildren(children []content.Block, images content.ImageLocations) string {
	parts := make([]string, 0, len(children))
	for _, child := range children {
		if html := r.Block(child, images); html != "" {
			parts = append(parts, html)
		}
	}
	return strings.Join(parts, "\n")
}
