package render

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/notionsync/internal/content"
)

var (
	// Keycaps, ‼️ and ⁉️, and ZWJ sequences count as one icon.
	leadingEmoji = regexp.MustCompile(`^((?:[0-9#*]\x{FE0F}?\x{20E3}|[\p{So}\x{203C}\x{2049}]\x{FE0F}?[\x{1F3FB}-\x{1F3FF}]?)` +
		`(?:\x{200D}\p{So}\x{FE0F}?[\x{1F3FB}-\x{1F3FF}]?)*)\s*`)

	criteriaSplit = regexp.MustCompile(`\s*[-–—]\s*`)
)

type criteriaItem struct {
	emoji       string
	title       string
	description string
}

// parseCriteria consumes leading paragraphs as the description and the following
// bulleted items as criteria. The section ends at the first block that is neither.
func (r *Renderer) parseCriteria(sc *scanner, _ string) string {
	var desc strings.Builder
	for ; !sc.done() && sc.peek().Kind() == content.KindParagraph; sc.pos++ {
		if html := Inline(sc.peek().Text()); html != "" {
			desc.WriteString("<p>" + html + "</p>\n")
		}
	}

	var items []criteriaItem
	for ; !sc.done() && sc.peek().Kind() == content.KindBulletedItem; sc.pos++ {
		items = append(items, parseCriteriaItem(sc.peek().PlainText()))
	}

	var sb strings.Builder
	sb.WriteString("<h3>선정 기준</h3>\n")
	sb.WriteString(desc.String())
	if len(items) > 0 {
		sb.WriteString("<div class=\"criteria-grid\">\n")
		for _, it := range items {
			sb.WriteString(`<div class="criteria-item"><div class="icon">` + it.emoji + "</div><h4>" +
				escapeHTML(it.title) + "</h4><p>" + escapeHTML(it.description) + "</p></div>\n")
		}
		sb.WriteString("</div>")
	}
	return sb.String()
}

func parseCriteriaItem(plain string) criteriaItem {
	item := criteriaItem{emoji: "📌"}
	rest := plain
	if m := leadingEmoji.FindStringSubmatch(plain); m != nil {
		item.emoji = m[1]
		rest = plain[len(m[0]):]
	}

	parts := criteriaSplit.Split(rest, -1)
	item.title = rest
	if parts[0] != "" {
		item.title = stripBold(parts[0])
	}
	if len(parts) > 1 {
		item.description = parts[1]
	}
	return item
}
