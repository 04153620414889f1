package render

import (
	"strings"

	"git.home.luguber.info/inful/notionsync/internal/content"
)

const faqArrow = `<svg class="arrow" width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2"><polyline points="6 9 12 15 18 9"/></svg>`

type faqItem struct {
	question string
	answer   string
}

// parseFAQ turns bulleted items into questions. The answer comes from the item's
// children or, when it has none, from the paragraphs that follow it.
func (r *Renderer) parseFAQ(sc *scanner, heading string) string {
	var items []faqItem
	for !sc.atSectionEnd() {
		b := sc.peek()
		if b.Kind() != content.KindBulletedItem {
			sc.pos++
			continue
		}

		question := b.PlainText()
		answer := childAnswer(b.Children)
		if answer == "" {
			if parts, next := followingAnswer(sc.blocks, sc.pos+1); len(parts) > 0 {
				items = append(items, faqItem{question: question, answer: strings.Join(parts, " ")})
				sc.pos = next
				continue
			}
		}
		if question != "" {
			items = append(items, faqItem{question: question, answer: answer})
		}
		sc.pos++
	}

	var sb strings.Builder
	sb.WriteString(`<h2 id="faq">` + escapeHTML(heading) + "</h2>\n")
	if len(items) > 0 {
		sb.WriteString("<div class=\"faq-list\">\n")
		for _, it := range items {
			sb.WriteString("<details class=\"faq-item\">\n")
			sb.WriteString(`<summary class="faq-question">` + escapeHTML(it.question) + faqArrow + "</summary>\n")
			sb.WriteString(`<div class="faq-answer-inner">` + it.answer + "</div>\n")
			sb.WriteString("</details>\n")
		}
		sb.WriteString("</div>")
	}
	return sb.String()
}

func childAnswer(children []content.Block) string {
	var parts []string
	for _, c := range children {
		if html := Inline(c.Text()); html != "" {
			parts = append(parts, html)
		}
	}
	return strings.Join(parts, " ")
}

// followingAnswer collects paragraph HTML from start up to the next bulleted item,
// heading_2 or heading_3 and returns the index where it stopped.
func followingAnswer(blocks []content.Block, start int) ([]string, int) {
	var parts []string
	j := start
	for ; j < len(blocks); j++ {
		switch blocks[j].Kind() {
		case content.KindBulletedItem, content.KindHeading2, content.KindHeading3:
			return parts, j
		case content.KindParagraph:
			if html := Inline(blocks[j].Text()); html != "" {
				parts = append(parts, html)
			}
		}
	}
	return parts, j
}
