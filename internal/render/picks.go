package render

import (
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/notionsync/internal/content"
)

var (
	pickName       = regexp.MustCompile(`[🥇🥈🥉]?\s*\d+위[:\s]*(.*)`)
	pickBadgeBold  = regexp.MustCompile(`\*\*(.+?)\*\*\s*·\s*([\d.]+/\d+)`)
	pickBadgePlain = regexp.MustCompile(`(.+?)\s*·\s*([\d.]+/\d+)`)
	pickProMarker  = regexp.MustCompile(`^[✓✔]\s*`)
	priceBold      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	priceLabel     = regexp.MustCompile(`가격대[:\s]*(.+)`)
	pricePrefix    = regexp.MustCompile(`(?i)💰\s*가격대[:\s]*`)
)

type pick struct {
	name  string
	badge string
	score string
	pros  []string
	price string
}

// parseTopPicks turns every heading_3 of the section into one pick card.
func (r *Renderer) parseTopPicks(sc *scanner, heading string) string {
	var picks []pick
	for !sc.atSectionEnd() {
		if sc.peek().Kind() == content.KindHeading3 {
			picks = append(picks, parsePick(sc))
			continue
		}
		sc.pos++
	}

	var sb strings.Builder
	sb.WriteString(`<h2 id="top-picks">` + escapeHTML(heading) + "</h2>\n")
	if len(picks) > 0 {
		sb.WriteString("<div class=\"top-picks-inline\">\n")
		for i, p := range picks {
			rank := i + 1
			sb.WriteString(renderPickCard(p, rank, sc.ctaByRank[rank]))
		}
		sb.WriteString("</div>")
	}
	return sb.String()
}

func parsePick(sc *scanner) pick {
	title := sc.peek().PlainText()
	var p pick
	if m := pickName.FindStringSubmatch(title); m != nil {
		p.name = strings.TrimSpace(m[1])
	} else {
		p.name = strings.TrimSpace(replaceFirst(leadingMedal, title, ""))
	}

	for sc.pos++; !sc.done(); sc.pos++ {
		b := sc.peek()
		kind := b.Kind()
		if kind == content.KindHeading2 || kind == content.KindHeading3 {
			break
		}
		text := b.PlainText()
		switch kind {
		case content.KindParagraph:
			m := pickBadgeBold.FindStringSubmatch(text)
			if m == nil {
				m = pickBadgePlain.FindStringSubmatch(text)
			}
			if m != nil {
				p.badge = stripBold(m[1])
				p.score = m[2]
			}
		case content.KindBulletedItem:
			switch {
			case strings.HasPrefix(text, "✓") || strings.HasPrefix(text, "✔"):
				p.pros = append(p.pros, pickProMarker.ReplaceAllString(text, ""))
			case strings.Contains(text, "💰") || strings.Contains(text, "가격대"):
				p.price = parsePrice(text)
			}
		}
	}
	return p
}

func parsePrice(text string) string {
	m := priceBold.FindStringSubmatch(text)
	if m == nil {
		m = priceLabel.FindStringSubmatch(text)
	}
	if m != nil {
		return stripBold(m[1])
	}
	return strings.TrimSpace(replaceFirst(pricePrefix, text, ""))
}

func badgeClass(rank int) string {
	switch rank {
	case 1:
		return "best"
	case 2:
		return "primary"
	default:
		return "success"
	}
}

func renderPickCard(p pick, rank int, ctaURL string) string {
	var sb strings.Builder
	featured := ""
	if rank == 1 {
		featured = " featured"
	}
	sb.WriteString(`<div class="pick-card` + featured + "\">\n")
	sb.WriteString(`<span class="pick-rank">` + strconv.Itoa(rank) + "</span>\n")
	sb.WriteString("<div class=\"pick-image\"><div class=\"product-placeholder\">💻</div></div>\n")
	sb.WriteString("<div class=\"pick-body\">\n")
	if p.badge != "" {
		sb.WriteString(`<span class="badge badge-` + badgeClass(rank) + `">` + escapeHTML(p.badge) + "</span>\n")
	}
	sb.WriteString("<h3>" + escapeHTML(p.name) + "</h3>\n")
	if p.score != "" {
		sb.WriteString(`<p class="pick-subtitle">` + escapeHTML(p.score) + "</p>\n")
	}
	if len(p.pros) > 0 {
		sb.WriteString("<ul class=\"pick-pros\">\n")
		for _, pro := range p.pros {
			sb.WriteString("<li>" + escapeHTML(pro) + "</li>\n")
		}
		sb.WriteString("</ul>\n")
	}
	if p.price != "" {
		sb.WriteString(`<div class="pick-price">` + escapeHTML(p.price) + "</div>\n")
	}
	if ctaURL != "" {
		sb.WriteString(`<a href="` + escapeAttr(cleanCTAURL(ctaURL)) +
			"\" class=\"cta-btn pick-cta\" rel=\"nofollow noopener\" target=\"_blank\">최저가 보러가기</a>\n")
	}
	sb.WriteString("</div></div>\n")
	return sb.String()
}
