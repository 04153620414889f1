package render

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/notionsync/internal/content"
)

var leadingMedal = regexp.MustCompile(`^\s*[🥇🥈🥉]\s*`)

// Table renders a table block as the comparison table. Row 0 is the header row.
// The first header matching the CTA keywords marks the column rendered as buttons.
func (r *Renderer) Table(b content.Block) string {
	var rows [][]content.RichText
	for _, child := range b.Children {
		if row, ok := child.Payload.(content.TableRow); ok {
			rows = append(rows, row.Cells)
		}
	}
	if len(rows) == 0 {
		return ""
	}

	headers := rows[0]
	ctaCol := -1
	for i, h := range headers {
		if r.ctaColumn.MatchString(stripBold(h.Plain())) {
			ctaCol = i
			break
		}
	}

	var sb strings.Builder
	sb.WriteString("<div class=\"comparison-table-wrapper\">\n")
	sb.WriteString("<table class=\"comparison-table\" aria-label=\"제품 비교표\">\n")
	sb.WriteString("<thead><tr>\n")
	for _, h := range headers {
		sb.WriteString(`<th scope="col">` + escapeHTML(stripBold(h.Plain())) + "</th>\n")
	}
	sb.WriteString("</tr></thead>\n<tbody>\n")

	for _, row := range rows[1:] {
		first := ""
		if len(row) > 0 {
			first = row[0].Plain()
		}
		best := strings.Contains(first, "🥇")
		if best {
			sb.WriteString("<tr class=\"highlight-row\">\n")
		} else {
			sb.WriteString("<tr>\n")
		}

		for ci, raw := range row {
			cell := stripBold(raw.Plain())
			switch {
			case ci == 0:
				name := strings.TrimSpace(replaceFirst(leadingMedal, cell, ""))
				sb.WriteString(`<td class="td-product-name"><div class="product-cell"><div class="product-thumb">💻</div>`)
				sb.WriteString(escapeHTML(name))
				if best {
					sb.WriteString(` <span class="best-badge">BEST</span>`)
				}
				sb.WriteString("</div></td>\n")
			case ci == ctaCol && raw.FirstLink() != "":
				label := cell
				if label == "" {
					label = "최저가 보기"
				}
				sb.WriteString(`<td class="td-cta"><a href="` + escapeAttr(cleanCTAURL(raw.FirstLink())) +
					`" class="cta-btn table-cta" rel="nofollow noopener" target="_blank">` + escapeHTML(label) + "</a></td>\n")
			default:
				sb.WriteString("<td>" + escapeHTML(cell) + "</td>\n")
			}
		}
		sb.WriteString("</tr>\n")
	}

	sb.WriteString("</tbody></table></div>")
	return sb.String()
}

// replaceFirst replaces only the leftmost match of re.
func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
