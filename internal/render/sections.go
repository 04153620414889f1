package render

import (
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/notionsync/internal/content"
)

// sectionPattern pairs a heading matcher with the parser that consumes the section.
// Patterns are tried in declaration order; the first match wins.
type sectionPattern struct {
	name  string
	match func(heading string) bool
	parse func(r *Renderer, sc *scanner, heading string) string
}

var sectionPatterns = []sectionPattern{
	{name: "criteria", match: containsText("선정 기준"), parse: (*Renderer).parseCriteria},
	{name: "top-picks", match: matches(`(?i)TOP\s*\d*.*한눈에\s*보기`), parse: (*Renderer).parseTopPicks},
	{name: "comparison", match: matches(`(?i)비교표|비교\s*테이블`), parse: (*Renderer).parseComparison},
	{name: "reviews", match: matches(`(?i)상세\s*리뷰`), parse: (*Renderer).parseReviews},
	{name: "faq", match: matches(`(?i)알아야\s*할|FAQ|자주\s*묻는`), parse: (*Renderer).parseFAQ},
	{name: "conclusion", match: matches(`마무리|결론|정리`), parse: (*Renderer).parseConclusion},
}

func containsText(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, sub) }
}

func matches(expr string) func(string) bool {
	re := regexp.MustCompile(expr)
	return re.MatchString
}

// scanner is the cursor shared by the section parsers over one block sequence.
type scanner struct {
	blocks    []content.Block
	pos       int
	images    content.ImageLocations
	ctaByRank map[int]string
}

func (sc *scanner) done() bool { return sc.pos >= len(sc.blocks) }

func (sc *scanner) peek() content.Block { return sc.blocks[sc.pos] }

// atSectionEnd reports whether the cursor is past the end or on a heading_2.
func (sc *scanner) atSectionEnd() bool {
	return sc.done() || sc.peek().Kind() == content.KindHeading2
}

// Sections returns the ordered fragments for a top-level block sequence.
func (r *Renderer) Sections(blocks []content.Block, images content.ImageLocations) []string {
	sc := &scanner{blocks: blocks, images: images, ctaByRank: collectCTAURLs(blocks)}
	var out []string

	for !sc.done() {
		b := sc.peek()
		if b.Kind() == content.KindHeading2 {
			if html, ok := r.matchSection(sc, b.PlainText()); ok {
				out = append(out, html)
				continue
			}
		}
		if html := r.Block(b, images); html != "" {
			out = append(out, html)
		}
		sc.pos++
	}
	return out
}

func (r *Renderer) matchSection(sc *scanner, heading string) (string, bool) {
	for _, p := range r.patterns {
		if p.match(heading) {
			sc.pos++
			return p.parse(r, sc, heading), true
		}
	}
	return "", false
}

var rankHeading = regexp.MustCompile(`[🥇🥈🥉]?\s*(\d+)\.`)

// collectCTAURLs maps product rank to the first 👉 link found under that rank's heading.
func collectCTAURLs(blocks []content.Block) map[int]string {
	byRank := make(map[int]string)
	rank := 0
	for _, b := range blocks {
		switch b.Kind() {
		case content.KindHeading3:
			if m := rankHeading.FindStringSubmatch(b.PlainText()); m != nil {
				rank, _ = strconv.Atoi(m[1])
			}
		case content.KindParagraph:
			if rank <= 0 || !strings.Contains(b.PlainText(), "👉") {
				continue
			}
			if _, seen := byRank[rank]; seen {
				continue
			}
			if href := b.Text().FirstLink(); href != "" {
				byRank[rank] = href
			}
		}
	}
	return byRank
}

// parseConclusion renders every block up to the next heading_2 with default markup.
func (r *Renderer) parseConclusion(sc *scanner, heading string) string {
	var sb strings.Builder
	sb.WriteString(`<h2 id="conclusion">` + escapeHTML(heading) + "</h2>\n")
	for ; !sc.atSectionEnd(); sc.pos++ {
		if html := r.Block(sc.peek(), sc.images); html != "" {
			sb.WriteString(html + "\n")
		}
	}
	return sb.String()
}

// parseComparison renders the first table of the section.
func (r *Renderer) parseComparison(sc *scanner, heading string) string {
	table := ""
	found := false
	for ; !sc.atSectionEnd(); sc.pos++ {
		if b := sc.peek(); !found && b.Kind() == content.KindTable {
			table = r.Table(b)
			found = true
		}
	}
	return `<h2 id="comparison">` + escapeHTML(heading) + "</h2>\n" + table
}

// parseFloatPrefix parses the longest numeric prefix of s, 0 when there is none.
func parseFloatPrefix(s string) float64 {
	for end := len(s); end > 0; end-- {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return f
		}
	}
	return 0
}
