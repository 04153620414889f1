package render

import (
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/notionsync/internal/content"
	"git.home.luguber.info/inful/notionsync/internal/markdown"
)

var (
	reviewStart     = regexp.MustCompile(`[🥇🥈🥉]?\s*\d+\.`)
	reviewTitle     = regexp.MustCompile(`[🥇🥈🥉]?\s*(\d+)\.\s*(.*)`)
	markdownHeading = regexp.MustCompile(`^#{1,4}\s*`)
	prosLabel       = regexp.MustCompile(`^(✓\s*)?장점[:：]?\s*$`)
	consLabel       = regexp.MustCompile(`^(✕\s*)?단점[:：]?\s*$`)
	reviewBadge     = regexp.MustCompile(`(.+?)\s*·\s*["“](.+?)["”]`)
	reviewScoreBold = regexp.MustCompile(`⭐\s*\*?\*?([\d.]+)/\d+\*?\*?`)
	reviewScore     = regexp.MustCompile(`⭐\s*([\d.]+)\s*/\s*\d+`)
	recommendLabel  = regexp.MustCompile(`\*?\*?추천 대상:\*?\*?\s*`)
	specBold        = regexp.MustCompile(`\*\*(.+?):\*\*\s*(.*)`)
	specPlain       = regexp.MustCompile(`(.+?):\s*(.*)`)
)

// reviewState says which list the bulleted items of a review feed.
type reviewState int

const (
	stateNone reviewState = iota
	stateCollectingPros
	stateCollectingCons
	stateCollectingSpecs
)

type spec struct {
	label string
	value string
}

type review struct {
	rank           int
	name           string
	badge          string
	subtitle       string
	score          float64
	specs          []spec
	pros           []string
	cons           []string
	recommendation string
	ctaURL         string
}

// parseReviews turns every numbered heading_3 of the section into one review card.
func (r *Renderer) parseReviews(sc *scanner, heading string) string {
	var reviews []review
	for !sc.atSectionEnd() {
		b := sc.peek()
		if b.Kind() == content.KindHeading3 && reviewStart.MatchString(b.PlainText()) {
			reviews = append(reviews, parseReview(sc))
			continue
		}
		sc.pos++
	}

	var sb strings.Builder
	sb.WriteString(`<h2 id="reviews">` + escapeHTML(heading) + "</h2>\n")
	for _, rv := range reviews {
		sb.WriteString(renderReviewCard(rv))
	}
	return sb.String()
}

// stateLabel recognises a pros or cons label line.
func stateLabel(text string) (reviewState, bool) {
	trimmed := strings.TrimSpace(markdownHeading.ReplaceAllString(text, ""))
	switch {
	case prosLabel.MatchString(trimmed):
		return stateCollectingPros, true
	case consLabel.MatchString(trimmed):
		return stateCollectingCons, true
	default:
		return stateNone, false
	}
}

func parseReview(sc *scanner) review {
	var rv review
	title := sc.peek().PlainText()
	if m := reviewTitle.FindStringSubmatch(title); m != nil {
		rv.rank, _ = strconv.Atoi(m[1])
		rv.name = strings.TrimSpace(m[2])
	} else {
		rv.name = strings.TrimSpace(replaceFirst(leadingMedal, title, ""))
	}

	state := stateNone
	for sc.pos++; !sc.done(); sc.pos++ {
		b := sc.peek()
		text := b.PlainText()

		switch b.Kind() {
		case content.KindHeading2:
			return rv
		case content.KindHeading3:
			if next, ok := stateLabel(text); ok {
				state = next
				continue
			}
			if reviewStart.MatchString(text) {
				return rv
			}
		case content.KindDivider:
			sc.pos++
			return rv
		case content.KindParagraph:
			if strings.TrimSpace(text) == "---" {
				sc.pos++
				return rv
			}
			if next, ok := stateLabel(text); ok {
				state = next
				continue
			}
			state = rv.applyParagraph(b, text, state)
		case content.KindBulletedItem:
			rv.applyItem(text, state)
		}
	}
	return rv
}

// applyParagraph extracts one sub-field from a review paragraph and returns the new state.
func (rv *review) applyParagraph(b content.Block, text string, state reviewState) reviewState {
	if rv.badge == "" {
		if m := reviewBadge.FindStringSubmatch(text); m != nil {
			rv.badge = stripBold(m[1])
			rv.subtitle = stripBold(m[2])
			return state
		}
	}

	m := reviewScoreBold.FindStringSubmatch(text)
	if m == nil {
		m = reviewScore.FindStringSubmatch(text)
	}
	switch {
	case m != nil:
		rv.score = parseFloatPrefix(m[1])
	case strings.Contains(text, "핵심 스펙"):
		return stateCollectingSpecs
	case strings.Contains(text, "추천 대상"):
		rv.recommendation = stripBold(replaceFirst(recommendLabel, text, ""))
	case strings.Contains(text, "👉"):
		if href := b.Text().FirstHref(); href != "" {
			rv.ctaURL = href
		} else if link := markdown.LinkAfter(text, "👉"); link != "" {
			rv.ctaURL = link
		}
	}
	return state
}

func (rv *review) applyItem(text string, state reviewState) {
	switch state {
	case stateCollectingSpecs:
		m := specBold.FindStringSubmatch(text)
		if m == nil {
			m = specPlain.FindStringSubmatch(text)
		}
		if m != nil {
			rv.specs = append(rv.specs, spec{label: stripBold(m[1]), value: stripBold(m[2])})
		}
	case stateCollectingPros:
		rv.pros = append(rv.pros, text)
	case stateCollectingCons:
		rv.cons = append(rv.cons, text)
	}
}

func reviewBadgeClass(rank int) string {
	switch rank {
	case 1:
		return "best"
	case 3:
		return "success"
	default:
		return "primary"
	}
}

func renderReviewCard(rv review) string {
	var sb strings.Builder
	sb.WriteString("<div class=\"review-card\">\n")
	sb.WriteString("<div class=\"review-card-image\"><div class=\"product-placeholder\">💻</div></div>\n")
	sb.WriteString("<div class=\"review-card-body\">\n")

	sb.WriteString("<div class=\"review-card-header\"><div>\n")
	if rv.badge != "" {
		sb.WriteString(`<span class="badge badge-` + reviewBadgeClass(rv.rank) +
			`" style="margin-bottom:8px;display:inline-block;">` + escapeHTML(rv.badge) + "</span>\n")
	}
	prefix := ""
	if rv.rank != 0 {
		prefix = strconv.Itoa(rv.rank) + ". "
	}
	sb.WriteString("<h3>" + prefix + escapeHTML(rv.name) + "</h3>\n")
	if rv.subtitle != "" {
		sb.WriteString(`<span class="subtitle">` + escapeHTML(rv.subtitle) + "</span>\n")
	}
	sb.WriteString("</div>\n")
	if rv.score != 0 {
		s := strconv.FormatFloat(rv.score, 'f', -1, 64)
		sb.WriteString(`<div class="review-score" aria-label="평점 ` + s + `점 / 10점">` + s + " <small>/10</small></div>\n")
	}
	sb.WriteString("</div>\n")

	if len(rv.specs) > 0 {
		sb.WriteString("<div class=\"review-card-specs\">\n")
		for _, s := range rv.specs {
			sb.WriteString(`<span class="spec"><strong>` + escapeHTML(s.label) + ":</strong> " + escapeHTML(s.value) + "</span>\n")
		}
		sb.WriteString("</div>\n")
	}

	if len(rv.pros) > 0 || len(rv.cons) > 0 {
		sb.WriteString("<div class=\"pros-cons\">\n")
		if len(rv.pros) > 0 {
			sb.WriteString("<div><h4 style=\"color:#166534;\">장점</h4><ul class=\"pick-pros\">\n")
			writeItems(&sb, rv.pros)
			sb.WriteString("</ul></div>\n")
		}
		if len(rv.cons) > 0 {
			sb.WriteString("<div><h4 style=\"color:#991b1b;\">단점</h4><ul class=\"pick-pros pick-cons\">\n")
			writeItems(&sb, rv.cons)
			sb.WriteString("</ul></div>\n")
		}
		sb.WriteString("</div>\n")
	}

	if rv.recommendation != "" {
		sb.WriteString(`<p class="rec-text"><strong>추천 대상:</strong> ` + escapeHTML(rv.recommendation) + "</p>\n")
	}
	if rv.ctaURL != "" {
		sb.WriteString(`<div class="review-card-actions"><a href="` + escapeAttr(cleanCTAURL(rv.ctaURL)) +
			"\" class=\"cta-btn\" rel=\"nofollow noopener\" target=\"_blank\">쿠팡 최저가 보기</a></div>\n")
	}
	sb.WriteString("</div></div>\n")
	return sb.String()
}

func writeItems(sb *strings.Builder, items []string) {
	for _, it := range items {
		sb.WriteString("<li>" + escapeHTML(it) + "</li>\n")
	}
}
