package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notionsync/internal/content"
)

func TestCriteriaSection(t *testing.T) {
	blocks := []content.Block{
		h2("✅ 선정 기준"),
		bullet("⚡ 성능 - 빠른 처리속도"),
	}

	got := Document(blocks, nil)

	want := "<h3>선정 기준</h3>\n" +
		"<div class=\"criteria-grid\">\n" +
		"<div class=\"criteria-item\"><div class=\"icon\">⚡</div><h4>성능</h4><p>빠른 처리속도</p></div>\n" +
		"</div>"
	assert.Equal(t, want, got)
}

func TestCriteriaItemParsing(t *testing.T) {
	tests := []struct {
		in   string
		want criteriaItem
	}{
		{"⚡ 성능 - 빠른 처리속도", criteriaItem{"⚡", "성능", "빠른 처리속도"}},
		{"**휴대성** — 1.5kg 이하", criteriaItem{"📌", "휴대성", "1.5kg 이하"}},
		{"🔋 배터리", criteriaItem{"🔋", "배터리", ""}},
		{"❤️ 디자인 – 감성 – 마감", criteriaItem{"❤️", "디자인", "감성"}},
		{"- 가격", criteriaItem{"📌", "- 가격", "가격"}},
		{"‼️ 발열 - 장시간 사용 시", criteriaItem{"‼️", "발열", "장시간 사용 시"}},
		{"1️⃣ 성능 - 빠름", criteriaItem{"1️⃣", "성능", "빠름"}},
		{"👩‍💻 개발자용 - 키감", criteriaItem{"👩‍💻", "개발자용", "키감"}},
		{"👍🏽 만족도 - 높음", criteriaItem{"👍🏽", "만족도", "높음"}},
		{"1 성능 - 빠름", criteriaItem{"📌", "1 성능", "빠름"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCriteriaItem(tt.in))
		})
	}
}

func TestCriteriaDescriptionAndBoundary(t *testing.T) {
	blocks := []content.Block{
		h2("제품 선정 기준"),
		para("이렇게 골랐습니다."),
		para(""),
		bullet("💰 가격 - 합리적"),
		para("after"),
	}

	got := New(Options{}).Sections(blocks, nil)

	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], "<h3>선정 기준</h3>\n<p>이렇게 골랐습니다.</p>\n<div class=\"criteria-grid\">"))
	assert.Equal(t, "<p>after</p>", got[1])
}

func TestTopPicksSection(t *testing.T) {
	blocks := []content.Block{
		h2("TOP 3 한눈에 보기"),
		h3("🥇 1위: Acme X1"),
		para("최고 추천 · 9.4/10"),
		bullet("✓ 가벼움"),
		bullet("💰 가격대: **120만원대**"),
		h3("🥈 2위: Beta B2"),
		h2("상세 리뷰"),
		h3("1. Acme X1"),
		paraRuns(content.TextRun{Text: "👉 "}, content.TextRun{Text: "최저가", Href: "https://link.example/acme"}),
	}

	sections := New(Options{}).Sections(blocks, nil)
	require.Len(t, sections, 2)
	picks := sections[0]

	want := "<h2 id=\"top-picks\">TOP 3 한눈에 보기</h2>\n" +
		"<div class=\"top-picks-inline\">\n" +
		"<div class=\"pick-card featured\">\n" +
		"<span class=\"pick-rank\">1</span>\n" +
		"<div class=\"pick-image\"><div class=\"product-placeholder\">💻</div></div>\n" +
		"<div class=\"pick-body\">\n" +
		"<span class=\"badge badge-best\">최고 추천</span>\n" +
		"<h3>Acme X1</h3>\n" +
		"<p class=\"pick-subtitle\">9.4/10</p>\n" +
		"<ul class=\"pick-pros\">\n<li>가벼움</li>\n</ul>\n" +
		"<div class=\"pick-price\">120만원대</div>\n" +
		"<a href=\"https://link.example/acme\" class=\"cta-btn pick-cta\" rel=\"nofollow noopener\" target=\"_blank\">최저가 보러가기</a>\n" +
		"</div></div>\n" +
		"<div class=\"pick-card\">\n" +
		"<span class=\"pick-rank\">2</span>\n" +
		"<div class=\"pick-image\"><div class=\"product-placeholder\">💻</div></div>\n" +
		"<div class=\"pick-body\">\n" +
		"<h3>Beta B2</h3>\n" +
		"</div></div>\n" +
		"</div>"
	assert.Equal(t, want, picks)
}

func TestParsePick(t *testing.T) {
	sc := &scanner{blocks: []content.Block{
		h3("🥇 1위: Acme X1"),
		para("최고 추천 · 9.4/10"),
		bullet("✓ 가벼움"),
		h3("next"),
	}}

	p := parsePick(sc)

	assert.Equal(t, pick{name: "Acme X1", badge: "최고 추천", score: "9.4/10", pros: []string{"가벼움"}}, p)
	assert.Equal(t, 3, sc.pos)
}

func TestNameFallbackStripsOnlyLeadingMedal(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"🥈 Beta B2", "Beta B2"},
		{"Acme 🥇 Edition", "Acme 🥇 Edition"},
		{"Gamma", "Gamma"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			p := parsePick(&scanner{blocks: []content.Block{h3(tt.title)}})
			assert.Equal(t, tt.want, p.name)

			rv := parseReview(&scanner{blocks: []content.Block{h3(tt.title)}})
			assert.Equal(t, tt.want, rv.name)
		})
	}
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, "50만원", parsePrice("💰 가격대: **50만원**"))
	assert.Equal(t, "40~60만원", parsePrice("가격대: 40~60만원"))
	assert.Equal(t, "💰 저렴함", parsePrice("💰 저렴함"))
}

func TestComparisonUsesFirstTable(t *testing.T) {
	blocks := []content.Block{
		h2("한눈에 비교표"),
		para("ignored"),
		table(cells("제품", "점수"), cells("First", "9")),
		table(cells("제품", "점수"), cells("Second", "8")),
	}

	got := Document(blocks, nil)

	assert.True(t, strings.HasPrefix(got, "<h2 id=\"comparison\">한눈에 비교표</h2>\n<div class=\"comparison-table-wrapper\">"))
	assert.Contains(t, got, "First")
	assert.NotContains(t, got, "Second")
	assert.NotContains(t, got, "ignored")
}

func TestComparisonWithoutTable(t *testing.T) {
	got := Document([]content.Block{h2("비교 테이블"), para("x")}, nil)
	assert.Equal(t, "<h2 id=\"comparison\">비교 테이블</h2>\n", got)
}

func TestReviewsSection(t *testing.T) {
	blocks := []content.Block{
		h2("제품별 상세 리뷰"),
		h3("🥇 1. Acme X1"),
		para(`최고 추천 · "AI 작업에 최적"`),
		para("⭐ 9.4/10"),
		para("핵심 스펙:"),
		bullet("CPU: Ryzen AI 7"),
		bullet("**무게:** 1.2kg"),
		h3("✓ 장점"),
		bullet("가볍다"),
		para("✕ 단점:"),
		bullet("비싸다"),
		para("추천 대상: 영상 편집자"),
		paraRuns(content.TextRun{Text: "👉 "}, content.TextRun{Text: "보기", Href: "https://link.example/%7B%7Ba%7D%7D"}),
		divider(),
		h3("2. Beta"),
		para("👉 [쿠팡](https://link.example/beta)"),
		para("---"),
		para("between reviews"),
		h3("3. Gamma"),
		para(`가성비 · "저렴"`),
		para("⭐ 8/10"),
	}

	got := Document(blocks, nil)

	first := "<div class=\"review-card\">\n" +
		"<div class=\"review-card-image\"><div class=\"product-placeholder\">💻</div></div>\n" +
		"<div class=\"review-card-body\">\n" +
		"<div class=\"review-card-header\"><div>\n" +
		"<span class=\"badge badge-best\" style=\"margin-bottom:8px;display:inline-block;\">최고 추천</span>\n" +
		"<h3>1. Acme X1</h3>\n" +
		"<span class=\"subtitle\">AI 작업에 최적</span>\n" +
		"</div>\n" +
		"<div class=\"review-score\" aria-label=\"평점 9.4점 / 10점\">9.4 <small>/10</small></div>\n" +
		"</div>\n" +
		"<div class=\"review-card-specs\">\n" +
		"<span class=\"spec\"><strong>CPU:</strong> Ryzen AI 7</span>\n" +
		"<span class=\"spec\"><strong>무게:</strong> 1.2kg</span>\n" +
		"</div>\n" +
		"<div class=\"pros-cons\">\n" +
		"<div><h4 style=\"color:#166534;\">장점</h4><ul class=\"pick-pros\">\n<li>가볍다</li>\n</ul></div>\n" +
		"<div><h4 style=\"color:#991b1b;\">단점</h4><ul class=\"pick-pros pick-cons\">\n<li>비싸다</li>\n</ul></div>\n" +
		"</div>\n" +
		"<p class=\"rec-text\"><strong>추천 대상:</strong> 영상 편집자</p>\n" +
		"<div class=\"review-card-actions\"><a href=\"https://link.example/a\" class=\"cta-btn\" rel=\"nofollow noopener\" target=\"_blank\">쿠팡 최저가 보기</a></div>\n" +
		"</div></div>\n"

	assert.True(t, strings.HasPrefix(got, "<h2 id=\"reviews\">제품별 상세 리뷰</h2>\n"+first), got)
	assert.Contains(t, got, "<h3>2. Beta</h3>")
	assert.Contains(t, got, `<a href="https://link.example/beta" class="cta-btn"`)
	assert.Contains(t, got, "<span class=\"badge badge-success\"")
	assert.Contains(t, got, `aria-label="평점 8점 / 10점">8 <small>/10</small>`)
	assert.NotContains(t, got, "between reviews")
	assert.Equal(t, 3, strings.Count(got, `<div class="review-card">`))
}

func TestReviewStateTransitions(t *testing.T) {
	sc := &scanner{blocks: []content.Block{
		h3("1. Item"),
		bullet("ignored before any label"),
		para("장점"),
		bullet("pro"),
		para("핵심 스펙"),
		bullet("RAM: 16GB"),
		bullet("no colon here"),
		h3("단점"),
		bullet("con"),
		h2("next section"),
	}}

	rv := parseReview(sc)

	assert.Equal(t, 1, rv.rank)
	assert.Equal(t, "Item", rv.name)
	assert.Equal(t, []string{"pro"}, rv.pros)
	assert.Equal(t, []spec{{label: "RAM", value: "16GB"}}, rv.specs)
	assert.Equal(t, []string{"con"}, rv.cons)
	assert.Equal(t, 9, sc.pos)
}

func TestReviewBadgeOnlyFirst(t *testing.T) {
	sc := &scanner{blocks: []content.Block{
		h3("1. Item"),
		para(`가성비 · "첫번째"`),
		para(`다른 배지 · "두번째" ⭐ 7.5/10`),
	}}

	rv := parseReview(sc)

	assert.Equal(t, "가성비", rv.badge)
	assert.Equal(t, "첫번째", rv.subtitle)
	assert.InDelta(t, 7.5, rv.score, 0.0001)
}

func TestFAQSectionCursor(t *testing.T) {
	blocks := []content.Block{
		h2("구매 전 알아야 할 것"),
		bullet("배터리는 얼마나 가나요?"),
		para("보통 **10시간**입니다."),
		paraRuns(content.TextRun{Text: "충전은 ", Italic: true}, content.TextRun{Text: "빠릅니다."}),
		h2("다음"),
	}

	sections := New(Options{}).Sections(blocks, nil)

	require.Len(t, sections, 2)
	want := "<h2 id=\"faq\">구매 전 알아야 할 것</h2>\n" +
		"<div class=\"faq-list\">\n" +
		"<details class=\"faq-item\">\n" +
		"<summary class=\"faq-question\">배터리는 얼마나 가나요?" + faqArrow + "</summary>\n" +
		"<div class=\"faq-answer-inner\">보통 **10시간**입니다. <em>충전은 </em>빠릅니다.</div>\n" +
		"</details>\n" +
		"</div>"
	assert.Equal(t, want, sections[0])
	assert.Equal(t, `<h3 id="다음">다음</h3>`, sections[1])
}

func TestFAQAnswerFromChildren(t *testing.T) {
	blocks := []content.Block{
		h2("FAQ"),
		bullet("Q1", para("A1"), para(""), content.Block{Payload: content.Quote{Text: content.Plain("A2")}}),
		para("not an answer"),
		bullet(""),
		bullet("Q3"),
	}

	got := Document(blocks, nil)

	assert.Contains(t, got, `<div class="faq-answer-inner">A1 A2</div>`)
	assert.Equal(t, 2, strings.Count(got, `<details class="faq-item">`))
	assert.Contains(t, got, `Q3`+faqArrow+"</summary>\n<div class=\"faq-answer-inner\"></div>")
	assert.NotContains(t, got, "not an answer")
}

func TestConclusionSection(t *testing.T) {
	blocks := []content.Block{
		h2("마무리"),
		para("감사합니다."),
		para(""),
		bullet("요약"),
		h2("Other"),
	}

	sections := New(Options{}).Sections(blocks, nil)

	require.Len(t, sections, 2)
	assert.Equal(t, "<h2 id=\"conclusion\">마무리</h2>\n<p>감사합니다.</p>\n<li>요약</li>\n", sections[0])
	assert.Equal(t, `<h3 id="other">Other</h3>`, sections[1])
}

func TestPatternPriority(t *testing.T) {
	// Both criteria and conclusion keywords: criteria wins.
	got := Document([]content.Block{h2("선정 기준 정리")}, nil)
	assert.Equal(t, "<h3>선정 기준</h3>\n", got)

	// Headings below heading_2 never trigger patterns.
	got = Document([]content.Block{h3("FAQ")}, nil)
	assert.Equal(t, "<h4>FAQ</h4>", got)
}

func TestCTAPrePassFirstCaptureWins(t *testing.T) {
	link := func(u string) content.Block {
		return paraRuns(content.TextRun{Text: "👉 "}, content.TextRun{Text: "go", Href: u})
	}
	blocks := []content.Block{
		link("https://ignored.example"),
		h3("🥇 1. One"),
		para("👉 no link"),
		link("https://one.example/a"),
		link("https://one.example/b"),
		h3("2. Two"),
		paraRuns(content.TextRun{Text: "👉 "}, content.TextRun{Text: "go", LinkURL: "https://two.example"}),
	}

	got := collectCTAURLs(blocks)

	assert.Equal(t, map[int]string{1: "https://one.example/a", 2: "https://two.example"}, got)
}

func TestAssemble(t *testing.T) {
	got := Assemble([]string{"<li>a</li>", "<li>b</li>", "<p>x</p>", "<li>c</li>"})
	assert.Equal(t, "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n<p>x</p>\n<ul>\n<li>c</li>\n</ul>", got)
	assert.Equal(t, "", Assemble(nil))
}

func TestRecognizerIsIdempotentOnRenderedOutput(t *testing.T) {
	blocks := []content.Block{
		h2("✅ 선정 기준"),
		bullet("⚡ 성능 - 빠름"),
		h2("TOP 3 한눈에 보기"),
		h3("🥇 1위: Acme"),
		h2("FAQ"),
		bullet("Q?"),
		para("A."),
	}
	r := New(Options{})
	first := r.Sections(blocks, nil)

	var again []content.Block
	for _, fragment := range first {
		again = append(again, para(fragment))
	}
	second := r.Sections(again, nil)

	require.Len(t, second, len(first))
	for i, out := range second {
		assert.Equal(t, "<p>"+escapeHTML(first[i])+"</p>", out)
	}
}

func TestUnknownBlocksNeverFail(t *testing.T) {
	blocks := []content.Block{
		{Payload: content.Unsupported{Type: "child_database"}},
		{},
		h2("상세 리뷰"),
		h3("1."),
		{Payload: content.Unsupported{Type: "audio"}},
	}
	assert.NotPanics(t, func() {
		got := Document(blocks, nil)
		assert.Contains(t, got, "<h3>1. </h3>")
	})
}
