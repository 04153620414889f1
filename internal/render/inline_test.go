package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/notionsync/internal/content"
)

func TestInline(t *testing.T) {
	tests := []struct {
		name string
		in   content.RichText
		want string
	}{
		{"nil", nil, ""},
		{"plain", content.Plain("hello"), "hello"},
		{"escaped", content.Plain(`a & b < c > "d"`), "a &amp; b &lt; c &gt; &quot;d&quot;"},
		{"empty run dropped", content.RichText{{Text: "", Bold: true, Href: "https://x"}}, ""},
		{"bold italic nesting", content.RichText{{Text: "x", Bold: true, Italic: true}}, "<em><strong>x</strong></em>"},
		{"all annotations", content.RichText{{Text: "x", Bold: true, Italic: true, Strikethrough: true, Code: true}},
			"<code><del><em><strong>x</strong></em></del></code>"},
		{"link wraps annotations", content.RichText{{Text: "buy", Bold: true, Href: `https://a.example/?q=1&r="2"`}},
			`<a href="https://a.example/?q=1&amp;r=&quot;2&quot;"><strong>buy</strong></a>`},
		{"runs concatenate", content.RichText{{Text: "a "}, {Text: "b", Code: true}}, "a <code>b</code>"},
		{"link url alone does not link", content.RichText{{Text: "t", LinkURL: "https://x"}}, "t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Inline(tt.in))
		})
	}
}

func TestInlineNeverLeaksUnsafeCharacters(t *testing.T) {
	inputs := []string{`<script>alert("x")</script>`, `"&"`, `<<>>`, `a"b`, "plain"}
	for _, in := range inputs {
		out := Inline(content.RichText{{Text: in, Bold: true}, {Text: in, Href: in}})
		stripped := strings.NewReplacer(
			"<strong>", "", "</strong>", "", "</a>", "",
			"&amp;", "", "&lt;", "", "&gt;", "", "&quot;", "",
		).Replace(out)
		// Remove the single well-formed anchor opening tag.
		if i := strings.Index(stripped, `<a href="`); i >= 0 {
			end := strings.Index(stripped[i+9:], `">`)
			stripped = stripped[:i] + stripped[i+9+end+2:]
		}
		assert.NotContains(t, stripped, "<", in)
		assert.NotContains(t, stripped, ">", in)
		assert.NotContains(t, stripped, `"`, in)
		assert.NotContains(t, stripped, "&", in)
	}
}
