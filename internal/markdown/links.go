// Package markdown reads Markdown fragments found in Notion plain text.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

func parse(source []byte) gmast.Node {
	return md.Parser().Parse(text.NewReader(source))
}

// LinkAfter returns the destination of an inline link that directly follows marker
// (whitespace allowed in between), e.g. "👉 [buy](https://example)".
// It returns "" when marker is absent or is not followed by a link with text.
func LinkAfter(s, marker string) string {
	idx := strings.Index(s, marker)
	if idx < 0 {
		return ""
	}
	rest := []byte(strings.TrimLeft(s[idx+len(marker):], " \t\r\n"))
	if len(rest) == 0 || rest[0] != '[' {
		return ""
	}

	para := parse(rest).FirstChild()
	if para == nil {
		return ""
	}
	link, ok := para.FirstChild().(*gmast.Link)
	if !ok || link.ChildCount() == 0 || len(link.Destination) == 0 {
		return ""
	}
	return string(link.Destination)
}
