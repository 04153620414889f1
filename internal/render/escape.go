package render

import (
	"html"
	"strings"
)

var (
	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	ctaCleaner  = strings.NewReplacer("%7B%7B", "", "%7D%7D", "")
	boldMarker  = strings.NewReplacer("**", "")
)

// escapeHTML escapes the four characters that matter in text and double-quoted attributes.
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// escapeAttr is escapeHTML; kept separate so call sites say which context they fill.
func escapeAttr(s string) string {
	return htmlEscaper.Replace(s)
}

// cleanCTAURL strips template placeholder braces left in affiliate links.
func cleanCTAURL(u string) string {
	return ctaCleaner.Replace(u)
}

func stripBold(s string) string {
	return boldMarker.Replace(s)
}

func unescapeAttr(s string) string {
	return html.UnescapeString(s)
}
