// Package linkcheck inspects rendered post bodies: CTA buttons, remote and local
// images, and leftovers such as unresolved link placeholders.
package linkcheck

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

// Link is one link or image found in a body.
type Link struct {
	URL  string
	Text string
	Tag  string
}

// Problem is a finding that should be fixed in Notion.
type Problem struct {
	URL    string
	Reason string
}

// Report is the result of analysing one body.
type Report struct {
	CTAs         []Link
	Links        []Link
	RemoteImages []Link
	LocalImages  []Link
	Problems     []Problem
}

// Analyze parses an HTML fragment and classifies its links.
func Analyze(r io.Reader) (Report, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Report{}, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	var rep Report
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			rep.add(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rep, nil
}

// AnalyzeString is Analyze over a string body.
func AnalyzeString(body string) (Report, error) {
	return Analyze(strings.NewReader(body))
}

func (rep *Report) add(n *html.Node) {
	switch n.Data {
	case "a":
		href := attr(n, "href")
		link := Link{URL: href, Text: text(n), Tag: "a"}
		if hasClass(n, "cta-btn") {
			rep.CTAs = append(rep.CTAs, link)
			switch {
			case strings.TrimSpace(href) == "":
				rep.Problems = append(rep.Problems, Problem{URL: href, Reason: "CTA without link"})
			case hasPlaceholder(href):
				rep.Problems = append(rep.Problems, Problem{URL: href, Reason: "unresolved placeholder in CTA link"})
			}
			return
		}
		if href != "" {
			rep.Links = append(rep.Links, link)
		}
	case "img":
		src := attr(n, "src")
		if src == "" {
			rep.Problems = append(rep.Problems, Problem{Reason: "image without source"})
			return
		}
		link := Link{URL: src, Text: attr(n, "alt"), Tag: "img"}
		if isRemote(src) {
			rep.RemoteImages = append(rep.RemoteImages, link)
		} else {
			rep.LocalImages = append(rep.LocalImages, link)
		}
	}
}

// MissingLocalImages returns local images under publicPath whose file is absent
// from imagesDir.
func (rep Report) MissingLocalImages(publicPath, imagesDir string) []Link {
	prefix := strings.TrimSuffix(publicPath, "/") + "/"
	var missing []Link
	for _, img := range rep.LocalImages {
		if !strings.HasPrefix(img.URL, prefix) {
			continue
		}
		rel := filepath.FromSlash(strings.TrimPrefix(img.URL, prefix))
		if _, err := os.Stat(filepath.Join(imagesDir, rel)); err != nil {
			missing = append(missing, img)
		}
	}
	return missing
}

func hasPlaceholder(href string) bool {
	lower := strings.ToLower(href)
	return strings.Contains(href, "{{") || strings.Contains(lower, "%7b%7b")
}

func isRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(text(c))
	}
	return strings.TrimSpace(sb.String())
}
