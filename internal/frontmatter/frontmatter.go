// Package frontmatter reads and writes the YAML header of post files.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter means the document opens a header but never closes it.
var ErrMissingClosingDelimiter = errors.New("frontmatter start delimiter found but closing delimiter is missing")

// Split separates a `---` delimited header from the body. CRLF documents are
// handled. had is false when the document has no header; body is then the input.
func Split(doc []byte) (header []byte, body []byte, had bool, err error) {
	nl := newline(doc)
	delim := []byte("---" + nl)
	if !bytes.HasPrefix(doc, delim) {
		return nil, doc, false, nil
	}

	rest := doc[len(delim):]
	if bytes.HasPrefix(rest, delim) {
		return []byte{}, rest[len(delim):], true, nil
	}

	closing := []byte(nl + "---")
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	after := rest[idx+len(closing):]
	switch {
	case len(after) == 0:
	case bytes.HasPrefix(after, []byte(nl)):
		after = after[len(nl):]
	default:
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], after, true, nil
}

// Join wraps header in delimiters and appends body.
func Join(header, body []byte) []byte {
	out := make([]byte, 0, len(header)+len(body)+8)
	out = append(out, "---\n"...)
	out = append(out, header...)
	if len(header) > 0 && header[len(header)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, "---\n"...)
	return append(out, body...)
}

// ParseYAML parses a raw header into a map. An empty header yields an empty map.
func ParseYAML(header []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(header)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(header, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func newline(doc []byte) string {
	if i := bytes.IndexByte(doc, '\n'); i > 0 && doc[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
