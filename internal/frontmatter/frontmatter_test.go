package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeader string
		wantBody   string
		wantHad    bool
	}{
		{"no header", "# Title\n", "", "# Title\n", false},
		{"header and body", "---\nkey: value\n---\n# Title\n", "key: value\n", "# Title\n", true},
		{"crlf", "---\r\nkey: value\r\n---\r\n# Title\r\n", "key: value\r\n", "# Title\r\n", true},
		{"empty header", "---\n---\nbody", "", "body", true},
		{"header only", "---\na: 1\n---", "a: 1\n", "", true},
		{"post layout", "---\ntitle: \"x\"\n---\n\n<p>x</p>\n", "title: \"x\"\n", "\n<p>x</p>\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body, had, err := Split([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantHad, had)
			assert.Equal(t, tt.wantHeader, string(header))
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestSplitMissingClosingDelimiter(t *testing.T) {
	_, _, had, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	assert.False(t, had)
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "---\na: 1\n---\nbody", string(Join([]byte("a: 1"), []byte("body"))))
	assert.Equal(t, "---\n---\n", string(Join(nil, nil)))
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("title: x\nfeatured: true\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "x", "featured": true}, fields)

	empty, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseYAML([]byte("a: [unclosed"))
	require.Error(t, err)
}
