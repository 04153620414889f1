package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkAfter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "👉 [쿠팡에서 보기](https://link.example/p/1)", "https://link.example/p/1"},
		{"no space", "👉[buy](https://a.example)", "https://a.example"},
		{"leading text", "지금 바로 👉 [buy](https://a.example?x=1&y=2) 확인", "https://a.example?x=1&y=2"},
		{"no marker", "[buy](https://a.example)", ""},
		{"text between", "👉 click [buy](https://a.example)", ""},
		{"no link", "👉 just text", ""},
		{"empty label", "👉 [](https://a.example)", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkAfter(tt.in, "👉"))
		})
	}
}
