package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `{
  "id": "1234abcd-5678-90ef",
  "last_edited_time": "2025-02-01T10:00:00.000Z",
  "properties": {
    "title": {"type": "title", "title": [{"plain_text": "Best "}, {"plain_text": "Laptops"}]},
    "CATEGORY": {"type": "select", "select": {"name": "tech"}},
    "Status": {"type": "status", "status": {"name": "Published"}},
    "featured": {"type": "checkbox", "checkbox": true},
    "Excerpt": {"type": "rich_text", "rich_text": [{"plain_text": "short"}]},
    "ReadTime": {"type": "rich_text", "rich_text": [{"plain_text": "5분"}]},
    "Date": {"type": "date", "date": {"start": "2025-01-31"}},
    "Slug": {"type": "rich_text", "rich_text": []}
  }
}`

func TestExtractProperties(t *testing.T) {
	var page Page
	require.NoError(t, json.Unmarshal([]byte(samplePage), &page))

	props := ExtractProperties(page, "추천 리스트")

	assert.Equal(t, Properties{
		Title:          "Best Laptops",
		Slug:           "best-laptops",
		Category:       "tech",
		ContentType:    "추천 리스트",
		Status:         "Published",
		Featured:       true,
		Description:    "short",
		ReadTime:       "5분",
		Date:           "2025-01-31",
		NotionID:       "1234abcd-5678-90ef",
		LastEditedTime: "2025-02-01T10:00:00.000Z",
	}, props)
}

func TestExtractPropertiesWrongTypesReadEmpty(t *testing.T) {
	page := Page{ID: "x", Properties: map[string]Property{
		"Title":    {Type: "rich_text", RichText: []RichText{{PlainText: "not a title"}}},
		"Featured": {Type: "rich_text"},
		"Slug":     {Type: "rich_text", RichText: []RichText{{PlainText: "given-slug"}}},
		"Category": {Type: "select"},
	}}

	props := ExtractProperties(page, "default")

	assert.Empty(t, props.Title)
	assert.False(t, props.Featured)
	assert.Empty(t, props.Category)
	assert.Equal(t, "given-slug", props.Slug)
	assert.True(t, props.SlugProvided)
	assert.Equal(t, "default", props.ContentType)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Best Laptops 2025", "best-laptops-2025"},
		{"  가성비   노트북 추천! ", "가성비-노트북-추천"},
		{"A -- B", "a-b"},
		{"ㅋㅋ 리뷰", "ㅋㅋ-리뷰"},
		{"???", "abcdef12"},
		{"", "abcdef12"},
		// Decomposed Hangul is composed before filtering.
		{"\u1100\u1161\u11a8", "각"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title, "abcdef1234"))
		})
	}
}
