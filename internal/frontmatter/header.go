package frontmatter

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Header is the post metadata written at the top of every synced post.
type Header struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Category       string `yaml:"category"`
	ContentType    string `yaml:"contentType"`
	Slug           string `yaml:"slug"`
	Date           string `yaml:"date"`
	ReadTime       string `yaml:"readTime"`
	Featured       bool   `yaml:"featured"`
	NotionID       string `yaml:"notionId"`
	LastEditedTime string `yaml:"lastEditedTime"`
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r\n", " ", "\n", " ", "\r", " ")

// Marshal renders the header with delimiters and without a trailing newline.
// Keys keep a fixed order; strings are double quoted.
func (h Header) Marshal() string {
	var sb strings.Builder
	sb.WriteString("---\n")
	field := func(key, value string) {
		sb.WriteString(key + `: "` + quoteEscaper.Replace(value) + "\"\n")
	}
	field("title", h.Title)
	field("description", h.Description)
	field("category", h.Category)
	field("contentType", h.ContentType)
	field("slug", h.Slug)
	field("date", h.Date)
	field("readTime", h.ReadTime)
	sb.WriteString("featured: " + strconv.FormatBool(h.Featured) + "\n")
	field("notionId", h.NotionID)
	field("lastEditedTime", h.LastEditedTime)
	sb.WriteString("---")
	return sb.String()
}

// ParseHeader reads the header of a post document.
func ParseHeader(doc []byte) (Header, error) {
	raw, _, had, err := Split(doc)
	if err != nil {
		return Header{}, err
	}
	var h Header
	if !had {
		return h, nil
	}
	if err := yaml.Unmarshal(raw, &h); err != nil {
		return Header{}, err
	}
	return h, nil
}
