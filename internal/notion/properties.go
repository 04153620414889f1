package notion

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Properties is the page metadata the sync needs.
type Properties struct {
	Title          string
	Slug           string
	SlugProvided   bool
	Category       string
	ContentType    string
	Status         string
	Featured       bool
	Description    string
	ReadTime       string
	Date           string
	NotionID       string
	LastEditedTime string
}

// ExtractProperties reads the known properties with case-insensitive names.
// Properties of the wrong type read as empty.
func ExtractProperties(p Page, defaultContentType string) Properties {
	find := func(name string) *Property {
		for key, prop := range p.Properties {
			if strings.EqualFold(key, name) {
				return &prop
			}
		}
		return nil
	}

	props := Properties{
		Title:          titleOf(find("Title")),
		Category:       selectOf(find("Category")),
		ContentType:    selectOf(find("ContentType")),
		Status:         selectOf(find("Status")),
		Featured:       checkboxOf(find("Featured")),
		Description:    richTextOf(find("Description")),
		ReadTime:       richTextOf(find("ReadTime")),
		Date:           dateOf(find("Date")),
		NotionID:       p.ID,
		LastEditedTime: p.LastEditedTime,
	}
	if props.ContentType == "" {
		props.ContentType = defaultContentType
	}
	if props.Description == "" {
		props.Description = richTextOf(find("Excerpt"))
	}

	slug := richTextOf(find("Slug"))
	if strings.TrimSpace(slug) != "" {
		props.Slug = slug
		props.SlugProvided = true
	} else {
		props.Slug = Slugify(props.Title, p.ID)
	}
	return props
}

func titleOf(p *Property) string {
	if p == nil || p.Type != "title" {
		return ""
	}
	return plainText(p.Title)
}

func richTextOf(p *Property) string {
	if p == nil || p.Type != "rich_text" {
		return ""
	}
	return plainText(p.RichText)
}

// selectOf accepts both select and status properties.
func selectOf(p *Property) string {
	switch {
	case p == nil:
		return ""
	case p.Type == "select" && p.Select != nil:
		return p.Select.Name
	case p.Type == "status" && p.Status != nil:
		return p.Status.Name
	default:
		return ""
	}
}

func checkboxOf(p *Property) bool {
	return p != nil && p.Type == "checkbox" && p.Checkbox
}

func dateOf(p *Property) string {
	if p == nil || p.Type != "date" || p.Date == nil {
		return ""
	}
	return p.Date.Start
}

var (
	slugSpace   = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9가-힣ㄱ-ㅎㅏ-ㅣ-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify derives a URL slug from a title, keeping Hangul. An empty result falls
// back to the first eight characters of the page id.
func Slugify(title, pageID string) string {
	slug := strings.ToLower(norm.NFC.String(title))
	slug = slugSpace.ReplaceAllString(slug, "-")
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return idPrefix(pageID)
	}
	return slug
}

func idPrefix(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
