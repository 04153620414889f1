package notion

import (
	"encoding/json"

	"git.home.luguber.info/inful/notionsync/internal/content"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

// Page is a database row as returned by the API.
type Page struct {
	ID             string              `json:"id"`
	LastEditedTime string              `json:"last_edited_time"`
	Properties     map[string]Property `json:"properties"`
}

// Property is one page property; only the field named by Type is set.
type Property struct {
	Type     string     `json:"type"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	Select   *named     `json:"select,omitempty"`
	Status   *named     `json:"status,omitempty"`
	Checkbox bool       `json:"checkbox,omitempty"`
	Date     *dateValue `json:"date,omitempty"`
}

type named struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

// RichText is one rich text object.
type RichText struct {
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations annotations `json:"annotations"`
	Text        *textValue  `json:"text,omitempty"`
}

type annotations struct {
	Bold          bool `json:"bold"`
	Italic        bool `json:"italic"`
	Strikethrough bool `json:"strikethrough"`
	Code          bool `json:"code"`
}

type textValue struct {
	Content string `json:"content"`
	Link    *struct {
		URL string `json:"url"`
	} `json:"link,omitempty"`
}

// textBlock is the shared payload shape of text-carrying block types.
type textBlock struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked,omitempty"`
	Language string     `json:"language,omitempty"`
	Icon     *icon      `json:"icon,omitempty"`
}

type icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

type fileRef struct {
	URL string `json:"url"`
}

type imageBlock struct {
	Type     string     `json:"type"`
	External *fileRef   `json:"external,omitempty"`
	File     *fileRef   `json:"file,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

type tableBlock struct {
	TableWidth      int  `json:"table_width"`
	HasColumnHeader bool `json:"has_column_header"`
}

type tableRowBlock struct {
	Cells [][]RichText `json:"cells"`
}

// Block is a block object. Children is filled by the recursive fetch and is also
// accepted in JSON dumps.
type Block struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *textBlock     `json:"paragraph,omitempty"`
	Heading1         *textBlock     `json:"heading_1,omitempty"`
	Heading2         *textBlock     `json:"heading_2,omitempty"`
	Heading3         *textBlock     `json:"heading_3,omitempty"`
	BulletedListItem *textBlock     `json:"bulleted_list_item,omitempty"`
	NumberedListItem *textBlock     `json:"numbered_list_item,omitempty"`
	ToDo             *textBlock     `json:"to_do,omitempty"`
	Toggle           *textBlock     `json:"toggle,omitempty"`
	Code             *textBlock     `json:"code,omitempty"`
	Quote            *textBlock     `json:"quote,omitempty"`
	Callout          *textBlock     `json:"callout,omitempty"`
	Image            *imageBlock    `json:"image,omitempty"`
	Bookmark         *fileRef       `json:"bookmark,omitempty"`
	Embed            *fileRef       `json:"embed,omitempty"`
	Table            *tableBlock    `json:"table,omitempty"`
	TableRow         *tableRowBlock `json:"table_row,omitempty"`

	Children []Block `json:"children,omitempty"`
}

// DecodeBlocks parses a JSON array of block objects with nested children.
func DecodeBlocks(data []byte) ([]content.Block, error) {
	var raw []Block
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid block JSON").Build()
	}
	return ToContent(raw), nil
}

// ToContent converts wire blocks into an owned content tree. Types without a
// content variant, and known types missing their payload, become Unsupported.
func ToContent(blocks []Block) []content.Block {
	if len(blocks) == 0 {
		return nil
	}
	out := make([]content.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, content.Block{
			ID:       b.ID,
			Payload:  payload(b),
			Children: ToContent(b.Children),
		})
	}
	return out
}

func payload(b Block) content.Payload {
	text := func(t *textBlock) content.RichText { return convertRichText(t.RichText) }

	switch {
	case b.Type == "paragraph" && b.Paragraph != nil:
		return content.Paragraph{Text: text(b.Paragraph)}
	case b.Type == "heading_1" && b.Heading1 != nil:
		return content.Heading{Level: 1, Text: text(b.Heading1)}
	case b.Type == "heading_2" && b.Heading2 != nil:
		return content.Heading{Level: 2, Text: text(b.Heading2)}
	case b.Type == "heading_3" && b.Heading3 != nil:
		return content.Heading{Level: 3, Text: text(b.Heading3)}
	case b.Type == "bulleted_list_item" && b.BulletedListItem != nil:
		return content.BulletedItem{Text: text(b.BulletedListItem)}
	case b.Type == "numbered_list_item" && b.NumberedListItem != nil:
		return content.NumberedItem{Text: text(b.NumberedListItem)}
	case b.Type == "to_do" && b.ToDo != nil:
		return content.ToDo{Text: text(b.ToDo), Checked: b.ToDo.Checked}
	case b.Type == "toggle" && b.Toggle != nil:
		return content.Toggle{Text: text(b.Toggle)}
	case b.Type == "code" && b.Code != nil:
		return content.Code{Text: text(b.Code), Language: b.Code.Language}
	case b.Type == "quote" && b.Quote != nil:
		return content.Quote{Text: text(b.Quote)}
	case b.Type == "callout" && b.Callout != nil:
		c := content.Callout{Text: text(b.Callout)}
		if b.Callout.Icon != nil && b.Callout.Icon.Type == "emoji" {
			c.Icon = b.Callout.Icon.Emoji
		}
		return c
	case b.Type == "divider":
		return content.Divider{}
	case b.Type == "image" && b.Image != nil:
		return convertImage(b.Image)
	case b.Type == "bookmark" && b.Bookmark != nil:
		return content.Bookmark{URL: b.Bookmark.URL}
	case b.Type == "embed" && b.Embed != nil:
		return content.Embed{URL: b.Embed.URL}
	case b.Type == "table" && b.Table != nil:
		return content.Table{Width: b.Table.TableWidth, HasHeader: b.Table.HasColumnHeader}
	case b.Type == "table_row" && b.TableRow != nil:
		cells := make([]content.RichText, len(b.TableRow.Cells))
		for i, cell := range b.TableRow.Cells {
			cells[i] = convertRichText(cell)
		}
		return content.TableRow{Cells: cells}
	case b.Type == "column_list":
		return content.ColumnList{}
	case b.Type == "column":
		return content.Column{}
	default:
		return content.Unsupported{Type: b.Type}
	}
}

func convertImage(img *imageBlock) content.Image {
	out := content.Image{Source: content.ImageFile, Caption: convertRichText(img.Caption)}
	if img.Type == "external" {
		out.Source = content.ImageExternal
	}
	if img.External != nil {
		out.ExternalURL = img.External.URL
	}
	if img.File != nil {
		out.FileURL = img.File.URL
	}
	return out
}

func convertRichText(in []RichText) content.RichText {
	if len(in) == 0 {
		return nil
	}
	out := make(content.RichText, len(in))
	for i, rt := range in {
		run := content.TextRun{
			Text:          rt.PlainText,
			Bold:          rt.Annotations.Bold,
			Italic:        rt.Annotations.Italic,
			Strikethrough: rt.Annotations.Strikethrough,
			Code:          rt.Annotations.Code,
			Href:          rt.Href,
		}
		if rt.Text != nil && rt.Text.Link != nil {
			run.LinkURL = rt.Text.Link.URL
		}
		out[i] = run
	}
	return out
}

// plainText concatenates plain_text of every rich text object.
func plainText(in []RichText) string {
	return convertRichText(in).Plain()
}
