// Package content defines the block tree produced from Notion pages.
//
// A Block owns its children by value; trees are built fresh for every page and are
// never mutated after construction. The Payload is a closed set of variants, one per
// supported block type, plus Unsupported for everything else.
package content

// Kind is the Notion block type name of a payload.
type Kind string

const (
	KindParagraph    Kind = "paragraph"
	KindHeading1     Kind = "heading_1"
	KindHeading2     Kind = "heading_2"
	KindHeading3     Kind = "heading_3"
	KindBulletedItem Kind = "bulleted_list_item"
	KindNumberedItem Kind = "numbered_list_item"
	KindToDo         Kind = "to_do"
	KindToggle       Kind = "toggle"
	KindCode         Kind = "code"
	KindQuote        Kind = "quote"
	KindCallout      Kind = "callout"
	KindDivider      Kind = "divider"
	KindImage        Kind = "image"
	KindBookmark     Kind = "bookmark"
	KindEmbed        Kind = "embed"
	KindTable        Kind = "table"
	KindTableRow     Kind = "table_row"
	KindColumnList   Kind = "column_list"
	KindColumn       Kind = "column"
)

// Block is one node of a page tree.
type Block struct {
	ID       string
	Payload  Payload
	Children []Block
}

// Kind returns the payload kind, or "" for a block without payload.
func (b Block) Kind() Kind {
	if b.Payload == nil {
		return ""
	}
	return b.Payload.Kind()
}

// Text returns the rich text carried by the payload, if the variant has any.
func (b Block) Text() RichText {
	if t, ok := b.Payload.(texter); ok {
		return t.text()
	}
	return nil
}

// PlainText is Text().Plain().
func (b Block) PlainText() string {
	return b.Text().Plain()
}

// Payload is implemented only by the variants in this package.
type Payload interface {
	Kind() Kind
	sealed()
}

type texter interface {
	text() RichText
}

type Paragraph struct{ Text RichText }

// Heading covers heading_1 to heading_3.
type Heading struct {
	Level int
	Text  RichText
}

type BulletedItem struct{ Text RichText }

type NumberedItem struct{ Text RichText }

type ToDo struct {
	Text    RichText
	Checked bool
}

type Toggle struct{ Text RichText }

type Code struct {
	Text     RichText
	Language string
}

type Quote struct{ Text RichText }

// Callout carries an emoji icon; Icon is empty for file or external icons.
type Callout struct {
	Text RichText
	Icon string
}

type Divider struct{}

// ImageSource says which of the two URLs an image uses.
type ImageSource string

const (
	ImageExternal ImageSource = "external"
	ImageFile     ImageSource = "file"
)

type Image struct {
	Source      ImageSource
	ExternalURL string
	FileURL     string
	Caption     RichText
}

// URL returns the URL selected by Source.
func (i Image) URL() string {
	if i.Source == ImageExternal {
		return i.ExternalURL
	}
	return i.FileURL
}

type Bookmark struct{ URL string }

type Embed struct{ URL string }

// Table rows are the block's TableRow children.
type Table struct {
	Width     int
	HasHeader bool
}

// TableRow holds one rich text sequence per cell.
type TableRow struct{ Cells []RichText }

type ColumnList struct{}

type Column struct{}

// Unsupported keeps the raw type name of blocks the renderer does not know.
type Unsupported struct{ Type string }

func (Paragraph) Kind() Kind    { return KindParagraph }
func (BulletedItem) Kind() Kind { return KindBulletedItem }
func (NumberedItem) Kind() Kind { return KindNumberedItem }
func (ToDo) Kind() Kind         { return KindToDo }
func (Toggle) Kind() Kind       { return KindToggle }
func (Code) Kind() Kind         { return KindCode }
func (Quote) Kind() Kind        { return KindQuote }
func (Callout) Kind() Kind      { return KindCallout }
func (Divider) Kind() Kind      { return KindDivider }
func (Image) Kind() Kind        { return KindImage }
func (Bookmark) Kind() Kind     { return KindBookmark }
func (Embed) Kind() Kind        { return KindEmbed }
func (Table) Kind() Kind        { return KindTable }
func (TableRow) Kind() Kind     { return KindTableRow }
func (ColumnList) Kind() Kind   { return KindColumnList }
func (Column) Kind() Kind       { return KindColumn }

func (u Unsupported) Kind() Kind { return Kind(u.Type) }

func (h Heading) Kind() Kind {
	switch h.Level {
	case 1:
		return KindHeading1
	case 2:
		return KindHeading2
	default:
		return KindHeading3
	}
}

func (Paragraph) sealed()    {}
func (Heading) sealed()      {}
func (BulletedItem) sealed() {}
func (NumberedItem) sealed() {}
func (ToDo) sealed()         {}
func (Toggle) sealed()       {}
func (Code) sealed()         {}
func (Quote) sealed()        {}
func (Callout) sealed()      {}
func (Divider) sealed()      {}
func (Image) sealed()        {}
func (Bookmark) sealed()     {}
func (Embed) sealed()        {}
func (Table) sealed()        {}
func (TableRow) sealed()     {}
func (ColumnList) sealed()   {}
func (Column) sealed()       {}
func (Unsupported) sealed()  {}

func (p Paragraph) text() RichText    { return p.Text }
func (h Heading) text() RichText      { return h.Text }
func (b BulletedItem) text() RichText { return b.Text }
func (n NumberedItem) text() RichText { return n.Text }
func (t ToDo) text() RichText         { return t.Text }
func (t Toggle) text() RichText       { return t.Text }
func (c Code) text() RichText         { return c.Text }
func (q Quote) text() RichText        { return q.Text }
func (c Callout) text() RichText      { return c.Text }
