package render

import "git.home.luguber.info/inful/notionsync/internal/content"

func para(s string) content.Block {
	return content.Block{Payload: content.Paragraph{Text: content.Plain(s)}}
}

func paraRuns(runs ...content.TextRun) content.Block {
	return content.Block{Payload: content.Paragraph{Text: runs}}
}

func h2(s string) content.Block {
	return content.Block{Payload: content.Heading{Level: 2, Text: content.Plain(s)}}
}

func h3(s string) content.Block {
	return content.Block{Payload: content.Heading{Level: 3, Text: content.Plain(s)}}
}

func bullet(s string, children ...content.Block) content.Block {
	return content.Block{Payload: content.BulletedItem{Text: content.Plain(s)}, Children: children}
}

func divider() content.Block {
	return content.Block{Payload: content.Divider{}}
}

func table(rows ...[]content.RichText) content.Block {
	b := content.Block{Payload: content.Table{Width: len(rows[0]), HasHeader: true}}
	for _, cells := range rows {
		b.Children = append(b.Children, content.Block{Payload: content.TableRow{Cells: cells}})
	}
	return b
}

func cells(texts ...string) []content.RichText {
	out := make([]content.RichText, len(texts))
	for i, t := range texts {
		out[i] = content.Plain(t)
	}
	return out
}
