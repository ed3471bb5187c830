package chordsheet

import (
	"bytes"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FormatHTML renders the document body as one table per paragraph. Every line
// becomes a row of chord cells above a row of lyric cells, one cell pair per
// segment. Text is escaped by the HTML renderer.
func FormatHTML(doc *Document) string {
	if doc == nil {
		return ""
	}

	var buf bytes.Buffer
	for _, paragraph := range paragraphs(doc.Lines) {
		table := element(atom.Table, "paragraph")
		for _, line := range paragraph {
			chordRow := element(atom.Tr, "chords")
			lyricRow := element(atom.Tr, "lyrics")
			for _, segment := range line.Segments {
				chordRow.AppendChild(cell("chord", segment.Chord))
				lyricRow.AppendChild(cell("lyrics", segment.Lyrics))
			}
			table.AppendChild(chordRow)
			table.AppendChild(lyricRow)
		}
		// Rendering into a bytes.Buffer cannot fail.
		_ = html.Render(&buf, table)
	}
	return buf.String()
}

// paragraphs groups consecutive non-empty lines. Empty lines only separate.
func paragraphs(lines []Line) [][]Line {
	var (
		result  [][]Line
		current []Line
	)
	for _, line := range lines {
		if line.IsEmpty() {
			if len(current) > 0 {
				result = append(result, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		result = append(result, current)
	}
	return result
}

func element(a atom.Atom, class string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
}

func cell(class, text string) *html.Node {
	td := element(atom.Td, class)
	if text != "" {
		td.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return td
}
