package chordsheet

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// widths measures columns independently of the host locale, so ambiguous-width
// letters such as "é" always take one column.
var widths = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

// runeColumns is the display width of r, except that control characters such
// as tabs take one column like any other character of the lyrics.
func runeColumns(r rune) int {
	if w := widths.RuneWidth(r); w > 0 || !unicode.IsControl(r) {
		return w
	}
	return 1
}

func columns(s string) int {
	n := 0
	for _, r := range s {
		n += runeColumns(r)
	}
	return n
}

// FormatText renders the document body as chord lines aligned above lyric
// lines. Metadata is not part of the output.
func FormatText(doc *Document) string {
	if doc == nil {
		return ""
	}

	out := make([]string, 0, len(doc.Lines)*2)
	for _, line := range doc.Lines {
		chords, lyrics := FormatChordLines(line)
		out = append(out, chords, lyrics)
	}
	return strings.Join(out, "\n")
}

// FormatChordLines lays out a single line. Each chord starts at the display
// column where its lyrics start; a chord that would run into the previous one
// is pushed right to leave a single space between them.
func FormatChordLines(line Line) (chords, lyrics string) {
	var (
		chordLine strings.Builder
		lyricLine strings.Builder
		width     int // display width written to chordLine
		column    int // display width of lyrics so far
	)

	for _, segment := range line.Segments {
		if segment.Chord != "" {
			start := column
			if width > 0 && start <= width {
				start = width + 1
			}
			chordLine.WriteString(strings.Repeat(" ", start-width))
			chordLine.WriteString(segment.Chord)
			width = start + columns(segment.Chord)
		}

		lyricLine.WriteString(segment.Lyrics)
		column += columns(segment.Lyrics)
	}

	return strings.TrimRight(chordLine.String(), " "), lyricLine.String()
}
