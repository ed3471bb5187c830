// Package chordsheet parses inline-chord lyric sheets and renders them as
// aligned text or HTML tables.
//
// Source lines interleave chords in square brackets with lyrics:
//
//	{title: Bésame Mucho}
//	[Am7]Bésame, bésame[Dm7/A] mucho
//
// Parsing never fails. Anything that does not form a well-formed directive or
// chord token is kept as lyric text.
package chordsheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var patterns = struct {
	directive *regexp.Regexp
}{
	// {name: value} or a bare {name}, taking up the whole line
	directive: regexp.MustCompile(`^\{\s*([A-Za-z_][\w-]*)\s*(?::\s*(.*?))?\s*\}$`),
}

// Parse converts chord sheet source into a Document.
func Parse(source string) *Document {
	doc := &Document{}

	for _, raw := range strings.Split(source, "\n") {
		line := strings.TrimSuffix(raw, "\r")

		if name, value, ok := matchDirective(line); ok {
			doc.Metadata.apply(name, value)
			continue
		}

		doc.Lines = append(doc.Lines, parseLine(line))
	}

	return doc
}

// ParseBytes parses source read from storage or a file. It rejects nil input
// and input that is not valid UTF-8 instead of guessing an encoding.
func ParseBytes(source []byte) (*Document, error) {
	if source == nil {
		return nil, fmt.Errorf("parse chord sheet: nil source: %w", ErrInvalidArgument)
	}
	if !utf8.Valid(source) {
		return nil, fmt.Errorf("parse chord sheet: source is not valid UTF-8: %w", ErrInvalidArgument)
	}
	return Parse(string(source)), nil
}

func matchDirective(line string) (name, value string, ok bool) {
	match := patterns.directive.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return "", "", false
	}
	return strings.ToLower(match[1]), match[2], true
}

func (m *Metadata) apply(name, value string) {
	switch name {
	case "title":
		m.Title = value
	case "artist":
		m.Artist = value
	case "key":
		m.Key = value
	case "transpose":
		m.TransposeRaw = value
		m.Transpose = nil
		if n, err := strconv.Atoi(value); err == nil {
			m.Transpose = &n
		}
	}
}

func parseLine(line string) Line {
	var (
		segments []Segment
		chord    string
		hasChord bool
		text     strings.Builder
	)

	flush := func() {
		if hasChord || text.Len() > 0 {
			segments = append(segments, Segment{Chord: chord, Lyrics: text.String()})
		}
		text.Reset()
	}

	for i := 0; i < len(line); {
		if line[i] == '[' {
			if end := closingBracket(line, i+1); end >= 0 {
				flush()
				chord = line[i+1 : end]
				hasChord = true
				i = end + 1
				continue
			}
		}
		text.WriteByte(line[i])
		i++
	}
	flush()

	return Line{Segments: segments}
}

// closingBracket returns the index of the ']' closing a chord token opened just
// before from, or -1 when another '[' or the end of line comes first.
func closingBracket(line string, from int) int {
	for j := from; j < len(line); j++ {
		switch line[j] {
		case ']':
			return j
		case '[':
			return -1
		}
	}
	return -1
}
