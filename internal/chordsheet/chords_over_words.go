package chordsheet

import (
	"regexp"
	"sort"
	"strings"
)

// chordToken matches one chord symbol of a chords-over-words sheet, covering
// European H notation, extensions in parentheses and slash bass notes.
var chordToken = regexp.MustCompile(`^[A-H](?:#|b)?(?:[0-9mMajdinsugo+\-#b°ø]|\([^)\s]*\))*(?:/[A-H](?:#|b)?)?$`)

type placedChord struct {
	column int
	chord  string
}

// FromChordsOverWords converts a sheet with chords on their own lines above the
// lyrics into inline chord source that Parse understands. Chord lines without a
// lyric line below are kept as a line of chords.
func FromChordsOverWords(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		chords, ok := chordLine(lines[i])
		if !ok {
			out = append(out, lines[i])
			continue
		}

		if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			if _, nextIsChords := chordLine(lines[i+1]); !nextIsChords {
				out = append(out, mergeChords(chords, lines[i+1]))
				i++
				continue
			}
		}

		out = append(out, mergeChords(chords, ""))
	}

	return strings.Join(out, "\n")
}

// chordLine reports whether every token on line is a chord symbol and returns
// them with their display columns.
func chordLine(line string) ([]placedChord, bool) {
	if strings.TrimSpace(line) == "" {
		return nil, false
	}

	var (
		chords []placedChord
		column int
		start  = -1
		token  strings.Builder
	)
	flush := func() bool {
		if start < 0 {
			return true
		}
		chord := token.String()
		token.Reset()
		if !chordToken.MatchString(chord) {
			return false
		}
		chords = append(chords, placedChord{column: start, chord: chord})
		start = -1
		return true
	}

	for _, r := range line {
		if r == ' ' || r == '\t' || r == '|' {
			if !flush() {
				return nil, false
			}
		} else {
			if start < 0 {
				start = column
			}
			token.WriteRune(r)
		}
		column += runeColumns(r)
	}
	if !flush() {
		return nil, false
	}

	return chords, len(chords) > 0
}

// mergeChords inserts each chord as a [token] at its column in lyrics,
// padding lyrics with spaces when a chord sits past the end.
func mergeChords(chords []placedChord, lyrics string) string {
	sort.SliceStable(chords, func(i, j int) bool { return chords[i].column < chords[j].column })

	var (
		b      strings.Builder
		runes  = []rune(lyrics)
		column int
		next   int
	)
	for _, r := range runes {
		for next < len(chords) && chords[next].column <= column {
			b.WriteString("[" + chords[next].chord + "]")
			next++
		}
		b.WriteRune(r)
		column += runeColumns(r)
	}
	for ; next < len(chords); next++ {
		if pad := chords[next].column - column; pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
			column += pad
		}
		b.WriteString("[" + chords[next].chord + "]")
	}

	return b.String()
}
