package chordsheet

import (
	"strings"
	"testing"
)

func TestFormatText(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "chords above syllables",
			source: "[C]Hello [G]world",
			want:   "C     G\nHello world",
		},
		{
			name:   "leading lyrics without chord",
			source: "Hello [C]world",
			want:   "      C\nHello world",
		},
		{
			name:   "blank line emits two empty lines",
			source: "[C]Hi\n\n[G]There",
			want:   "C\nHi\n\n\nG\nThere",
		},
		{
			name:   "overlapping chords keep one space",
			source: "[Am7]a[D]b[E7(b9)]",
			want:   "Am7 D E7(b9)\nab",
		},
		{
			name:   "touching chords are separated",
			source: "[Am]xx[C]y",
			want:   "Am C\nxxy",
		},
		{
			name:   "tab counts as one column",
			source: "a\tb[C]c",
			want:   "   C\na\tbc",
		},
		{
			name:   "chords around a tab",
			source: "[C]\t[G]x",
			want:   "C G\n\tx",
		},
		{
			name:   "lyrics only",
			source: "just words",
			want:   "\njust words",
		},
		{
			name:   "metadata is not rendered",
			source: "{title: Song}\n{artist: Someone}\n[D]la",
			want:   "D\nla",
		},
		{
			name:   "accented lyrics count as one column",
			source: "[Am7]Bésame, [Dm7]mucho",
			want:   "Am7     Dm7\nBésame, mucho",
		},
		{
			name:   "wide characters use display width",
			source: "日本[C]語",
			want:   "    C\n日本語",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatText(Parse(tt.source)); got != tt.want {
				t.Errorf("FormatText(%q) =\n%q\nwant\n%q", tt.source, got, tt.want)
			}
		})
	}
}

func TestFormatText_NilDocument(t *testing.T) {
	if got := FormatText(nil); got != "" {
		t.Errorf("FormatText(nil) = %q, want empty", got)
	}
}

func TestFormatChordLines_NeverTruncates(t *testing.T) {
	line := Line{Segments: []Segment{
		{Chord: "Cmaj7(#11)", Lyrics: "a"},
		{Chord: "Fm6/Ab", Lyrics: "b"},
	}}

	chords, lyrics := FormatChordLines(line)
	if !strings.Contains(chords, "Cmaj7(#11)") || !strings.Contains(chords, "Fm6/Ab") {
		t.Errorf("chord line %q lost a chord symbol", chords)
	}
	if chords != "Cmaj7(#11) Fm6/Ab" {
		t.Errorf("chords = %q", chords)
	}
	if lyrics != "ab" {
		t.Errorf("lyrics = %q, want %q", lyrics, "ab")
	}
}

func TestFormatHTML(t *testing.T) {
	got := FormatHTML(Parse("{title: T}\nHello [C]world"))
	want := `<table class="paragraph">` +
		`<tr class="chords"><td class="chord"></td><td class="chord">C</td></tr>` +
		`<tr class="lyrics"><td class="lyrics">Hello </td><td class="lyrics">world</td></tr>` +
		`</table>`
	if got != want {
		t.Errorf("FormatHTML =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatHTML_Paragraphs(t *testing.T) {
	got := FormatHTML(Parse("[C]a\n[G]b\n\n \n[D]c"))

	if n := strings.Count(got, "<table"); n != 2 {
		t.Errorf("got %d tables, want 2:\n%s", n, got)
	}
	if n := strings.Count(got, `<tr class="chords">`); n != 3 {
		t.Errorf("got %d chord rows, want 3:\n%s", n, got)
	}
	if !strings.HasPrefix(got, "<table") || !strings.HasSuffix(got, "</table>") {
		t.Errorf("unexpected fragment boundaries:\n%s", got)
	}
}

func TestFormatHTML_Escaping(t *testing.T) {
	got := FormatHTML(Parse("[A&B]<b>&"))

	if !strings.Contains(got, "&lt;b&gt;&amp;") {
		t.Errorf("lyrics not escaped:\n%s", got)
	}
	if !strings.Contains(got, `<td class="chord">A&amp;B</td>`) {
		t.Errorf("chord not escaped:\n%s", got)
	}
	if strings.Contains(got, "<b>") {
		t.Errorf("raw markup leaked:\n%s", got)
	}
}

func TestFormatHTML_Empty(t *testing.T) {
	for _, doc := range []*Document{nil, Parse(""), Parse("{title: only}\n\n")} {
		if got := FormatHTML(doc); got != "" {
			t.Errorf("FormatHTML = %q, want empty", got)
		}
	}
}
