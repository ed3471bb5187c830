package chordsheet

import "strings"

// Segment is a chord paired with the lyrics that follow it up to the next chord
type Segment struct {
	Chord  string `json:"chord"`
	Lyrics string `json:"lyrics"`
}

// Line is one physical body line of a chord sheet
type Line struct {
	Segments []Segment `json:"segments"`
}

// Lyrics returns the line text with all chord markers removed
func (l Line) Lyrics() string {
	var b strings.Builder
	for _, s := range l.Segments {
		b.WriteString(s.Lyrics)
	}
	return b.String()
}

// IsEmpty reports whether the line carries no chords and no visible lyrics
func (l Line) IsEmpty() bool {
	for _, s := range l.Segments {
		if s.Chord != "" || strings.TrimSpace(s.Lyrics) != "" {
			return false
		}
	}
	return true
}

// Metadata holds the values collected from directive lines
type Metadata struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Key    string `json:"key,omitempty"`
	// Transpose is set only when the transpose directive holds an integer.
	Transpose    *int   `json:"transpose,omitempty"`
	TransposeRaw string `json:"transpose_raw,omitempty"`
}

// Subtitle joins artist and key the way song headers show them
func (m Metadata) Subtitle() string {
	var parts []string
	if m.Artist != "" {
		parts = append(parts, m.Artist)
	}
	if m.Key != "" {
		parts = append(parts, "Key: "+m.Key)
	}
	return strings.Join(parts, " · ")
}

// Document is a parsed chord sheet
type Document struct {
	Metadata Metadata `json:"metadata"`
	Lines    []Line   `json:"lines"`
}
