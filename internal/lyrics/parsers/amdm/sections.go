package amdm

import (
	"regexp"
	"strings"

	"github.com/sukalov/chordbook/internal/chordsheet"
)

// sectionRegex matches "[Куплет]:", "[Припев 2]" and similar markers
var sectionRegex = regexp.MustCompile(`^\[([^\]]+)\]:?$`)

// processTextLines turns the chords-over-words text of the block into inline
// chord sheet source, rewriting section markers as plain labels.
func (p *Parser) processTextLines(cleanText string) string {
	lines := strings.Split(strings.ReplaceAll(cleanText, "\r\n", "\n"), "\n")
	processed := make([]string, 0, len(lines))

	dropping := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")

		if match := sectionRegex.FindStringSubmatch(strings.TrimSpace(line)); match != nil {
			name := strings.TrimSpace(match[1])
			dropping = p.isDropped(name)
			if !dropping {
				processed = append(processed, "", name+":")
			}
			continue
		}

		if dropping {
			if strings.TrimSpace(line) == "" {
				dropping = false
			}
			continue
		}

		processed = append(processed, line)
	}

	text := chordsheet.FromChordsOverWords(strings.Join(processed, "\n"))
	return p.finalCleanup(text)
}

func (p *Parser) isDropped(section string) bool {
	for _, dropped := range p.config.DroppedSections {
		if strings.HasPrefix(section, string(dropped)) {
			return true
		}
	}
	return false
}

// finalCleanup caps runs of blank lines and trims the result
func (p *Parser) finalCleanup(text string) string {
	maxBreaks := p.config.MaxLineBreaks
	if maxBreaks < 1 {
		maxBreaks = 1
	}

	var (
		out   []string
		blank int
	)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank >= maxBreaks {
				continue
			}
			line = ""
		} else {
			blank = 0
		}
		out = append(out, line)
	}

	return strings.Trim(strings.Join(out, "\n"), "\n")
}
