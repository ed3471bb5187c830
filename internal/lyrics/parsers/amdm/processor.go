package amdm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// chord fingering diagrams rendered inside the block
	chordDiagramRegex  = regexp.MustCompile(`(?s)<div[^>]*class="podbor__chord"[^>]*>.*?</div>`)
	authorCommentRegex = regexp.MustCompile(`(?s)<span[^>]*class="podbor__author-comment"[^>]*>.*?</span>`)
	blockCommentRegex  = regexp.MustCompile(`/\*[^*]*\*/`)
)

// processHtmlContent strips page furniture from the chords block and returns
// inline chord sheet text.
func (p *Parser) processHtmlContent(blockHTML string) (string, error) {
	processed := chordDiagramRegex.ReplaceAllString(blockHTML, "")
	processed = authorCommentRegex.ReplaceAllString(processed, "")
	processed = blockCommentRegex.ReplaceAllString(processed, "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(processed))
	if err != nil {
		return "", fmt.Errorf("failed to parse chords block: %w", err)
	}

	return p.processTextLines(doc.Text()), nil
}
