package amdm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sukalov/chordbook/internal/logger"
)

const chordsBlockSelector = `pre[itemprop="chordsBlock"]`

// Parser turns AmDm chord pages into chord sheet source
type Parser struct {
	client *Client
	config *ProcessingConfig
}

// NewParser creates a new AmDm parser. Sections listed in dropped (for
// example SectionSolo) are left out of the result.
func NewParser(dropped ...SectionType) *Parser {
	return &Parser{
		client: NewClient(),
		config: &ProcessingConfig{
			DroppedSections: dropped,
			MaxLineBreaks:   3,
		},
	}
}

// ExtractChordSheet downloads url and converts its chords block
func (p *Parser) ExtractChordSheet(ctx context.Context, url string) (*ChordSheetResult, error) {
	logger.Debug("fetching amdm page", "url", url)

	page, err := p.client.FetchPage(ctx, url)
	if err != nil {
		return &ChordSheetResult{URL: url, Error: err.Error()}, err
	}

	result, err := p.ParsePage(page)
	if err != nil {
		logger.Error("failed to parse amdm page", "url", url, "error", err)
		return &ChordSheetResult{URL: url, Error: err.Error()}, err
	}

	result.URL = url
	logger.Debug("extracted chord sheet", "url", url, "length", len(result.Text))
	return result, nil
}

// ParsePage extracts the chord sheet from an already downloaded page
func (p *Parser) ParsePage(page string) (*ChordSheetResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(chordsBlockSelector).First()
	if selection.Length() == 0 {
		return nil, fmt.Errorf("target element not found: %s", chordsBlockSelector)
	}

	blockHTML, err := selection.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to read chords block: %w", err)
	}

	title, artist := pageTitle(doc)
	body, err := p.processHtmlContent(blockHTML)
	if err != nil {
		return nil, err
	}

	var header strings.Builder
	if title != "" {
		fmt.Fprintf(&header, "{title: %s}\n", title)
	}
	if artist != "" {
		fmt.Fprintf(&header, "{artist: %s}\n", artist)
	}
	if header.Len() > 0 {
		header.WriteString("\n")
	}

	return &ChordSheetResult{
		Title:     title,
		Artist:    artist,
		Text:      header.String() + body,
		FetchedAt: time.Now(),
		Success:   true,
	}, nil
}

// pageTitle reads "Artist - Title" from the page heading, dropping the
// trailing "аккорды" label AmDm appends.
func pageTitle(doc *goquery.Document) (title, artist string) {
	heading := strings.TrimSpace(doc.Find("h1").First().Text())
	heading = strings.TrimSpace(strings.TrimSuffix(heading, "аккорды"))
	if heading == "" {
		return "", ""
	}

	if artist, title, ok := strings.Cut(heading, " - "); ok {
		return strings.TrimSpace(title), strings.TrimSpace(artist)
	}
	return heading, ""
}
