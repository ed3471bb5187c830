package lyrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sukalov/chordbook/internal/logger"
	"github.com/sukalov/chordbook/internal/lyrics/parsers/amdm"
)

// ImportResult is chord sheet source pulled from an external site
type ImportResult struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Service imports chord sheets from supported sites
type Service struct {
	amdmParser *amdm.Parser
}

// NewService creates a new import service
func NewService() *Service {
	return &Service{
		amdmParser: amdm.NewParser(),
	}
}

// Import fetches url and returns its chord sheet source
func (s *Service) Import(ctx context.Context, url string) (*ImportResult, error) {
	if strings.Contains(url, "amdm.ru") {
		return s.importFromAmdm(ctx, url)
	}

	logger.Error("unsupported import source", "url", url)
	return nil, fmt.Errorf("unsupported URL source: %s", url)
}

func (s *Service) importFromAmdm(ctx context.Context, url string) (*ImportResult, error) {
	result, err := s.amdmParser.ExtractChordSheet(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("amdm import failed: %w", err)
	}

	logger.Success("imported chord sheet", "url", url, "source", "amdm.ru", "length", len(result.Text))

	return &ImportResult{
		URL:       result.URL,
		Title:     result.Title,
		Text:      result.Text,
		Source:    "amdm.ru",
		FetchedAt: result.FetchedAt,
	}, nil
}
