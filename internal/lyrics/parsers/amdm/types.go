package amdm

import (
	"time"
)

// ChordSheetResult is a chord sheet extracted from an AmDm page
type ChordSheetResult struct {
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Artist    string    `json:"artist,omitempty"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// SectionType represents different song sections
type SectionType string

const (
	SectionVerse  SectionType = "Куплет"
	SectionChorus SectionType = "Припев"
	SectionBridge SectionType = "Переход"
	SectionIntro  SectionType = "Вступление"
	SectionSolo   SectionType = "Проигрыш"
	SectionOutro  SectionType = "Кода"
)

// ProcessingConfig holds configuration for text processing
type ProcessingConfig struct {
	// DroppedSections are removed with their chord lines, e.g. instrumental parts.
	DroppedSections []SectionType
	MaxLineBreaks   int
}
