// Package editor loads, renders and saves songs. It is the single view-model
// behind every front end: the CLI, the Telegram bot and any web layer.
package editor

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sukalov/chordbook/internal/chordsheet"
	"github.com/sukalov/chordbook/internal/db"
	"github.com/sukalov/chordbook/internal/logger"
)

// Format selects a renderer
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ParseFormat validates a user supplied format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatText, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or html): %w", name, chordsheet.ErrInvalidArgument)
	}
}

// Render formats raw chord sheet source. It never fails for a valid Format.
func Render(raw string, format Format) string {
	doc := chordsheet.Parse(raw)
	if format == FormatHTML {
		return chordsheet.FormatHTML(doc)
	}
	return chordsheet.FormatText(doc)
}

// Songs is the persistence the service needs. *db.Store implements it.
type Songs interface {
	ListSongs(ctx context.Context) ([]db.SongSummary, error)
	GetSong(ctx context.Context, id string) (db.Song, error)
	CreateSong(ctx context.Context, title, text string) (db.Song, error)
	UpdateSong(ctx context.Context, id, text string) error
	RenameSong(ctx context.Context, id, title string) error
	DeleteSong(ctx context.Context, id string) error
	SearchSongs(ctx context.Context, query string) ([]db.SongSummary, error)
	IncrementViews(ctx context.Context, id string) error
}

// Cache is an optional read-through cache. *redis.Cache implements it.
type Cache interface {
	GetSong(ctx context.Context, id string) (db.Song, bool, error)
	SetSong(ctx context.Context, song db.Song) error
	GetIndex(ctx context.Context) ([]db.SongSummary, bool, error)
	SetIndex(ctx context.Context, songs []db.SongSummary) error
	GetRender(ctx context.Context, format, raw string) (string, bool, error)
	SetRender(ctx context.Context, format, raw, rendered string) error
	Invalidate(ctx context.Context, id string) error
}

// Service coordinates storage, cache and rendering
type Service struct {
	songs Songs
	cache Cache
}

// NewService builds a Service. cache may be nil.
func NewService(songs Songs, cache Cache) *Service {
	return &Service{songs: songs, cache: cache}
}

// List returns all songs ordered by title
func (s *Service) List(ctx context.Context) ([]db.SongSummary, error) {
	if s.cache != nil {
		songs, ok, err := s.cache.GetIndex(ctx)
		if err != nil {
			logger.Error("song index cache read failed", "error", err)
		} else if ok {
			return songs, nil
		}
	}

	songs, err := s.songs.ListSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetIndex(ctx, songs); err != nil {
			logger.Error("song index cache write failed", "error", err)
		}
	}
	return songs, nil
}

// Load fetches a song and parses its source
func (s *Service) Load(ctx context.Context, id string) (db.Song, *chordsheet.Document, error) {
	song, err := s.get(ctx, id)
	if err != nil {
		return db.Song{}, nil, err
	}
	return song, chordsheet.Parse(song.Text), nil
}

// Render fetches a song and formats it
func (s *Service) Render(ctx context.Context, id string, format Format) (string, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return "", err
	}

	song, err := s.get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.render(ctx, song.Text, format), nil
}

// Save stores edited raw source unchanged. It reports false without writing
// when the text matches what is stored.
func (s *Service) Save(ctx context.Context, id, raw string) (bool, error) {
	if !utf8.ValidString(raw) {
		return false, fmt.Errorf("save song %s: text is not valid UTF-8: %w", id, chordsheet.ErrInvalidArgument)
	}

	song, err := s.get(ctx, id)
	if err != nil {
		return false, err
	}
	if song.Text == raw {
		return false, nil
	}

	if err := s.songs.UpdateSong(ctx, id, raw); err != nil {
		return false, fmt.Errorf("failed to save song %s: %w", id, err)
	}
	s.invalidate(ctx, id)

	logger.Success("song saved", "song_id", id, "length", len(raw))
	return true, nil
}

// Create adds a song. An empty title falls back to the {title} directive.
func (s *Service) Create(ctx context.Context, title, raw string) (db.Song, error) {
	if !utf8.ValidString(raw) {
		return db.Song{}, fmt.Errorf("create song: text is not valid UTF-8: %w", chordsheet.ErrInvalidArgument)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSpace(chordsheet.Parse(raw).Metadata.Title)
	}
	if title == "" {
		return db.Song{}, fmt.Errorf("create song: missing title: %w", chordsheet.ErrInvalidArgument)
	}

	song, err := s.songs.CreateSong(ctx, title, raw)
	if err != nil {
		return db.Song{}, fmt.Errorf("failed to create song: %w", err)
	}
	s.invalidate(ctx, song.ID)

	logger.Success("song created", "song_id", song.ID, "title", title)
	return song, nil
}

// Rename changes the stored title. The {title} directive in the text is left alone.
func (s *Service) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if id == "" || title == "" {
		return fmt.Errorf("rename song: id and title are required: %w", chordsheet.ErrInvalidArgument)
	}
	if err := s.songs.RenameSong(ctx, id, title); err != nil {
		return fmt.Errorf("failed to rename song %s: %w", id, err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete song: empty id: %w", chordsheet.ErrInvalidArgument)
	}
	if err := s.songs.DeleteSong(ctx, id); err != nil {
		return fmt.Errorf("failed to delete song %s: %w", id, err)
	}
	s.invalidate(ctx, id)

	logger.Info("song deleted", "song_id", id)
	return nil
}

// Search finds songs by title or lyrics
func (s *Service) Search(ctx context.Context, query string) ([]db.SongSummary, error) {
	results, err := s.songs.SearchSongs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search songs: %w", err)
	}
	return results, nil
}

// MarkViewed bumps the view counter of a song
func (s *Service) MarkViewed(ctx context.Context, id string) error {
	if err := s.songs.IncrementViews(ctx, id); err != nil {
		return fmt.Errorf("failed to count view of %s: %w", id, err)
	}
	return nil
}

func (s *Service) get(ctx context.Context, id string) (db.Song, error) {
	if strings.TrimSpace(id) == "" {
		return db.Song{}, fmt.Errorf("song id is empty: %w", chordsheet.ErrInvalidArgument)
	}

	if s.cache != nil {
		song, ok, err := s.cache.GetSong(ctx, id)
		if err != nil {
			logger.Error("song cache read failed", "song_id", id, "error", err)
		} else if ok {
			return song, nil
		}
	}

	song, err := s.songs.GetSong(ctx, id)
	if err != nil {
		return db.Song{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetSong(ctx, song); err != nil {
			logger.Error("song cache write failed", "song_id", id, "error", err)
		}
	}
	return song, nil
}

func (s *Service) render(ctx context.Context, raw string, format Format) string {
	if s.cache != nil {
		out, ok, err := s.cache.GetRender(ctx, string(format), raw)
		if err != nil {
			logger.Error("render cache read failed", "format", format, "error", err)
		} else if ok {
			return out
		}
	}

	out := Render(raw, format)

	if s.cache != nil {
		if err := s.cache.SetRender(ctx, string(format), raw, out); err != nil {
			logger.Error("render cache write failed", "format", format, "error", err)
		}
	}
	return out
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.Error("song cache invalidation failed", "song_id", id, "error", err)
	}
}
