package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ErrSongNotFound is returned when no song has the requested id
var ErrSongNotFound = errors.New("song not found")

// Song is a row of the songs table. Text holds the raw chord sheet source.
type Song struct {
	ID        string
	Title     string
	Text      string
	CreatedAt time.Time
	Views     int
}

// SongSummary is what song lists show
type SongSummary struct {
	ID    string
	Title string
}

// Store reads and writes songs through an injected database handle
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(database *sql.DB) *Store {
	return &Store{db: database, now: time.Now}
}

const schema = `CREATE TABLE IF NOT EXISTS songs (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	title      TEXT NOT NULL,
	song       TEXT NOT NULL,
	views      INTEGER NOT NULL DEFAULT 0
)`

// Migrate creates the songs table if needed
func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create songs table: %w", err)
	}
	return nil
}

// ListSongs returns id and title of every song ordered by title
func (s *Store) ListSongs(ctx context.Context) ([]SongSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT id, title FROM songs ORDER BY title, id")
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var songs []SongSummary
	for rows.Next() {
		var song SongSummary
		if err := rows.Scan(&song.ID, &song.Title); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return songs, nil
}

// GetSong loads a full song record
func (s *Store) GetSong(ctx context.Context, id string) (Song, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, created_at, title, song, views FROM songs WHERE id = ?", id)

	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, fmt.Errorf("%w: %s", ErrSongNotFound, id)
	}
	if err != nil {
		return Song{}, fmt.Errorf("failed to load song %s: %w", id, err)
	}
	return song, nil
}

// CreateSong inserts a new song and returns it with its generated id
func (s *Store) CreateSong(ctx context.Context, title, text string) (Song, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	song := Song{
		ID:        uuid.NewString(),
		Title:     title,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}

	query := `INSERT INTO songs (id, created_at, title, song, views) VALUES (?, ?, ?, ?, 0)`
	if _, err := s.db.ExecContext(ctx, query,
		song.ID,
		song.CreatedAt.Format(time.RFC3339Nano),
		song.Title,
		song.Text,
	); err != nil {
		return Song{}, fmt.Errorf("failed to insert song: %w", err)
	}

	return song, nil
}

// UpdateSong replaces the raw chord sheet text of a song
func (s *Store) UpdateSong(ctx context.Context, id, text string) error {
	return s.exec(ctx, "update song", `UPDATE songs SET song = ? WHERE id = ?`, text, id)
}

// RenameSong changes the title of a song
func (s *Store) RenameSong(ctx context.Context, id, title string) error {
	return s.exec(ctx, "rename song", `UPDATE songs SET title = ? WHERE id = ?`, title, id)
}

func (s *Store) DeleteSong(ctx context.Context, id string) error {
	return s.exec(ctx, "delete song", `DELETE FROM songs WHERE id = ?`, id)
}

// IncrementViews bumps the view counter of a song
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	return s.exec(ctx, "increment song views", `UPDATE songs SET views = views + 1 WHERE id = ?`, id)
}

// SearchSongs matches query against titles and lyrics, ignoring case and
// Unicode normalization differences.
func (s *Store) SearchSongs(ctx context.Context, query string) ([]SongSummary, error) {
	needle := foldText(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT id, title, song FROM songs ORDER BY title, id")
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var results []SongSummary
	for rows.Next() {
		var song SongSummary
		var text string
		if err := rows.Scan(&song.ID, &song.Title, &text); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		if strings.Contains(foldText(song.Title), needle) || strings.Contains(foldText(text), needle) {
			results = append(results, song)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return results, nil
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("failed to %s: %w: %s", op, ErrSongNotFound, args[len(args)-1])
	}
	return nil
}

func scanSong(row *sql.Row) (Song, error) {
	var (
		song      Song
		createdAt string
	)
	if err := row.Scan(&song.ID, &createdAt, &song.Title, &song.Text, &song.Views); err != nil {
		return Song{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Song{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	song.CreatedAt = t
	return song, nil
}

// foldText lowercases with full Unicode case folding after composing accents,
// so "BÉSAME" and "bésame" compare equal.
func foldText(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
