package redis

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"

	"github.com/sukalov/chordbook/internal/db"
)

const indexKey = "songs:index"

type cachedSong struct {
	ID        string    `msgpack:"id"`
	Title     string    `msgpack:"title"`
	Text      string    `msgpack:"song"`
	CreatedAt time.Time `msgpack:"created_at"`
	Views     int       `msgpack:"views"`
}

type cachedSummary struct {
	ID    string `msgpack:"id"`
	Title string `msgpack:"title"`
}

func songKey(id string) string {
	return "song:" + id
}

// renderKey addresses rendered output by the content it was rendered from, so
// edits never hit stale entries.
func renderKey(format, raw string) string {
	sum := blake3.Sum256([]byte(raw))
	return fmt.Sprintf("render:%s:%s", format, hex.EncodeToString(sum[:]))
}

// GetSong returns the cached record, reporting false on a miss
func (c *Cache) GetSong(ctx context.Context, id string) (db.Song, bool, error) {
	data, found, err := c.get(ctx, songKey(id))
	if err != nil || !found {
		return db.Song{}, false, err
	}

	var cached cachedSong
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return db.Song{}, false, fmt.Errorf("failed to decode cached song %s: %w", id, err)
	}
	return db.Song(cached), true, nil
}

func (c *Cache) SetSong(ctx context.Context, song db.Song) error {
	data, err := msgpack.Marshal(cachedSong(song))
	if err != nil {
		return fmt.Errorf("failed to encode song %s: %w", song.ID, err)
	}
	return c.set(ctx, songKey(song.ID), data)
}

// GetIndex returns the cached song list
func (c *Cache) GetIndex(ctx context.Context) ([]db.SongSummary, bool, error) {
	data, found, err := c.get(ctx, indexKey)
	if err != nil || !found {
		return nil, false, err
	}

	var cached []cachedSummary
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("failed to decode song index: %w", err)
	}

	songs := make([]db.SongSummary, len(cached))
	for i, s := range cached {
		songs[i] = db.SongSummary(s)
	}
	return songs, true, nil
}

func (c *Cache) SetIndex(ctx context.Context, songs []db.SongSummary) error {
	cached := make([]cachedSummary, len(songs))
	for i, s := range songs {
		cached[i] = cachedSummary(s)
	}

	data, err := msgpack.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to encode song index: %w", err)
	}
	return c.set(ctx, indexKey, data)
}

// GetRender returns output previously rendered from raw in format
func (c *Cache) GetRender(ctx context.Context, format, raw string) (string, bool, error) {
	data, found, err := c.get(ctx, renderKey(format, raw))
	if err != nil || !found {
		return "", false, err
	}
	return string(data), true, nil
}

// SetRender stores rendered output. Empty output is cheaper to recompute than
// to fetch and is not stored.
func (c *Cache) SetRender(ctx context.Context, format, raw, rendered string) error {
	if rendered == "" {
		return nil
	}
	return c.set(ctx, renderKey(format, raw), []byte(rendered))
}

// Invalidate drops the song record and the index. Rendered output is keyed by
// content and expires on its own.
func (c *Cache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, songKey(id), indexKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate song %s: %w", id, err)
	}
	return nil
}
