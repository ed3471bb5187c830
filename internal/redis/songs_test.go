package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sukalov/chordbook/internal/db"
)

func TestRenderKey(t *testing.T) {
	a := renderKey("text", "[C]Hello")
	b := renderKey("text", "[C]Hello")
	c := renderKey("html", "[C]Hello")
	d := renderKey("text", "[G]Hello")

	if a != b {
		t.Errorf("same input gave different keys: %s, %s", a, b)
	}
	if a == c || a == d {
		t.Error("different format or content should change the key")
	}
	if !strings.HasPrefix(a, "render:text:") || len(a) != len("render:text:")+64 {
		t.Errorf("unexpected key shape %q", a)
	}
}

func TestSongKey(t *testing.T) {
	if got := songKey("abc"); got != "song:abc" {
		t.Errorf("songKey = %q", got)
	}
}

func TestCachedSongEncoding(t *testing.T) {
	song := db.Song{
		ID:        "id-1",
		Title:     "Bésame Mucho",
		Text:      "{key: Am}\n[Am7]Bésame",
		CreatedAt: time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC),
		Views:     7,
	}

	data, err := msgpack.Marshal(cachedSong(song))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded cachedSong
	if err := msgpack.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := db.Song(decoded)
	if got.ID != song.ID || got.Text != song.Text || got.Views != song.Views || !got.CreatedAt.Equal(song.CreatedAt) {
		t.Errorf("decoded %+v, want %+v", got, song)
	}
}

func TestNewCache_InvalidURL(t *testing.T) {
	if _, err := NewCache("redis://localhost:6379/not-a-db", ""); err == nil {
		t.Error("expected error for malformed url")
	}
}

func TestNewCache_HostAndPassword(t *testing.T) {
	cache, err := NewCache("localhost:6380", "secret")
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	defer cache.Close()

	opts := cache.client.Options()
	if opts.Addr != "localhost:6380" || opts.Password != "secret" || opts.TLSConfig == nil {
		t.Errorf("unexpected options: addr=%s password=%s tls=%v", opts.Addr, opts.Password, opts.TLSConfig != nil)
	}
}

func TestSetRender_SkipsEmptyOutput(t *testing.T) {
	// nothing listens here, so any network round trip fails
	cache := NewCacheWithClient(redisClient.NewClient(&redisClient.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer cache.Close()

	ctx := context.Background()
	if err := cache.SetRender(ctx, "text", "{title: Empty}", ""); err != nil {
		t.Errorf("empty render should not reach redis: %v", err)
	}
	if err := cache.SetRender(ctx, "text", "[C]Hi", "C\nHi"); err == nil {
		t.Error("expected a connection error for non-empty output")
	}
}
