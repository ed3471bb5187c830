package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sukalov/chordbook/internal/chordsheet"
	"github.com/sukalov/chordbook/internal/db"
)

type memoryCache struct {
	mu          sync.Mutex
	songs       map[string]db.Song
	index       []db.SongSummary
	renders     map[string]string
	invalidated []string
	renderHits  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{songs: map[string]db.Song{}, renders: map[string]string{}}
}

func (m *memoryCache) GetSong(ctx context.Context, id string) (db.Song, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	song, ok := m.songs[id]
	return song, ok, nil
}

func (m *memoryCache) SetSong(ctx context.Context, song db.Song) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.songs[song.ID] = song
	return nil
}

func (m *memoryCache) GetIndex(ctx context.Context) ([]db.SongSummary, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index, m.index != nil, nil
}

func (m *memoryCache) SetIndex(ctx context.Context, songs []db.SongSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = append([]db.SongSummary{}, songs...)
	return nil
}

func (m *memoryCache) GetRender(ctx context.Context, format, raw string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, ok := m.renders[format+"\x00"+raw]
	if ok {
		m.renderHits++
	}
	return out, ok, nil
}

func (m *memoryCache) SetRender(ctx context.Context, format, raw, rendered string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders[format+"\x00"+raw] = rendered
	return nil
}

func (m *memoryCache) Invalidate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.songs, id)
	m.index = nil
	m.invalidated = append(m.invalidated, id)
	return nil
}

func newTestService(t *testing.T, cache Cache) (*Service, *db.Store) {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, ":memory:", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := db.NewStore(database)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(store, cache), store
}

const besame = "{title: Besame Mucho}\n{artist: Consuelo Velázquez}\n{key: Am}\n{transpose: -4}\n\n[Am7]Bésame, bésame[Dm7/A] mucho"

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"text", "HTML", " html "} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q) = %v", name, err)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, chordsheet.ErrInvalidArgument) {
		t.Errorf("ParseFormat(pdf) err = %v, want ErrInvalidArgument", err)
	}
}

func TestService_LoadAndRender(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	song, err := svc.Create(ctx, "", besame)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if song.Title != "Besame Mucho" {
		t.Errorf("title from directive = %q", song.Title)
	}

	_, doc, err := svc.Load(ctx, song.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Metadata.Key != "Am" || doc.Metadata.TransposeRaw != "-4" {
		t.Errorf("metadata = %+v", doc.Metadata)
	}

	text, err := svc.Render(ctx, song.ID, FormatText)
	if err != nil {
		t.Fatalf("render text: %v", err)
	}
	if want := "\n\nAm7           Dm7/A\nBésame, bésame mucho"; text != want {
		t.Errorf("text =\n%q\nwant\n%q", text, want)
	}

	html, err := svc.Render(ctx, song.ID, FormatHTML)
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	if !strings.Contains(html, `<td class="chord">Dm7/A</td>`) {
		t.Errorf("html missing chord cell:\n%s", html)
	}

	if _, err := svc.Render(ctx, song.ID, Format("pdf")); !errors.Is(err, chordsheet.ErrInvalidArgument) {
		t.Errorf("unknown format err = %v", err)
	}
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	if _, _, err := svc.Load(ctx, " "); !errors.Is(err, chordsheet.ErrInvalidArgument) {
		t.Errorf("empty id err = %v", err)
	}
	if _, _, err := svc.Load(ctx, "missing"); !errors.Is(err, db.ErrSongNotFound) {
		t.Errorf("missing id err = %v", err)
	}
	if _, err := svc.Create(ctx, "", "[C]no title"); !errors.Is(err, chordsheet.ErrInvalidArgument) {
		t.Errorf("untitled create err = %v", err)
	}
	if _, err := svc.Create(ctx, "x", "\xff"); !errors.Is(err, chordsheet.ErrInvalidArgument) {
		t.Errorf("invalid utf8 create err = %v", err)
	}
}

func TestService_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	svc, store := newTestService(t, cache)

	song, err := svc.Create(ctx, "Song", "[C]Hi")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	changed, err := svc.Save(ctx, song.ID, "[C]Hi")
	if err != nil || changed {
		t.Errorf("unchanged save = %v, %v; want false, nil", changed, err)
	}

	edited := "[C]Hi  \n\n[G]  there [weird"
	changed, err = svc.Save(ctx, song.ID, edited)
	if err != nil || !changed {
		t.Fatalf("save = %v, %v; want true, nil", changed, err)
	}

	stored, err := store.GetSong(ctx, song.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Text != edited {
		t.Errorf("stored %q, want raw text %q", stored.Text, edited)
	}

	cache.mu.Lock()
	invalidated := append([]string{}, cache.invalidated...)
	cache.mu.Unlock()
	if len(invalidated) == 0 || invalidated[len(invalidated)-1] != song.ID {
		t.Errorf("invalidated = %v, want last %s", invalidated, song.ID)
	}

	_, doc, err := svc.Load(ctx, song.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Lines) != 3 {
		t.Errorf("reloaded document has %d lines, want 3", len(doc.Lines))
	}

	if _, err := svc.Save(ctx, song.ID, "\xff\xfe"); !errors.Is(err, chordsheet.ErrInvalidArgument) {
		t.Errorf("invalid utf8 save err = %v", err)
	}
}

func TestService_RenameAndDelete(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	svc, _ := newTestService(t, cache)

	song, err := svc.Create(ctx, "Old", "[C]Hi")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Rename(ctx, song.ID, "  New  "); err != nil {
		t.Fatalf("rename: %v", err)
	}
	loaded, _, err := svc.Load(ctx, song.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Title != "New" {
		t.Errorf("title = %q, want New", loaded.Title)
	}
	if err := svc.Rename(ctx, song.ID, " "); !errors.Is(err, chordsheet.ErrInvalidArgument) {
		t.Errorf("blank rename err = %v", err)
	}

	if err := svc.Delete(ctx, song.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := svc.Load(ctx, song.ID); !errors.Is(err, db.ErrSongNotFound) {
		t.Errorf("load after delete err = %v", err)
	}
	if err := svc.Delete(ctx, song.ID); !errors.Is(err, db.ErrSongNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestService_RenderCache(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	svc, _ := newTestService(t, cache)

	song, err := svc.Create(ctx, "Song", "[C]Hi")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, _ := svc.Render(ctx, song.ID, FormatText)
	second, _ := svc.Render(ctx, song.ID, FormatText)
	if first != second {
		t.Errorf("cached render differs: %q vs %q", first, second)
	}
	if cache.renderHits != 1 {
		t.Errorf("render cache hits = %d, want 1", cache.renderHits)
	}
}

func TestService_View(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, newMemoryCache())

	song, err := svc.Create(ctx, "", besame)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	full, err := svc.View(ctx, song.ID, DefaultViewOptions)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(full.Songs) != 1 || full.Document == nil || full.HTML == "" || full.Source != besame {
		t.Errorf("full view incomplete: %+v", full)
	}
	if full.Metadata.Subtitle() != "Consuelo Velázquez · Key: Am" {
		t.Errorf("subtitle = %q", full.Metadata.Subtitle())
	}

	editorOnly, err := svc.View(ctx, song.ID, ViewOptions{ShowEditor: true})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if editorOnly.Songs != nil || editorOnly.Document != nil || editorOnly.HTML != "" {
		t.Errorf("hidden panes populated: %+v", editorOnly)
	}
	if editorOnly.Source != besame || editorOnly.Metadata.Title != "Besame Mucho" {
		t.Errorf("editor pane wrong: %+v", editorOnly)
	}
}

func TestService_RenderAllAndSearch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	titles := []string{"Charlie", "Alpha", "Bravo"}
	for _, title := range titles {
		if _, err := svc.Create(ctx, title, "[C]"+strings.ToLower(title)); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	rendered, err := svc.RenderAll(ctx, FormatText, 4)
	if err != nil {
		t.Fatalf("render all: %v", err)
	}
	if len(rendered) != 3 {
		t.Fatalf("got %d rendered songs, want 3", len(rendered))
	}
	for i, want := range []string{"Alpha", "Bravo", "Charlie"} {
		if rendered[i].Song.Title != want {
			t.Errorf("rendered[%d] = %s, want %s", i, rendered[i].Song.Title, want)
		}
		if rendered[i].Output != "C\n"+strings.ToLower(want) {
			t.Errorf("rendered[%d] output = %q", i, rendered[i].Output)
		}
	}

	results, err := svc.Search(ctx, "BRAVO")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Bravo" {
		t.Errorf("search results = %+v", results)
	}
}
