package editor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sukalov/chordbook/internal/chordsheet"
	"github.com/sukalov/chordbook/internal/db"
)

// ViewOptions toggles the panes of the song screen
type ViewOptions struct {
	ShowList   bool
	ShowViewer bool
	ShowEditor bool
}

// DefaultViewOptions shows every pane
var DefaultViewOptions = ViewOptions{ShowList: true, ShowViewer: true, ShowEditor: true}

// SongView is everything a front end needs to draw the song screen. Fields of
// hidden panes are left empty.
type SongView struct {
	Options ViewOptions

	Songs []db.SongSummary

	Song     db.Song
	Metadata chordsheet.Metadata
	Document *chordsheet.Document
	HTML     string

	// Source is the raw text the editor pane edits and submits back to Save.
	Source string
}

// View assembles the song screen for id
func (s *Service) View(ctx context.Context, id string, opts ViewOptions) (*SongView, error) {
	view := &SongView{Options: opts}

	if opts.ShowList {
		songs, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		view.Songs = songs
	}

	song, doc, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	view.Song = song
	view.Metadata = doc.Metadata

	if opts.ShowViewer {
		view.Document = doc
		view.HTML = s.render(ctx, song.Text, FormatHTML)
	}
	if opts.ShowEditor {
		view.Source = song.Text
	}
	return view, nil
}

// Rendered is one song of a RenderAll batch
type Rendered struct {
	Song   db.SongSummary
	Output string
}

// RenderAll renders every song concurrently, preserving list order
func (s *Service) RenderAll(ctx context.Context, format Format, concurrency int) ([]Rendered, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	songs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Rendered, len(songs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, summary := range songs {
		g.Go(func() error {
			out, err := s.Render(gctx, summary.ID, format)
			if err != nil {
				return fmt.Errorf("render %s: %w", summary.ID, err)
			}
			results[i] = Rendered{Song: summary, Output: out}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
