package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sukalov/chordbook/internal/chordsheet"
	"github.com/sukalov/chordbook/internal/editor"
)

var songsCmd = &cobra.Command{
	Use:   "songs",
	Short: "Manage the songbook",
}

var songsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List songs ordered by title",
	Args:  cobra.NoArgs,
	RunE:  runSongsList,
}

var songsShowCmd = &cobra.Command{
	Use:   "show [flags] <id>",
	Short: "Print a song rendered or as raw source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSongsShow,
}

var songsSaveCmd = &cobra.Command{
	Use:   "save <id> <file|->",
	Short: "Replace the source of a song",
	Args:  cobra.ExactArgs(2),
	RunE:  runSongsSave,
}

var songsCreateCmd = &cobra.Command{
	Use:   "create [flags] <file|->",
	Short: "Add a song; the title defaults to the {title} directive",
	Args:  cobra.ExactArgs(1),
	RunE:  runSongsCreate,
}

var songsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Change the stored title of a song",
	Args:  cobra.ExactArgs(2),
	RunE:  runSongsRename,
}

var songsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a song",
	Args:  cobra.ExactArgs(1),
	RunE:  runSongsDelete,
}

var songsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find songs by title or lyrics",
	Args:  cobra.ExactArgs(1),
	RunE:  runSongsSearch,
}

var songsExportCmd = &cobra.Command{
	Use:   "export [flags] <dir>",
	Short: "Render every song into a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSongsExport,
}

func init() {
	songsShowCmd.Flags().String("format", "text", "output format (text|html)")
	songsShowCmd.Flags().Bool("raw", false, "print the stored source instead of rendering it")
	songsShowCmd.Flags().Bool("color", false, "highlight chords in text output")

	songsCreateCmd.Flags().String("title", "", "song title")

	songsExportCmd.Flags().String("format", "text", "output format (text|html)")
	songsExportCmd.Flags().Int("concurrency", 4, "songs rendered in parallel")

	songsCmd.AddCommand(songsListCmd, songsShowCmd, songsSaveCmd, songsCreateCmd,
		songsRenameCmd, songsDeleteCmd, songsSearchCmd, songsExportCmd)
}

func runSongsList(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	service, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	songs, err := service.List(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, song := range songs {
		fmt.Fprintf(tw, "%s\t%s\n", song.ID, song.Title)
	}
	return tw.Flush()
}

func runSongsShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return err
	}
	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := editor.ParseFormat(formatName)
	if err != nil {
		return err
	}
	colorize, err := cmd.Flags().GetBool("color")
	if err != nil {
		return err
	}

	service, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	view, err := service.View(cmd.Context(), args[0], editor.ViewOptions{ShowViewer: !raw, ShowEditor: raw})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if raw {
		_, err := fmt.Fprintln(out, view.Source)
		return err
	}
	if format == editor.FormatHTML {
		_, err := fmt.Fprintln(out, view.HTML)
		return err
	}

	doc := *view.Document
	if doc.Metadata.Title == "" {
		doc.Metadata.Title = view.Song.Title
	}
	return writeDocument(out, &doc, format, true, colorize)
}

func runSongsSave(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	data, err := readSource(cmd, args[1])
	if err != nil {
		return err
	}

	service, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	changed, err := service.Save(cmd.Context(), args[0], string(data))
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(cmd.OutOrStdout(), "unchanged")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "saved")
	return nil
}

func runSongsCreate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	title, err := cmd.Flags().GetString("title")
	if err != nil {
		return err
	}
	data, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}
	if _, err := chordsheet.ParseBytes(data); err != nil {
		return err
	}

	service, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	song, err := service.Create(cmd.Context(), title, string(data))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), song.ID)
	return nil
}

func runSongsRename(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	service, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	return service.Rename(cmd.Context(), args[0], args[1])
}

func runSongsDelete(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	service, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	return service.Delete(cmd.Context(), args[0])
}

func runSongsSearch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	service, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	results, err := service.Search(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, song := range results {
		fmt.Fprintf(tw, "%s\t%s\n", song.ID, song.Title)
	}
	return tw.Flush()
}

func runSongsExport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := editor.ParseFormat(formatName)
	if err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}

	dir := args[0]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	service, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	rendered, err := service.RenderAll(cmd.Context(), format, concurrency)
	if err != nil {
		return err
	}

	for _, r := range rendered {
		path := filepath.Join(dir, exportName(r.Song.ID, format))
		if err := os.WriteFile(path, []byte(r.Output), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d songs to %s\n", len(rendered), dir)
	return nil
}

func exportName(id string, format editor.Format) string {
	if format == editor.FormatHTML {
		return id + ".html"
	}
	return id + ".txt"
}
