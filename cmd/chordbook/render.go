package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sukalov/chordbook/internal/chordsheet"
	"github.com/sukalov/chordbook/internal/editor"
)

var (
	chordColor = color.New(color.FgYellow, color.Bold)
	titleColor = color.New(color.FgCyan, color.Bold)
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] <file|->",
	Short: "Render a chord sheet file as text or HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().String("format", "text", "output format (text|html)")
	renderCmd.Flags().Bool("color", false, "highlight chords and the header in text output")
	renderCmd.Flags().Bool("header", false, "print title, artist and key above the sheet")
}

func runRender(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

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
	header, err := cmd.Flags().GetBool("header")
	if err != nil {
		return err
	}

	data, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}
	doc, err := chordsheet.ParseBytes(data)
	if err != nil {
		return err
	}

	return writeDocument(cmd.OutOrStdout(), doc, format, header, colorize)
}

func writeDocument(w io.Writer, doc *chordsheet.Document, format editor.Format, header, colorize bool) error {
	if format == editor.FormatHTML {
		_, err := fmt.Fprintln(w, chordsheet.FormatHTML(doc))
		return err
	}

	if header {
		if err := writeHeader(w, doc.Metadata, colorize); err != nil {
			return err
		}
	}
	if !colorize {
		_, err := fmt.Fprintln(w, chordsheet.FormatText(doc))
		return err
	}

	lines := make([]string, 0, len(doc.Lines)*2)
	for _, line := range doc.Lines {
		chords, lyrics := chordsheet.FormatChordLines(line)
		if chords != "" {
			chords = paint(chordColor, chords)
		}
		lines = append(lines, chords, lyrics)
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func writeHeader(w io.Writer, meta chordsheet.Metadata, colorize bool) error {
	if meta.Title == "" && meta.Subtitle() == "" {
		return nil
	}

	title := meta.Title
	if colorize && title != "" {
		title = paint(titleColor, title)
	}
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if subtitle := meta.Subtitle(); subtitle != "" {
		if _, err := fmt.Fprintln(w, subtitle); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// paint colors s even when stdout is not a terminal; --color is an explicit request.
func paint(c *color.Color, s string) string {
	c.EnableColor()
	return c.Sprint(s)
}
