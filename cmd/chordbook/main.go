package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chordbook",
	Short: "Chord sheet renderer and songbook editor",
	Long: `chordbook renders inline-chord song sheets as aligned text or HTML tables,
manages the songbook stored in libSQL/SQLite and imports sheets from amdm.ru`,
}

func main() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(songsCmd)
	rootCmd.AddCommand(importCmd)

	rootCmd.PersistentFlags().String("log-level", "", "override LOG_LEVEL (debug|info|warn|error)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
