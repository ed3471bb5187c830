package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sukalov/chordbook/internal/lyrics"
)

var importCmd = &cobra.Command{
	Use:     "import [flags] <url>",
	Short:   "Fetch a chord sheet from amdm.ru",
	Example: "  chordbook import https://amdm.ru/akkordi/mihail_krug/102195/vladimirskiy_tsentral/",
	Args:    cobra.ExactArgs(1),
	RunE:    runImport,
}

func init() {
	importCmd.Flags().StringP("output", "o", "", "write the sheet to a file instead of stdout")
	importCmd.Flags().Bool("save", false, "add the imported sheet to the songbook")
}

func runImport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	save, err := cmd.Flags().GetBool("save")
	if err != nil {
		return err
	}

	result, err := lyrics.NewService().Import(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(result.Text), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), result.Text)
	}

	if !save {
		return nil
	}

	service, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	song, err := service.Create(cmd.Context(), result.Title, result.Text)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved as %s\n", song.ID)
	return nil
}
