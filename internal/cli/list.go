package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/meetnotes/internal/models"
	"github.com/raphaelgruber/meetnotes/internal/note"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded meeting notes",
	Long: `List shows the notes in the notes directory, newest first.

Examples:
  meetnotes list
  meetnotes list -n 5
  meetnotes list -v`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max results")
}

func runList(cmd *cobra.Command, args []string) error {
	names, err := note.List(cfg.NotesDir)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Println("No notes found.")
		return nil
	}

	if listLimit > 0 && len(names) > listLimit {
		names = names[:listLimit]
	}

	fmt.Printf("Notes (%d):\n\n", len(names))
	for _, name := range names {
		fm, _, err := note.Read(filepath.Join(cfg.NotesDir, name))
		if err != nil {
			logger.Warn("unreadable note", "file", name, "error", err)
			fmt.Printf("- %s (unreadable)\n", name)
			continue
		}

		fmt.Printf("- %s [%s %s, %s, %d words]\n",
			fm.Title, fm.Date, fm.Time,
			models.FormatClock(durationSeconds(fm.DurationSeconds)),
			fm.WordCount)
		if verbose {
			fmt.Printf("  %s\n", name)
			if len(fm.Tags) > 0 {
				fmt.Printf("  Tags: %v\n", fm.Tags)
			}
		}
	}
	return nil
}

func durationSeconds(s int) time.Duration {
	return time.Duration(s) * time.Second
}
