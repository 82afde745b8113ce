package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/meetnotes/internal/status"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current recording status",
	Long: `Status reads the session status surface and prints it. A status file
left behind by a crashed process is reported as idle: the file is only
trusted while its owning process is alive.

With --json the output is a single JSON object, suitable for waybar
custom modules.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	rec, err := status.Read(cfg.StatusFile)
	if err != nil {
		return err
	}

	if rec.Phase != status.PhaseIdle && !status.OwnerAlive(cfg.StatusFile) {
		logger.Debug("stale status file, owner not running", "file", cfg.StatusFile)
		rec = status.Record{Phase: status.PhaseIdle}
	}

	if statusJSON {
		out := struct {
			Status   string `json:"status"`
			Title    string `json:"title,omitempty"`
			Duration string `json:"duration,omitempty"`
		}{string(rec.Phase), rec.Title, rec.Duration}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	switch rec.Phase {
	case status.PhaseIdle:
		fmt.Println("idle")
	default:
		fmt.Printf("%s", rec.Phase)
		if rec.Title != "" {
			fmt.Printf(": %s", rec.Title)
		}
		if rec.Duration != "" {
			fmt.Printf(" (%s)", rec.Duration)
		}
		fmt.Println()
	}
	return nil
}
