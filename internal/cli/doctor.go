package cli

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/meetnotes/internal/audio"
	"github.com/raphaelgruber/meetnotes/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that recording, transcription and summarization can work",
	Long: `Doctor inspects the host for the tools and credentials a full
record-to-note run needs and reports what is missing.`,
	RunE: runDoctor,
}

type check struct {
	name   string
	ok     bool
	detail string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	checks := []check{
		checkCaptureTool(),
		checkDevices(),
		checkBinary("ffmpeg", "needed for combined-mode mixing"),
		checkBinary(cfg.WhisperBin, "transcription engine"),
		checkProvider(),
	}

	ok := defaultTheme.successStyle()
	bad := defaultTheme.errorStyle()
	hint := defaultTheme.hintStyle()

	failed := 0
	for _, c := range checks {
		mark := ok.Render("✓")
		if !c.ok {
			mark = bad.Render("✗")
			failed++
		}
		fmt.Printf("%s %s", mark, c.name)
		if c.detail != "" {
			fmt.Printf("  %s", hint.Render(c.detail))
		}
		fmt.Println()
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func checkCaptureTool() check {
	if path, err := exec.LookPath("pw-record"); err == nil {
		return check{"audio capture (pw-record)", true, path}
	}
	if path, err := exec.LookPath("parec"); err == nil {
		return check{"audio capture (parec)", true, path}
	}
	return check{"audio capture", false, "install pipewire (pw-record) or pulseaudio-utils (parec)"}
}

func checkDevices() check {
	source := audio.DefaultSource()
	sink := audio.DefaultSink()
	if source == "" && sink == "" {
		return check{"audio devices", false, "pactl reported no default source or sink"}
	}
	return check{"audio devices", true, fmt.Sprintf("source=%s sink=%s", orUnset(source), orUnset(sink))}
}

func checkBinary(bin, purpose string) check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return check{bin, false, purpose + ", not found in PATH"}
	}
	return check{bin, true, path}
}

func checkProvider() check {
	name := "summarization (" + string(cfg.AIProvider) + ")"
	switch cfg.AIProvider {
	case config.ProviderNone:
		return check{name, true, "disabled, notes will carry no AI summary"}
	case config.ProviderOllama:
		return check{name, true, cfg.OllamaHost}
	default:
		if cfg.APIKey() == "" {
			return check{name, false, "API key not set in environment"}
		}
		return check{name, true, "key " + config.RedactedKey(cfg.APIKey())}
	}
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
