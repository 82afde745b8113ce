package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raphaelgruber/meetnotes/internal/audio"
	"github.com/raphaelgruber/meetnotes/internal/models"
	"github.com/raphaelgruber/meetnotes/internal/note"
	"github.com/raphaelgruber/meetnotes/internal/pipeline"
	"github.com/raphaelgruber/meetnotes/internal/status"
	"github.com/raphaelgruber/meetnotes/internal/summarize"
	"github.com/raphaelgruber/meetnotes/internal/transcribe"
)

var (
	recordTitle    string
	recordNotes    string
	recordMode     string
	recordKeepTemp bool
	recordNoTUI    bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a meeting and turn it into a note",
	Long: `Record starts an audio capture session and, once stopped, runs it
through transcription and summarization into a markdown note.

In a terminal an interactive view shows elapsed time and lets you edit
the title and notes while recording. Without a terminal (or with
--no-tui) the recording runs until SIGINT/SIGTERM; a second SIGINT
cancels the session and discards everything.

Examples:
  meetnotes record
  meetnotes record --title "Weekly Sync" --mode mic
  meetnotes record --no-tui`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordTitle, "title", "t", "", "meeting title")
	recordCmd.Flags().StringVarP(&recordNotes, "notes", "n", "", "notes to include in the final note")
	recordCmd.Flags().StringVarP(&recordMode, "mode", "m", "", "recording mode: mic, system or combined (default from config)")
	recordCmd.Flags().BoolVar(&recordKeepTemp, "keep-temp", false, "keep intermediate audio files")
	recordCmd.Flags().BoolVar(&recordNoTUI, "no-tui", false, "plain output, stop with SIGINT")
}

func runRecord(cmd *cobra.Command, args []string) error {
	modeStr := recordMode
	if modeStr == "" {
		modeStr = cfg.RecordingMode
	}
	mode, err := models.ParseMode(modeStr)
	if err != nil {
		return err
	}

	p, err := buildPipeline()
	if err != nil {
		return err
	}

	if err := p.Start(recordTitle, recordNotes, mode); err != nil {
		return err
	}

	if recordNoTUI || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runRecordPlain(p)
	}
	return runRecordUI(p)
}

// buildPipeline wires the recorder, transcriber, summarizer and note
// writer from configuration.
func buildPipeline() (*pipeline.Pipeline, error) {
	keepTemp := recordKeepTemp || cfg.KeepTempFiles

	recorder := audio.NewRecorder(logger, keepTemp)

	whisper, err := transcribe.NewWhisper(cfg.WhisperBin, cfg.WhisperModel, logger)
	if err != nil {
		return nil, err
	}

	summarizer, err := summarize.New(cfg, logger)
	if err != nil {
		// A broken provider config should not block recording. The
		// note is written with the unavailability marker instead.
		logger.Warn("summarization disabled", "error", err)
		summarizer = summarize.Disabled{}
	}

	return pipeline.New(
		pipeline.RecorderCapturer{Recorder: recorder},
		whisper,
		summarizer,
		note.NewWriter(cfg.NotesDir, logger),
		status.NewWriter(cfg.StatusFile),
		cfg.RecordingsDir,
		keepTemp,
		logger,
	), nil
}

// runRecordPlain drives the session without a TUI. SIGINT or SIGTERM
// stops the recording; a second SIGINT cancels outright.
func runRecordPlain(p *pipeline.Pipeline) error {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	fmt.Println("Recording... press Ctrl+C to stop and process, twice to cancel.")

	ticker := statusTicker(p)
	defer ticker.stop()

	<-sigCh
	fmt.Println("\nStopping, processing recording...")
	if err := p.Stop(context.Background()); err != nil {
		return err
	}

	for {
		select {
		case <-sigCh:
			if err := p.Cancel(); err != nil {
				fmt.Println("Processing already started, waiting for it to finish.")
				continue
			}
		case res := <-p.Done():
			return reportResult(res)
		}
	}
}

// statusTicker refreshes the status surface once a second until
// stopped, so bar widgets see a live duration in plain mode.
type statusRefresher struct {
	stopCh chan struct{}
}

func statusTicker(p *pipeline.Pipeline) *statusRefresher {
	r := &statusRefresher{stopCh: make(chan struct{})}
	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				p.PublishStatus()
			case <-r.stopCh:
				return
			}
		}
	}()
	return r
}

func (r *statusRefresher) stop() {
	close(r.stopCh)
}

func reportResult(res pipeline.Result) error {
	switch res.State {
	case pipeline.StateDone:
		fmt.Printf("Note written: %s\n", res.NotePath)
		return nil
	case pipeline.StateCancelled:
		fmt.Println("Recording cancelled, nothing kept.")
		return nil
	default:
		if res.Transcript != nil {
			// The note could not be written but the transcript
			// exists; dump it so the meeting is not lost.
			fmt.Println("\n--- transcript (note could not be written) ---")
			fmt.Println(res.Transcript.Text())
		}
		return res.Err
	}
}
